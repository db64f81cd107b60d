package swap

import (
	"context"
	"time"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/swap"
	"github.com/linhai/battswap/internal/domain/vehicle"
	apperrors "github.com/linhai/battswap/pkg/errors"
	"github.com/linhai/battswap/pkg/mq"
)

// ExecuteExchangeUseCase 即换(无预约)换电用例
// 设计说明:这是并发最敏感的用例
//
// 核心问题:同一块满电电池被两笔并发换电同时选中
// 错误做法:
//  1. 校验时选仓 → 两笔请求拿到同一快照
//  2. 各自执行 → 同一块电池挂到两辆车上
//
// 正确做法:事务内加锁重选
//  1. BEGIN,锁定归还仓位与归还电池行
//  2. 重新选仓,SELECT ... FOR UPDATE锁定候选电池行
//  3. 数量不足直接回滚报缺货,绝不用事务外的旧快照凑数
//  4. 入仓、出仓、记录、计量,COMMIT释放全部行锁
type ExecuteExchangeUseCase struct {
	vehicleRepo vehicle.Repository
	selector    *EligibilitySelector
	exec        *executor
	txManager   TxManager
	publisher   *mq.Publisher
}

// NewExecuteExchangeUseCase 创建即换换电用例
func NewExecuteExchangeUseCase(
	vehicleRepo vehicle.Repository,
	batteryRepo battery.Repository,
	stationRepo station.Repository,
	swapRepo swap.Repository,
	selector *EligibilitySelector,
	accountant *UsageAccountant,
	txManager TxManager,
	publisher *mq.Publisher,
) *ExecuteExchangeUseCase {
	return &ExecuteExchangeUseCase{
		vehicleRepo: vehicleRepo,
		selector:    selector,
		exec:        newExecutor(batteryRepo, stationRepo, swapRepo, accountant),
		txManager:   txManager,
		publisher:   publisher,
	}
}

// ExecuteExchangeRequest 即换换电请求
type ExecuteExchangeRequest struct {
	DriverID  uint // 从JWT中提取
	VehicleID uint
	StationID uint
	HandIns   []HandInPair
}

// BatteryOut 发出电池视图
type BatteryOut struct {
	BatteryID uint   `json:"battery_id"`
	SerialNo  string `json:"serial_no"`
	SOC       int    `json:"soc"`
	SOH       int    `json:"soh"`
}

// SwapRecordView 换电记录视图
type SwapRecordView struct {
	RecordNo     string `json:"record_no"`
	BatteryInID  *uint  `json:"battery_in_id,omitempty"`
	BatteryOutID uint   `json:"battery_out_id"`
	SOHIn        *int   `json:"soh_in,omitempty"`
	SOHOut       int    `json:"soh_out"`
	SwappedAt    string `json:"swapped_at"`
}

// ExecuteExchangeResponse 即换换电响应
type ExecuteExchangeResponse struct {
	BatteriesOut []BatteryOut     `json:"batteries_out"`
	Records      []SwapRecordView `json:"records"`
}

// Execute 执行即换换电
// 任何一步失败整单回滚,调用方看不到任何中间状态
func (uc *ExecuteExchangeUseCase) Execute(ctx context.Context, req ExecuteExchangeRequest) (*ExecuteExchangeResponse, error) {
	quantity := len(req.HandIns)
	if quantity == 0 {
		return nil, swap.ErrQuantityMismatch
	}

	v, err := uc.vehicleRepo.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(req.DriverID) {
		return nil, apperrors.ErrForbidden
	}
	class, err := uc.vehicleRepo.FindClassByID(ctx, v.ClassID)
	if err != nil {
		return nil, err
	}
	if quantity > class.BatterySlots {
		return nil, swap.ErrQuantityMismatch
	}

	start := time.Now()
	observeSwapStart()

	var (
		outs    []*battery.Battery
		records []*swap.Record
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 锁定归还仓位与电池行,复查校验条件
		items, err := uc.exec.lockHandIns(txCtx, req.VehicleID, req.StationID, req.HandIns)
		if err != nil {
			return err
		}

		// 事务内加锁重选,杜绝两笔换电选中同一块电池
		outs, err = uc.selector.Select(txCtx, req.StationID, class.BatteryClassID, quantity, true)
		if err != nil {
			return err
		}
		if len(outs) < quantity {
			return swap.ErrInsufficientStock
		}

		if err := uc.exec.placeHandIns(txCtx, items); err != nil {
			return err
		}
		if err := uc.exec.attachOuts(txCtx, req.VehicleID, req.StationID, outs, false); err != nil {
			return err
		}

		records, err = uc.exec.createRecords(txCtx, req.DriverID, req.VehicleID, req.StationID, items, outs, start)
		if err != nil {
			return err
		}

		return uc.exec.accountant.Apply(txCtx, req.VehicleID, records)
	})

	if err != nil {
		observeSwapFailure("walk_in", apperrors.CodeOf(err), start)
		return nil, err
	}

	observeSwapSuccess("walk_in", quantity, start)
	publishEvent(uc.publisher, RoutingKeySwapCompleted, SwapCompletedEvent{
		RecordNos: recordNos(records),
		DriverID:  req.DriverID,
		VehicleID: req.VehicleID,
		StationID: req.StationID,
		Quantity:  quantity,
		SwappedAt: start,
	})

	return &ExecuteExchangeResponse{
		BatteriesOut: toBatteriesOut(outs),
		Records:      toRecordViews(records),
	}, nil
}

func recordNos(records []*swap.Record) []string {
	nos := make([]string, len(records))
	for i, r := range records {
		nos[i] = r.RecordNo
	}
	return nos
}

func toBatteriesOut(outs []*battery.Battery) []BatteryOut {
	result := make([]BatteryOut, len(outs))
	for i, b := range outs {
		result[i] = BatteryOut{
			BatteryID: b.ID,
			SerialNo:  b.SerialNo,
			SOC:       b.SOC,
			SOH:       b.SOH,
		}
	}
	return result
}

func toRecordViews(records []*swap.Record) []SwapRecordView {
	views := make([]SwapRecordView, len(records))
	for i, r := range records {
		views[i] = SwapRecordView{
			RecordNo:     r.RecordNo,
			BatteryInID:  r.BatteryInID,
			BatteryOutID: r.BatteryOutID,
			SOHIn:        r.SOHIn,
			SOHOut:       r.SOHOut,
			SwappedAt:    r.SwappedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return views
}
