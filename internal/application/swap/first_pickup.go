package swap

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/swap"
	"github.com/linhai/battswap/internal/domain/vehicle"
	apperrors "github.com/linhai/battswap/pkg/errors"
	"github.com/linhai/battswap/pkg/mq"
)

// ExecuteFirstPickupUseCase 首次领电用例
// 设计说明:
// 1. 新车入网后第一次领电,车上没有电池,没有归还侧
// 2. 发出电池由开通流程预留(入参直接给定),这里核对仍可发出
// 3. 记录的battery_in/soh_in为空;没有上一次发出记录可差,
//    用量核算整体跳过,套餐计数不动
type ExecuteFirstPickupUseCase struct {
	vehicleRepo vehicle.Repository
	batteryRepo battery.Repository
	exec        *executor
	txManager   TxManager
	publisher   *mq.Publisher
}

// NewExecuteFirstPickupUseCase 创建首次领电用例
func NewExecuteFirstPickupUseCase(
	vehicleRepo vehicle.Repository,
	batteryRepo battery.Repository,
	stationRepo station.Repository,
	swapRepo swap.Repository,
	txManager TxManager,
	publisher *mq.Publisher,
) *ExecuteFirstPickupUseCase {
	// 首次领电不走用量核算,执行器不挂核算器
	return &ExecuteFirstPickupUseCase{
		vehicleRepo: vehicleRepo,
		batteryRepo: batteryRepo,
		exec:        newExecutor(batteryRepo, stationRepo, swapRepo, nil),
		txManager:   txManager,
		publisher:   publisher,
	}
}

// ExecuteFirstPickupRequest 首次领电请求
type ExecuteFirstPickupRequest struct {
	DriverID      uint // 从JWT中提取
	VehicleID     uint
	StationID     uint
	BatteryOutIDs []uint // 预留的发出电池
}

// ExecuteFirstPickupResponse 首次领电响应
type ExecuteFirstPickupResponse struct {
	BatteriesOut []BatteryOut     `json:"batteries_out"`
	Records      []SwapRecordView `json:"records"`
}

// Execute 执行首次领电
func (uc *ExecuteFirstPickupUseCase) Execute(ctx context.Context, req ExecuteFirstPickupRequest) (*ExecuteFirstPickupResponse, error) {
	quantity := len(req.BatteryOutIDs)
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
		// 车上已有电池就不是"首次"领电,按数量规则拒绝
		carried, err := uc.batteryRepo.FindByVehicle(txCtx, req.VehicleID)
		if err != nil {
			return err
		}
		if len(carried) > 0 {
			return swap.ErrQuantityMismatch
		}

		outs, err = uc.lockOuts(txCtx, req.BatteryOutIDs)
		if err != nil {
			return err
		}

		// 预留电池可能还在locked仓位中(开通流程锁定)
		if err := uc.exec.attachOuts(txCtx, req.VehicleID, req.StationID, outs, true); err != nil {
			return err
		}

		records, err = uc.exec.createRecords(txCtx, req.DriverID, req.VehicleID, req.StationID, nil, outs, start)
		return err
	})

	if err != nil {
		observeSwapFailure("first_pickup", apperrors.CodeOf(err), start)
		return nil, err
	}

	observeSwapSuccess("first_pickup", quantity, start)
	publishEvent(uc.publisher, RoutingKeySwapFirstPickup, SwapCompletedEvent{
		RecordNos: recordNos(records),
		DriverID:  req.DriverID,
		VehicleID: req.VehicleID,
		StationID: req.StationID,
		Quantity:  quantity,
		SwappedAt: start,
	})

	return &ExecuteFirstPickupResponse{
		BatteriesOut: toBatteriesOut(outs),
		Records:      toRecordViews(records),
	}, nil
}

// lockOuts 锁定预留的发出电池行并核对仍可发出
func (uc *ExecuteFirstPickupUseCase) lockOuts(ctx context.Context, outIDs []uint) ([]*battery.Battery, error) {
	sorted := make([]uint, len(outIDs))
	copy(sorted, outIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	byID := make(map[uint]*battery.Battery, len(sorted))
	for _, id := range sorted {
		if byID[id] != nil {
			return nil, swap.ErrQuantityMismatch // 同一电池重复出现
		}
		b, err := uc.batteryRepo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, battery.ErrBatteryNotFound) {
				return nil, swap.ErrBookingBatteryUnavailable
			}
			return nil, err
		}
		if !b.InSlot() || b.Faulty {
			return nil, swap.ErrBookingBatteryUnavailable
		}
		byID[id] = b
	}

	outs := make([]*battery.Battery, len(outIDs))
	for i, id := range outIDs {
		outs[i] = byID[id]
	}
	return outs, nil
}
