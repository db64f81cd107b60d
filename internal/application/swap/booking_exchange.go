package swap

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/booking"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/swap"
	"github.com/linhai/battswap/internal/domain/vehicle"
	apperrors "github.com/linhai/battswap/pkg/errors"
	"github.com/linhai/battswap/pkg/mq"
)

// ExecuteBookingExchangeUseCase 预约换电用例
// 设计说明:
// 1. 发出电池不走选仓:预约时已锁定具体电池(仓位置locked),
//    这里只核对每块预约电池仍在可用仓位中(locked/charging/charged)
// 2. 预约单先锁后读,同一预约并发到店只会核销一次
// 3. 换电成功后预约置completed,与换电在同一事务内提交
type ExecuteBookingExchangeUseCase struct {
	vehicleRepo vehicle.Repository
	bookingRepo booking.Repository
	batteryRepo battery.Repository
	exec        *executor
	txManager   TxManager
	publisher   *mq.Publisher
}

// NewExecuteBookingExchangeUseCase 创建预约换电用例
func NewExecuteBookingExchangeUseCase(
	vehicleRepo vehicle.Repository,
	bookingRepo booking.Repository,
	batteryRepo battery.Repository,
	stationRepo station.Repository,
	swapRepo swap.Repository,
	accountant *UsageAccountant,
	txManager TxManager,
	publisher *mq.Publisher,
) *ExecuteBookingExchangeUseCase {
	return &ExecuteBookingExchangeUseCase{
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		batteryRepo: batteryRepo,
		exec:        newExecutor(batteryRepo, stationRepo, swapRepo, accountant),
		txManager:   txManager,
		publisher:   publisher,
	}
}

// ExecuteBookingExchangeRequest 预约换电请求
type ExecuteBookingExchangeRequest struct {
	BookingID uint
	DriverID  uint // 从JWT中提取
	VehicleID uint
	StationID uint
	HandIns   []HandInPair
}

// ExecuteBookingExchangeResponse 预约换电响应
type ExecuteBookingExchangeResponse struct {
	BookingStatus string           `json:"booking_status"`
	BatteriesOut  []BatteryOut     `json:"batteries_out"`
	Records       []SwapRecordView `json:"records"`
}

// Execute 执行预约换电
func (uc *ExecuteBookingExchangeUseCase) Execute(ctx context.Context, req ExecuteBookingExchangeRequest) (*ExecuteBookingExchangeResponse, error) {
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

	start := time.Now()
	observeSwapStart()

	var (
		outs    []*battery.Battery
		records []*swap.Record
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 先锁预约单,防止同一预约并发核销两次
		bk, err := uc.bookingRepo.LockByID(txCtx, req.BookingID)
		if err != nil {
			return err
		}
		if bk.DriverID != req.DriverID {
			return apperrors.ErrForbidden
		}
		if !bk.IsActive() || bk.VehicleID != req.VehicleID || bk.StationID != req.StationID {
			return booking.ErrBookingNotActive
		}

		outIDs := bk.BatteryIDs()
		quantity := len(outIDs)
		// 归还项数必须与预约电池块数一致,且不超过车型仓数
		if len(req.HandIns) != quantity || quantity == 0 || quantity > class.BatterySlots {
			return swap.ErrQuantityMismatch
		}

		items, err := uc.exec.lockHandIns(txCtx, req.VehicleID, req.StationID, req.HandIns)
		if err != nil {
			return err
		}

		outs, err = uc.lockReservedOuts(txCtx, outIDs)
		if err != nil {
			return err
		}

		if err := uc.exec.placeHandIns(txCtx, items); err != nil {
			return err
		}
		// 仓位归属与状态核对在attachOuts内完成(仓位行已锁定)
		if err := uc.exec.attachOuts(txCtx, req.VehicleID, req.StationID, outs, true); err != nil {
			return err
		}

		records, err = uc.exec.createRecords(txCtx, req.DriverID, req.VehicleID, req.StationID, items, outs, start)
		if err != nil {
			return err
		}

		if err := bk.Complete(); err != nil {
			return err
		}
		if err := uc.bookingRepo.UpdateStatus(txCtx, bk.ID, bk.Status); err != nil {
			return err
		}

		return uc.exec.accountant.Apply(txCtx, req.VehicleID, records)
	})

	if err != nil {
		observeSwapFailure("booking", apperrors.CodeOf(err), start)
		return nil, err
	}

	observeSwapSuccess("booking", len(records), start)
	publishEvent(uc.publisher, RoutingKeySwapCompleted, SwapCompletedEvent{
		RecordNos: recordNos(records),
		DriverID:  req.DriverID,
		VehicleID: req.VehicleID,
		StationID: req.StationID,
		Quantity:  len(records),
		BookingID: req.BookingID,
		SwappedAt: start,
	})

	return &ExecuteBookingExchangeResponse{
		BookingStatus: string(booking.StatusCompleted),
		BatteriesOut:  toBatteriesOut(outs),
		Records:       toRecordViews(records),
	}, nil
}

// lockReservedOuts 锁定预约的发出电池行并核对仍可发出
// 预约电池被运维下架、转移出站都会走到这里的不可用分支
func (uc *ExecuteBookingExchangeUseCase) lockReservedOuts(ctx context.Context, outIDs []uint) ([]*battery.Battery, error) {
	sorted := make([]uint, len(outIDs))
	copy(sorted, outIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	byID := make(map[uint]*battery.Battery, len(sorted))
	for _, id := range sorted {
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

	// 保持预约明细的原始顺序
	outs := make([]*battery.Battery, len(outIDs))
	for i, id := range outIDs {
		outs[i] = byID[id]
	}
	return outs, nil
}
