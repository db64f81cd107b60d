package swap

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/swap"
	apperrors "github.com/linhai/battswap/pkg/errors"
	"github.com/linhai/battswap/pkg/metrics"
)

// executor 换电执行器的共享流程
// 设计说明:
// 1. 三个入口变体(即换/预约/首领)复用同一套加锁、复查、写入步骤,
//    全部方法只允许在事务context内调用
// 2. 这是唯一允许写电池位置与仓位状态的组件,写入一律先锁后查再改:
//    校验用例的结论只是咨询性快照,不被信任
// 3. 批量加锁统一按ID升序,并发换电不会互相死锁
type executor struct {
	batteryRepo battery.Repository
	stationRepo station.Repository
	swapRepo    swap.Repository
	accountant  *UsageAccountant
}

func newExecutor(
	batteryRepo battery.Repository,
	stationRepo station.Repository,
	swapRepo swap.Repository,
	accountant *UsageAccountant,
) *executor {
	return &executor{
		batteryRepo: batteryRepo,
		stationRepo: stationRepo,
		swapRepo:    swapRepo,
		accountant:  accountant,
	}
}

// handInItem 已加锁并复查通过的归还项
type handInItem struct {
	slot *station.CabinetSlot
	bat  *battery.Battery
}

// lockHandIns 锁定归还项涉及的仓位与电池行,并复查校验条件
// 任何一项不满足都返回类型化错误,由事务整体回滚
func (e *executor) lockHandIns(ctx context.Context, vehicleID, stationID uint, pairs []HandInPair) ([]handInItem, error) {
	// 同一请求内仓位/电池不允许重复出现:校验用例只是咨询性的,
	// 这里必须自己再拒一次,否则同一块电池可以一次换走多块
	seenSlots := make(map[uint]bool, len(pairs))
	seenBatteries := make(map[uint]bool, len(pairs))
	for _, p := range pairs {
		if seenSlots[p.SlotID] {
			return nil, swap.ErrSlotNotAvailable
		}
		if seenBatteries[p.BatteryID] {
			return nil, swap.ErrBatteryNotOwned
		}
		seenSlots[p.SlotID] = true
		seenBatteries[p.BatteryID] = true
	}

	slotIDs := make([]uint, len(pairs))
	for i, p := range pairs {
		slotIDs[i] = p.SlotID
	}

	slots, err := e.stationRepo.LockSlotsByIDs(ctx, slotIDs)
	if err != nil {
		return nil, err
	}
	slotByID := make(map[uint]*station.CabinetSlot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}

	// 电池行同样按ID升序加锁
	batteryIDs := make([]uint, len(pairs))
	for i, p := range pairs {
		batteryIDs[i] = p.BatteryID
	}
	sort.Slice(batteryIDs, func(i, j int) bool { return batteryIDs[i] < batteryIDs[j] })

	batByID := make(map[uint]*battery.Battery, len(batteryIDs))
	for _, id := range batteryIDs {
		b, err := e.batteryRepo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, battery.ErrBatteryNotFound) {
				return nil, swap.ErrBatteryNotOwned
			}
			return nil, err
		}
		batByID[id] = b
	}

	items := make([]handInItem, len(pairs))
	for i, p := range pairs {
		slot, ok := slotByID[p.SlotID]
		if !ok || !slot.BelongsToStation(stationID) || !slot.IsEmpty() {
			return nil, swap.ErrSlotNotAvailable
		}
		b := batByID[p.BatteryID]
		if !b.IsOwnedBy(vehicleID) {
			return nil, swap.ErrBatteryNotOwned
		}
		items[i] = handInItem{slot: slot, bat: b}
	}

	return items, nil
}

// placeHandIns 把归还电池放入目标仓位
// 仓位状态按归还电池的SOH决定:低于阈值直接faulty,否则charging
func (e *executor) placeHandIns(ctx context.Context, items []handInItem) error {
	for _, item := range items {
		item.bat.PlaceInSlot(item.slot.ID)
		if err := e.batteryRepo.PlaceInSlot(ctx, item.bat.ID, item.slot.ID); err != nil {
			return err
		}

		if err := item.slot.MarkStatus(station.StatusForHandIn(item.bat.SOH)); err != nil {
			return err
		}
		if err := e.stationRepo.UpdateSlotStatus(ctx, item.slot.ID, item.slot.Status); err != nil {
			return err
		}
	}
	return nil
}

// attachOuts 把发出电池挂到车辆上,并释放其原仓位
// 设计说明:
// 1. 出仓电池必须仍在仓位里,先锁定原仓位行再动手
// 2. allowLocked=false(即换):仓位必须仍可出仓,否则视为被并发
//    换电抢走,按缺货处理;allowLocked=true(预约/首领):locked仓位
//    是预约锁定的正常形态,不可用时报预约电池不可用
func (e *executor) attachOuts(ctx context.Context, vehicleID, stationID uint, outs []*battery.Battery, allowLocked bool) error {
	unavailable := swap.ErrInsufficientStock
	if allowLocked {
		unavailable = swap.ErrBookingBatteryUnavailable
	}

	slotIDs := make([]uint, 0, len(outs))
	for _, b := range outs {
		if !b.InSlot() {
			return unavailable
		}
		slotIDs = append(slotIDs, *b.SlotID)
	}

	slots, err := e.stationRepo.LockSlotsByIDs(ctx, slotIDs)
	if err != nil {
		return err
	}
	slotByID := make(map[uint]*station.CabinetSlot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}

	for _, b := range outs {
		slot, ok := slotByID[*b.SlotID]
		if !ok || !slot.BelongsToStation(stationID) {
			return unavailable
		}
		if allowLocked {
			if !slot.AvailableForHandOut() && slot.Status != station.SlotStatusLocked {
				return unavailable
			}
		} else if !slot.AvailableForHandOut() {
			return unavailable
		}

		// 故障电池不允许发车,域层直接拒绝
		if err := b.AttachToVehicle(vehicleID); err != nil {
			return unavailable
		}
		if err := e.batteryRepo.AttachToVehicle(ctx, b.ID, vehicleID); err != nil {
			return err
		}

		// 电池离开后原仓位回到empty
		if err := slot.MarkStatus(station.SlotStatusEmpty); err != nil {
			return err
		}
		if err := e.stationRepo.UpdateSlotStatus(ctx, slot.ID, station.SlotStatusEmpty); err != nil {
			return err
		}
	}

	return nil
}

// createRecords 按输入顺序逐对生成换电记录
// items为空时生成首次领电记录(无归还侧)
func (e *executor) createRecords(
	ctx context.Context,
	driverID, vehicleID, stationID uint,
	items []handInItem,
	outs []*battery.Battery,
	at time.Time,
) ([]*swap.Record, error) {
	records := make([]*swap.Record, len(outs))
	for i, out := range outs {
		var r *swap.Record
		if len(items) == 0 {
			r = swap.NewFirstPickupRecord(swap.GenerateRecordNo(), driverID, vehicleID, stationID, out.ID, out.SOH, at)
		} else {
			in := items[i]
			r = swap.NewRecord(swap.GenerateRecordNo(), driverID, vehicleID, stationID,
				in.bat.ID, in.bat.SOH, out.ID, out.SOH, at)
		}
		if err := e.swapRepo.Create(ctx, r); err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

// =========================================
// 业务指标埋点(未初始化时静默跳过,单测不依赖指标)
// =========================================

func observeSwapStart() {
	if metrics.SwapsInProgress != nil {
		metrics.SwapsInProgress.Inc()
	}
}

func observeSwapSuccess(variant string, exchanged int, start time.Time) {
	if metrics.SwapsInProgress != nil {
		metrics.SwapsInProgress.Dec()
	}
	if metrics.SwapsTotal == nil {
		return
	}
	metrics.IncCounterVec(metrics.SwapsTotal, map[string]string{"variant": variant})
	metrics.BatteriesExchangedTotal.Add(float64(exchanged))
	metrics.ObserveHistogram(metrics.SwapDuration, time.Since(start).Seconds())
}

func observeSwapFailure(variant string, code int, start time.Time) {
	if metrics.SwapsInProgress != nil {
		metrics.SwapsInProgress.Dec()
	}
	if metrics.SwapsFailedTotal == nil {
		return
	}
	metrics.IncCounterVec(metrics.SwapsFailedTotal, map[string]string{
		"variant": variant,
		"reason":  reasonLabel(code),
	})
	metrics.ObserveHistogram(metrics.SwapDuration, time.Since(start).Seconds())
}

// reasonLabel 把业务错误码映射为低基数的指标标签
func reasonLabel(code int) string {
	switch code {
	case apperrors.ErrCodeBatteryNotOwned:
		return "battery_not_owned"
	case apperrors.ErrCodeSlotNotAvailable:
		return "slot_not_available"
	case apperrors.ErrCodeQuantityMismatch:
		return "quantity_mismatch"
	case apperrors.ErrCodeInsufficientStock:
		return "insufficient_stock"
	case apperrors.ErrCodeBookingBatteryUnavail:
		return "booking_battery_unavailable"
	case apperrors.ErrCodeBookingNotActive:
		return "booking_not_active"
	default:
		return "persistence"
	}
}
