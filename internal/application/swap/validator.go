package swap

import (
	"context"
	"errors"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/swap"
	"github.com/linhai/battswap/internal/domain/vehicle"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// HandInPair 归还项:司机把battery_in放入slot
type HandInPair struct {
	SlotID    uint `json:"slot_id"`
	BatteryID uint `json:"battery_id"`
}

// ValidateExchangeUseCase 换电校验用例
// 设计说明:
// 1. 逐项校验,单项失败不否决整批:每项给出valid/invalid+原因,
//    外加聚合的all_valid,由调用方决定整批拒绝还是只换有效子集
// 2. 数量检查是请求级的(与请求数量不符/超过车型仓数),直接返回错误
// 3. 纯读组件,结论是咨询性的:并发下电池/仓位随时可能变化,
//    最终正确性靠执行器在事务内加锁复查保证
type ValidateExchangeUseCase struct {
	batteryRepo battery.Repository
	stationRepo station.Repository
	vehicleRepo vehicle.Repository
}

// NewValidateExchangeUseCase 创建换电校验用例
func NewValidateExchangeUseCase(
	batteryRepo battery.Repository,
	stationRepo station.Repository,
	vehicleRepo vehicle.Repository,
) *ValidateExchangeUseCase {
	return &ValidateExchangeUseCase{
		batteryRepo: batteryRepo,
		stationRepo: stationRepo,
		vehicleRepo: vehicleRepo,
	}
}

// ValidateExchangeRequest 换电校验请求
type ValidateExchangeRequest struct {
	DriverID          uint
	VehicleID         uint
	StationID         uint
	RequestedQuantity int
	HandIns           []HandInPair
}

// ItemResult 单项校验结果
type ItemResult struct {
	SlotID     uint   `json:"slot_id"`
	BatteryID  uint   `json:"battery_id"`
	Valid      bool   `json:"valid"`
	Reason     int    `json:"reason,omitempty"`      // 业务错误码,valid时为0
	Message    string `json:"message,omitempty"`     // 用户可读原因
	PostStatus string `json:"post_status,omitempty"` // 归还后仓位状态(charging/faulty)
}

// ValidateExchangeResponse 换电校验响应
type ValidateExchangeResponse struct {
	AllValid bool         `json:"all_valid"`
	Items    []ItemResult `json:"items"`
}

// Execute 执行换电校验
// 检查顺序:车辆归属 → 数量 → 逐项(仓位可用性、电池归属)
func (uc *ValidateExchangeUseCase) Execute(ctx context.Context, req ValidateExchangeRequest) (*ValidateExchangeResponse, error) {
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

	// 数量检查是请求级的:归还项数必须等于请求数量,且不超过车型仓数
	if len(req.HandIns) != req.RequestedQuantity || len(req.HandIns) == 0 ||
		len(req.HandIns) > class.BatterySlots {
		return nil, swap.ErrQuantityMismatch
	}

	if _, err := uc.stationRepo.FindStationByID(ctx, req.StationID); err != nil {
		return nil, err
	}

	items := make([]ItemResult, len(req.HandIns))
	allValid := true
	seenSlots := make(map[uint]bool)
	seenBatteries := make(map[uint]bool)

	for i, pair := range req.HandIns {
		item := uc.checkItem(ctx, req.VehicleID, req.StationID, pair, seenSlots, seenBatteries)
		if !item.Valid {
			allValid = false
		}
		items[i] = item
	}

	return &ValidateExchangeResponse{
		AllValid: allValid,
		Items:    items,
	}, nil
}

// checkItem 校验单个归还项
func (uc *ValidateExchangeUseCase) checkItem(
	ctx context.Context,
	vehicleID, stationID uint,
	pair HandInPair,
	seenSlots, seenBatteries map[uint]bool,
) ItemResult {
	item := ItemResult{SlotID: pair.SlotID, BatteryID: pair.BatteryID}

	// 同一请求内仓位/电池不允许重复出现
	if seenSlots[pair.SlotID] {
		return invalidItem(item, swap.ErrSlotNotAvailable)
	}
	if seenBatteries[pair.BatteryID] {
		return invalidItem(item, swap.ErrBatteryNotOwned)
	}
	seenSlots[pair.SlotID] = true
	seenBatteries[pair.BatteryID] = true

	// 仓位:存在、属于本站、空仓
	slot, err := uc.stationRepo.FindSlotByID(ctx, pair.SlotID)
	if err != nil {
		if errors.Is(err, station.ErrSlotNotFound) {
			return invalidItem(item, swap.ErrSlotNotAvailable)
		}
		return invalidItem(item, apperrors.GetAppError(err))
	}
	if !slot.BelongsToStation(stationID) || !slot.IsEmpty() {
		return invalidItem(item, swap.ErrSlotNotAvailable)
	}

	// 电池:存在且挂在本车上(不存在同样归为"不属于该车辆")
	b, err := uc.batteryRepo.FindByID(ctx, pair.BatteryID)
	if err != nil {
		if errors.Is(err, battery.ErrBatteryNotFound) {
			return invalidItem(item, swap.ErrBatteryNotOwned)
		}
		return invalidItem(item, apperrors.GetAppError(err))
	}
	if !b.IsOwnedBy(vehicleID) {
		return invalidItem(item, swap.ErrBatteryNotOwned)
	}

	item.Valid = true
	item.PostStatus = string(station.StatusForHandIn(b.SOH))
	return item
}

func invalidItem(item ItemResult, appErr *apperrors.AppError) ItemResult {
	item.Valid = false
	item.Reason = appErr.Code
	item.Message = appErr.Message
	return item
}
