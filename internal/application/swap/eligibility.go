package swap

import (
	"context"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/vehicle"
)

// PreviewEligibilityUseCase 选仓预览用例
// 司机到站前在App上看"这个站还有几块满电电池",纯咨询性读取,
// 结果不做任何预留,真正换电时执行器会在事务内重新选仓
type PreviewEligibilityUseCase struct {
	stationRepo station.Repository
	vehicleRepo vehicle.Repository
	selector    *EligibilitySelector
}

// NewPreviewEligibilityUseCase 创建选仓预览用例
func NewPreviewEligibilityUseCase(
	stationRepo station.Repository,
	vehicleRepo vehicle.Repository,
	selector *EligibilitySelector,
) *PreviewEligibilityUseCase {
	return &PreviewEligibilityUseCase{
		stationRepo: stationRepo,
		vehicleRepo: vehicleRepo,
		selector:    selector,
	}
}

// PreviewEligibilityRequest 选仓预览请求
type PreviewEligibilityRequest struct {
	StationID uint
	VehicleID uint // 用车辆反查电池型号与仓数
}

// EligibleBattery 可出仓电池视图
type EligibleBattery struct {
	BatteryID uint   `json:"battery_id"`
	SerialNo  string `json:"serial_no"`
	SlotID    uint   `json:"slot_id"`
	SOC       int    `json:"soc"`
	SOH       int    `json:"soh"`
}

// PreviewEligibilityResponse 选仓预览响应
type PreviewEligibilityResponse struct {
	StationID uint              `json:"station_id"`
	Quantity  int               `json:"quantity"`
	Batteries []EligibleBattery `json:"batteries"`
}

// Execute 执行选仓预览
// 最多返回车型仓数块电池(整车满换的需求上限)
func (uc *PreviewEligibilityUseCase) Execute(ctx context.Context, req PreviewEligibilityRequest) (*PreviewEligibilityResponse, error) {
	if _, err := uc.stationRepo.FindStationByID(ctx, req.StationID); err != nil {
		return nil, err
	}

	v, err := uc.vehicleRepo.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	class, err := uc.vehicleRepo.FindClassByID(ctx, v.ClassID)
	if err != nil {
		return nil, err
	}

	batteries, err := uc.selector.Select(ctx, req.StationID, class.BatteryClassID, class.BatterySlots, false)
	if err != nil {
		return nil, err
	}

	items := make([]EligibleBattery, len(batteries))
	for i, b := range batteries {
		items[i] = toEligibleBattery(b)
	}

	return &PreviewEligibilityResponse{
		StationID: req.StationID,
		Quantity:  len(items),
		Batteries: items,
	}, nil
}

func toEligibleBattery(b *battery.Battery) EligibleBattery {
	var slotID uint
	if b.SlotID != nil {
		slotID = *b.SlotID
	}
	return EligibleBattery{
		BatteryID: b.ID,
		SerialNo:  b.SerialNo,
		SlotID:    slotID,
		SOC:       b.SOC,
		SOH:       b.SOH,
	}
}
