package vehicle

import (
	"time"
)

// VehicleClass 车型
// 车型固定了该车使用的电池型号和电池仓数量(1个或多个)
type VehicleClass struct {
	ID             uint
	Name           string
	BatteryClassID uint // 该车型使用的电池型号
	BatterySlots   int  // 整车电池仓数量,>=1
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Vehicle 车辆实体
// 设计说明:
// 1. 车辆不直接持有电池列表,车上的电池是vehicle_id等于本车的Battery行
//    (避免双向对象指针,按外键引用+索引查询建模)
// 2. ClassID决定电池型号与可携带数量,校验器据此做数量上限检查
type Vehicle struct {
	ID        uint
	DriverID  uint   // 车主司机
	ClassID   uint   // 车型
	PlateNo   string // 车牌号
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy 车辆是否属于指定司机
func (v *Vehicle) IsOwnedBy(driverID uint) bool {
	return v.DriverID == driverID
}
