package swap

import (
	"time"
)

// Record 换电记录(不可变审计行)
// 设计说明:
// 1. 每物理交换一块电池生成一条记录,创建后永不更新、永不删除
// 2. BatteryInID/SOHIn可空:仅首次领电(车上还没有电池)时为空
// 3. SOHIn/SOHOut是交换时刻的健康度快照,用量核算依赖这两个快照
//    (与"下单价格快照"同理,防止后续遥测更新污染历史账目)
type Record struct {
	ID           uint
	RecordNo     string // 换电单号(业务主键,全局唯一)
	DriverID     uint
	VehicleID    uint
	StationID    uint
	BatteryInID  *uint // 归还电池,首次领电为空
	BatteryOutID uint  // 发出电池
	SOHIn        *int  // 归还电池交换时刻SOH,首次领电为空
	SOHOut       int   // 发出电池交换时刻SOH
	SwappedAt    time.Time
}

// IsFirstPickup 是否首次领电记录(无归还侧)
func (r *Record) IsFirstPickup() bool {
	return r.BatteryInID == nil
}

// NewRecord 创建普通换电记录(工厂方法)
func NewRecord(recordNo string, driverID, vehicleID, stationID uint, batteryInID uint, sohIn int, batteryOutID uint, sohOut int, at time.Time) *Record {
	return &Record{
		RecordNo:     recordNo,
		DriverID:     driverID,
		VehicleID:    vehicleID,
		StationID:    stationID,
		BatteryInID:  &batteryInID,
		BatteryOutID: batteryOutID,
		SOHIn:        &sohIn,
		SOHOut:       sohOut,
		SwappedAt:    at,
	}
}

// NewFirstPickupRecord 创建首次领电记录(无归还侧)
func NewFirstPickupRecord(recordNo string, driverID, vehicleID, stationID uint, batteryOutID uint, sohOut int, at time.Time) *Record {
	return &Record{
		RecordNo:     recordNo,
		DriverID:     driverID,
		VehicleID:    vehicleID,
		StationID:    stationID,
		BatteryOutID: batteryOutID,
		SOHOut:       sohOut,
		SwappedAt:    at,
	}
}
