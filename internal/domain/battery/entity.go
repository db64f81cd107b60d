package battery

import (
	"time"
)

// 换电业务的两个关键阈值
// 设计说明:
// 1. SOC/SOH统一用整数百分比存储(0-100),沿用"精确累加字段不用浮点"的约定
// 2. 阈值属于领域规则,放在领域层,基础设施层不允许自带判断
const (
	// EligibleSOCMin 可出仓电池的最低电量
	// 电量低于90的电池即使状态为charged也不允许发给司机
	EligibleSOCMin = 90

	// FaultySOHMax 判定故障的健康度上限
	// 归还电池SOH低于15时,所在仓位直接进入faulty状态,等待运维下架
	FaultySOHMax = 15
)

// Battery 电池实体(聚合根)
// 设计说明:
// 1. 位置互斥不变量:VehicleID与SlotID任意时刻有且只有一个非空
//    电池要么挂在车上,要么在仓位里充电,不存在"悬空"电池
// 2. 位置字段只允许通过AttachToVehicle/PlaceInSlot修改,
//    仓储层的位置写入必须走对应的配对更新(两个字段一条UPDATE)
// 3. SOC/SOH是可变遥测字段,由外部遥测链路更新,本核心只读取
type Battery struct {
	ID        uint
	SerialNo  string // 电池序列号(业务主键,全局唯一)
	ClassID   uint   // 电池型号ID(决定可服务的车型)
	VehicleID *uint  // 所在车辆(与SlotID互斥)
	SlotID    *uint  // 所在仓位(与VehicleID互斥)
	SOC       int    // 电量百分比 0-100
	SOH       int    // 健康度百分比 0-100,100为全新
	Faulty    bool   // 故障标记(协议层置位,置位后不允许再挂到车上)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OnVehicle 电池当前是否在车上
func (b *Battery) OnVehicle() bool {
	return b.VehicleID != nil
}

// InSlot 电池当前是否在仓位里
func (b *Battery) InSlot() bool {
	return b.SlotID != nil
}

// ValidateLocation 校验位置互斥不变量
// 有且只有一个位置引用非空,否则数据已经损坏
func (b *Battery) ValidateLocation() error {
	if b.VehicleID != nil && b.SlotID != nil {
		return ErrLocationConflict
	}
	if b.VehicleID == nil && b.SlotID == nil {
		return ErrLocationConflict
	}
	return nil
}

// IsOwnedBy 电池当前是否挂在指定车辆上
// 用途:校验器的归属检查,防止替别人的车还电池
func (b *Battery) IsOwnedBy(vehicleID uint) bool {
	return b.VehicleID != nil && *b.VehicleID == vehicleID
}

// AttachToVehicle 把电池挂到车辆上(清空仓位引用)
// 业务规则:故障电池不允许发车,调用方必须先检查Faulty标记
func (b *Battery) AttachToVehicle(vehicleID uint) error {
	if b.Faulty {
		return ErrInvalidTransition
	}
	b.VehicleID = &vehicleID
	b.SlotID = nil
	return nil
}

// PlaceInSlot 把电池放入仓位(清空车辆引用)
// 仓位状态由调用方根据SOH决定(charging或faulty),见station包
func (b *Battery) PlaceInSlot(slotID uint) {
	b.SlotID = &slotID
	b.VehicleID = nil
}

// EligibleForHandOut 电量是否达到出仓标准
func (b *Battery) EligibleForHandOut() bool {
	return b.SOC >= EligibleSOCMin
}

// FaultyOnHandIn 归还时是否应判定为故障
func (b *Battery) FaultyOnHandIn() bool {
	return b.SOH < FaultySOHMax
}
