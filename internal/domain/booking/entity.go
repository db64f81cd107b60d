package booking

import (
	"time"
)

// Status 预约状态
type Status string

const (
	StatusActive    Status = "active"    // 已预约,电池已锁仓
	StatusCompleted Status = "completed" // 已到店完成换电
	StatusCancelled Status = "cancelled" // 已取消,仓位已解锁
	StatusExpired   Status = "expired"   // 超时未到店,仓位已解锁
)

// AllowTransition 预约状态机
// active是唯一的非终态,completed/cancelled/expired均为终态
var AllowTransition = map[Status][]Status{
	StatusActive:    {StatusCompleted, StatusCancelled, StatusExpired},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusExpired:   {},
}

// CanTransition 判断from -> to是否是允许的状态流转
func CanTransition(from, to Status) bool {
	for _, s := range AllowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Booking 换电预约(聚合根)
// 设计说明:
// 1. 预约创建时把选中电池的仓位置为locked,保证到店时电池还在
// 2. Batteries是预约锁定的电池明细(聚合内子实体)
// 3. 预约的创建/超时扫描属于预约子系统,本核心消费已锁定的预约,
//    在预约换电成功时置completed,取消时负责解锁仓位
type Booking struct {
	ID        uint
	BookingNo string // 预约单号(业务主键,全局唯一)
	DriverID  uint
	VehicleID uint
	StationID uint
	Status    Status
	Batteries []BookingBattery // 预约锁定的电池明细
	ExpireAt  time.Time        // 超时时刻
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingBattery 预约电池明细
// 记录预约时电池所在的仓位,完成换电时按此明细核对电池仍在仓
type BookingBattery struct {
	ID        uint
	BookingID uint
	BatteryID uint
	SlotID    uint // 预约时电池所在仓位
}

// IsActive 预约是否仍在生效
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// TransitionTo 按状态机规则变更预约状态
func (b *Booking) TransitionTo(to Status) error {
	if !CanTransition(b.Status, to) {
		return ErrBookingNotActive
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

// Complete 完成预约(领域行为)
func (b *Booking) Complete() error {
	return b.TransitionTo(StatusCompleted)
}

// Cancel 取消预约(领域行为)
func (b *Booking) Cancel() error {
	return b.TransitionTo(StatusCancelled)
}

// BatteryIDs 预约锁定的全部电池ID
func (b *Booking) BatteryIDs() []uint {
	ids := make([]uint, len(b.Batteries))
	for i, bb := range b.Batteries {
		ids[i] = bb.BatteryID
	}
	return ids
}
