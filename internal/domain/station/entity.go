package station

import (
	"time"

	"github.com/linhai/battswap/internal/domain/battery"
)

// SlotStatus 仓位状态(持久化为字符串)
type SlotStatus string

const (
	SlotStatusEmpty    SlotStatus = "empty"    // 空仓,无电池
	SlotStatusCharging SlotStatus = "charging" // 有电池,充电中
	SlotStatusCharged  SlotStatus = "charged"  // 有电池,已充满
	SlotStatusFaulty   SlotStatus = "faulty"   // 有电池,判定故障,待运维下架
	SlotStatusLocked   SlotStatus = "locked"   // 有电池,已被预约锁定,不参与选仓
)

// AllowTransition 仓位状态机的允许流转关系
// 设计说明:
// 1. empty只能通过电池入仓离开(charging或faulty,由归还电池SOH决定)
// 2. 电池出仓的来源仓位回到empty
// 3. locked与charged可以互转(预约锁定/取消)
// 4. faulty只能由运维取出电池后回到empty
var AllowTransition = map[SlotStatus][]SlotStatus{
	SlotStatusEmpty:    {SlotStatusCharging, SlotStatusFaulty},
	SlotStatusCharging: {SlotStatusCharged, SlotStatusFaulty, SlotStatusEmpty},
	SlotStatusCharged:  {SlotStatusLocked, SlotStatusEmpty},
	SlotStatusLocked:   {SlotStatusCharged, SlotStatusEmpty},
	SlotStatusFaulty:   {SlotStatusEmpty},
}

// CanTransition 判断from -> to是否是允许的状态流转
func CanTransition(from, to SlotStatus) bool {
	if from == to {
		return true
	}
	for _, s := range AllowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HoldsBattery 该状态下仓位是否持有电池
// 不变量:empty当且仅当没有电池引用该仓位
func (s SlotStatus) HoldsBattery() bool {
	return s != SlotStatusEmpty
}

// StatusForHandIn 根据归还电池的SOH计算入仓后的仓位状态
// SOH低于阈值判定故障,否则进入充电
func StatusForHandIn(soh int) SlotStatus {
	if soh < battery.FaultySOHMax {
		return SlotStatusFaulty
	}
	return SlotStatusCharging
}

// Station 换电站实体
type Station struct {
	ID        uint
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cabinet 电柜实体,隶属于唯一站点
type Cabinet struct {
	ID        uint
	StationID uint
	SerialNo  string // 电柜出厂序列号
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CabinetSlot 仓位实体
// 设计说明:
// 1. 隶属于唯一电柜,StationID为查询时冗余填充的归属站点
//    (仓位->电柜->站点不是真正的环,按外键引用建模,见repository)
// 2. 状态只允许通过MarkStatus修改,非法流转直接拒绝
type CabinetSlot struct {
	ID        uint
	CabinetID uint
	StationID uint   // 冗余:所属站点(由仓储JOIN填充,不落库)
	Number    int    // 仓位在电柜内的编号,从1开始
	Status    SlotStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkStatus 按状态机规则变更仓位状态
func (s *CabinetSlot) MarkStatus(to SlotStatus) error {
	if !CanTransition(s.Status, to) {
		return ErrInvalidSlotTransition
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	return nil
}

// IsEmpty 仓位当前是否为空仓
func (s *CabinetSlot) IsEmpty() bool {
	return s.Status == SlotStatusEmpty
}

// AvailableForHandOut 仓位内电池是否允许被选仓发出
// locked仓位的电池已被预约,不参与其他换电的选仓
func (s *CabinetSlot) AvailableForHandOut() bool {
	return s.Status == SlotStatusCharged || s.Status == SlotStatusCharging
}

// BelongsToStation 仓位是否属于指定站点
func (s *CabinetSlot) BelongsToStation(stationID uint) bool {
	return s.StationID == stationID
}
