package subscription

import (
	"time"
)

// Status 套餐状态
type Status string

const (
	StatusActive  Status = "active"  // 生效中
	StatusExpired Status = "expired" // 已过期
	StatusFrozen  Status = "frozen"  // 冻结(欠费等)
)

// Subscription 换电套餐(订阅)实体
// 设计说明:
// 1. 一辆车同一时刻最多一个active套餐(状态+日期区间共同约束)
// 2. SOHUsage/SwapCount是累计计数器,只由用量核算在换电事务内累加
// 3. 负的SOH差值照常累加,不做拒绝(容忍传感器噪声,与上游行为一致)
type Subscription struct {
	ID        uint
	VehicleID uint
	Status    Status
	StartDate time.Time
	EndDate   time.Time
	SOHUsage  int // 累计SOH消耗(百分点)
	SwapCount int // 累计换电次数(按电池块数计)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive 套餐在指定时刻是否生效
func (s *Subscription) IsActive(at time.Time) bool {
	return s.Status == StatusActive && !at.Before(s.StartDate) && at.Before(s.EndDate)
}

// AddUsage 累加用量计数器
func (s *Subscription) AddUsage(sohDelta, swapCount int) {
	s.SOHUsage += sohDelta
	s.SwapCount += swapCount
	s.UpdatedAt = time.Now()
}
