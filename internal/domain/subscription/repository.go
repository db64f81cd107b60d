package subscription

import (
	"context"
)

// Repository 套餐仓储接口
// 套餐的创建/续费属于计费子系统,本核心只读取active套餐并累加计数器
type Repository interface {
	// FindActiveByVehicle 查找车辆当前生效的套餐
	// 没有生效套餐时返回(nil, nil),不视为错误(用量核算静默跳过)
	FindActiveByVehicle(ctx context.Context, vehicleID uint) (*Subscription, error)

	// LockActiveByVehicle 悲观锁版本(SELECT FOR UPDATE,必须在事务内调用)
	// 防止并发换电对同一套餐的计数器累加互相覆盖
	LockActiveByVehicle(ctx context.Context, vehicleID uint) (*Subscription, error)

	// AddUsage 原子累加用量计数器
	// UPDATE subscriptions SET soh_usage = soh_usage + ?, swap_count = swap_count + ?
	AddUsage(ctx context.Context, id uint, sohDelta, swapCount int) error
}
