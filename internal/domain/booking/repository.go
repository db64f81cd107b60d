package booking

import (
	"context"
)

// Repository 预约仓储接口
type Repository interface {
	// FindByID 根据ID查找预约(含电池明细)
	FindByID(ctx context.Context, id uint) (*Booking, error)

	// LockByID 悲观锁查询预约(SELECT FOR UPDATE,必须在事务内调用)
	// 防止同一预约被并发核销两次
	LockByID(ctx context.Context, id uint) (*Booking, error)

	// UpdateStatus 更新预约状态
	UpdateStatus(ctx context.Context, id uint, to Status) error
}
