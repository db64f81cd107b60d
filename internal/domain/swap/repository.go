package swap

import (
	"context"
	"time"
)

// Repository 换电记录仓储接口
// 记录只增不改,接口上不提供Update/Delete
type Repository interface {
	// Create 创建换电记录(必须在执行器事务内调用)
	Create(ctx context.Context, r *Record) error

	// FindPrevHandOut 查找某电池在严格早于before时刻、
	// 为同一车辆作为battery_out发出的最近一条记录
	// 没有匹配记录时返回(nil, nil),不视为错误(用量核算据此跳过差值)
	FindPrevHandOut(ctx context.Context, batteryID, vehicleID uint, before time.Time) (*Record, error)

	// ListByVehicle 分页查询车辆的换电历史,按时间降序
	ListByVehicle(ctx context.Context, vehicleID uint, page, pageSize int) ([]*Record, int64, error)

	// ListByDriver 分页查询司机的换电历史,按时间降序
	ListByDriver(ctx context.Context, driverID uint, page, pageSize int) ([]*Record, int64, error)
}
