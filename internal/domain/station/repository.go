package station

import (
	"context"
)

// Repository 站点/仓位仓储接口
// 设计说明:
// 1. 仓位查询统一JOIN电柜表回填StationID,领域层拿到的仓位自带归属站点
// 2. 仓位状态写入走UpdateSlotStatus,执行器事务内先LockSlotByID再写
type Repository interface {
	// FindStationByID 根据ID查找站点
	FindStationByID(ctx context.Context, id uint) (*Station, error)

	// FindSlotByID 根据ID查找仓位(含归属站点)
	FindSlotByID(ctx context.Context, id uint) (*CabinetSlot, error)

	// LockSlotByID 悲观锁查询仓位(SELECT FOR UPDATE,必须在事务内调用)
	LockSlotByID(ctx context.Context, id uint) (*CabinetSlot, error)

	// LockSlotsByIDs 批量悲观锁查询仓位
	// 按仓位ID升序加锁,固定加锁顺序避免并发换电互相死锁
	LockSlotsByIDs(ctx context.Context, ids []uint) ([]*CabinetSlot, error)

	// UpdateSlotStatus 更新仓位状态
	UpdateSlotStatus(ctx context.Context, slotID uint, to SlotStatus) error

	// CountResidentBatteries 统计站点内在仓电池总数(对账/守恒校验用)
	CountResidentBatteries(ctx context.Context, stationID uint) (int64, error)
}
