package battery

import (
	"context"
)

// Repository 电池仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 位置写入方法(AttachToVehicle/PlaceInSlot)必须把两个位置字段
//    放在同一条UPDATE里配对更新,保证互斥不变量在持久层同样成立
// 3. 支持事务操作(通过context传递事务)
type Repository interface {
	// FindByID 根据ID查找电池
	FindByID(ctx context.Context, id uint) (*Battery, error)

	// FindBySerial 根据序列号查找电池
	FindBySerial(ctx context.Context, serialNo string) (*Battery, error)

	// FindByVehicle 查询车辆当前携带的全部电池
	FindByVehicle(ctx context.Context, vehicleID uint) ([]*Battery, error)

	// FindEligibleAtStation 查询站点内可出仓的电池
	// 条件:在本站非locked且有电池的仓位中、型号匹配、SOC>=EligibleSOCMin
	// 排序:SOC降序,仓位ID升序(保证确定性)
	// lock=true时使用SELECT FOR UPDATE锁定电池行(执行器事务内复选用)
	// 返回数量允许少于limit,是否视为缺货由调用方决定
	FindEligibleAtStation(ctx context.Context, stationID, classID uint, limit int, lock bool) ([]*Battery, error)

	// LockByID 悲观锁查询电池(SELECT FOR UPDATE,必须在事务内调用)
	LockByID(ctx context.Context, id uint) (*Battery, error)

	// AttachToVehicle 持久化"电池挂车":vehicle_id=车辆,slot_id=NULL
	AttachToVehicle(ctx context.Context, batteryID, vehicleID uint) error

	// PlaceInSlot 持久化"电池入仓":slot_id=仓位,vehicle_id=NULL
	PlaceInSlot(ctx context.Context, batteryID, slotID uint) error
}
