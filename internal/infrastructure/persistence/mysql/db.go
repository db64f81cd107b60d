package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/linhai/battswap/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate，生产环境应使用版本化迁移脚本）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			// 配合MySQL的TZ=Asia/Shanghai
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 注意：AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&StationModel{},
		&CabinetModel{},
		&CabinetSlotModel{},
		&BatteryModel{},
		&VehicleClassModel{},
		&VehicleModel{},
		&SwapRecordModel{},
		&SubscriptionModel{},
		&BookingModel{},
		&BookingBatteryModel{},
	)
}

// =========================================
// GORM模型定义
// =========================================
// 设计说明:
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. internal/domain/*下是领域实体，不依赖GORM
// 3. 各Repository负责两者之间的转换

// StationModel GORM换电站模型
type StationModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null;comment:站点名称"`
	Address   string    `gorm:"size:255;comment:站点地址"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (StationModel) TableName() string {
	return "stations"
}

// CabinetModel GORM电柜模型
type CabinetModel struct {
	ID        uint      `gorm:"primaryKey"`
	StationID uint      `gorm:"index;not null;comment:所属站点ID"`
	SerialNo  string    `gorm:"uniqueIndex;size:32;not null;comment:电柜序列号"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CabinetModel) TableName() string {
	return "cabinets"
}

// CabinetSlotModel GORM仓位模型
// 设计说明:
// 1. status与电池的slot_id共同满足不变量:
//    empty当且仅当没有电池引用该仓位
// 2. (cabinet_id, number)唯一,电柜内仓位编号不重复
type CabinetSlotModel struct {
	ID        uint      `gorm:"primaryKey"`
	CabinetID uint      `gorm:"uniqueIndex:idx_cabinet_number;index;not null;comment:所属电柜ID"`
	Number    int       `gorm:"uniqueIndex:idx_cabinet_number;not null;comment:电柜内仓位编号"`
	Status    string    `gorm:"type:varchar(16);index;not null;default:'empty';comment:仓位状态"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CabinetSlotModel) TableName() string {
	return "cabinet_slots"
}

// BatteryModel GORM电池模型
// 设计说明:
// 1. vehicle_id/slot_id互斥可空:有且只有一个非空(位置互斥不变量)
// 2. slot_id唯一索引:一个仓位至多被一块电池引用
// 3. 选仓查询走(class_id, soc)复合索引
type BatteryModel struct {
	ID        uint      `gorm:"primaryKey"`
	SerialNo  string    `gorm:"uniqueIndex;size:32;not null;comment:电池序列号"`
	ClassID   uint      `gorm:"index:idx_class_soc;not null;comment:电池型号ID"`
	VehicleID *uint     `gorm:"index;comment:所在车辆ID(与slot_id互斥)"`
	SlotID    *uint     `gorm:"uniqueIndex;comment:所在仓位ID(与vehicle_id互斥)"`
	SOC       int       `gorm:"index:idx_class_soc;not null;default:0;comment:电量百分比"`
	SOH       int       `gorm:"not null;default:100;comment:健康度百分比"`
	Faulty    bool      `gorm:"not null;default:false;comment:故障标记"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BatteryModel) TableName() string {
	return "batteries"
}

// VehicleClassModel GORM车型模型
type VehicleClassModel struct {
	ID             uint      `gorm:"primaryKey"`
	Name           string    `gorm:"size:50;not null;comment:车型名称"`
	BatteryClassID uint      `gorm:"index;not null;comment:适配电池型号ID"`
	BatterySlots   int       `gorm:"not null;default:1;comment:整车电池仓数"`
	CreatedAt      time.Time `gorm:"comment:创建时间"`
	UpdatedAt      time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (VehicleClassModel) TableName() string {
	return "vehicle_classes"
}

// VehicleModel GORM车辆模型
type VehicleModel struct {
	ID        uint      `gorm:"primaryKey"`
	DriverID  uint      `gorm:"index;not null;comment:车主司机ID"`
	ClassID   uint      `gorm:"index;not null;comment:车型ID"`
	PlateNo   string    `gorm:"uniqueIndex;size:16;not null;comment:车牌号"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (VehicleModel) TableName() string {
	return "vehicles"
}

// SwapRecordModel GORM换电记录模型
// 设计说明:
// 1. 审计行只增不改,没有DeletedAt,也没有任何Update路径
// 2. 用量核算按(battery_out_id, vehicle_id, swapped_at)回查上一条发出记录
type SwapRecordModel struct {
	ID           uint      `gorm:"primaryKey"`
	RecordNo     string    `gorm:"uniqueIndex;size:32;not null;comment:换电单号"`
	DriverID     uint      `gorm:"index;not null;comment:司机ID"`
	VehicleID    uint      `gorm:"index;not null;comment:车辆ID"`
	StationID    uint      `gorm:"index;not null;comment:站点ID"`
	BatteryInID  *uint     `gorm:"index;comment:归还电池ID(首次领电为空)"`
	BatteryOutID uint      `gorm:"index:idx_out_vehicle_time;not null;comment:发出电池ID"`
	SOHIn        *int      `gorm:"comment:归还电池SOH快照"`
	SOHOut       int       `gorm:"not null;comment:发出电池SOH快照"`
	SwappedAt    time.Time `gorm:"index:idx_out_vehicle_time;index;not null;comment:交换时刻"`
}

// TableName 指定表名
func (SwapRecordModel) TableName() string {
	return "swap_records"
}

// SubscriptionModel GORM套餐模型
type SubscriptionModel struct {
	ID        uint      `gorm:"primaryKey"`
	VehicleID uint      `gorm:"index:idx_vehicle_status;not null;comment:车辆ID"`
	Status    string    `gorm:"type:varchar(16);index:idx_vehicle_status;not null;comment:套餐状态"`
	StartDate time.Time `gorm:"not null;comment:生效日期"`
	EndDate   time.Time `gorm:"not null;comment:失效日期"`
	SOHUsage  int       `gorm:"not null;default:0;comment:累计SOH消耗(百分点)"`
	SwapCount int       `gorm:"not null;default:0;comment:累计换电次数"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// BookingModel GORM预约模型
// 与BookingBatteryModel是一对多关系
type BookingModel struct {
	ID        uint                  `gorm:"primaryKey"`
	BookingNo string                `gorm:"uniqueIndex;size:32;not null;comment:预约单号"`
	DriverID  uint                  `gorm:"index;not null;comment:司机ID"`
	VehicleID uint                  `gorm:"index;not null;comment:车辆ID"`
	StationID uint                  `gorm:"index;not null;comment:站点ID"`
	Status    string                `gorm:"type:varchar(16);index;not null;comment:预约状态"`
	Batteries []BookingBatteryModel `gorm:"foreignKey:BookingID"` // 一对多关联
	ExpireAt  time.Time             `gorm:"index;not null;comment:超时时刻"`
	CreatedAt time.Time             `gorm:"comment:创建时间"`
	UpdatedAt time.Time             `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingBatteryModel GORM预约电池明细模型
type BookingBatteryModel struct {
	ID        uint `gorm:"primaryKey"`
	BookingID uint `gorm:"index;not null;comment:预约ID"`
	BatteryID uint `gorm:"index;not null;comment:锁定电池ID"`
	SlotID    uint `gorm:"not null;comment:预约时电池所在仓位ID"`
}

// TableName 指定表名
func (BookingBatteryModel) TableName() string {
	return "booking_batteries"
}
