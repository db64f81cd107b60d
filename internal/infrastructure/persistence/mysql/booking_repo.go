package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linhai/battswap/internal/domain/booking"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// bookingRepository 预约仓储实现(MySQL)
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预约仓储
func NewBookingRepository(db *gorm.DB) booking.Repository {
	return &bookingRepository{db: db}
}

// FindByID 根据ID查找预约(含电池明细)
func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*booking.Booking, error) {
	return r.find(r.getDB(ctx), id)
}

// LockByID 悲观锁查询预约,必须在事务内调用
// FOR UPDATE只锁bookings主表行,明细行经由主表行串行化访问
func (r *bookingRepository) LockByID(ctx context.Context, id uint) (*booking.Booking, error) {
	db := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.find(db, id)
}

func (r *bookingRepository) find(db *gorm.DB, id uint) (*booking.Booking, error) {
	var model BookingModel
	err := db.Preload("Batteries").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, apperrors.Wrap(err, "查询预约失败")
	}

	return toBookingEntity(&model), nil
}

// UpdateStatus 更新预约状态
// 状态机校验在领域层完成,这里只落库
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uint, to booking.Status) error {
	result := r.getDB(ctx).Model(&BookingModel{}).
		Where("id = ?", id).
		Update("status", string(to))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新预约状态失败")
	}
	if result.RowsAffected == 0 {
		return booking.ErrBookingNotFound
	}

	return nil
}

// toBookingEntity 模型转领域实体
func toBookingEntity(m *BookingModel) *booking.Booking {
	batteries := make([]booking.BookingBattery, len(m.Batteries))
	for i, bm := range m.Batteries {
		batteries[i] = booking.BookingBattery{
			ID:        bm.ID,
			BookingID: bm.BookingID,
			BatteryID: bm.BatteryID,
			SlotID:    bm.SlotID,
		}
	}

	return &booking.Booking{
		ID:        m.ID,
		BookingNo: m.BookingNo,
		DriverID:  m.DriverID,
		VehicleID: m.VehicleID,
		StationID: m.StationID,
		Status:    booking.Status(m.Status),
		Batteries: batteries,
		ExpireAt:  m.ExpireAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *bookingRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromCtx(ctx, r.db)
}
