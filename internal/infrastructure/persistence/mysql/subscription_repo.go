package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linhai/battswap/internal/domain/subscription"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// subscriptionRepository 套餐仓储实现(MySQL)
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建套餐仓储
func NewSubscriptionRepository(db *gorm.DB) subscription.Repository {
	return &subscriptionRepository{db: db}
}

// FindActiveByVehicle 查找车辆当前生效的套餐
// 没有生效套餐时返回(nil, nil),用量核算据此静默跳过
func (r *subscriptionRepository) FindActiveByVehicle(ctx context.Context, vehicleID uint) (*subscription.Subscription, error) {
	return r.findActive(r.getDB(ctx), vehicleID)
}

// LockActiveByVehicle 悲观锁版本,必须在事务内调用
// 锁住套餐行,防止并发换电对同一计数器的累加互相覆盖
func (r *subscriptionRepository) LockActiveByVehicle(ctx context.Context, vehicleID uint) (*subscription.Subscription, error) {
	db := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findActive(db, vehicleID)
}

// findActive 按状态+日期区间筛选生效套餐
// 走idx_vehicle_status复合索引,日期区间在少量候选行上过滤
func (r *subscriptionRepository) findActive(db *gorm.DB, vehicleID uint) (*subscription.Subscription, error) {
	now := time.Now()

	var model SubscriptionModel
	err := db.
		Where("vehicle_id = ? AND status = ?", vehicleID, string(subscription.StatusActive)).
		Where("start_date <= ? AND end_date > ?", now, now).
		Order("end_date DESC").
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 无生效套餐不是错误
		}
		return nil, apperrors.Wrap(err, "查询套餐失败")
	}

	return toSubscriptionEntity(&model), nil
}

// AddUsage 原子累加用量计数器
// 单条UPDATE带表达式,累加本身不依赖先读后写
func (r *subscriptionRepository) AddUsage(ctx context.Context, id uint, sohDelta, swapCount int) error {
	result := r.getDB(ctx).Model(&SubscriptionModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"soh_usage":  gorm.Expr("soh_usage + ?", sohDelta),
			"swap_count": gorm.Expr("swap_count + ?", swapCount),
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "累加套餐用量失败")
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	return nil
}

// toSubscriptionEntity 模型转领域实体
func toSubscriptionEntity(m *SubscriptionModel) *subscription.Subscription {
	return &subscription.Subscription{
		ID:        m.ID,
		VehicleID: m.VehicleID,
		Status:    subscription.Status(m.Status),
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		SOHUsage:  m.SOHUsage,
		SwapCount: m.SwapCount,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *subscriptionRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromCtx(ctx, r.db)
}
