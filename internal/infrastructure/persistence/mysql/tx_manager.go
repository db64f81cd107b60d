package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/linhai/battswap/pkg/errors"
)

// TxManager 事务管理器
// 设计说明:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 换电事务带整体超时:拿不到行锁的事务在txTimeout内失败返回,
//    超时/死锁统一转成PersistenceError抛给调用方,不允许无限等待
type TxManager struct {
	db        *gorm.DB
	txTimeout time.Duration
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB, txTimeout time.Duration) *TxManager {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &TxManager{db: db, txTimeout: txTimeout}
}

// txKey 事务在context中的键
// 使用私有类型避免与其他包的context键冲突
type txKey struct{}

// Transaction 执行事务
// 设计说明:
// 1. fn函数内的所有Repository操作都会在同一事务中执行
// 2. fn返回error时自动ROLLBACK,返回nil时自动COMMIT
// 3. 通过context.WithValue传递事务DB,Repository的getDB方法从context提取
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    // 1. 锁定仓位与电池
//	    slot, err := stationRepo.LockSlotByID(ctx, slotID)
//	    if err != nil {
//	        return err
//	    }
//	    // 2. 电池入仓
//	    err = batteryRepo.PlaceInSlot(ctx, batteryID, slotID)
//	    return err // nil则提交,非nil则回滚
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// 整体超时:覆盖行锁等待与提交
	ctx, cancel := context.WithTimeout(ctx, m.txTimeout)
	defer cancel()

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
	if err == nil {
		return nil
	}

	// 业务错误原样上抛,系统性失败(超时/死锁/连接)统一归入持久化错误
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, "事务等待行锁超时")
	}
	return apperrors.Wrap(err, "事务执行失败")
}

// dbFromCtx 从context获取事务DB,如果没有则使用默认DB
// 各Repository的getDB方法统一委托这里
// 事务DB自带事务context,非事务路径补挂请求context
func dbFromCtx(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
