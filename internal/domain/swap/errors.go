package swap

import (
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// 换电领域错误定义
// 设计说明:执行类错误整单回滚后原样抛给调用方;
// 校验类错误(BatteryNotOwned/SlotNotAvailable)还会进入逐项校验报告
var (
	// ErrBatteryNotOwned 归还电池不属于该车辆
	ErrBatteryNotOwned = apperrors.New(apperrors.ErrCodeBatteryNotOwned, "电池不属于该车辆")

	// ErrSlotNotAvailable 目标仓位不存在、不属于该站点或非空仓
	ErrSlotNotAvailable = apperrors.New(apperrors.ErrCodeSlotNotAvailable, "仓位不可用")

	// ErrQuantityMismatch 归还数量与请求数量不符,或超过车型电池仓数
	ErrQuantityMismatch = apperrors.New(apperrors.ErrCodeQuantityMismatch, "交换数量不匹配")

	// ErrInsufficientStock 站点满电电池不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "站点满电电池不足")

	// ErrBookingBatteryUnavailable 预约电池已不在可用仓位中
	ErrBookingBatteryUnavailable = apperrors.New(apperrors.ErrCodeBookingBatteryUnavail, "预约电池已不可用")

	// ErrRecordNotFound 换电记录不存在
	ErrRecordNotFound = apperrors.New(apperrors.ErrCodeSwapRecordNotFound, "换电记录不存在")
)
