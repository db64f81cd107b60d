package booking

import (
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// 预约领域错误定义
var (
	// ErrBookingNotFound 预约不存在
	ErrBookingNotFound = apperrors.New(apperrors.ErrCodeBookingNotFound, "预约不存在")

	// ErrBookingNotActive 预约状态不允许此操作
	ErrBookingNotActive = apperrors.New(apperrors.ErrCodeBookingNotActive, "预约状态不允许此操作")
)
