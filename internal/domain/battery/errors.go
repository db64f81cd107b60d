package battery

import (
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// 电池领域错误定义
var (
	// ErrBatteryNotFound 电池不存在
	ErrBatteryNotFound = apperrors.New(apperrors.ErrCodeBatteryNotFound, "电池不存在")

	// ErrLocationConflict 位置互斥不变量被破坏(同时在车上和仓位,或两者皆空)
	ErrLocationConflict = apperrors.New(apperrors.ErrCodeBatteryLocationConflict, "电池位置数据异常")

	// ErrInvalidTransition 非法的位置流转(如故障电池挂车)
	ErrInvalidTransition = apperrors.New(apperrors.ErrCodeInvalidTransition, "电池状态不允许此操作")
)
