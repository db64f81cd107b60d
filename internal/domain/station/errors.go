package station

import (
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// 站点领域错误定义
var (
	// ErrStationNotFound 站点不存在
	ErrStationNotFound = apperrors.New(apperrors.ErrCodeStationNotFound, "站点不存在")

	// ErrSlotNotFound 仓位不存在
	ErrSlotNotFound = apperrors.New(apperrors.ErrCodeSlotNotFound, "仓位不存在")

	// ErrInvalidSlotTransition 非法的仓位状态流转
	ErrInvalidSlotTransition = apperrors.New(apperrors.ErrCodeInvalidTransition, "仓位状态不允许此操作")

	// ErrSlotNotEmpty 仓位非空,不能释放
	ErrSlotNotEmpty = apperrors.New(apperrors.ErrCodeSlotNotAvailable, "仓位内仍有电池")
)
