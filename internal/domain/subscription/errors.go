package subscription

import (
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// 套餐领域错误定义
var (
	// ErrSubscriptionNotFound 套餐不存在
	ErrSubscriptionNotFound = apperrors.New(apperrors.ErrCodeSubscriptionNotFound, "套餐不存在")
)
