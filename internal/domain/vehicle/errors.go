package vehicle

import (
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// 车辆领域错误定义
var (
	// ErrVehicleNotFound 车辆不存在
	ErrVehicleNotFound = apperrors.New(apperrors.ErrCodeVehicleNotFound, "车辆不存在")

	// ErrClassNotFound 车型不存在
	ErrClassNotFound = apperrors.New(apperrors.ErrCodeVehicleNotFound, "车型不存在")
)
