package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、行锁超时）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodePersistence,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodePersistence,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、事务/行锁失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal    = 50000 // 内部错误
	ErrCodePersistence = 50001 // 持久化错误（事务失败、行锁超时）
	ErrCodeRedisError  = 50002 // Redis错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期
	ErrCodeForbidden    = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound             = 40400 // 资源不存在(通用)
	ErrCodeBatteryNotFound      = 40401 // 电池不存在
	ErrCodeSlotNotFound         = 40402 // 仓位不存在
	ErrCodeStationNotFound      = 40403 // 站点不存在
	ErrCodeVehicleNotFound      = 40404 // 车辆不存在
	ErrCodeBookingNotFound      = 40405 // 预约不存在
	ErrCodeSubscriptionNotFound = 40406 // 套餐不存在
	ErrCodeSwapRecordNotFound   = 40407 // 换电记录不存在

	// 换电业务规则错误（40000-40099）
	ErrCodeBusinessErrorTotal      = 40000 // 业务错误(通用)
	ErrCodeBatteryNotOwned         = 40001 // 电池不属于该车辆
	ErrCodeSlotNotAvailable        = 40002 // 仓位不可用
	ErrCodeQuantityMismatch        = 40003 // 交换数量不匹配
	ErrCodeInsufficientStock       = 40004 // 满电电池库存不足
	ErrCodeBookingBatteryUnavail   = 40005 // 预约电池已不可用
	ErrCodeInvalidTransition       = 40006 // 非法的状态流转
	ErrCodeBookingNotActive        = 40007 // 预约状态不允许此操作
	ErrCodeBatteryLocationConflict = 40008 // 电池位置冲突（同时在车和仓位）

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal    = New(ErrCodeInternal, "系统内部错误")
	ErrPersistence = New(ErrCodePersistence, "持久化错误")
	ErrRedisError  = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "Token已过期")
	ErrForbidden    = New(ErrCodeForbidden, "无权限访问")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// CodeOf 提取错误的业务错误码（非AppError返回ErrCodeInternal）
// 用途：换电执行器按错误码区分失败原因，逐项校验报告也复用它
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
