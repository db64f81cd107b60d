package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linhai/battswap/internal/infrastructure/persistence/redis"
	apperrors "github.com/linhai/battswap/pkg/errors"
	"github.com/linhai/battswap/pkg/jwt"
	"github.com/linhai/battswap/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明:
// 1. 从Header提取Token并验证
// 2. 检查Token吊销名单(司机登出或账号冻结后强制失效)
// 3. 将司机ID注入Context,后续Handler通过MustGetDriverID读取
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	tokenStore *redis.TokenStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, tokenStore *redis.TokenStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		tokenStore: tokenStore,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeUnauthorized, "请先登录")
			c.Abort()
			return
		}

		// 格式:Authorization: Bearer <token>
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}
		tokenString := parts[1]

		revoked, err := m.tokenStore.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeRedisError, "验证Token失败")
			c.Abort()
			return
		}
		if revoked {
			response.ErrorWithCode(c, apperrors.ErrCodeTokenExpired, "Token已失效,请重新登录")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("driver_id", claims.DriverID)
		c.Set("phone", claims.Phone)
		c.Next()
	}
}

// GetDriverID 从Context获取当前登录司机ID,未登录返回0
func GetDriverID(c *gin.Context) uint {
	if driverID, exists := c.Get("driver_id"); exists {
		if id, ok := driverID.(uint); ok {
			return id
		}
	}
	return 0
}

// MustGetDriverID 从Context获取司机ID
// 只允许在RequireAuth之后的Handler里调用
func MustGetDriverID(c *gin.Context) uint {
	driverID := GetDriverID(c)
	if driverID == 0 {
		panic("driver_id not found in context")
	}
	return driverID
}
