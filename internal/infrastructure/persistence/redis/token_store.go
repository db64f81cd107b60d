package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/linhai/battswap/pkg/errors"
)

// TokenStore 吊销Token存储
// 设计说明：
// 1. JWT本身无状态,司机退出登录或账号风控封禁后,
//    已签发的Token需要主动失效,靠Redis记录吊销名单
// 2. Key设计：revoked:{token},TTL取Token剩余有效期,到期自动清理
// 3. 换电请求的鉴权中间件在校验签名之后再查一次吊销名单
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore 创建吊销Token存储
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Revoke 吊销Token
// ttl应取Token的剩余有效期,过期后名单项自动删除
func (s *TokenStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	key := fmt.Sprintf("revoked:%s", token)

	if err := s.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "吊销Token失败")
	}

	return nil
}

// IsRevoked 检查Token是否已被吊销
func (s *TokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("revoked:%s", token)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查Token吊销状态失败")
	}

	return exists > 0, nil
}
