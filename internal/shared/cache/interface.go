// Package cache 缓存层抽象接口
//
// 为严格重校验模式提供用户摘要的短 TTL 缓存，当前由 Redis 实现。
// 缓存只是加速：取不到或出错时调用方直接回源存储。
package cache

import (
	"context"

	"moderation-admin/internal/shared/model"
)

// UserSummaryCache 用户摘要缓存接口
//
// 严格重校验模式下，认证中间件每个请求都要读取用户当前角色与状态；
// 短 TTL 缓存把回源频率限制在 TTL 粒度内。管理员修改状态或删除账号
// 时必须调用 Invalidate，保证封禁在缓存过期前生效。
type UserSummaryCache interface {
	GetUserSummary(ctx context.Context, userID string) (*model.UserSummary, error)
	SetUserSummary(ctx context.Context, summary *model.UserSummary) error
	InvalidateUserSummary(ctx context.Context, userID string) error
}

// Cache 缓存组合接口
type Cache interface {
	UserSummaryCache
	Close() error
}
