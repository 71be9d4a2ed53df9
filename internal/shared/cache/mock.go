// Package cache 缓存层 mock 实现
package cache

import (
	"context"

	"moderation-admin/internal/shared/model"
)

// ============================================================================
// NoOpCache - 空操作的 Cache 实现（用于测试和无 Redis 部署）
// ============================================================================

// NoOpCache 是一个不做任何操作的 Cache 实现
// 所有读取都 miss，调用方总是回源存储
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Close 关闭缓存
func (c *NoOpCache) Close() error {
	return nil
}

func (c *NoOpCache) GetUserSummary(ctx context.Context, userID string) (*model.UserSummary, error) {
	return nil, nil
}

func (c *NoOpCache) SetUserSummary(ctx context.Context, summary *model.UserSummary) error {
	return nil
}

func (c *NoOpCache) InvalidateUserSummary(ctx context.Context, userID string) error {
	return nil
}

// 确保 NoOpCache 实现了 Cache 接口
var _ Cache = (*NoOpCache)(nil)
