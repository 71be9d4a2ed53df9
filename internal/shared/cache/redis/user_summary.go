// Package redis UserSummary 缓存操作
package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"moderation-admin/internal/shared/cache"
	"moderation-admin/internal/shared/model"
)

// GetUserSummary 获取用户摘要，缓存 miss 时返回 (nil, nil)
func (s *Store) GetUserSummary(ctx context.Context, userID string) (*model.UserSummary, error) {
	key := cache.KeyUserSummary + userID

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary model.UserSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// SetUserSummary 写入用户摘要，按固定短 TTL 过期
func (s *Store) SetUserSummary(ctx context.Context, summary *model.UserSummary) error {
	key := cache.KeyUserSummary + summary.ID

	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// InvalidateUserSummary 删除用户摘要缓存
//
// 管理员修改状态或删除账号后调用，保证变更不等缓存过期即生效
func (s *Store) InvalidateUserSummary(ctx context.Context, userID string) error {
	key := cache.KeyUserSummary + userID
	return s.client.Del(ctx, key).Err()
}

// 确保 Store 实现了 cache.Cache 接口
var _ cache.Cache = (*Store)(nil)
