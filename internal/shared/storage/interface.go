// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/
//   - 初始化时通过依赖注入传入实现
//
// 查询约定：
//   - 单条查询（GetXxx）在实体不存在时返回 (nil, nil)
//   - 更新/删除在目标不存在时返回 ErrNotFound
//   - "返回更新后文档" 语义的更新操作直接返回更新结果
package storage

import (
	"context"

	"moderation-admin/internal/shared/model"
)

// UserStore 用户存储
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (*model.User, error)
	// SetUserRefreshToken 覆盖写入刷新令牌；token 为 nil 表示清空
	SetUserRefreshToken(ctx context.Context, id string, token *string) error
	// UpdateUserStatus 原子更新账号状态并返回更新后的用户
	UpdateUserStatus(ctx context.Context, id string, status model.UserStatus) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	// GetUserSummaries 批量获取用户摘要，按 ID 索引，用于读取侧关联投影
	GetUserSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error)
}

// ContentStore 内容存储
type ContentStore interface {
	CreateContent(ctx context.Context, content *model.Content) error
	GetContentByID(ctx context.Context, id string) (*model.Content, error)
	ListContentByStatus(ctx context.Context, status model.ContentStatus) ([]*model.Content, error)
	ListContentByCreator(ctx context.Context, userID string) ([]*model.Content, error)
	// SetContentFeedback 原子写入反馈与新状态并返回更新后的内容；
	// feedback 为空表示仅变更状态，保留已有反馈
	SetContentFeedback(ctx context.Context, id, feedback string, status model.ContentStatus) (*model.Content, error)
}

// LogStore 审计日志存储（只追加）
type LogStore interface {
	CreateLogEntry(ctx context.Context, entry *model.LogEntry) error
	ListLogEntries(ctx context.Context) ([]*model.LogEntry, error)
}

// Store 聚合存储接口
type Store interface {
	UserStore
	ContentStore
	LogStore
	Close() error
}
