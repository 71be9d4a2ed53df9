// Package model 定义核心数据模型
//
// user.go 包含用户账号相关的数据模型定义：
//   - User：注册用户（身份、密码哈希、角色、账号状态、刷新令牌）
//   - UserRole / UserStatus：角色与状态枚举
//   - UserSummary：对外暴露的用户摘要（不含密码哈希）
package model

import "time"

// ============================================================================
// UserRole - 用户角色
// ============================================================================

// UserRole 表示用户角色，静态三角色模型，无层级与委派
//
// 角色说明：
//   - User：普通用户，可创建内容
//   - Moderator：审核员，可查看待审内容并提交反馈
//   - Admin：管理员，可查看审计日志、管理账号
type UserRole string

const (
	UserRoleUser      UserRole = "User"
	UserRoleAdmin     UserRole = "Admin"
	UserRoleModerator UserRole = "Moderator"
)

// Valid 角色值是否在枚举内
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin, UserRoleModerator:
		return true
	}
	return false
}

// ============================================================================
// UserStatus - 账号状态
// ============================================================================

// UserStatus 表示账号状态，仅由 Admin 修改
type UserStatus string

const (
	// UserStatusActive 正常：可登录、可操作
	UserStatusActive UserStatus = "Active"

	// UserStatusLocked 锁定：管理员封禁；已签发的访问令牌在自然过期前仍有效
	UserStatusLocked UserStatus = "Locked"
)

// Valid 状态值是否在枚举内
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusLocked
}

// ============================================================================
// User
// ============================================================================

// User 注册用户
//
// RefreshToken 最多保存一个有效值：登录时覆盖写入，登出时清空，
// 即每个用户同一时刻只有一个活跃会话。
type User struct {
	ID           string     `json:"id" bson:"_id"`
	FullName     string     `json:"fullname" bson:"fullname"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password_hash"` // never expose in JSON
	Role         UserRole   `json:"role" bson:"role"`
	Status       UserStatus `json:"status" bson:"status"`
	RefreshToken *string    `json:"-" bson:"refresh_token"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// UserSummary 用户摘要，用于内容创建者与日志操作者的关联展示
type UserSummary struct {
	ID       string     `json:"id" bson:"_id"`
	FullName string     `json:"fullname" bson:"fullname"`
	Email    string     `json:"email" bson:"email"`
	Role     UserRole   `json:"role" bson:"role"`
	Status   UserStatus `json:"status" bson:"status"`
}

// Summary 返回用户摘要
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		Status:   u.Status,
	}
}
