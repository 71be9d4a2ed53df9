// Package model 定义核心数据模型
//
// content.go 包含用户提交内容相关的数据模型定义
package model

import "time"

// ContentStatus 内容审核状态
//
// 状态流转（实践中单向，数据层不强制状态机）：
//
//	Pending → Approved | Rejected | Reviewed
type ContentStatus string

const (
	// ContentStatusPending 待审核：内容创建后的初始状态
	ContentStatusPending ContentStatus = "Pending"

	// ContentStatusApproved 已通过
	ContentStatusApproved ContentStatus = "Approved"

	// ContentStatusRejected 已拒绝
	ContentStatusRejected ContentStatus = "Rejected"

	// ContentStatusReviewed 已审阅：审核员提交反馈后的状态
	ContentStatusReviewed ContentStatus = "Reviewed"
)

// Valid 状态值是否在枚举内
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusPending, ContentStatusApproved, ContentStatusRejected, ContentStatusReviewed:
		return true
	}
	return false
}

// Content 用户提交的内容
//
// Creator 是读取侧的关联投影（按 CreatedBy 查询用户摘要后填充），
// 不落库。状态与反馈仅由 Moderator 修改。
type Content struct {
	ID        string        `json:"id" bson:"_id"`
	Title     string        `json:"title" bson:"title"`
	Body      string        `json:"body" bson:"body"`
	Status    ContentStatus `json:"status" bson:"status"`
	CreatedBy string        `json:"created_by" bson:"created_by"`
	Feedback  string        `json:"feedback,omitempty" bson:"feedback,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`

	Creator *UserSummary `json:"creator,omitempty" bson:"-"`
}
