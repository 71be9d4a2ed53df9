// Package model 定义核心数据模型
//
// log.go 包含审计日志相关的数据模型定义。
// 日志只追加：由特权操作处理器创建，之后不修改、不删除。
package model

import "time"

// LogAction 审计动作，闭合枚举
type LogAction string

const (
	LogActionViewedLogs         LogAction = "Viewed Logs"
	LogActionUpdatedUserStatus  LogAction = "Updated User Status"
	LogActionDeletedUserAccount LogAction = "Deleted User Account"
	LogActionApprovedContent    LogAction = "Approved Content"
	LogActionRejectedContent    LogAction = "Rejected Content"
	LogActionLoggedIn           LogAction = "Logged In"
	LogActionLoggedOut          LogAction = "Logged Out"
)

// Valid 动作值是否在枚举内
func (a LogAction) Valid() bool {
	switch a {
	case LogActionViewedLogs, LogActionUpdatedUserStatus, LogActionDeletedUserAccount,
		LogActionApprovedContent, LogActionRejectedContent,
		LogActionLoggedIn, LogActionLoggedOut:
		return true
	}
	return false
}

// LogEntry 审计日志条目
//
// Actor 引用创建时刻存在的用户；ActorDetails 是读取侧的关联投影，不落库。
type LogEntry struct {
	ID        string    `json:"id" bson:"_id"`
	Actor     string    `json:"actor" bson:"actor"`
	Action    LogAction `json:"action" bson:"action"`
	Details   string    `json:"details" bson:"details"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	ActorDetails *UserSummary `json:"actor_details,omitempty" bson:"-"`
}
