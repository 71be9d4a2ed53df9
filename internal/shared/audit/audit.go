// Package audit 尽力而为的审计日志
//
// 特权操作处理器调用 Record 追加一条 LogEntry。写入失败只记录到
// 操作员诊断日志，绝不传播给触发它的请求，审计失败不能导致业务失败。
package audit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"moderation-admin/internal/shared/model"
	"moderation-admin/internal/shared/storage"
	"moderation-admin/pkg/logging"
)

// Recorder 审计日志记录器
type Recorder struct {
	store  storage.LogStore
	logger *logging.Logger
}

// NewRecorder 创建审计记录器
func NewRecorder(store storage.LogStore, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Default("audit")
	}
	return &Recorder{store: store, logger: logger}
}

// Record 追加一条审计日志，失败不返回错误
//
// actorID 为空或 action 不在枚举内视为调用方 bug，记录后丢弃。
func (r *Recorder) Record(ctx context.Context, actorID string, action model.LogAction, details string) {
	if actorID == "" {
		r.logger.Error("Audit record dropped: no actor ID", "action", string(action))
		return
	}
	if !action.Valid() {
		r.logger.Error("Audit record dropped: unknown action", "action", string(action), "actor", actorID)
		return
	}

	entry := &model.LogEntry{
		ID:        generateID(),
		Actor:     actorID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}

	err := r.store.CreateLogEntry(ctx, entry)
	r.logger.AuditLog(actorID, string(action), details, err)
}

// generateID 生成日志条目 ID，格式：log-xxxxxxxxxxxx
func generateID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "log-" + hex.EncodeToString(b)
}
