// Package admin 管理员 HTTP 处理器
//
// 审计日志查看、账号状态管理（锁定/解锁）、账号删除。
// 所有变更操作都追加审计日志，并使对应的用户摘要缓存失效。
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"moderation-admin/internal/apiserver/auth"
	"moderation-admin/internal/shared/audit"
	"moderation-admin/internal/shared/cache"
	"moderation-admin/internal/shared/model"
	"moderation-admin/internal/shared/storage"
)

// Store 管理操作用到的存储子集
type Store interface {
	UpdateUserStatus(ctx context.Context, id string, status model.UserStatus) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListLogEntries(ctx context.Context) ([]*model.LogEntry, error)
	GetUserSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error)
}

// Handler 管理员 HTTP 处理器
type Handler struct {
	store Store
	cache cache.UserSummaryCache
	audit *audit.Recorder
}

// NewHandler 创建管理员处理器
func NewHandler(store Store, c cache.UserSummaryCache, recorder *audit.Recorder) *Handler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Handler{store: store, cache: c, audit: recorder}
}

// ============================================================================
// 请求类型
// ============================================================================

type updateStatusRequest struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// ============================================================================
// Handlers
// ============================================================================

// ViewLogs 查看全部审计日志，附带操作者摘要
//
// 路由: GET /api/admin/logs（角色 Admin）
//
// 查看本身不追加审计记录，避免 Viewed Logs 条目随查看次数
// 无限自我放大。
func (h *Handler) ViewLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListLogEntries(r.Context())
	if err != nil {
		log.Printf("[admin.logs] ListLogEntries error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching logs")
		return
	}

	if err := h.attachActors(r.Context(), entries); err != nil {
		log.Printf("[admin.logs] attach actors error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"logs":    entries,
	})
}

// ListUsers 列出全部用户账号
//
// 路由: GET /api/admin/users（角色 Admin）
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[admin.users] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// UpdateUserStatus 更新账号状态（Active / Locked）
//
// 路由: PUT /api/admin/update-user-status（角色 Admin）
//
// status 不在枚举内直接 400，不触达存储。
func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	status := model.UserStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Status must be Active or Locked")
		return
	}

	user, err := h.store.UpdateUserStatus(r.Context(), req.UserID, status)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("[admin.status] UpdateUserStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error updating user status")
		return
	}

	// 让封禁在缓存 TTL 之前生效
	if err := h.cache.InvalidateUserSummary(r.Context(), req.UserID); err != nil {
		log.Printf("[admin.status] invalidate cache error: %v", err)
	}

	if admin := auth.GetAuthUser(r.Context()); admin != nil {
		h.audit.Record(r.Context(), admin.ID, model.LogActionUpdatedUserStatus,
			fmt.Sprintf("User %s status set to %s", req.UserID, status))
	}

	log.Printf("[admin] User status updated: %s -> %s", req.UserID, status)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User status updated successfully",
		"user":    user,
	})
}

// DeleteUser 删除账号
//
// 路由: DELETE /api/admin/delete-user/{userId}（角色 Admin）
//
// 被删用户的既有内容与审计日志保留，其 created_by/actor
// 成为悬挂引用，读取侧关联投影对缺失摘要返回 null。
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	if err := h.store.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("[admin.delete] DeleteUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}

	if err := h.cache.InvalidateUserSummary(r.Context(), userID); err != nil {
		log.Printf("[admin.delete] invalidate cache error: %v", err)
	}

	if admin := auth.GetAuthUser(r.Context()); admin != nil {
		h.audit.Record(r.Context(), admin.ID, model.LogActionDeletedUserAccount,
			fmt.Sprintf("User %s deleted", userID))
	}

	log.Printf("[admin] User deleted: %s", userID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User deleted successfully",
	})
}

// attachActors 批量填充操作者摘要
func (h *Handler) attachActors(ctx context.Context, entries []*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(entries))
	var ids []string
	for _, e := range entries {
		if !seen[e.Actor] {
			seen[e.Actor] = true
			ids = append(ids, e.Actor)
		}
	}

	summaries, err := h.store.GetUserSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, e := range entries {
		e.ActorDetails = summaries[e.Actor]
	}
	return nil
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
