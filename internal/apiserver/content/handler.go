// Package content 内容提交与审核 HTTP 处理器
//
// 普通用户创建内容（初始状态 Pending），审核员查看待审列表、
// 提交反馈或给出通过/拒绝结论。
package content

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"moderation-admin/internal/apiserver/auth"
	"moderation-admin/internal/shared/audit"
	"moderation-admin/internal/shared/model"
	"moderation-admin/internal/shared/storage"
)

// ContentStore 内容存储接口（本包用到的子集）
type ContentStore interface {
	CreateContent(ctx context.Context, content *model.Content) error
	ListContentByStatus(ctx context.Context, status model.ContentStatus) ([]*model.Content, error)
	ListContentByCreator(ctx context.Context, userID string) ([]*model.Content, error)
	SetContentFeedback(ctx context.Context, id, feedback string, status model.ContentStatus) (*model.Content, error)
}

// UserDirectory 创建者摘要批量查询（读取侧关联投影）
type UserDirectory interface {
	GetUserSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error)
}

// Handler 内容 HTTP 处理器
type Handler struct {
	store ContentStore
	users UserDirectory
	audit *audit.Recorder
}

// NewHandler 创建内容处理器
func NewHandler(store ContentStore, users UserDirectory, recorder *audit.Recorder) *Handler {
	return &Handler{store: store, users: users, audit: recorder}
}

// ============================================================================
// 请求类型
// ============================================================================

type createContentRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedBy string `json:"createdBy"`
}

type feedbackRequest struct {
	ContentID string `json:"contentId"`
	Feedback  string `json:"feedback"`
}

type reviewRequest struct {
	ContentID string `json:"contentId"`
	Decision  string `json:"decision"` // "Approved" | "Rejected"
}

// ============================================================================
// 用户侧 Handlers
// ============================================================================

// Create 创建内容
//
// 路由: POST /api/auth/create-content（角色 User）
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" || req.Body == "" || req.CreatedBy == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: title, body, or createdBy")
		return
	}

	now := time.Now()
	content := &model.Content{
		ID:        generateID(),
		Title:     req.Title,
		Body:      req.Body,
		Status:    model.ContentStatusPending,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateContent(r.Context(), content); err != nil {
		log.Printf("[content.create] CreateContent error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error creating content")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Content created successfully",
		"content": content,
	})
}

// ListMine 列出当前用户创建的内容
//
// 路由: GET /api/auth/my-content（角色 User）
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Access Denied: No Token Provided")
		return
	}

	contents, err := h.store.ListContentByCreator(r.Context(), user.ID)
	if err != nil {
		log.Printf("[content.mine] ListContentByCreator error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching content")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"content": contents,
	})
}

// ============================================================================
// 审核侧 Handlers
// ============================================================================

// ListPending 列出待审核内容，附带创建者摘要
//
// 路由: GET /api/moderator/pending-content（角色 Moderator）
//
// 创建者关联是读取侧投影：收集 created_by 后批量查摘要再填充，
// 不依赖存储层的虚拟关联。
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	contents, err := h.store.ListContentByStatus(r.Context(), model.ContentStatusPending)
	if err != nil {
		log.Printf("[content.pending] ListContentByStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching pending content")
		return
	}

	if err := h.attachCreators(r.Context(), contents); err != nil {
		log.Printf("[content.pending] attach creators error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching pending content")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"content": contents,
	})
}

// SubmitFeedback 对内容提交反馈
//
// 路由: POST /api/moderator/feedback（角色 Moderator）
//
// 反馈写入与状态置为 Reviewed 是一次原子更新。
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ContentID == "" || req.Feedback == "" {
		writeError(w, http.StatusBadRequest, "Content ID and feedback are required")
		return
	}

	content, err := h.store.SetContentFeedback(r.Context(), req.ContentID, req.Feedback, model.ContentStatusReviewed)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Content not found")
			return
		}
		log.Printf("[content.feedback] SetContentFeedback error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error submitting feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Feedback submitted successfully",
		"content": content,
	})
}

// Review 给出通过/拒绝结论
//
// 路由: POST /api/moderator/review（角色 Moderator）
//
// decision 只接受 Approved / Rejected，审计动作随之选择。
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "Content ID is required")
		return
	}

	status := model.ContentStatus(req.Decision)
	var action model.LogAction
	switch status {
	case model.ContentStatusApproved:
		action = model.LogActionApprovedContent
	case model.ContentStatusRejected:
		action = model.LogActionRejectedContent
	default:
		writeError(w, http.StatusBadRequest, "Decision must be Approved or Rejected")
		return
	}

	content, err := h.store.SetContentFeedback(r.Context(), req.ContentID, "", status)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Content not found")
			return
		}
		log.Printf("[content.review] SetContentFeedback error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error reviewing content")
		return
	}

	if moderator := auth.GetAuthUser(r.Context()); moderator != nil {
		h.audit.Record(r.Context(), moderator.ID, action,
			fmt.Sprintf("Content %s marked %s", req.ContentID, status))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Content %s", status),
		"content": content,
	})
}

// attachCreators 批量填充创建者摘要
func (h *Handler) attachCreators(ctx context.Context, contents []*model.Content) error {
	if len(contents) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(contents))
	var ids []string
	for _, c := range contents {
		if !seen[c.CreatedBy] {
			seen[c.CreatedBy] = true
			ids = append(ids, c.CreatedBy)
		}
	}

	summaries, err := h.users.GetUserSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range contents {
		c.Creator = summaries[c.CreatedBy]
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

// generateID 生成内容 ID，格式：cnt-xxxxxxxxxxxx
func generateID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "cnt-" + hex.EncodeToString(b)
}
