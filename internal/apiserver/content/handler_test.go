package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moderation-admin/internal/apiserver/auth"
	"moderation-admin/internal/shared/audit"
	"moderation-admin/internal/shared/model"
	"moderation-admin/internal/shared/storage"
)

// mockStore 模拟内容存储 + 用户摘要目录
type mockStore struct {
	contents  map[string]*model.Content
	summaries map[string]*model.UserSummary
}

func newMockStore() *mockStore {
	return &mockStore{
		contents:  make(map[string]*model.Content),
		summaries: make(map[string]*model.UserSummary),
	}
}

func (m *mockStore) CreateContent(ctx context.Context, content *model.Content) error {
	m.contents[content.ID] = content
	return nil
}

func (m *mockStore) ListContentByStatus(ctx context.Context, status model.ContentStatus) ([]*model.Content, error) {
	var out []*model.Content
	for _, c := range m.contents {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) ListContentByCreator(ctx context.Context, userID string) ([]*model.Content, error) {
	var out []*model.Content
	for _, c := range m.contents {
		if c.CreatedBy == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) SetContentFeedback(ctx context.Context, id, feedback string, status model.ContentStatus) (*model.Content, error) {
	c, ok := m.contents[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if feedback != "" {
		c.Feedback = feedback
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return c, nil
}

func (m *mockStore) GetUserSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	out := make(map[string]*model.UserSummary)
	for _, id := range ids {
		if s, ok := m.summaries[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

// mockLogs 模拟审计日志存储
type mockLogs struct {
	entries []*model.LogEntry
}

func (m *mockLogs) CreateLogEntry(ctx context.Context, entry *model.LogEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLogs) ListLogEntries(ctx context.Context) ([]*model.LogEntry, error) {
	return m.entries, nil
}

func newTestHandler() (*Handler, *mockStore, *mockLogs) {
	store := newMockStore()
	logs := &mockLogs{}
	h := NewHandler(store, store, audit.NewRecorder(logs, nil))
	return h, store, logs
}

func seedContent(store *mockStore, id, createdBy string, status model.ContentStatus) {
	now := time.Now()
	store.contents[id] = &model.Content{
		ID:        id,
		Title:     "Title " + id,
		Body:      "Body " + id,
		Status:    status,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func withUser(r *http.Request, id string, role model.UserRole) *http.Request {
	return r.WithContext(auth.WithAuthUser(r.Context(), &auth.AuthUser{ID: id, Role: role}))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

// ============================================================================
// Create / ListMine
// ============================================================================

// TestCreate 内容创建
func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "成功",
			body:       `{"title":"My Post","body":"Hello","createdBy":"usr-001"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "缺少标题",
			body:       `{"body":"Hello","createdBy":"usr-001"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "缺少正文",
			body:       `{"title":"My Post","createdBy":"usr-001"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "缺少创建者",
			body:       `{"title":"My Post","body":"Hello"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "无效 JSON",
			body:       `{not json}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, _ := newTestHandler()

			r := httptest.NewRequest("POST", "/api/auth/create-content", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Create(rec, r)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus == http.StatusCreated {
				if len(store.contents) != 1 {
					t.Fatalf("contents = %d, want 1", len(store.contents))
				}
				for _, c := range store.contents {
					if c.Status != model.ContentStatusPending {
						t.Errorf("status = %q, want Pending", c.Status)
					}
					if !strings.HasPrefix(c.ID, "cnt-") {
						t.Errorf("ID = %q, want cnt- prefix", c.ID)
					}
				}
			} else if len(store.contents) != 0 {
				t.Errorf("contents = %d after rejected request, want 0", len(store.contents))
			}
		})
	}
}

// TestCreate_MissingFieldsMessage 缺字段的错误消息
func TestCreate_MissingFieldsMessage(t *testing.T) {
	h, _, _ := newTestHandler()

	r := httptest.NewRequest("POST", "/api/auth/create-content", strings.NewReader(`{"title":"x"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, r)

	body := decodeBody(t, rec)
	want := "Missing required fields: title, body, or createdBy"
	if body["message"] != want {
		t.Errorf("message = %q, want %q", body["message"], want)
	}
}

// TestListMine 只返回当前用户创建的内容
func TestListMine(t *testing.T) {
	h, store, _ := newTestHandler()
	seedContent(store, "cnt-a", "usr-001", model.ContentStatusPending)
	seedContent(store, "cnt-b", "usr-001", model.ContentStatusReviewed)
	seedContent(store, "cnt-c", "usr-002", model.ContentStatusPending)

	r := withUser(httptest.NewRequest("GET", "/api/auth/my-content", nil), "usr-001", model.UserRoleUser)
	rec := httptest.NewRecorder()
	h.ListMine(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	items, _ := body["content"].([]interface{})
	if len(items) != 2 {
		t.Errorf("content items = %d, want 2", len(items))
	}
}

// ============================================================================
// ListPending
// ============================================================================

// TestListPending 待审列表附带创建者摘要
func TestListPending(t *testing.T) {
	h, store, _ := newTestHandler()
	seedContent(store, "cnt-a", "usr-001", model.ContentStatusPending)
	seedContent(store, "cnt-b", "usr-002", model.ContentStatusReviewed)
	store.summaries["usr-001"] = &model.UserSummary{
		ID: "usr-001", FullName: "Alice", Email: "alice@example.com",
		Role: model.UserRoleUser, Status: model.UserStatusActive,
	}

	r := httptest.NewRequest("GET", "/api/moderator/pending-content", nil)
	rec := httptest.NewRecorder()
	h.ListPending(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Success bool             `json:"success"`
		Content []*model.Content `json:"content"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Content) != 1 {
		t.Fatalf("content items = %d, want 1 (pending only)", len(body.Content))
	}
	c := body.Content[0]
	if c.ID != "cnt-a" {
		t.Errorf("ID = %q, want cnt-a", c.ID)
	}
	if c.Creator == nil || c.Creator.FullName != "Alice" {
		t.Errorf("creator = %+v, want Alice summary", c.Creator)
	}
}

// TestListPending_Empty 无待审内容时返回 200 + 空列表
func TestListPending_Empty(t *testing.T) {
	h, _, _ := newTestHandler()

	r := httptest.NewRequest("GET", "/api/moderator/pending-content", nil)
	rec := httptest.NewRecorder()
	h.ListPending(rec, r)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
}

// TestListPending_DanglingCreator 创建者已被删除时摘要为 null，不报错
func TestListPending_DanglingCreator(t *testing.T) {
	h, store, _ := newTestHandler()
	seedContent(store, "cnt-a", "usr-deleted", model.ContentStatusPending)

	r := httptest.NewRequest("GET", "/api/moderator/pending-content", nil)
	rec := httptest.NewRecorder()
	h.ListPending(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Content []*model.Content `json:"content"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Content) != 1 || body.Content[0].Creator != nil {
		t.Errorf("content = %+v, want one item with nil creator", body.Content)
	}
}

// ============================================================================
// SubmitFeedback / Review
// ============================================================================

// TestSubmitFeedback 反馈原样写入，状态置为 Reviewed
func TestSubmitFeedback(t *testing.T) {
	h, store, _ := newTestHandler()
	seedContent(store, "cnt-a", "usr-001", model.ContentStatusPending)

	feedback := "  Needs a better title, and fix the typos.  "
	payload, _ := json.Marshal(map[string]string{"contentId": "cnt-a", "feedback": feedback})

	r := httptest.NewRequest("POST", "/api/moderator/feedback", strings.NewReader(string(payload)))
	rec := httptest.NewRecorder()
	h.SubmitFeedback(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	c := store.contents["cnt-a"]
	if c.Feedback != feedback {
		t.Errorf("feedback = %q, want verbatim %q", c.Feedback, feedback)
	}
	if c.Status != model.ContentStatusReviewed {
		t.Errorf("status = %q, want Reviewed", c.Status)
	}
}

// TestSubmitFeedback_Errors 反馈错误分类
func TestSubmitFeedback_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"缺少内容 ID", `{"feedback":"looks bad"}`, http.StatusBadRequest},
		{"缺少反馈", `{"contentId":"cnt-a"}`, http.StatusBadRequest},
		{"内容不存在", `{"contentId":"cnt-missing","feedback":"x"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, _ := newTestHandler()
			seedContent(store, "cnt-a", "usr-001", model.ContentStatusPending)

			r := httptest.NewRequest("POST", "/api/moderator/feedback", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.SubmitFeedback(rec, r)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

// TestReview 审核结论与审计动作
func TestReview(t *testing.T) {
	tests := []struct {
		name       string
		decision   string
		wantStatus model.ContentStatus
		wantAction model.LogAction
	}{
		{"通过", "Approved", model.ContentStatusApproved, model.LogActionApprovedContent},
		{"拒绝", "Rejected", model.ContentStatusRejected, model.LogActionRejectedContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, logs := newTestHandler()
			seedContent(store, "cnt-a", "usr-001", model.ContentStatusPending)

			payload := `{"contentId":"cnt-a","decision":"` + tt.decision + `"}`
			r := withUser(httptest.NewRequest("POST", "/api/moderator/review", strings.NewReader(payload)),
				"usr-mod", model.UserRoleModerator)
			rec := httptest.NewRecorder()
			h.Review(rec, r)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
			}
			if store.contents["cnt-a"].Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", store.contents["cnt-a"].Status, tt.wantStatus)
			}
			if len(logs.entries) != 1 || logs.entries[0].Action != tt.wantAction {
				t.Errorf("audit entries = %+v, want one %s", logs.entries, tt.wantAction)
			}
			if logs.entries[0].Actor != "usr-mod" {
				t.Errorf("actor = %q, want usr-mod", logs.entries[0].Actor)
			}
		})
	}
}

// TestReview_Errors 结论错误分类
func TestReview_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"缺少内容 ID", `{"decision":"Approved"}`, http.StatusBadRequest},
		{"非法结论", `{"contentId":"cnt-a","decision":"Maybe"}`, http.StatusBadRequest},
		{"Pending 不是结论", `{"contentId":"cnt-a","decision":"Pending"}`, http.StatusBadRequest},
		{"内容不存在", `{"contentId":"cnt-missing","decision":"Approved"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, logs := newTestHandler()
			seedContent(store, "cnt-a", "usr-001", model.ContentStatusPending)

			r := withUser(httptest.NewRequest("POST", "/api/moderator/review", strings.NewReader(tt.body)),
				"usr-mod", model.UserRoleModerator)
			rec := httptest.NewRecorder()
			h.Review(rec, r)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if len(logs.entries) != 0 {
				t.Errorf("audit entries = %d after failed review, want 0", len(logs.entries))
			}
		})
	}
}
