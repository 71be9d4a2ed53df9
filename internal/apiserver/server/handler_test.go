package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moderation-admin/internal/apiserver/auth"
	"moderation-admin/internal/shared/model"
	"moderation-admin/internal/shared/storage"
)

// mockStore 实现完整的 storage.Store
type mockStore struct {
	users    map[string]*model.User
	contents map[string]*model.Content
	logs     []*model.LogEntry
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*model.User),
		contents: make(map[string]*model.Content),
	}
}

func (m *mockStore) CreateUser(ctx context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockStore) GetUserByRefreshToken(ctx context.Context, token string) (*model.User, error) {
	for _, u := range m.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockStore) SetUserRefreshToken(ctx context.Context, id string, token *string) error {
	u, ok := m.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (m *mockStore) UpdateUserStatus(ctx context.Context, id string, status model.UserStatus) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.Status = status
	return u, nil
}

func (m *mockStore) DeleteUser(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockStore) GetUserSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	out := make(map[string]*model.UserSummary)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (m *mockStore) CreateContent(ctx context.Context, content *model.Content) error {
	m.contents[content.ID] = content
	return nil
}

func (m *mockStore) GetContentByID(ctx context.Context, id string) (*model.Content, error) {
	return m.contents[id], nil
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
	return c, nil
}

func (m *mockStore) CreateLogEntry(ctx context.Context, entry *model.LogEntry) error {
	m.logs = append(m.logs, entry)
	return nil
}

func (m *mockStore) ListLogEntries(ctx context.Context) ([]*model.LogEntry, error) {
	return m.logs, nil
}

func (m *mockStore) Close() error { return nil }

var _ storage.Store = (*mockStore)(nil)

func seedUser(t *testing.T, store *mockStore, id, email, password string, role model.UserRole) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now()
	store.users[id] = &model.User{
		ID: id, FullName: "User " + id, Email: email, PasswordHash: hash,
		Role: role, Status: model.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}
}

// TestRouter 路由与中间件链
//
// NewMetrics 向全局 Prometheus 注册表注册指标，重复构造会 panic，
// 因此整个包共用一个 Handler，用子测试覆盖各路径。
func TestRouter(t *testing.T) {
	store := newMockStore()
	seedUser(t, store, "usr-user", "user@example.com", "password123", model.UserRoleUser)
	seedUser(t, store, "usr-mod", "mod@example.com", "password123", model.UserRoleModerator)
	seedUser(t, store, "usr-admin", "admin@example.com", "password123", model.UserRoleAdmin)

	tokens := auth.NewTokenService(auth.Config{
		JWTSecret:      "router-test-secret",
		AccessTokenTTL: time.Hour,
	})
	router := NewHandler(store, tokens, Options{}).Router()

	tokenFor := func(id string, role model.UserRole) string {
		token, err := tokens.IssueAccessToken(id, role)
		if err != nil {
			t.Fatalf("IssueAccessToken: %v", err)
		}
		return token
	}

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		var r *http.Request
		if body != "" {
			r = httptest.NewRequest(method, path, strings.NewReader(body))
		} else {
			r = httptest.NewRequest(method, path, nil)
		}
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		return rec
	}

	t.Run("健康检查公开", func(t *testing.T) {
		rec := do("GET", "/health", "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("指标端点公开", func(t *testing.T) {
		rec := do("GET", "/metrics", "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("登录公开", func(t *testing.T) {
		rec := do("POST", "/api/auth/login", `{"email":"user@example.com","password":"password123"}`, "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("受保护路由无令牌被拒", func(t *testing.T) {
		rec := do("GET", "/api/auth/my-content", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("User 角色创建内容", func(t *testing.T) {
		body := `{"title":"Post","body":"Hello","createdBy":"usr-user"}`
		rec := do("POST", "/api/auth/create-content", body, tokenFor("usr-user", model.UserRoleUser))
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("User 访问审核路由 403", func(t *testing.T) {
		rec := do("GET", "/api/moderator/pending-content", "", tokenFor("usr-user", model.UserRoleUser))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("Moderator 查看待审列表", func(t *testing.T) {
		rec := do("GET", "/api/moderator/pending-content", "", tokenFor("usr-mod", model.UserRoleModerator))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Content []*model.Content `json:"content"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		// 创建者摘要随内容返回
		for _, c := range body.Content {
			if c.Creator == nil {
				t.Errorf("content %s missing creator summary", c.ID)
			}
		}
	})

	t.Run("Moderator 访问管理路由 403", func(t *testing.T) {
		rec := do("GET", "/api/admin/logs", "", tokenFor("usr-mod", model.UserRoleModerator))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("Admin 查看日志与删除用户", func(t *testing.T) {
		admin := tokenFor("usr-admin", model.UserRoleAdmin)

		rec := do("GET", "/api/admin/logs", "", admin)
		if rec.Code != http.StatusOK {
			t.Errorf("logs status = %d, want 200", rec.Code)
		}

		rec = do("DELETE", "/api/admin/delete-user/usr-user", "", admin)
		if rec.Code != http.StatusOK {
			t.Errorf("delete status = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		if _, ok := store.users["usr-user"]; ok {
			t.Error("user not deleted through router")
		}
	})

	t.Run("Cookie 认证等价于 Bearer", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/moderator/pending-content", nil)
		r.AddCookie(&http.Cookie{Name: auth.CookieAccessToken, Value: tokenFor("usr-mod", model.UserRoleModerator)})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("CORS 预检", func(t *testing.T) {
		rec := do("OPTIONS", "/api/auth/login", "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing CORS headers")
		}
	})
}
