package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"moderation-admin/internal/shared/audit"
	"moderation-admin/internal/shared/model"
	"moderation-admin/internal/shared/storage"
)

// UserStore 用户存储接口（本包用到的子集）
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (*model.User, error)
	SetUserRefreshToken(ctx context.Context, id string, token *string) error
}

// Handler 认证 HTTP 处理器
type Handler struct {
	store  UserStore
	tokens *TokenService
	audit  *audit.Recorder
}

// NewHandler 创建认证处理器
func NewHandler(store UserStore, tokens *TokenService, recorder *audit.Recorder) *Handler {
	return &Handler{store: store, tokens: tokens, audit: recorder}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
}

// ============================================================================
// 请求类型
// ============================================================================

type registerRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ============================================================================
// Handlers
// ============================================================================

// Register 用户注册
//
// 注册成功不自动登录，客户端需随后调用 Login。
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "fullname, email, password are required")
		return
	}
	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	role := model.UserRole(req.Role)
	if req.Role == "" {
		role = model.UserRoleUser
	}
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	// 检查邮箱是否已注册
	existing, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[auth.register] GetUserByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Email already in use")
		return
	}

	// 哈希密码
	hash, err := HashPassword(req.Password)
	if err != nil {
		log.Printf("[auth.register] HashPassword error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	now := time.Now()
	user := &model.User{
		ID:           generateID(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		// 并发注册同一邮箱时，唯一索引兜底
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Email already in use")
			return
		}
		log.Printf("[auth.register] CreateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	log.Printf("[auth] User registered: %s (%s)", user.Email, user.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
	})
}

// Login 用户登录
//
// 无论邮箱不存在还是密码错误，都返回同一条 "Invalid Credentials"，
// 避免账号枚举。成功时签发访问+刷新令牌，刷新令牌覆盖写入用户
// 记录（单活跃会话），两个令牌同时通过 http-only Cookie 和响应体下发。
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[auth.login] GetUserByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	if user == nil || !CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid Credentials")
		return
	}
	if user.Status == model.UserStatusLocked {
		writeError(w, http.StatusForbidden, "Account is locked")
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		log.Printf("[auth.login] IssueAccessToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	refreshToken, err := h.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		log.Printf("[auth.login] IssueRefreshToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	if err := h.store.SetUserRefreshToken(r.Context(), user.ID, &refreshToken); err != nil {
		log.Printf("[auth.login] SetUserRefreshToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	setTokenCookie(w, CookieAccessToken, accessToken)
	setTokenCookie(w, CookieRefreshToken, refreshToken)

	h.audit.Record(r.Context(), user.ID, model.LogActionLoggedIn, fmt.Sprintf("User %s logged in", user.Email))

	log.Printf("[auth] User logged in: %s", user.Email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"message":       "Logged in successfully",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Logout 用户登出
//
// 按刷新令牌 Cookie 查找用户并清空其存储的刷新令牌；
// 无论查找结果如何都清除 Cookie 并返回成功（幂等）。
// 已签发的访问令牌在自然过期前仍然有效，这是已知限制。
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieRefreshToken); err == nil && c.Value != "" {
		user, err := h.store.GetUserByRefreshToken(r.Context(), c.Value)
		if err != nil {
			log.Printf("[auth.logout] GetUserByRefreshToken error: %v", err)
		}
		if user != nil {
			if err := h.store.SetUserRefreshToken(r.Context(), user.ID, nil); err != nil {
				log.Printf("[auth.logout] SetUserRefreshToken error: %v", err)
			} else {
				h.audit.Record(r.Context(), user.ID, model.LogActionLoggedOut, fmt.Sprintf("User %s logged out", user.Email))
			}
		}
	}

	clearTokenCookie(w, CookieAccessToken)
	clearTokenCookie(w, CookieRefreshToken)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// AdminStore EnsureAdminUser 用到的存储子集
type AdminStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// EnsureAdminUser 确保管理员用户存在（启动时调用）
// 如果配置了 adminEmail 且数据库中不存在该用户，则自动创建
func EnsureAdminUser(store AdminStore, adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := store.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		log.Printf("[auth] Admin user already exists: %s (%s)", adminEmail, existing.ID)
		return nil
	}

	hash, err := HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           generateID(),
		FullName:     "Admin",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("[auth] Created admin user: %s (%s)", adminEmail, user.ID)
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

func setTokenCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// generateID 生成用户 ID，格式：usr-xxxxxxxxxxxx
func generateID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "usr-" + hex.EncodeToString(b)
}
