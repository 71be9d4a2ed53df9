package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"moderation-admin/internal/shared/cache"
	"moderation-admin/internal/shared/model"
)

// Cookie 名称，与历史客户端保持一致
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// UserSource 严格重校验模式的用户摘要来源
// 用户不存在时返回 (nil, nil)
type UserSource interface {
	GetUserSummary(ctx context.Context, userID string) (*model.UserSummary, error)
}

// Gate 认证门（中间件工厂）
//
// 默认信任签名声明中的角色，不回源。strict 开启时每个请求
// 通过 users 重新获取当前角色与状态：角色变更立即生效，
// Locked 账号被拒绝，代价是每个请求一次（缓存兜底的）读取。
type Gate struct {
	tokens *TokenService
	strict bool
	users  UserSource
}

// NewGate 创建认证门
func NewGate(tokens *TokenService) *Gate {
	return &Gate{tokens: tokens}
}

// WithStrictRevalidation 开启严格重校验模式
func (g *Gate) WithStrictRevalidation(users UserSource) *Gate {
	g.strict = true
	g.users = users
	return g
}

// extractToken 从请求提取访问令牌
//
// 优先读 accessToken Cookie，其次 Authorization 头
// （按空白切分，取第二段作为 bearer 值）。
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieAccessToken); err == nil && c.Value != "" {
		return c.Value
	}
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	return ""
}

// Authenticated 认证中间件
//
// 无令牌 → 401；过期 → 401（带过期原因）；签名错误/格式错误 → 400
// （历史客户端把二者合并为 400，保持兼容）；验证通过 → 将 {id, role}
// 注入 context 后放行。除 context 注入外无副作用，不触达存储
// （严格模式除外）。
func (g *Gate) Authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Access Denied: No Token Provided")
			return
		}

		claims, err := g.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Token Expired")
				return
			}
			log.Printf("[auth] token parse error: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid token")
			return
		}
		if claims.Type != "access" {
			writeError(w, http.StatusBadRequest, "Invalid token")
			return
		}

		user := &AuthUser{ID: claims.Subject, Role: claims.Role}

		if g.strict {
			summary, err := g.users.GetUserSummary(r.Context(), user.ID)
			if err != nil {
				log.Printf("[auth] revalidate user %s error: %v", user.ID, err)
				writeError(w, http.StatusInternalServerError, "Server Error")
				return
			}
			if summary == nil {
				writeError(w, http.StatusUnauthorized, "Access Denied: Unknown User")
				return
			}
			if summary.Status == model.UserStatusLocked {
				writeError(w, http.StatusForbidden, "Account is locked")
				return
			}
			user.Role = summary.Role
		}

		next(w, r.WithContext(WithAuthUser(r.Context(), user)))
	}
}

// RequireRole 角色门中间件
//
// 必须在 Authenticated 之后执行：依赖其注入的认证身份。
// context 中无身份时防御性返回 401；角色不在要求集合内返回 403。
func RequireRole(next http.HandlerFunc, roles ...model.UserRole) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Access Denied: No Token Provided")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				next(w, r)
				return
			}
		}
		writeError(w, http.StatusForbidden, "Access Denied: Insufficient Role")
	}
}

// ============================================================================
// CachedUserSource — 缓存兜底的用户摘要来源
// ============================================================================

// SummaryStore 批量摘要查询（由 storage.UserStore 满足）
type SummaryStore interface {
	GetUserSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error)
}

// CachedUserSource 先查缓存、miss 时回源存储并写回缓存
//
// 缓存故障降级为直接回源：严格模式的正确性只依赖存储，
// 缓存只决定回源频率。
type CachedUserSource struct {
	store SummaryStore
	cache cache.UserSummaryCache
}

// NewCachedUserSource 创建缓存兜底的用户摘要来源
func NewCachedUserSource(store SummaryStore, c cache.UserSummaryCache) *CachedUserSource {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &CachedUserSource{store: store, cache: c}
}

// GetUserSummary 获取用户摘要，用户不存在时返回 (nil, nil)
func (s *CachedUserSource) GetUserSummary(ctx context.Context, userID string) (*model.UserSummary, error) {
	if summary, err := s.cache.GetUserSummary(ctx, userID); err == nil && summary != nil {
		return summary, nil
	} else if err != nil {
		log.Printf("[auth] user summary cache read error: %v", err)
	}

	summaries, err := s.store.GetUserSummaries(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	summary := summaries[userID]
	if summary == nil {
		return nil, nil
	}

	if err := s.cache.SetUserSummary(ctx, summary); err != nil {
		log.Printf("[auth] user summary cache write error: %v", err)
	}
	return summary, nil
}
