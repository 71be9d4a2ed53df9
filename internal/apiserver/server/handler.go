package server

import (
	"net/http"

	"moderation-admin/internal/apiserver/admin"
	"moderation-admin/internal/apiserver/auth"
	"moderation-admin/internal/apiserver/content"
	"moderation-admin/internal/shared/model"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health  - 服务健康检查
//   - GET /metrics - Prometheus 指标
//
// 认证 (Auth，公开):
//   - POST /api/auth/register - 注册
//   - POST /api/auth/login    - 登录
//   - POST /api/auth/logout   - 登出（幂等）
//
// 内容 (Content，角色 User):
//   - POST /api/auth/create-content - 创建内容
//   - GET  /api/auth/my-content     - 列出自己的内容
//
// 审核 (Moderation，角色 Moderator):
//   - GET  /api/moderator/pending-content - 待审核列表
//   - POST /api/moderator/feedback        - 提交反馈
//   - POST /api/moderator/review          - 通过/拒绝结论
//
// 管理 (Admin，角色 Admin):
//   - GET    /api/admin/logs                 - 查看审计日志
//   - GET    /api/admin/users                - 列出用户
//   - PUT    /api/admin/update-user-status   - 更新账号状态
//   - DELETE /api/admin/delete-user/{userId} - 删除账号
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// Auth 接口（公开，无需令牌）
	authHandler := auth.NewHandler(h.store, h.tokens, h.audit)
	authHandler.RegisterRoutes(mux)

	// Content 接口
	contentHandler := content.NewHandler(h.store, h.store, h.audit)
	mux.HandleFunc("POST /api/auth/create-content",
		h.protected(contentHandler.Create, model.UserRoleUser))
	mux.HandleFunc("GET /api/auth/my-content",
		h.protected(contentHandler.ListMine, model.UserRoleUser))

	// Moderation 接口
	mux.HandleFunc("GET /api/moderator/pending-content",
		h.protected(contentHandler.ListPending, model.UserRoleModerator))
	mux.HandleFunc("POST /api/moderator/feedback",
		h.protected(contentHandler.SubmitFeedback, model.UserRoleModerator))
	mux.HandleFunc("POST /api/moderator/review",
		h.protected(contentHandler.Review, model.UserRoleModerator))

	// Admin 接口
	adminHandler := admin.NewHandler(h.store, h.cache, h.audit)
	mux.HandleFunc("GET /api/admin/logs",
		h.protected(adminHandler.ViewLogs, model.UserRoleAdmin))
	mux.HandleFunc("GET /api/admin/users",
		h.protected(adminHandler.ListUsers, model.UserRoleAdmin))
	mux.HandleFunc("PUT /api/admin/update-user-status",
		h.protected(adminHandler.UpdateUserStatus, model.UserRoleAdmin))
	mux.HandleFunc("DELETE /api/admin/delete-user/{userId}",
		h.protected(adminHandler.DeleteUser, model.UserRoleAdmin))

	// 应用指标中间件
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用 CORS 中间件
	return corsMiddleware(apiHandler)
}

// protected 认证门 + 角色门组合
//
// 先验证令牌并注入认证身份，再校验角色。
func (h *Handler) protected(next http.HandlerFunc, roles ...model.UserRole) http.HandlerFunc {
	return h.gate.Authenticated(auth.RequireRole(next, roles...))
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
