// Package server 路由配置与核心基础设施
//
// 本包是所有 HTTP API 的入口，将请求分发到各领域独立包
// （auth / content / admin），并持有它们共享的依赖。
//
// 文件组织：
//   - common.go: Handler 定义与通用工具函数
//   - handler.go: 路由配置
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"moderation-admin/internal/apiserver/auth"
	"moderation-admin/internal/shared/audit"
	"moderation-admin/internal/shared/cache"
	"moderation-admin/internal/shared/storage"
	"moderation-admin/pkg/logging"
)

// Handler API 处理器
//
// 依赖说明：
//   - store: MongoDB 存储层（用户/内容/审计日志）
//   - cache: 用户摘要缓存（严格重校验模式回源兜底，可为 NoOp）
//   - tokens: JWT 签发与验证
//   - gate: 认证门（中间件工厂）
type Handler struct {
	store  storage.Store
	cache  cache.UserSummaryCache
	tokens *auth.TokenService
	gate   *auth.Gate
	audit  *audit.Recorder

	metrics *Metrics
	logger  *logging.Logger
}

// Options Handler 可选配置
type Options struct {
	// StrictRevalidate 开启认证门的严格重校验模式
	StrictRevalidate bool
	// Cache 用户摘要缓存，nil 时退化为 NoOp（每次回源存储）
	Cache cache.UserSummaryCache
	// Logger 诊断日志，nil 时使用默认 logger
	Logger *logging.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.Store, tokens *auth.TokenService, opts Options) *Handler {
	c := opts.Cache
	if c == nil {
		c = cache.NewNoOpCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default("apiserver")
	}

	h := &Handler{
		store:   store,
		cache:   c,
		tokens:  tokens,
		audit:   audit.NewRecorder(store, logger),
		metrics: NewMetrics("moderation"),
		logger:  logger,
	}

	h.gate = auth.NewGate(tokens)
	if opts.StrictRevalidate {
		h.gate = h.gate.WithStrictRevalidation(auth.NewCachedUserSource(store, c))
	}
	return h
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 用于负载均衡器和监控系统检查服务状态。
// 返回 {"status": "ok"} 表示服务正常运行。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
