package server

import (
	"net/http"

	"user-directory/internal/apiserver/user"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /                  - 存活探针
//   - GET /api/healthcheck   - 服务健康检查
//
// 用户管理 (User):
//   - POST   /v1/user              - 创建用户（按 email 幂等 upsert）
//   - PUT    /v1/user/{id}         - 更新用户
//   - DELETE /v1/user/{id}         - 软删除用户
//   - POST   /v1/user/{id}/restore - 恢复软删除
//   - GET    /v1/user              - 查询（userId 单查 / 分页列表 / 全文搜索）
//
// 可观测性:
//   - GET /metrics - Prometheus 指标
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /{$}", h.Alive)
	mux.HandleFunc("GET /api/healthcheck", h.Healthcheck)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// User 接口
	userHandler := user.NewHandler(h.store)
	userHandler.RegisterRoutes(mux)

	// 应用指标中间件到 REST API
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用 CORS 中间件
	return corsMiddleware(apiHandler)
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Acting-User")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
