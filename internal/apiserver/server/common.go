// Package server 提供 HTTP API 路由与核心基础设施
//
// 文件组织：
//   - common.go:  Handler 定义、健康检查、通用工具函数
//   - handler.go: 路由配置与中间件
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"user-directory/internal/shared/storage"
)

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，负责：
//   - 路由请求到对应的领域包
//   - 管理存储层连接的引用（生命周期由进程入口管理）
type Handler struct {
	store   storage.UserStore
	metrics *Metrics
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.UserStore) *Handler {
	return &Handler{
		store:   store,
		metrics: NewMetrics("userdir"),
	}
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

// healthcheckBody GET /api/healthcheck 的响应体
type healthcheckBody struct {
	Message string `json:"message"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

// Alive 存活探针
//
// 路由: GET /
func (h *Handler) Alive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"body": "I'm alive"})
}

// Healthcheck 健康检查接口
//
// 路由: GET /api/healthcheck
//
// 用于负载均衡器和监控系统检查服务状态。
func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]healthcheckBody{
		"healthcheck": {
			Message: "The Api is fully functional",
			Date:    time.Now().UTC().Format(time.RFC3339),
			Status:  "active",
		},
	})
}
