package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"user-directory/internal/shared/model"
	"user-directory/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Handler 用户领域 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建用户处理器
func NewHandler(store storage.UserStore) *Handler {
	return &Handler{svc: NewService(store)}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/user", h.Create)
	mux.HandleFunc("PUT /v1/user/{id}", h.Update)
	mux.HandleFunc("DELETE /v1/user/{id}", h.Delete)
	mux.HandleFunc("POST /v1/user/{id}/restore", h.Restore)
	mux.HandleFunc("GET /v1/user", h.Get)
}

// ============================================================================
// 请求/响应类型
// ============================================================================

// userRequest 创建/更新用户的请求体
//
// 指针字段区分"未提供"与"空值"：缺失的字段不会覆盖已有数据。
type userRequest struct {
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Username    *string `json:"username"`
	UID         *string `json:"uid"`
	Status      *string `json:"status"`
}

func (r *userRequest) patch() *model.UserPatch {
	return &model.UserPatch{
		DisplayName: r.DisplayName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Username:    r.Username,
		UID:         r.UID,
		Status:      r.Status,
	}
}

type userResponse struct {
	User *model.User `json:"user"`
}

type userPageResponse struct {
	UserPage *storage.Page[model.User] `json:"userPage"`
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// Create 创建用户（按 email 幂等 upsert）
// POST /v1/user
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Create(r.Context(), req.patch())
	if err != nil {
		writeServiceError(w, "Create", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

// Update 更新用户
// PUT /v1/user/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Update(r.Context(), id, req.patch())
	if err != nil {
		writeServiceError(w, "Update", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

// Delete 软删除用户
// DELETE /v1/user/{id}
//
// 可选请求头 X-Acting-User（原生 ID）记录执行删除的用户。
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var deletedBy *bson.ObjectID
	if acting := r.Header.Get("X-Acting-User"); acting != "" {
		oid, err := bson.ObjectIDFromHex(acting)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid X-Acting-User header")
			return
		}
		deletedBy = &oid
	}

	u, err := h.svc.Delete(r.Context(), r.PathValue("id"), deletedBy)
	if err != nil {
		writeServiceError(w, "Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

// Restore 恢复软删除的用户
// POST /v1/user/{id}/restore
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Restore(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "Restore", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

// Get 查询用户
// GET /v1/user
//
// 支持的查询参数：
//   - userId:      按原生 ID 或别名查找单个用户，返回 {user}
//   - page/limit:  分页（默认 1 页 10 条）
//   - sort:        逗号分隔字段列表，前缀 - 表示降序（如 "-created_at,email"）
//   - q:           全文搜索词
//   - status:      按状态筛选
//   - withDeleted: "true" 时包含软删除记录（默认注入 deleted=false）
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if userID := query.Get("userId"); userID != "" {
		u, err := h.svc.FindByID(r.Context(), userID)
		if err != nil {
			writeServiceError(w, "FindByID", err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{User: u})
		return
	}

	filter := storage.UserFilter{
		Fields: map[string]any{},
		Search: strings.TrimSpace(query.Get("q")),
	}
	if status := query.Get("status"); status != "" {
		filter.Fields["status"] = status
	}
	// 默认排除软删除记录；服务层本身不做隐式过滤
	if query.Get("withDeleted") != "true" {
		filter.Fields["deleted"] = false
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	opts := storage.PageOptions{
		Sort:  parseSort(query.Get("sort")),
		Page:  page,
		Limit: limit,
	}

	userPage, err := h.svc.Page(r.Context(), filter, opts)
	if err != nil {
		writeServiceError(w, "Page", err)
		return
	}
	writeJSON(w, http.StatusOK, userPageResponse{UserPage: userPage})
}

// writeServiceError 将服务层错误映射为 HTTP 状态码
//
// 映射规则：ErrNotFound -> 404，ErrDuplicate -> 409，其余 -> 500。
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, storage.ErrDuplicate):
		writeError(w, http.StatusConflict, "user with conflicting unique field already exists")
	default:
		log.Printf("[User] %s error: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
