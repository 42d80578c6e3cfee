package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"user-directory/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTestMux(store *mockStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return mux
}

func seedUser(t *testing.T, store *mockStore, patch *model.UserPatch) *model.User {
	t.Helper()
	patch.Normalize()
	u, err := store.UpsertUserByEmail(context.Background(), patch.Email, patch)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func decodeUser(t *testing.T, body *bytes.Buffer) *model.User {
	t.Helper()
	var resp userResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.User
}

// TestHandler_Create 测试创建接口
func TestHandler_Create(t *testing.T) {
	mux := newTestMux(newMockStore())

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "成功创建",
			body:       `{"displayName": "Alice", "email": "Alice@X.com"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "同 email 幂等",
			body:       `{"displayName": "Alice2", "email": "alice@x.com"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "无效 JSON",
			body:       `{invalid`,
			wantStatus: http.StatusBadRequest,
		},
	}

	var firstID string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/v1/user", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			u := decodeUser(t, w.Body)
			if u.Email != "alice@x.com" {
				t.Errorf("email = %q, want normalized alice@x.com", u.Email)
			}
			if firstID == "" {
				firstID = u.ID.Hex()
			} else if u.ID.Hex() != firstID {
				t.Errorf("upsert created second record: %s != %s", u.ID.Hex(), firstID)
			}
		})
	}
}

// TestHandler_Update 测试更新接口
func TestHandler_Update(t *testing.T) {
	store := newMockStore()
	mux := newTestMux(store)
	u := seedUser(t, store, &model.UserPatch{Email: strPtr("u@x.com"), DisplayName: strPtr("U")})

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"成功更新", u.ID.Hex(), `{"displayName": "U2"}`, http.StatusOK},
		{"非法 ID", "not-a-hex-id", `{"displayName": "X"}`, http.StatusBadRequest},
		{"不存在", bson.NewObjectID().Hex(), `{"displayName": "X"}`, http.StatusNotFound},
		{"无效 JSON", u.ID.Hex(), `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/v1/user/"+tt.id, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	// 未提供的字段保持不变
	if got, _ := store.GetUserByID(context.Background(), u.ID); got.Email != "u@x.com" || got.DisplayName != "U2" {
		t.Errorf("after update: %q/%q, want u@x.com/U2", got.Email, got.DisplayName)
	}
}

// TestHandler_Delete 测试软删除接口
func TestHandler_Delete(t *testing.T) {
	store := newMockStore()
	mux := newTestMux(store)
	u := seedUser(t, store, &model.UserPatch{Email: strPtr("del@x.com")})
	actor := bson.NewObjectID()

	req := httptest.NewRequest("DELETE", "/v1/user/"+u.ID.Hex(), nil)
	req.Header.Set("X-Acting-User", actor.Hex())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	got := decodeUser(t, w.Body)
	if !got.Deleted || got.DeletedAt == nil {
		t.Error("delete response missing soft-delete fields")
	}
	if got.DeletedBy == nil || *got.DeletedBy != actor {
		t.Error("X-Acting-User not recorded as deleted_by")
	}

	t.Run("非法操作者头", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/v1/user/"+u.ID.Hex(), nil)
		req.Header.Set("X-Acting-User", "garbage")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("不存在", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/v1/user/"+bson.NewObjectID().Hex(), nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

// TestHandler_Restore 测试恢复接口
func TestHandler_Restore(t *testing.T) {
	store := newMockStore()
	mux := newTestMux(store)
	u := seedUser(t, store, &model.UserPatch{Email: strPtr("res@x.com")})
	if _, err := store.SetUserDeleted(context.Background(), u.ID, nil); err != nil {
		t.Fatalf("seed delete: %v", err)
	}

	req := httptest.NewRequest("POST", "/v1/user/"+u.ID.Hex()+"/restore", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	got := decodeUser(t, w.Body)
	if got.Deleted || got.DeletedAt != nil {
		t.Error("restore did not clear soft-delete fields")
	}
}

// TestHandler_Get 测试查询接口
func TestHandler_Get(t *testing.T) {
	store := newMockStore()
	mux := newTestMux(store)

	active := seedUser(t, store, &model.UserPatch{Email: strPtr("g1@x.com"), DisplayName: strPtr("Greta")})
	deleted := seedUser(t, store, &model.UserPatch{Email: strPtr("g2@x.com"), DisplayName: strPtr("Gone")})
	if _, err := store.SetUserDeleted(context.Background(), deleted.ID, nil); err != nil {
		t.Fatalf("seed delete: %v", err)
	}

	page := func(t *testing.T, query string) *userPageResponse {
		t.Helper()
		req := httptest.NewRequest("GET", "/v1/user"+query, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
		}
		var resp userPageResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode page: %v", err)
		}
		return &resp
	}

	t.Run("userId 单查", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/user?userId="+active.ID.Hex(), nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if got := decodeUser(t, w.Body); got.ID != active.ID {
			t.Error("userId lookup returned wrong user")
		}
	})

	t.Run("userId 别名单查", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/user?userId=g1@x.com", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("userId 未命中", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/user?userId=missing@x.com", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("默认排除软删除", func(t *testing.T) {
		resp := page(t, "")
		if resp.UserPage.Total != 1 || resp.UserPage.Items[0].ID != active.ID {
			t.Errorf("default list total = %d, want only the active user", resp.UserPage.Total)
		}
	})

	t.Run("withDeleted 包含软删除", func(t *testing.T) {
		resp := page(t, "?withDeleted=true")
		if resp.UserPage.Total != 2 {
			t.Errorf("withDeleted total = %d, want 2", resp.UserPage.Total)
		}
	})

	t.Run("全文搜索", func(t *testing.T) {
		resp := page(t, "?q=Greta")
		if resp.UserPage.Total != 1 || resp.UserPage.Items[0].ID != active.ID {
			t.Errorf("search total = %d, want 1 match", resp.UserPage.Total)
		}
	})

	t.Run("分页字段", func(t *testing.T) {
		resp := page(t, "?withDeleted=true&page=1&limit=1")
		p := resp.UserPage
		if p.Page != 1 || p.Limit != 1 || p.Pages != 2 || len(p.Items) != 1 {
			t.Errorf("page = %+v, want page 1/limit 1/pages 2 with 1 item", p)
		}
	})
}

// TestParseSort 测试排序参数解析
func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]int
	}{
		{"", nil},
		{"created_at", map[string]int{"created_at": 1}},
		{"-created_at", map[string]int{"created_at": -1}},
		{"-created_at,email", map[string]int{"created_at": -1, "email": 1}},
		{" , ", nil},
		{"-", nil},
	}

	for _, tt := range tests {
		t.Run("sort="+tt.in, func(t *testing.T) {
			got := parseSort(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSort(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
