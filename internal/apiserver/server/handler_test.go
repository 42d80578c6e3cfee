package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// 指标通过 promauto 注册到全局 registry，Handler 在测试内只构造一次
var (
	testHandlerOnce sync.Once
	testHandler     *Handler
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	testHandlerOnce.Do(func() {
		testHandler = NewHandler(nil)
	})
	return testHandler.Router()
}

// TestAlive 测试存活探针
func TestAlive(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["body"] != "I'm alive" {
		t.Errorf("body = %q, want \"I'm alive\"", resp["body"])
	}
}

// TestHealthcheck 测试健康检查接口
func TestHealthcheck(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("GET", "/api/healthcheck", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]healthcheckBody
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	hc, ok := resp["healthcheck"]
	if !ok {
		t.Fatal("response missing healthcheck key")
	}
	if hc.Status != "active" {
		t.Errorf("status = %q, want active", hc.Status)
	}
	if hc.Message == "" {
		t.Error("message is empty")
	}
	if _, err := time.Parse(time.RFC3339, hc.Date); err != nil {
		t.Errorf("date %q is not RFC3339: %v", hc.Date, err)
	}
}

// TestCORSPreflight 测试跨域预检请求
func TestCORSPreflight(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("OPTIONS", "/v1/user", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

// TestNormalizePath 测试指标路径规范化
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/api/healthcheck", "/api/healthcheck"},
		{"/v1/user", "/v1/user"},
		{"/v1/user/65a9c2f4e1b2c3d4e5f60718", "/v1/user/{id}"},
		{"/v1/user/someone@example.com", "/v1/user/{id}"},
		{"/v1/user/65a9c2f4e1b2c3d4e5f60718/restore", "/v1/user/{id}/restore"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizePath(tt.in); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
