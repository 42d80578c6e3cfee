package user

import (
	"encoding/json"
	"net/http"
	"strings"
)

// writeJSON 写入 JSON 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError 写入错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parseSort 解析排序参数
//
// 格式：逗号分隔字段列表，前缀 - 表示降序。
// 例如 "-created_at,email" -> {created_at: -1, email: 1}
func parseSort(s string) map[string]int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	sort := map[string]int{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(field, "-") {
			dir = -1
			field = field[1:]
		}
		if field != "" {
			sort[field] = dir
		}
	}
	if len(sort) == 0 {
		return nil
	}
	return sort
}
