package middleware

import (
	"encoding/json"
	"net/http"
)

// ResponseBody は管理APIと同じ {success, message, data} 形式のレスポンス。
type ResponseBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON は成功レスポンスを書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	write(w, statusCode, ResponseBody{Success: true, Data: data})
}

// WriteError はエラーレスポンスを書き込む。
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	write(w, statusCode, ResponseBody{Success: false, Message: message})
}

func write(w http.ResponseWriter, statusCode int, body ResponseBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
