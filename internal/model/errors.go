// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrorKind は管理APIへのリクエスト失敗の分類を表す。
type ErrorKind string

const (
	// ErrorKindClient は4xx（401を除く）の失敗。リトライしない。
	ErrorKindClient ErrorKind = "client"
	// ErrorKindUnauthenticated は401。認証情報を破棄しログイン画面へ遷移する。
	ErrorKindUnauthenticated ErrorKind = "unauthenticated"
	// ErrorKindTransient は5xxまたはネットワークレベルの失敗。読み取りのみリトライ対象。
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindUpload は2xx応答に画像URLが含まれなかったアップロード失敗。
	ErrorKindUpload ErrorKind = "upload"
	// ErrorKindValidation は送信前の入力検証エラー。ネットワーク呼び出しは行わない。
	ErrorKindValidation ErrorKind = "validation"
)

// RequestError はリクエスト結果の失敗側を表す。
// 成功側はデコード済みのペイロードとして呼び出し元に返される。
type RequestError struct {
	Kind    ErrorKind
	Status  int    // HTTPステータス。ネットワーク失敗時は0
	Message string // サーバーが返したメッセージ。無い場合は空
	Method  string
	Path    string
	Cause   error
}

// Error はerrorインターフェースを実装する。
func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Cause)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s failed (%s)", e.Method, e.Path, e.Kind)
}

// Unwrap は原因エラーを返す。
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Retryable は失敗が一時的でリトライ対象になり得るかを返す。
// 実際にリトライするかは呼び出しメソッドにも依存する。
func (e *RequestError) Retryable() bool {
	return e.Kind == ErrorKindTransient
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *RequestError {
	return &RequestError{
		Kind:    ErrorKindValidation,
		Message: message,
	}
}

// NewUploadError は画像URLを取得できなかったアップロード失敗を生成する。
func NewUploadError(path string, status int) *RequestError {
	return &RequestError{
		Kind:    ErrorKindUpload,
		Status:  status,
		Message: "Failed to get image URL from response",
		Method:  "POST",
		Path:    path,
	}
}

// KindOf はエラーの分類を返す。RequestError以外は空文字列。
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return ""
}

// IsUnauthenticated はエラーが401由来かどうかを返す。
func IsUnauthenticated(err error) bool {
	return KindOf(err) == ErrorKindUnauthenticated
}

// MessageOf はUIに表示するメッセージを返す。
// サーバーが返したメッセージがあればそのまま、無ければ操作ごとのfallbackを返す。
func MessageOf(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Message != "" {
			return reqErr.Message
		}
		return fallback
	}
	return fallback
}
