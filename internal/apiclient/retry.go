package apiclient

import (
	"net/http"
	"time"
)

// Outcome はHTTPステータスコードに基づくリクエスト結果の分類。
type Outcome int

const (
	// OutcomeOK は2xx。
	OutcomeOK Outcome = iota
	// OutcomeClient は401以外の4xx。リトライしない。
	OutcomeClient
	// OutcomeUnauthenticated は401。認証情報を破棄しログイン画面へ遷移する。
	OutcomeUnauthenticated
	// OutcomeTransient は5xx。読み取りのみリトライ対象。
	OutcomeTransient
	// OutcomeUnknown は1xx/3xxなど想定外のステータス。
	OutcomeUnknown
)

// String はメトリクスのラベルに使う名前を返す。
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeClient:
		return "client"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

const (
	// DefaultRetryBase は指数バックオフの初回遅延。
	DefaultRetryBase = time.Second
	// DefaultRetryCap は指数バックオフの最大遅延。
	DefaultRetryCap = 30 * time.Second
	// DefaultMaxReadRetries は読み取りリクエストの最大追加試行回数。
	DefaultMaxReadRetries = 1
)

// ClassifyStatus はHTTPステータスコードをリクエスト結果に分類する。
func ClassifyStatus(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeOK
	case statusCode == http.StatusUnauthorized:
		return OutcomeUnauthenticated
	case statusCode >= 400 && statusCode < 500:
		return OutcomeClient
	case statusCode >= 500:
		return OutcomeTransient
	default:
		return OutcomeUnknown
	}
}

// CalculateBackoff は試行回数に基づいて指数バックオフ遅延を計算する。
// delay = min(base * 2^attempt, cap)
func CalculateBackoff(attempt int, base, ceiling time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultRetryBase
	}
	if ceiling <= 0 {
		ceiling = DefaultRetryCap
	}
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > ceiling {
			return ceiling
		}
	}
	if delay > ceiling {
		return ceiling
	}
	return delay
}

// IsReadMethod は副作用の無い読み取りメソッドかどうかを返す。
// 変更系メソッドは重複実行を避けるため自動リトライしない。
func IsReadMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}
