// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// リクエストパイプラインと通知キューから利用する。
type MetricsCollector interface {
	RecordRequest(method, outcome string, statusCode int, duration time.Duration)
	RecordRetry(method string)
	RecordSessionExpired()
	RecordLoginRedirect()
	RecordNotification(kind string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	requests        *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	sessionsExpired prometheus.Counter
	loginRedirects  prometheus.Counter
	notifications   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogconsole_api_requests_total",
			Help: "管理APIへのリクエスト試行数（メソッド・結果別）",
		}, []string{"method", "outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogconsole_api_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blogconsole_api_request_latency_seconds",
			Help:    "管理APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogconsole_api_retries_total",
			Help: "一時的エラーによるリトライ数",
		}, []string{"method"}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogconsole_sessions_expired_total",
			Help: "401受信により破棄された認証情報の数",
		}),
		loginRedirects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogconsole_login_redirects_total",
			Help: "ログイン画面への強制遷移の数",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogconsole_notifications_total",
			Help: "種別ごとの通知数",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.requests,
		c.httpStatus,
		c.requestLatency,
		c.retries,
		c.sessionsExpired,
		c.loginRedirects,
		c.notifications,
	)

	return c
}

// RecordRequest はリクエスト1試行の結果を記録する。
// statusCodeが0（ネットワーク失敗）の場合はステータス別カウンタを更新しない。
func (c *Collector) RecordRequest(method, outcome string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(method, outcome).Inc()
	if statusCode > 0 {
		c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	}
	c.requestLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordRetry はリトライを記録する。
func (c *Collector) RecordRetry(method string) {
	c.retries.WithLabelValues(method).Inc()
}

// RecordSessionExpired は認証情報の破棄を記録する。
func (c *Collector) RecordSessionExpired() {
	c.sessionsExpired.Inc()
}

// RecordLoginRedirect はログイン画面への強制遷移を記録する。
func (c *Collector) RecordLoginRedirect() {
	c.loginRedirects.Inc()
}

// RecordNotification は通知の追加を記録する。
func (c *Collector) RecordNotification(kind string) {
	c.notifications.WithLabelValues(kind).Inc()
}

// NopCollector は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type NopCollector struct{}

func (NopCollector) RecordRequest(string, string, int, time.Duration) {}
func (NopCollector) RecordRetry(string)                                {}
func (NopCollector) RecordSessionExpired()                             {}
func (NopCollector) RecordLoginRedirect()                              {}
func (NopCollector) RecordNotification(string)                         {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
