// Package apiclient はブログ管理APIへのリクエストパイプラインを提供する。
// 認証情報の付与、失敗の分類、読み取りリクエストのリトライ、
// 401受信時のセッション破棄とログイン画面への遷移を一箇所で扱う。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hitoshi/blogconsole/internal/metrics"
	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/session"
)

const (
	userAgent = "BlogConsole/1.0"
	// maxResponseSize はレスポンスボディの読み取り上限（10MB）。
	maxResponseSize = 10 << 20
)

// LoginRedirector はログイン画面への強制遷移を発火する。
// navigation.Bridgeが実装する。
type LoginRedirector interface {
	TriggerLoginRedirect()
}

// Config はClientの設定。
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	RetryBase      time.Duration
	RetryCap       time.Duration
	MaxReadRetries int
	// RateLimit は1秒あたりの最大リクエスト数。0以下で無制限。
	RateLimit float64
	RateBurst int
}

// File はmultipartで送信するファイル。
type File struct {
	Field    string // 空の場合は "image"
	Filename string
	Content  io.Reader
}

// RequestOptions はSendの任意パラメータ。
type RequestOptions struct {
	Query  url.Values
	File   *File
	Header http.Header
}

// Response は2xxレスポンス。
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Client は管理APIへのリクエストパイプライン。
// 呼び出しごとに独立しており、キャッシュは行わない。
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *session.Store
	redirector LoginRedirector
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	limiter    *rate.Limiter
	config     Config

	// テスト用に差し替え可能
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientがnilの場合はConfig.Timeoutを使ったクライアントを生成する。
func NewClient(
	config Config,
	httpClient *http.Client,
	store *session.Store,
	redirector LoginRedirector,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
) (*Client, error) {
	base := strings.TrimRight(config.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme: %q", u.Scheme)
	}
	if store == nil || redirector == nil {
		return nil, fmt.Errorf("session store and login redirector are required")
	}

	if config.RetryBase <= 0 {
		config.RetryBase = DefaultRetryBase
	}
	if config.RetryCap <= 0 {
		config.RetryCap = DefaultRetryCap
	}
	// 読み取りの追加試行は最大DefaultMaxReadRetries回
	if config.MaxReadRetries < 0 {
		config.MaxReadRetries = 0
	}
	if config.MaxReadRetries > DefaultMaxReadRetries {
		config.MaxReadRetries = DefaultMaxReadRetries
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		store:      store,
		redirector: redirector,
		logger:     logger,
		metrics:    collector,
		limiter:    limiter,
		config:     config,
		sleep:      sleepContext,
	}, nil
}

// Send はリクエストを送信し、2xxならResponseを、それ以外は*model.RequestErrorを返す。
//
//   - 4xx（401以外）はリトライせずに即座に返す
//   - 5xxとネットワーク失敗は読み取りメソッドのみ最大MaxReadRetries回リトライする
//   - 401は認証情報を破棄してログイン画面へ遷移し、リトライしない
func (c *Client) Send(ctx context.Context, method, path string, body any, opts *RequestOptions) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	payload, contentType, err := encodeBody(body, opts.File)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	maxAttempts := 1
	if IsReadMethod(method) {
		maxAttempts += c.config.MaxReadRetries
	}

	for attempt := 0; ; attempt++ {
		resp, reqErr := c.do(ctx, method, path, payload, contentType, opts)
		if reqErr == nil {
			return resp, nil
		}

		if !reqErr.Retryable() || attempt+1 >= maxAttempts || ctx.Err() != nil {
			return nil, reqErr
		}

		delay := CalculateBackoff(attempt, c.config.RetryBase, c.config.RetryCap)
		c.logger.Warn("retrying admin API request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", reqErr.Error()),
		)
		c.metrics.RecordRetry(method)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, reqErr
		}
	}
}

// do は1回分の試行を行う。
func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string, opts *RequestOptions) (*Response, *model.RequestError) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &model.RequestError{Kind: model.ErrorKindTransient, Method: method, Path: path, Cause: err}
		}
	}

	reqURL := c.baseURL + path
	if len(opts.Query) > 0 {
		reqURL += "?" + opts.Query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, &model.RequestError{Kind: model.ErrorKindClient, Method: method, Path: path, Cause: err}
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// 送信時点の世代を控えておき、401の重複処理を防ぐ
	credential, generation, authenticated := c.store.Current()
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+credential.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(method, OutcomeTransient.String(), 0, time.Since(start))
		c.logger.Error("admin API request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return nil, &model.RequestError{Kind: model.ErrorKindTransient, Method: method, Path: path, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.metrics.RecordRequest(method, OutcomeTransient.String(), resp.StatusCode, time.Since(start))
		return nil, &model.RequestError{
			Kind:   model.ErrorKindTransient,
			Status: resp.StatusCode,
			Method: method,
			Path:   path,
			Cause:  fmt.Errorf("failed to read response body: %w", err),
		}
	}

	outcome := ClassifyStatus(resp.StatusCode)
	c.metrics.RecordRequest(method, outcome.String(), resp.StatusCode, time.Since(start))

	switch outcome {
	case OutcomeOK:
		return &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
			RequestID:  requestID,
		}, nil

	case OutcomeUnauthenticated:
		c.expireSession(generation, method, path)
		return nil, &model.RequestError{
			Kind:    model.ErrorKindUnauthenticated,
			Status:  resp.StatusCode,
			Message: serverMessage(body),
			Method:  method,
			Path:    path,
		}

	case OutcomeTransient:
		c.logger.Error("admin API returned server error",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, &model.RequestError{
			Kind:    model.ErrorKindTransient,
			Status:  resp.StatusCode,
			Message: serverMessage(body),
			Method:  method,
			Path:    path,
		}

	default:
		c.logger.Warn("admin API rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, &model.RequestError{
			Kind:    model.ErrorKindClient,
			Status:  resp.StatusCode,
			Message: serverMessage(body),
			Method:  method,
			Path:    path,
		}
	}
}

// expireSession は401受信時に認証情報を破棄し、ログイン画面へ遷移する。
// 同じ世代に対する破棄は最初の1回だけ成功するため、
// 同時に複数の401が返っても遷移は1回だけ発火する。
func (c *Client) expireSession(generation uint64, method, path string) {
	if !c.store.Expire(generation) {
		return
	}
	c.logger.Warn("session expired, redirecting to login",
		slog.String("method", method),
		slog.String("path", path),
	)
	c.metrics.RecordSessionExpired()
	c.redirector.TriggerLoginRedirect()
	c.metrics.RecordLoginRedirect()
}

// Get はGETリクエストを送信し、レスポンスのdataをoutにデコードする。
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Send(ctx, http.MethodGet, path, nil, &RequestOptions{Query: query})
	if err != nil {
		return err
	}
	return DecodeData(resp, out)
}

// Post はPOSTリクエストを送信し、レスポンスのdataをoutにデコードする。outがnilなら無視する。
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	resp, err := c.Send(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return err
	}
	return DecodeData(resp, out)
}

// Put はPUTリクエストを送信し、レスポンスのdataをoutにデコードする。
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	resp, err := c.Send(ctx, http.MethodPut, path, body, nil)
	if err != nil {
		return err
	}
	return DecodeData(resp, out)
}

// Delete はDELETEリクエストを送信する。
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Send(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// envelope は管理APIの共通レスポンス形式。
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// DecodeData はレスポンスの {success, message, data} 形式を展開してvにデコードする。
// dataが無い場合はボディ全体をデコードする。vがnilまたはボディが空の場合は何もしない。
func DecodeData(resp *Response, v any) error {
	if v == nil || resp == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err == nil {
		if len(env.Data) > 0 && !bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
			if err := json.Unmarshal(env.Data, v); err != nil {
				return fmt.Errorf("failed to parse response data: %w", err)
			}
			return nil
		}
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

// serverMessage はエラーレスポンスからサーバーのメッセージを取り出す。
func serverMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// encodeBody はリクエストボディをエンコードする。
// fileが指定された場合はmultipart/form-data、それ以外はJSON。
func encodeBody(body any, file *File) ([]byte, string, error) {
	if file != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		field := file.Field
		if field == "" {
			field = "image"
		}
		part, err := w.CreateFormFile(field, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), w.FormDataContentType(), nil
	}

	if body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return b, "application/json", nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
