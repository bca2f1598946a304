// Package notify はユーザー向けの一時的な通知キューを提供する。
// 通知は種別ごとの有効期間が過ぎると自動で削除される。
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/blogconsole/internal/metrics"
	"github.com/hitoshi/blogconsole/internal/model"
)

const (
	// DefaultSuccessTTL は成功通知の表示時間。
	DefaultSuccessTTL = 3 * time.Second
	// DefaultErrorTTL はエラー通知の表示時間。
	DefaultErrorTTL = 5 * time.Second
)

// Config は通知キューの設定。
type Config struct {
	SuccessTTL time.Duration
	ErrorTTL   time.Duration
}

// DefaultConfig はデフォルトの通知キュー設定を返す。
func DefaultConfig() Config {
	return Config{
		SuccessTTL: DefaultSuccessTTL,
		ErrorTTL:   DefaultErrorTTL,
	}
}

type entry struct {
	notification model.Notification
	timer        *time.Timer
}

// Queue は通知キュー。通知ごとに独立したタイマーを持ち、
// 1件の削除が他の通知の削除タイミングに影響することはない。
type Queue struct {
	mu      sync.Mutex
	config  Config
	entries []*entry
	nextID  uint64
	logger  *slog.Logger
	metrics metrics.MetricsCollector
	now     func() time.Time
}

// NewQueue はQueueの新しいインスタンスを生成する。
// TTLが0以下の場合はデフォルト値を使用する。
func NewQueue(config Config, logger *slog.Logger, collector metrics.MetricsCollector) *Queue {
	if config.SuccessTTL <= 0 {
		config.SuccessTTL = DefaultSuccessTTL
	}
	if config.ErrorTTL <= 0 {
		config.ErrorTTL = DefaultErrorTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Queue{
		config:  config,
		logger:  logger,
		metrics: collector,
		now:     time.Now,
	}
}

// Push は通知を追加し、種別ごとの有効期間後に削除するタイマーを設定する。
func (q *Queue) Push(kind model.NotificationKind, title, description string) uint64 {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	n := model.Notification{
		ID:          id,
		Kind:        kind,
		Title:       title,
		Description: description,
		CreatedAt:   q.now(),
	}
	e := &entry{notification: n}
	e.timer = time.AfterFunc(q.ttl(kind), func() { q.expire(id) })
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	q.metrics.RecordNotification(string(kind))
	if kind == model.NotificationError {
		q.logger.Info("error notification pushed",
			slog.Uint64("notification_id", id),
			slog.String("title", title),
			slog.String("description", description),
		)
	}
	return id
}

// Success は成功通知を追加する。
func (q *Queue) Success(title, description string) uint64 {
	return q.Push(model.NotificationSuccess, title, description)
}

// Error はエラー通知を追加する。
func (q *Queue) Error(title, description string) uint64 {
	return q.Push(model.NotificationError, title, description)
}

// Dismiss は通知を即座に削除し、保留中の自動削除を取り消す。
// 既に削除済みのIDに対しては何もしない。
func (q *Queue) Dismiss(id uint64) {
	q.remove(id, true)
}

// expire はタイマーから呼ばれる自動削除。
func (q *Queue) expire(id uint64) {
	q.remove(id, false)
}

func (q *Queue) remove(id uint64, stopTimer bool) {
	q.mu.Lock()
	idx := -1
	for i, e := range q.entries {
		if e.notification.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	if stopTimer {
		q.entries[idx].timer.Stop()
	}
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	q.mu.Unlock()
}

// List は現在の通知を挿入順で返す。
func (q *Queue) List() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.notification
	}
	return out
}

// Len は現在の通知数を返す。
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Reset は全ての通知とタイマーを破棄する。ログアウト時に使う。
func (q *Queue) Reset() {
	q.mu.Lock()
	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	q.mu.Unlock()
}

func (q *Queue) ttl(kind model.NotificationKind) time.Duration {
	if kind == model.NotificationError {
		return q.config.ErrorTTL
	}
	return q.config.SuccessTTL
}
