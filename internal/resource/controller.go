// Package resource はページング付きCRUDリソースの状態を保持するコントローラーを提供する。
// 著者とブログ記事はどちらもこのコントローラーを型パラメータで具体化して使う。
package resource

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/blogconsole/internal/model"
)

// Service はコントローラーが利用するリソースAPI。
type Service[T, In any] interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[T], error)
	Create(ctx context.Context, in In) (*T, error)
	Update(ctx context.Context, id string, in In) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Config はコントローラーの設定。
type Config struct {
	// Plural は一覧取得失敗時のメッセージに使う複数形（例: "authors"）。
	Plural string
	// Singular は変更失敗時のメッセージに使う単数形（例: "author"）。
	Singular string
	// Limit は1ページあたりの件数。0以下の場合はmodel.DefaultPageLimit。
	Limit int
}

// Controller はリソース一覧・ローディング・エラー・ページング状態を保持する。
//
// 同一コントローラーへの同時呼び出しは直列化しない。
// 応答は完了順に反映され、後に完了したものが状態を上書きする。
type Controller[T, In any] struct {
	service Service[T, In]
	config  Config
	logger  *slog.Logger

	mu         sync.Mutex
	items      []T
	loading    bool
	errMsg     string
	pagination model.Pagination
	search     string

	mountOnce sync.Once
}

// NewController はControllerの新しいインスタンスを生成する。
func NewController[T, In any](service Service[T, In], config Config, logger *slog.Logger) *Controller[T, In] {
	if config.Limit <= 0 {
		config.Limit = model.DefaultPageLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T, In]{
		service:    service,
		config:     config,
		logger:     logger.With(slog.String("resource", config.Plural)),
		items:      []T{},
		pagination: model.NewPagination(0, 1, config.Limit),
	}
}

// Mount は画面表示時に呼ぶ。何度呼ばれても自動取得は最初の1回だけ行う。
// 初回呼び出し時のみ取得の完了を待ち、trueを返す。
func (c *Controller[T, In]) Mount(ctx context.Context) bool {
	fetched := false
	c.mountOnce.Do(func() {
		fetched = true
		c.Fetch(ctx, 1, "")
	})
	return fetched
}

// Fetch は指定ページを取得する。
// 成功時はItemsとPaginationを丸ごと置き換え、失敗時はItemsを変更せずErrorを設定する。
// 読み取り系のため失敗は呼び出し元に返さず状態にのみ反映する。
func (c *Controller[T, In]) Fetch(ctx context.Context, page int, search string) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	result, err := c.service.List(ctx, model.ListParams{
		Page:   page,
		Limit:  c.config.Limit,
		Search: search,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.errMsg = model.MessageOf(err, "Failed to fetch "+c.config.Plural)
		c.logger.Error("failed to fetch resource list",
			slog.Int("page", page),
			slog.String("search", search),
			slog.String("error", err.Error()),
		)
		return
	}

	items := []T{}
	if result != nil && result.Items != nil {
		items = append(items, result.Items...)
	}
	c.items = items
	c.search = search
	if result != nil && result.Pagination != nil {
		c.pagination = result.Pagination.Normalize()
	}
}

// Create はリソースを作成し、成功時は現在のページを再取得する。
// 失敗時はErrorを設定し、エラーを呼び出し元に返す。
func (c *Controller[T, In]) Create(ctx context.Context, in In) error {
	return c.mutate(ctx, "create", func() error {
		_, err := c.service.Create(ctx, in)
		return err
	})
}

// Update はリソースを更新し、成功時は現在のページを再取得する。
func (c *Controller[T, In]) Update(ctx context.Context, id string, in In) error {
	return c.mutate(ctx, "update", func() error {
		_, err := c.service.Update(ctx, id, in)
		return err
	})
}

// Delete はリソースを削除し、成功時は現在のページを再取得する。
func (c *Controller[T, In]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, "delete", func() error {
		return c.service.Delete(ctx, id)
	})
}

// mutate は変更系操作の共通処理。
// 楽観的な部分更新は行わず、成功時は必ずサーバーから一覧を取り直す。
func (c *Controller[T, In]) mutate(ctx context.Context, op string, call func() error) error {
	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	if err := call(); err != nil {
		c.mu.Lock()
		c.loading = false
		c.errMsg = model.MessageOf(err, "Failed to "+op+" "+c.config.Singular)
		c.mu.Unlock()
		c.logger.Warn("resource mutation failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return err
	}

	page, search := c.cursor()
	c.Fetch(ctx, page, search)

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
	return nil
}

// cursor は最後に取得したページと検索語を返す。
func (c *Controller[T, In]) cursor() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination.Page, c.search
}

// State は現在の状態のスナップショットを返す。
func (c *Controller[T, In]) State() model.ListState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return model.ListState[T]{
		Items:      items,
		Loading:    c.loading,
		Error:      c.errMsg,
		Pagination: c.pagination,
	}
}

// Search は最後に成功した取得の検索語を返す。
func (c *Controller[T, In]) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}
