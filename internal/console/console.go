// Package console は管理コンソールの各画面と、それらが共有する
// 認証情報・通知キュー・リクエストパイプラインを束ねる。
package console

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hitoshi/blogconsole/internal/apiclient"
	"github.com/hitoshi/blogconsole/internal/auth"
	"github.com/hitoshi/blogconsole/internal/author"
	"github.com/hitoshi/blogconsole/internal/blog"
	"github.com/hitoshi/blogconsole/internal/metrics"
	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/navigation"
	"github.com/hitoshi/blogconsole/internal/notify"
	"github.com/hitoshi/blogconsole/internal/resource"
	"github.com/hitoshi/blogconsole/internal/security"
	"github.com/hitoshi/blogconsole/internal/session"
	"github.com/hitoshi/blogconsole/internal/upload"
)

// Options はConsoleの構築オプション。
type Options struct {
	API           apiclient.Config
	HTTPClient    *http.Client
	Notifications notify.Config
	PageLimit     int
	// HardNavigate はルーター登録前のログイン遷移。必須。
	HardNavigate navigation.HardNavigator
	Logger       *slog.Logger
	Metrics      metrics.MetricsCollector
}

// Console は管理コンソール全体の状態を保持する。
// 共有状態は認証情報と通知キューのみで、画面ごとの状態は各Screenが持つ。
type Console struct {
	Store  *session.Store
	Bridge *navigation.Bridge
	Queue  *notify.Queue
	Client *apiclient.Client
	Auth   *auth.Service

	Authors  *AuthorsScreen
	Blogs    *BlogsScreen
	BlogForm *BlogFormScreen

	logger *slog.Logger

	mu    sync.RWMutex
	route string
}

// New はConsoleを構築し、ルーターをBridgeに登録する。
func New(opts Options) (*Console, error) {
	if opts.HardNavigate == nil {
		return nil, fmt.Errorf("hard navigation fallback is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	c := &Console{
		Store:  session.NewStore(),
		Queue:  notify.NewQueue(opts.Notifications, logger, collector),
		logger: logger,
		route:  "/",
	}
	c.Bridge = navigation.NewBridge(opts.HardNavigate, logger)

	client, err := apiclient.NewClient(opts.API, opts.HTTPClient, c.Store, c.Bridge, logger, collector)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	c.Client = client
	c.Auth = auth.NewService(client, c.Store, c.Bridge, logger, c.Queue)

	uploads := upload.NewService(client, logger)
	blogService := blog.NewService(client, security.NewContentSanitizer(), logger)
	blogs := resource.NewController[model.Blog, model.BlogInput](blogService, resource.Config{
		Plural:   "blogs",
		Singular: "blog",
		Limit:    opts.PageLimit,
	}, logger)

	c.Authors = NewAuthorsScreen(author.NewService(client, logger), uploads, c.Queue, opts.PageLimit, logger)
	c.Blogs = newBlogsScreen(blogs, c.Queue, logger)
	c.BlogForm = newBlogFormScreen(blogs, blogService, uploads, c.Queue, c.Navigate, logger)

	c.Bridge.Register(c.Navigate)
	return c, nil
}

// Navigate はルーターとして画面遷移を記録する。
func (c *Console) Navigate(path string) {
	c.mu.Lock()
	c.route = path
	c.mu.Unlock()
	c.logger.Info("navigated", slog.String("path", path))
}

// Route は現在の画面のパスを返す。
func (c *Console) Route() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.route
}

// Close はルーターの登録を解除し、保留中の通知タイマーを停止する。
func (c *Console) Close() {
	c.Bridge.Register(nil)
	c.Queue.Reset()
}
