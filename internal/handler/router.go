package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/blogconsole/internal/metrics"
	"github.com/hitoshi/blogconsole/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Session       SessionReporter
	Notifications NotificationService
	Authors       AuthorsViewer
	Blogs         BlogsViewer
	Routes        RouteReporter

	// Gathererがnilの場合は/metricsを公開しない
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter はコンソール状態確認用のルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware(logger))

	h := NewConsoleHandler(deps)

	r.Get("/health", h.Health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/console", func(r chi.Router) {
		r.Get("/route", h.Route)
		r.Get("/authors", h.Authors)
		r.Get("/blogs", h.Blogs)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Delete("/{id}", h.DismissNotification)
		})
	})

	return r
}
