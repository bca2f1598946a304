// Package handler はコンソールの状態を確認するためのHTTPハンドラーを提供する。
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogconsole/internal/console"
	"github.com/hitoshi/blogconsole/internal/middleware"
	"github.com/hitoshi/blogconsole/internal/model"
)

// SessionReporter は認証状態を返す。
type SessionReporter interface {
	Authenticated() bool
}

// NotificationService は通知キューの操作を定義する。
type NotificationService interface {
	List() []model.Notification
	Dismiss(id uint64)
}

// AuthorsViewer は著者画面の表示状態を返す。
type AuthorsViewer interface {
	View() console.AuthorsView
}

// BlogsViewer はブログ一覧画面の表示状態を返す。
type BlogsViewer interface {
	View() console.BlogsView
}

// RouteReporter は現在の画面のパスを返す。
type RouteReporter interface {
	Route() string
}

// ConsoleHandler はコンソール状態確認用のハンドラー。
type ConsoleHandler struct {
	session       SessionReporter
	notifications NotificationService
	authors       AuthorsViewer
	blogs         BlogsViewer
	routes        RouteReporter
}

// NewConsoleHandler はConsoleHandlerの新しいインスタンスを生成する。
func NewConsoleHandler(deps *RouterDeps) *ConsoleHandler {
	return &ConsoleHandler{
		session:       deps.Session,
		notifications: deps.Notifications,
		authors:       deps.Authors,
		blogs:         deps.Blogs,
		routes:        deps.Routes,
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// Health はプロセスの稼働状態と認証状態を返す。
// GET /health
func (h *ConsoleHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.session != nil {
		resp.Authenticated = h.session.Authenticated()
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Route は現在の画面のパスを返す。
// GET /console/route
func (h *ConsoleHandler) Route(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"route": h.routes.Route()})
}

// Authors は著者画面の表示状態を返す。
// GET /console/authors
func (h *ConsoleHandler) Authors(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.authors.View())
}

// Blogs はブログ一覧画面の表示状態を返す。
// GET /console/blogs
func (h *ConsoleHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.blogs.View())
}

// ListNotifications は表示中の通知を古い順に返す。
// GET /console/notifications
func (h *ConsoleHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.notifications.List())
}

// DismissNotification は通知を閉じる。存在しないIDでも成功を返す。
// DELETE /console/notifications/{id}
func (h *ConsoleHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	h.notifications.Dismiss(id)
	w.WriteHeader(http.StatusNoContent)
}
