// Package auth はオペレーターのログイン・ログアウトと現在のユーザー取得を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/hitoshi/blogconsole/internal/apiclient"
	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/session"
)

const (
	loginPath  = "/admin/auth/login"
	logoutPath = "/admin/auth/logout"
	mePath     = "/admin/auth/me"
)

// Redirector はログイン画面への遷移を行う。
type Redirector interface {
	TriggerLoginRedirect()
}

// Resetter はログアウト時に画面側の状態を破棄する。
type Resetter interface {
	Reset()
}

// meResponse は /admin/auth/me のdata部。
type meResponse struct {
	User *model.User `json:"user"`
}

// Service は認証に関する操作を提供する。
type Service struct {
	client     *apiclient.Client
	store      *session.Store
	redirector Redirector
	resetters  []Resetter
	logger     *slog.Logger

	mu   sync.RWMutex
	user *model.User
}

// NewService はServiceを生成する。
// resettersはログアウト時に呼ばれる（通知キューなど）。
func NewService(
	client *apiclient.Client,
	store *session.Store,
	redirector Redirector,
	logger *slog.Logger,
	resetters ...Resetter,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:     client,
		store:      store,
		redirector: redirector,
		resetters:  resetters,
		logger:     logger,
	}
}

// Login はメールアドレスとパスワードでログインし、認証情報をStoreに設定する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("Email and password are required")
	}

	var resp model.LoginResponse
	if err := s.client.Post(ctx, loginPath, model.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		s.logger.Warn("login failed", slog.String("email", email), slog.String("error", err.Error()))
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response did not contain a token")
	}

	s.store.Set(model.Credential{Token: resp.Token, RefreshToken: resp.RefreshToken})

	user := resp.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.Info("operator logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return &user, nil
}

// Logout はサーバーへログアウトを通知し、認証情報と画面状態を破棄してログイン画面へ遷移する。
// サーバーへの通知失敗はログに記録するだけで、ローカルの破棄は必ず行う。
func (s *Service) Logout(ctx context.Context) {
	// 401の場合はリクエストパイプラインが既にログイン画面へ遷移させている
	redirected := false
	if s.store.Authenticated() {
		if _, err := s.client.Send(ctx, http.MethodPost, logoutPath, nil, nil); err != nil {
			redirected = model.IsUnauthenticated(err)
			s.logger.Warn("logout request failed", slog.String("error", err.Error()))
		}
	}

	s.store.Clear()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	for _, r := range s.resetters {
		r.Reset()
	}
	if !redirected {
		s.redirector.TriggerLoginRedirect()
	}
	s.logger.Info("operator logged out")
}

// Me は現在ログイン中のユーザーをサーバーから取得する。
func (s *Service) Me(ctx context.Context) (*model.User, error) {
	resp, err := s.client.Send(ctx, http.MethodGet, mePath, nil, nil)
	if err != nil {
		return nil, err
	}

	// {user: {...}} と ユーザー直下の両方を受け付ける
	var wrapped meResponse
	if err := apiclient.DecodeData(resp, &wrapped); err != nil {
		return nil, err
	}
	user := wrapped.User
	if user == nil {
		user = &model.User{}
		if err := apiclient.DecodeData(resp, user); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// CurrentUser は最後にログインまたは取得したユーザーを返す。
func (s *Service) CurrentUser() (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || !s.store.Authenticated() {
		return nil, false
	}
	u := *s.user
	return &u, true
}
