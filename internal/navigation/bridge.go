// Package navigation はUIルーターを直接参照せずにログイン画面への遷移を
// 要求するための橋渡しを提供する。
package navigation

import (
	"log/slog"
	"sync"
)

// LoginPath はログイン画面のパス。
const LoginPath = "/login"

// Handler はUIルーターが登録する画面遷移関数。
type Handler func(path string)

// HardNavigator はルーター登録前に使われるページ全体の再読み込みによる遷移。
type HardNavigator func(path string)

// Bridge はリクエストパイプラインからログイン画面への遷移を発火する。
// ルーター登録前はHardNavigatorにフォールバックし、遷移が握り潰されることはない。
// 登録後は呼び出し1回につきHandlerを1回だけ呼ぶ。保留中の遷移はキューしない。
type Bridge struct {
	mu       sync.RWMutex
	handler  Handler
	fallback HardNavigator
	logger   *slog.Logger
}

// NewBridge はBridgeを生成する。fallbackは必須。
func NewBridge(fallback HardNavigator, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		fallback: fallback,
		logger:   logger,
	}
}

// Register はUIルーターの遷移関数を登録する。nilを渡すと登録を解除する。
func (b *Bridge) Register(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// TriggerLoginRedirect はログイン画面への遷移を発火する。
func (b *Bridge) TriggerLoginRedirect() {
	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()

	if h != nil {
		b.logger.Info("redirecting to login", slog.String("mode", "router"))
		h(LoginPath)
		return
	}

	b.logger.Warn("router not registered, falling back to hard navigation",
		slog.String("path", LoginPath),
	)
	b.fallback(LoginPath)
}
