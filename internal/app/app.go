package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/blogconsole/internal/apiclient"
	"github.com/hitoshi/blogconsole/internal/config"
	"github.com/hitoshi/blogconsole/internal/console"
	"github.com/hitoshi/blogconsole/internal/handler"
	"github.com/hitoshi/blogconsole/internal/logger"
	"github.com/hitoshi/blogconsole/internal/metrics"
	"github.com/hitoshi/blogconsole/internal/notify"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 設定読み込み前にログを使えるようにする
	logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel)), nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
	}

	cfg, log, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("admin_api", cfg.AdminAPIBaseURL),
	)

	return runServe(cfg, log)
}

// NewConsole は設定からConsoleを構築する。
// ルーター登録前のログイン遷移はログ出力のみ行う。
func NewConsole(cfg *config.Config, log *slog.Logger, collector metrics.MetricsCollector) (*console.Console, error) {
	return console.New(console.Options{
		API: apiclient.Config{
			BaseURL:        cfg.AdminAPIBaseURL,
			Timeout:        cfg.APITimeout,
			RetryBase:      cfg.APIRetryBase,
			RetryCap:       cfg.APIRetryCap,
			MaxReadRetries: cfg.APIReadRetries,
			RateLimit:      cfg.APIRateLimit,
			RateBurst:      cfg.APIRateBurst,
		},
		Notifications: notify.Config{
			SuccessTTL: cfg.ToastSuccessTTL,
			ErrorTTL:   cfg.ToastErrorTTL,
		},
		PageLimit: cfg.PageLimit,
		HardNavigate: func(path string) {
			log.Warn("hard navigation requested",
				slog.String("url", cfg.LoginURL(path)),
			)
		},
		Logger:  log,
		Metrics: collector,
	})
}

// Bootstrap は起動時ログインを行い、一覧画面を初回表示する。
// 認証情報が未設定の場合は何もしない。
func Bootstrap(ctx context.Context, c *console.Console, cfg *config.Config, log *slog.Logger) error {
	if !cfg.HasAdminCredentials() {
		log.Info("admin credentials not set, skipping login")
		return nil
	}

	user, err := c.Auth.Login(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	log.Info("logged in", slog.String("user_id", user.ID))

	c.Navigate("/authors")
	c.Authors.Render(ctx)
	c.Blogs.Render(ctx)
	return nil
}

// NewServer は状態確認用HTTPサーバーを生成する。
func NewServer(cfg *config.Config, c *console.Console, gatherer prometheus.Gatherer, log *slog.Logger) *http.Server {
	router := handler.NewRouter(&handler.RouterDeps{
		Session:       c.Store,
		Notifications: c.Queue,
		Authors:       c.Authors,
		Blogs:         c.Blogs,
		Routes:        c,
		Gatherer:      gatherer,
		Logger:        log,
	})

	return &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// runServe はコンソールを構築し、状態確認用HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, log *slog.Logger) error {
	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 2. コンソールの構築
	c, err := NewConsole(cfg, log, collector)
	if err != nil {
		return fmt.Errorf("failed to build console: %w", err)
	}
	defer c.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. 起動時ログインと初回表示
	if err := Bootstrap(ctx, c, cfg, log); err != nil {
		log.Error("bootstrap failed", slog.String("error", err.Error()))
	}

	// 4. HTTPサーバーの起動
	server := NewServer(cfg, c, reg, log)

	go func() {
		log.Info("console server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server listen error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down console server...")

	// ログアウトはベストエフォート
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if c.Store.Authenticated() {
		c.Auth.Logout(shutdownCtx)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("console server stopped gracefully")
	return nil
}

// checkHealth はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
func checkHealth(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
