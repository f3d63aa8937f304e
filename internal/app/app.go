package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/isotoolkit/keeper/internal/access"
	"github.com/isotoolkit/keeper/internal/bot"
	"github.com/isotoolkit/keeper/internal/catalog"
	"github.com/isotoolkit/keeper/internal/chat"
	"github.com/isotoolkit/keeper/internal/config"
	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/folders"
	"github.com/isotoolkit/keeper/internal/httpserver"
	"github.com/isotoolkit/keeper/internal/httpserver/deps"
	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/redis"
	"github.com/isotoolkit/keeper/internal/relay"
	"github.com/isotoolkit/keeper/internal/scheduler"
	"github.com/isotoolkit/keeper/internal/sources/allowlist"
	"github.com/isotoolkit/keeper/internal/stats"
	redisstore "github.com/isotoolkit/keeper/internal/store/redis"
	"github.com/isotoolkit/keeper/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	keepAlive   *scheduler.KeepAlive
	bot         *bot.Bot
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional: without an address the allow-set and folders live
	// in memory only. With one configured, fail fast if it is unreachable.
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		store = redisstore.NewStore(client)
	} else {
		loggerClient.Info("no redis address configured, running memory-only")
	}

	// Access gate and folder labels, memory-primary with best-effort
	// persistence.
	var gateStore access.Store
	var folderStore folders.Store
	if store != nil {
		gateStore = store
		folderStore = store
	}
	gate := access.NewGate(cfg.OwnerID, gateStore, loggerClient)
	folderMgr := folders.NewManager(folderStore, loggerClient)

	// Restore persisted state before taking any commands.
	if store != nil {
		syncer := scheduler.NewStoreSyncer(store, gate, folderMgr, loggerClient)
		if err := syncer.Sync(context.Background()); err != nil {
			loggerClient.Warn("failed to sync from redis on startup, starting with empty allow-set",
				logger.Error(err))
		}
	}

	// Optional allow-list seed file on top of whatever redis restored.
	if cfg.AllowlistFile != "" {
		ids, err := allowlist.NewLoader(cfg.AllowlistFile).Load()
		if err != nil {
			loggerClient.Warn("failed to load allowlist seed file",
				logger.String("file", cfg.AllowlistFile),
				logger.Error(err))
		} else {
			gate.Seed(ids)
			loggerClient.Info("seeded allow-set from file",
				logger.String("file", cfg.AllowlistFile),
				logger.Int("operators", len(ids)))
		}
	}

	pinger := domain.NewPinger()
	counter := stats.NewCounter()
	keepAlive := scheduler.NewKeepAlive(pinger, counter, loggerClient,
		cfg.TargetURL, cfg.PingTimeout, cfg.PingInterval)

	var host *relay.PixeldrainClient
	if cfg.PixeldrainKey != "" {
		host = relay.NewPixeldrainClient(cfg.PixeldrainURL, cfg.PixeldrainKey,
			cfg.TransferTimeout, loggerClient)
	} else {
		loggerClient.Warn("no file host API key configured, large file relays will fail")
	}

	relaySvc := relay.NewService(host, cfg.LargeFileThreshold, loggerClient)
	fetcher := relay.NewFetcher(cfg.PingTimeout, cfg.TransferTimeout, loggerClient)
	catalogClient := catalog.NewClient(cfg.CatalogURL, cfg.CatalogKey,
		cfg.PingTimeout, loggerClient)
	chatClient := chat.NewTelegramClient(cfg.ChatAPIBase, cfg.BotToken,
		cfg.TransferTimeout, loggerClient)

	chatBot := bot.New(bot.Deps{
		Chat:           chatClient,
		Gate:           gate,
		Folders:        folderMgr,
		Relay:          relaySvc,
		Fetcher:        fetcher,
		Catalog:        catalogClient,
		Pinger:         pinger,
		Counter:        counter,
		Logger:         loggerClient,
		TargetURL:      cfg.TargetURL,
		PingTimeout:    cfg.PingTimeout,
		WakeRetryDelay: cfg.WakeRetryDelay,
	})

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		RedisClient:  redisClient,
		Counter:      counter,
		Gate:         gate,
		TargetURL:    cfg.TargetURL,
		PingInterval: cfg.PingInterval,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		keepAlive:   keepAlive,
		bot:         chatBot,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting keeper v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("keeper %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start keep-alive pinger (first ping runs immediately)
	if err := a.keepAlive.Start(ctx); err != nil {
		return fmt.Errorf("failed to start keep-alive: %w", err)
	}
	a.logger.Info("keep-alive started",
		logger.String("target", a.cfg.TargetURL),
		logger.Duration("interval", a.cfg.PingInterval))

	errCh := make(chan error, 2)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()
	go func() {
		if err := a.bot.Run(ctx); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("bot error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.keepAlive.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ keeper stopped cleanly")
	return nil
}
