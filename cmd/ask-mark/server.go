package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ask-mark/config"
	"ask-mark/infra/cache"
	"ask-mark/infra/database"
	"ask-mark/infra/logger"
	"ask-mark/infra/queue"
	"ask-mark/infra/registry"
	"ask-mark/internal/handler"
	"ask-mark/internal/llm"
	"ask-mark/internal/mailer"
	"ask-mark/internal/ratelimit"
	"ask-mark/internal/relay"
	"ask-mark/internal/subscriber"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func run(parent context.Context, cfg *config.AppConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	limiter, closeLimiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeLimiter)

	persona, err := llm.LoadPersona(cfg.LLM.PersonaFile)
	if err != nil {
		return err
	}
	var completer relay.Completer
	if llmClient, err := llm.NewClient(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}); err != nil {
		log.Warn("completion client disabled, /api/chat will answer 500", zap.Error(err))
	} else {
		completer = llmClient
		log.Info("completion client ready", zap.String("model", llmClient.Model()))
	}

	var sender relay.Sender
	if mailClient, err := mailer.NewClient(mailer.Config{
		APIKey:  cfg.Mail.APIKey,
		BaseURL: cfg.Mail.BaseURL,
		From:    cfg.Mail.From,
		Timeout: cfg.Mail.Timeout,
	}); err != nil {
		log.Warn("mail client disabled, transcripts cannot be sent", zap.Error(err))
	} else {
		sender = mailClient
	}

	recorder := newRecorder(cfg, log, &closers)

	router, err := handler.NewRouter(handler.RouterConfig{
		ServiceName:    cfg.ServerName,
		Version:        cfg.Version,
		TrustedProxies: cfg.TrustedProxies,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CORSMaxAge:     cfg.CORS.MaxAge,
	}, handler.Deps{
		Chat:          relay.NewChatRelay(completer, persona, log),
		Subscriptions: relay.NewSubscriptionRelay(sender, cfg.Mail.NotifyTo, recorder, log),
		Limiter:       limiter,
		Log:           log,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if cfg.Consul.Enabled {
		deregister := register(cfg, log)
		closers = append(closers, deregister)
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLimiter builds the configured backend. The returned func releases it.
func newLimiter(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (ratelimit.Limiter, func(), error) {
	opts := []ratelimit.Option{
		ratelimit.WithWindow(cfg.RateLimit.Window),
		ratelimit.WithMax(cfg.RateLimit.Max),
	}

	switch cfg.RateLimit.Backend {
	case "redis":
		client, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("rate limit backend: %w", err)
		}
		log.Info("rate limiting in redis", zap.String("addr", client.Options().Addr))
		return ratelimit.NewRedis(client, log, opts...), func() { _ = client.Close() }, nil
	case "", "memory":
		mem := ratelimit.NewMemory(opts...)
		if cfg.RateLimit.SweepInterval > 0 {
			go mem.Run(ctx, cfg.RateLimit.SweepInterval)
		}
		return mem, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown rate limit backend %q", cfg.RateLimit.Backend)
	}
}

// newRecorder wires whichever of postgres and rocketmq are enabled. Either failing to
// connect is logged and the recorder runs without it.
func newRecorder(cfg *config.AppConfig, log *zap.Logger, closers *[]func()) *subscriber.Recorder {
	var opts []subscriber.RecorderOption

	if cfg.Postgres.Enabled {
		db, err := database.NewPostgresDB(cfg.Postgres, log)
		switch {
		case err != nil:
			log.Error("postgres unavailable, subscribers will not be stored", zap.Error(err))
		default:
			*closers = append(*closers, func() { _ = db.Close() })
			if err := db.Migrate(&subscriber.Subscriber{}); err != nil {
				log.Error("migration failed, subscribers will not be stored", zap.Error(err))
			} else {
				opts = append(opts, subscriber.WithStore(subscriber.NewRepository(db.DB)))
			}
		}
	}

	if cfg.RocketMQ.Enabled {
		producer, err := queue.NewProducer(cfg.RocketMQ.NameServers, cfg.RocketMQ.GroupName, cfg.RocketMQ.MaxRetries)
		if err != nil {
			log.Error("rocketmq unavailable, subscriber events will not be published", zap.Error(err))
		} else {
			*closers = append(*closers, func() { _ = producer.Stop() })
			opts = append(opts, subscriber.WithPublisher(producer, cfg.RocketMQ.Topics.UserEvent))
		}
	}

	return subscriber.NewRecorder(log, opts...)
}

// register adds the service to consul and returns the matching deregistration.
func register(cfg *config.AppConfig, log *zap.Logger) func() {
	noop := func() {}
	reg, err := registry.NewConsulRegistry(&registry.ConsulConfig{
		Address:    cfg.Consul.Address,
		Scheme:     cfg.Consul.Scheme,
		Datacenter: cfg.Consul.Datacenter,
	}, log)
	if err != nil {
		log.Error("consul unavailable, skipping registration", zap.Error(err))
		return noop
	}
	svc, err := registry.NewServiceConfig(cfg.ServerName, cfg.Port, "/api/health")
	if err != nil {
		log.Error("build service registration", zap.Error(err))
		return noop
	}
	if err := reg.Register(svc); err != nil {
		log.Error("consul registration failed", zap.Error(err))
		return noop
	}
	return func() {
		if err := reg.Deregister(svc.ID); err != nil {
			log.Warn("consul deregistration failed", zap.Error(err))
		}
	}
}
