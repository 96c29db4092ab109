package handler

import (
	"fmt"
	"time"

	"ask-mark/internal/middleware"
	"ask-mark/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	ServiceName    string
	Version        string
	TrustedProxies []string
	AllowedOrigins []string
	CORSMaxAge     time.Duration
}

type Deps struct {
	Chat          ChatReplier
	Subscriptions SubscriptionService
	Limiter       ratelimit.Limiter
	Log           *zap.Logger
}

func NewRouter(cfg RouterConfig, deps Deps) (*gin.Engine, error) {
	corsMW, err := middleware.CORS(cfg.AllowedOrigins, cfg.CORSMaxAge)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(middleware.AccessLog(deps.Log), gin.Recovery(), corsMW)

	meta := NewMetaHandler(cfg.ServiceName, cfg.Version)
	r.GET("/", meta.Index)

	api := r.Group("/api")
	{
		api.GET("/health", meta.Health)

		// only chat spends upstream quota
		chat := NewChatHandler(deps.Chat, deps.Log)
		api.POST("/chat", middleware.RateLimit(deps.Limiter, deps.Log), chat.Chat)

		subs := NewSubscriptionHandler(deps.Subscriptions, deps.Log)
		api.POST("/subscribe", subs.Subscribe)
		api.POST("/send-transcript", subs.SendTranscript)
	}
	return r, nil
}
