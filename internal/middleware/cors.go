package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows only the listed origins; a "*" entry allows every origin.
// Cross-origin requests from anywhere else are refused with 403.
func CORS(allowedOrigins []string, maxAge time.Duration) (gin.HandlerFunc, error) {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           maxAge,
	}

	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "":
			continue
		case origin == "*":
			cfg.AllowAllOrigins = true
		case strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://"):
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		default:
			return nil, fmt.Errorf("cors: origin %q must start with http:// or https://", origin)
		}
	}
	if cfg.AllowAllOrigins {
		cfg.AllowOrigins = nil
		cfg.AllowCredentials = false
	}
	if !cfg.AllowAllOrigins && len(cfg.AllowOrigins) == 0 {
		return nil, fmt.Errorf("cors: no allowed origins configured")
	}
	return cors.New(cfg), nil
}
