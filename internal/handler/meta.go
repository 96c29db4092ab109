package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var endpoints = []string{
	"POST /api/chat",
	"POST /api/subscribe",
	"POST /api/send-transcript",
	"GET /api/health",
}

type MetaHandler struct {
	name    string
	version string
	now     func() time.Time
}

func NewMetaHandler(name, version string) *MetaHandler {
	return &MetaHandler{name: name, version: version, now: time.Now}
}

func (h *MetaHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *MetaHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      h.name,
		"version":   h.version,
		"status":    "running",
		"endpoints": endpoints,
	})
}
