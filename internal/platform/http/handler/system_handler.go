// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"acquisitions/internal/platform/logger"
)

// isoTime はクライアントへ返すタイムスタンプの形式です（UTC・ミリ秒）。
const isoTime = "2006-01-02T15:04:05.000Z"

// SystemHandler serves the service-level routes "/", "/health" and "/api".
type SystemHandler struct {
	log     *logger.Logger
	started time.Time
	now     func() time.Time
}

// NewSystemHandler returns a handler whose uptime is measured from started.
func NewSystemHandler(log *logger.Logger, started time.Time) *SystemHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SystemHandler{log: log, started: started, now: time.Now}
}

// Root は挨拶文をテキストで返します。
func (h *SystemHandler) Root(c *gin.Context) {
	h.log.Info().Msg("hello from acquisition")
	c.String(http.StatusOK, "Hello from acquisitions")
}

// Health はサービスの稼働状況を返します。
func (h *SystemHandler) Health(c *gin.Context) {
	now := h.now()
	uptime := now.Sub(h.started).Seconds()
	if uptime < 0 {
		uptime = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": now.UTC().Format(isoTime),
		"uptime":    uptime,
	})
}

// API はAPIの疎通確認用メッセージを返します。
func (h *SystemHandler) API(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Acquisitions API is running!"})
}
