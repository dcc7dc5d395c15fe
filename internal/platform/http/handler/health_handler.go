// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Health はプロセスの生存確認用 /healthz エンドポイントを処理します。
// 依存先には触れず、常に成功を返します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Pinger はデータベース等の疎通確認ができる依存先です。*sql.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// defaultPingTimeout は1回の疎通確認に許す時間です。
const defaultPingTimeout = 2 * time.Second

// Readiness はトラフィックを受け付けられるかを返す /readyz を処理します。
type Readiness struct {
	db      Pinger
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewReadiness はReadinessの新しいインスタンスを生成します。
func NewReadiness(db Pinger, log logrus.FieldLogger) *Readiness {
	return &Readiness{db: db, timeout: defaultPingTimeout, log: log}
}

// Handle はDBへのpingが成功すれば200、失敗すれば503を返します。
func (r *Readiness) Handle(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	ctx, cancel := context.WithTimeout(c.Request.Context(), r.timeout)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		r.log.WithError(err).Warn("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": gin.H{"database": "down"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": gin.H{"database": "up"}})
}
