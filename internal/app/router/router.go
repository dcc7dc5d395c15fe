// Package router はHTTPルーティングを組み立てます。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userhandler "user_backend/internal/feature/user/transport/handler"
	"user_backend/internal/platform/config"
	"user_backend/internal/platform/http/handler"
	"user_backend/internal/platform/http/middleware"
	"user_backend/internal/platform/http/response"
)

// MsgRouteNotFound は未定義ルートへのレスポンスメッセージです。
const MsgRouteNotFound = "Not found"

// NewRouter はミドルウェアとルートを登録したgin.Engineを返します。
func NewRouter(users *userhandler.UserHandler, ready *handler.Readiness, log logrus.FieldLogger, cfg *config.Config) *gin.Engine {
	r := gin.New()

	// panic は汎用の500エンベロープに変換し、詳細はログにのみ残す
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"panic":      recovered,
		}).Error("panic recovered")
		c.Abort()
		response.InternalError(c)
	}))
	r.Use(middleware.RequestID())
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(log))
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(corsConfig(origins)))
	}

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", ready.Handle)

	v1 := r.Group("/api/v1")
	{
		u := v1.Group("/users")
		u.GET("", users.Index)
		u.POST("", users.Store)
		u.GET("/:id", users.Show)
		u.PUT("/:id", users.Update)
		u.PATCH("/:id", users.Update)
		u.DELETE("/:id", users.Destroy)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, MsgRouteNotFound)
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	return cc
}
