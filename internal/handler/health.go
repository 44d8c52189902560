package handler

import (
	"context"
	"net/http"
	"time"

	"mediocusto/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	statusOK        = "connected"
	statusErro      = "error"
	statusDesligado = "disabled"
)

// Health pings Postgres and Redis. Redis is optional: a nil client reports
// "disabled" and does not fail the check. The history publisher's breaker
// state is informative only.
func Health(db *gorm.DB, rdb *redis.Client, pub *infra.HistoricoPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := statusOK
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = statusErro
		}

		redisStatus := statusDesligado
		if rdb != nil {
			redisStatus = statusOK
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = statusErro
			}
		}

		code := http.StatusOK
		if dbStatus == statusErro || redisStatus == statusErro {
			code = http.StatusServiceUnavailable
		}
		body := gin.H{
			"ok":    code == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if pub != nil {
			body["notificacoes"] = pub.Estado().String()
		}
		c.JSON(code, body)
	}
}
