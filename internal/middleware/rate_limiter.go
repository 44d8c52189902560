package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mediocusto/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// janela counts requests of one client inside a fixed window.
type janela struct {
	count int
	fim   time.Time
}

// contadorLocal is the in-process counter used without Redis or while Redis
// is unreachable.
type contadorLocal struct {
	mu      sync.Mutex
	janelas map[string]*janela
}

func (l *contadorLocal) incr(chave string, agora time.Time, window time.Duration) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	j, ok := l.janelas[chave]
	if !ok || agora.After(j.fim) {
		j = &janela{fim: agora.Add(window)}
		l.janelas[chave] = j
	}
	j.count++
	return j.count, j.fim
}

func (l *contadorLocal) purgar(agora time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, j := range l.janelas {
		if agora.After(j.fim) {
			delete(l.janelas, k)
			n++
		}
	}
	return n
}

// RateLimiter allows limit requests per window and client IP. With a Redis
// client the counters are shared between instances (INCR + EXPIRE on a key per
// window); otherwise, or when Redis fails, a local counter is used.
func RateLimiter(ctx context.Context, rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	local := &contadorLocal{janelas: make(map[string]*janela)}
	go purgarPeriodicamente(ctx, local, window)

	return func(c *gin.Context) {
		agora := time.Now()
		ip := c.ClientIP()

		var (
			count int64
			fim   time.Time
			err   error
		)
		if rdb != nil {
			count, fim, err = incrRedis(c.Request.Context(), rdb, ip, agora, window)
			if err != nil {
				log.Debug().Err(err).Msg("rate limiter: redis indisponível, usando contador local")
			}
		}
		if rdb == nil || err != nil {
			var n int
			n, fim = local.incr(ip, agora, window)
			count = int64(n)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(fim).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas requisições. Tente novamente em instantes."))
			return
		}
		c.Next()
	}
}

func incrRedis(ctx context.Context, rdb *redis.Client, ip string, agora time.Time, window time.Duration) (int64, time.Time, error) {
	inicio := agora.Truncate(window)
	chave := fmt.Sprintf("ratelimit:%s:%d", ip, inicio.Unix())

	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, chave)
	pipe.ExpireNX(ctx, chave, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}
	return incr.Val(), inicio.Add(window), nil
}

func purgarPeriodicamente(ctx context.Context, local *contadorLocal, window time.Duration) {
	intervalo := 5 * window
	if intervalo < time.Minute {
		intervalo = time.Minute
	}
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case agora := <-ticker.C:
			if n := local.purgar(agora); n > 0 {
				log.Debug().Int("purgadas", n).Msg("rate limiter: janelas expiradas removidas")
			}
		}
	}
}
