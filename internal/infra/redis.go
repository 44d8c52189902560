package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CanalHistorico is the pub/sub channel announcing new stock-history entries.
const CanalHistorico = "historico_atualizado"

// NewRedis creates a go-redis client and checks connectivity.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Publisher is the part of the redis client HistoricoPublisher needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// HistoricoPublisher publishes on CanalHistorico after each history write so
// open spreadsheets can refresh. It satisfies service.HistoricoNotifier.
// While Redis keeps failing the breaker skips the publish entirely.
type HistoricoPublisher struct {
	pub Publisher
	cb  *CircuitBreaker
}

func NewHistoricoPublisher(pub Publisher) *HistoricoPublisher {
	return &HistoricoPublisher{pub: pub, cb: NewCircuitBreaker(3, 30*time.Second)}
}

func (p *HistoricoPublisher) NotificarHistorico(ctx context.Context) error {
	if p == nil || p.pub == nil {
		return nil
	}
	return p.cb.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return p.pub.Publish(ctx, CanalHistorico, "").Err()
	})
}

// Estado is the breaker state, reported by the health check.
func (p *HistoricoPublisher) Estado() CBState { return p.cb.State() }
