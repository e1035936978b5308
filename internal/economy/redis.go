package economy

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	backend "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// spendScript decrements the balance only when it covers the amount, so two
// processes sharing a wallet can never overdraw it.
const spendScript = `
local bal = tonumber(redis.call("GET", KEYS[1]) or "0")
local amt = tonumber(ARGV[1])
if bal < amt then
	return -1
end
return redis.call("DECRBY", KEYS[1], amt)
`

// RedisWallet keeps the balance in a Redis key shared across processes.
// last is the balance seen by the most recent successful command and stands
// in when a read fails.
type RedisWallet struct {
	client  *backend.Client
	key     string
	timeout time.Duration
	log     *zap.Logger
	last    atomic.Int64
}

func NewRedisWallet(client *backend.Client, prefix, wallet string, log *zap.Logger) *RedisWallet {
	return &RedisWallet{
		client:  client,
		key:     prefix + "wallet:" + wallet,
		timeout: 500 * time.Millisecond,
		log:     log,
	}
}

// Init seeds the balance if the key does not exist yet.
func (w *RedisWallet) Init(ctx context.Context, start int64) error {
	if err := w.client.SetNX(ctx, w.key, start, 0).Err(); err != nil {
		return fmt.Errorf("redis init wallet %s: %w", w.key, err)
	}
	return nil
}

func (w *RedisWallet) TrySpend(amount int) bool {
	if amount < 0 {
		return false
	}
	if amount == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	left, err := w.client.Eval(ctx, spendScript, []string{w.key}, amount).Int64()
	if err != nil {
		w.log.Error("redis spend failed", zap.String("key", w.key), zap.Int("amount", amount), zap.Error(err))
		return false
	}
	if left < 0 {
		return false
	}
	w.last.Store(left)
	return true
}

func (w *RedisWallet) Refund(amount int) {
	if amount <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	n, err := w.client.IncrBy(ctx, w.key, int64(amount)).Result()
	if err != nil {
		w.log.Error("redis refund failed", zap.String("key", w.key), zap.Int("amount", amount), zap.Error(err))
		return
	}
	w.last.Store(n)
}

func (w *RedisWallet) Balance() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	n, err := w.client.Get(ctx, w.key).Int64()
	switch {
	case errors.Is(err, backend.Nil):
		n = 0
	case err != nil:
		w.log.Warn("redis balance failed, using last known", zap.String("key", w.key), zap.Int64("balance", w.last.Load()), zap.Error(err))
		return w.last.Load()
	}
	w.last.Store(n)
	return n
}
