package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kaiteddy/garage-comms/pkg/logger"
	"github.com/kaiteddy/garage-comms/pkg/redis"
)

// CooldownGuard suppresses duplicate reminders of the same category to the
// same customer inside a configurable window, via a redis SETNX reservation.
// It fails open: if redis is unreachable the dispatch proceeds.
type CooldownGuard struct {
	redis  redis.RedisAdapter
	window time.Duration
	prefix string
}

func NewCooldownGuard(adapter redis.RedisAdapter, window time.Duration) *CooldownGuard {
	return &CooldownGuard{
		redis:  adapter,
		window: window,
		prefix: "cooldown:",
	}
}

func (g *CooldownGuard) key(customerID int64, category string) string {
	return fmt.Sprintf("%s%d:%s", g.prefix, customerID, category)
}

// Reserve claims the cooldown slot. Returns false when an earlier dispatch of
// the same category already holds it.
func (g *CooldownGuard) Reserve(ctx context.Context, customerID int64, category string) bool {
	if g == nil || g.redis == nil || g.window <= 0 {
		return true
	}

	value := []byte(fmt.Sprintf("%d", time.Now().Unix()))
	acquired, err := g.redis.SetNX(g.key(customerID, category), value, g.window)
	if err != nil {
		logger.Warn("cooldown check failed, allowing dispatch", "customer_id", customerID, "category", category, "error", err)
		return true
	}
	if !acquired {
		logger.Info("dispatch suppressed by cooldown", "customer_id", customerID, "category", category, "window", g.window)
	}
	return acquired
}

// Release frees the slot so the category can be retried, used when a dispatch
// ends without a single successful send.
func (g *CooldownGuard) Release(ctx context.Context, customerID int64, category string) {
	if g == nil || g.redis == nil {
		return
	}
	if err := g.redis.Del(g.key(customerID, category)); err != nil {
		logger.Warn("failed to release cooldown", "customer_id", customerID, "category", category, "error", err)
	}
}
