package services

import (
	"context"
	"time"

	"github.com/kaiteddy/garage-comms/pkg/pg"
	"github.com/kaiteddy/garage-comms/pkg/redis"
)

// HealthService answers liveness checks against the backing stores.
type HealthService struct {
	db    *pg.DB
	redis redis.RedisAdapter
}

func NewHealthService(db *pg.DB, adapter redis.RedisAdapter) *HealthService {
	return &HealthService{db: db, redis: adapter}
}

func (s *HealthService) Get() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		sqlDB, err := s.db.Read(ctx).DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
	}

	if s.redis != nil {
		if err := s.redis.Client().Ping(ctx).Err(); err != nil {
			return err
		}
	}

	return nil
}
