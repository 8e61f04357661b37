package store

import (
	"context"
	"fmt"
	"time"

	"genai-chatbot-be/internal/repository/unitofwork"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options carries what each driver needs; only the fields of the selected driver are read.
type Options struct {
	Driver    string
	DB        *gorm.DB
	Redis     *redis.Client
	RedisTTL  time.Duration
	MemoryTTL time.Duration
}

// NewContextStore builds the store for the configured driver and checks that its
// backend answers. Callers fall back to NewNullStore on error.
func NewContextStore(ctx context.Context, opts Options) (ContextStore, error) {
	switch opts.Driver {
	case DriverGorm, "":
		if opts.DB == nil {
			return nil, fmt.Errorf("%w: gorm driver requires a database connection", ErrUnavailable)
		}
		sqlDB, err := opts.DB.DB()
		if err != nil {
			return nil, wrap(DriverGorm, "connect", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, wrap(DriverGorm, "ping", err)
		}
		return NewGormStore(unitofwork.NewRepositoryFactory(opts.DB), sqlDB.Close), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("%w: redis driver requires a client", ErrUnavailable)
		}
		if err := opts.Redis.Ping(ctx).Err(); err != nil {
			return nil, wrap(DriverRedis, "ping", err)
		}
		return NewRedisStore(opts.Redis, opts.RedisTTL), nil
	case DriverMemory:
		return NewMemoryStore(opts.MemoryTTL), nil
	case DriverNull:
		return NewNullStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidDriver, opts.Driver)
	}
}
