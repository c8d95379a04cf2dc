package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hanSiey/pppa-management-backend/internal/shared/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB bundles the Postgres and Redis connections. Postgres is required;
// Redis is best-effort, since caching and rate limiting degrade gracefully
// without it.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

func InitDB(cfg *config.Config) (*DB, error) {
	pg, err := openPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres init: %w", err)
	}
	if err = Migrate(pg); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	rdb := openRedis(cfg)

	return &DB{PostgreSQL: pg, Redis: rdb}, nil
}

func openPostgres(cfg *config.Config) (*gorm.DB, error) {
	logMode := logger.Silent
	if cfg.IsDevelopment() {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		// Timestamps are stored in UTC regardless of server locale
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	log.Println("PostgreSQL connected")
	return db, nil
}

// openRedis returns nil when Redis is unreachable rather than failing
// startup. Callers must nil-check before wiring cache or rate limiting.
func openRedis(cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,

		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable at %s, caching and rate limiting disabled: %v", cfg.Redis.Addr, err)
		_ = rdb.Close()
		return nil
	}

	log.Println("Redis connected")
	return rdb
}

func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close postgres: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("closing connections: %v", errs)
	}
	return nil
}

// HealthCheck pings every live connection; used by the readiness endpoint.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.PostgreSQL != nil {
		sqlDB, err := db.PostgreSQL.DB()
		if err != nil {
			return fmt.Errorf("postgres health check: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	return nil
}

func (db *DB) GetRedisClient() *redis.Client {
	return db.Redis
}

func (db *DB) GetPostgreSQL() *gorm.DB {
	return db.PostgreSQL
}
