package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the shared PostgreSQL handle plus the lock wait every write
// transaction is opened with.
type Database struct {
	DB          *gorm.DB
	lockTimeout time.Duration
}

// Option adjusts the gorm configuration before connecting.
type Option func(*gorm.Config)

// WithLogger replaces the silent gorm logger.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

func gormConfig(opts []Option) *gorm.Config {
	c := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		NowFunc:                func() time.Time { return time.Now().UTC() },
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDatabase connects, sizes the pool from cfg and verifies the server answers.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d := &Database{DB: db, lockTimeout: cfg.LockTimeout}

	pool, err := d.pool()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return d, nil
}

// NewDatabaseFromGorm adopts a connection opened elsewhere, e.g. by tests.
func NewDatabaseFromGorm(db *gorm.DB, lockTimeout time.Duration) *Database {
	return &Database{DB: db, lockTimeout: lockTimeout}
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	return pool, nil
}

func (d *Database) LockTimeout() time.Duration { return d.lockTimeout }

func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}
