package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/muziki/internal/domain/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultSlowThreshold = 200 * time.Millisecond

// DB owns the GORM handle and hands out the stores built on it.
type DB struct {
	gorm   *gorm.DB
	driver string
	songs  *SongRepository
	users  *UserRepository
}

// Open connects to the database, applies the schema and returns the stores.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*DB, error) {
	o := openOptions{slowThreshold: defaultSlowThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	cfg := &gorm.Config{TranslateError: true}
	if o.logger != nil {
		cfg.Logger = NewGormLogger(o.logger, o.slowThreshold)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	switch {
	case driver == DriverSQLite:
		// SQLite has a single writer, and every :memory: connection is a separate database.
		sqlDB.SetMaxOpenConns(1)
	case o.maxOpenConns > 0:
		sqlDB.SetMaxOpenConns(o.maxOpenConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := gdb.WithContext(ctx).AutoMigrate(&model.Song{}, &model.User{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &DB{
		gorm:   gdb,
		driver: driver,
		songs:  NewSongRepository(gdb),
		users:  NewUserRepository(gdb),
	}, nil
}

// Songs returns the song store.
func (d *DB) Songs() *SongRepository { return d.songs }

// Users returns the user store.
func (d *DB) Users() *UserRepository { return d.users }

// Driver returns the driver name the database was opened with.
func (d *DB) Driver() string { return d.driver }

// Close releases the connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
