package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Config controls GORM/PostgreSQL connectivity.
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        gormlogger.LogLevel
	// ApplicationName is reported to Postgres so pg_stat_activity shows
	// which service holds a connection.
	ApplicationName string
}

// Connect opens the pool, creating the target database first when missing,
// and verifies it answers before returning.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	dsn := withApplicationName(cfg.DSN, cfg.ApplicationName)

	if err := ensureDatabaseExists(ctx, dsn); err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}

	if cfg.LogLevel == 0 {
		cfg.LogLevel = gormlogger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Ping checks that the pool can reach the server.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDatabaseExists creates the target database through the maintenance
// database when it is missing. Non-URL DSNs are left alone.
func ensureDatabaseExists(ctx context.Context, dsn string) error {
	adminDSN, dbName, ok := maintenanceTarget(dsn)
	if !ok {
		return nil
	}

	sqlDB, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var exists bool
	err = sqlDB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if exists {
		return nil
	}

	_, err = sqlDB.ExecContext(ctx, "CREATE DATABASE "+pqQuoteIdentifier(dbName))
	return err
}

// maintenanceTarget returns the DSN of the postgres maintenance database and
// the name of the database dsn points at. ok is false when there is nothing
// to create.
func maintenanceTarget(dsn string) (adminDSN, dbName string, ok bool) {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "", "", false
	}
	dbName = strings.TrimPrefix(u.Path, "/")
	if dbName == "" || dbName == "postgres" {
		return "", "", false
	}
	admin := *u
	admin.Path = "/postgres"
	return admin.String(), dbName, true
}

// withApplicationName sets application_name on URL DSNs unless the DSN
// already carries one.
func withApplicationName(dsn, name string) string {
	if name == "" {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	q := u.Query()
	if q.Get("application_name") != "" {
		return dsn
	}
	q.Set("application_name", name)
	u.RawQuery = q.Encode()
	return u.String()
}

func pqQuoteIdentifier(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
