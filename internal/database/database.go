package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"foodmemories/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
)

var sqlOpen = sql.Open

// DriverFor picks the document store driver from the connection URI scheme.
func DriverFor(uri string) (string, error) {
	if strings.TrimSpace(uri) == "" {
		return "", fmt.Errorf("database URI is required (set DB_URI or MONGODB_URI)")
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse database URI: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	default:
		return "", fmt.Errorf("unsupported database URI scheme %q", u.Scheme)
	}
}

// HostOf returns the host part of a connection URI for logging, without credentials.
func HostOf(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Host
}

// NewPostgres opens a database/sql connection using the pgx stdlib driver and applies pooling settings.
func NewPostgres(c config.DatabaseConfig) (*sql.DB, error) {
	if driver, err := DriverFor(c.URI); err != nil {
		return nil, err
	} else if driver != DriverPostgres {
		return nil, fmt.Errorf("not a postgres URI")
	}

	// Register the otelsql driver wrapper
	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, c.URI)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}

	// Verify connectivity with a short timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}
