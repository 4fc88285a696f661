package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"
)

type Config struct {
	DSN            string
	MaxConns       int
	Timeout        time.Duration
	TimeZone       string
	ClientEncoding string
}

// ConfigFromViper reads Postgres config from v.
func ConfigFromViper(v *viper.Viper) Config {
	max := v.GetInt("DATABASE_MAX_CONNS")
	if max <= 0 {
		max = 5
	}
	return Config{
		DSN:            v.GetString("DATABASE_URL"),
		MaxConns:       max,
		Timeout:        5 * time.Second,
		TimeZone:       v.GetString("DATABASE_TIMEZONE"),
		ClientEncoding: v.GetString("DATABASE_CLIENT_ENCODING"),
	}
}

// Connect opens a *sql.DB and verifies connectivity with a ping
func Connect(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	for _, stmt := range sessionStatements(cfg) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("session setting %q: %w", stmt, err)
		}
	}
	return db, nil
}

// sessionStatements returns the SET statements implied by cfg.
func sessionStatements(cfg Config) []string {
	var out []string
	if cfg.TimeZone != "" {
		out = append(out, "SET TIME ZONE "+quoteLiteral(cfg.TimeZone))
	}
	if cfg.ClientEncoding != "" {
		out = append(out, "SET client_encoding = "+quoteLiteral(cfg.ClientEncoding))
	}
	return out
}

// quoteLiteral escapes single quotes and wraps the value in single quotes
// so it can be used in SET statements, which take no placeholders.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
