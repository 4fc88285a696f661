package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/repo"
	"github.com/ovaphlow/pitchfork/service-subscriber/pkg/database"
	"github.com/ovaphlow/pitchfork/service-subscriber/pkg/utilities"
)

// migrate creates the Postgres subscribers table and exits.
func main() {
	v, err := utilities.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromViper(v))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()

	// init db
	sqlDB, err := database.Connect(database.ConfigFromViper(v))
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	db := sqlx.NewDb(sqlDB, "postgres")
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := repo.NewPostgresRepo(db).EnsureTable(ctx); err != nil {
		sugar.Fatalf("ensure subscribers table: %v", err)
	}
	sugar.Info("subscribers table ready")
}
