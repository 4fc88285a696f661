package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-subscriber/internal/router"
	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber"
	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/repo"
	"github.com/ovaphlow/pitchfork/service-subscriber/pkg/database"
	"github.com/ovaphlow/pitchfork/service-subscriber/pkg/utilities"
)

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
	sugar.Info("starting service-subscriber")

	// init store
	store, closer, err := openRepository(v, sugar)
	if err != nil {
		sugar.Fatalf("open store: %v", err)
	}
	defer closer.Close()

	ids, err := utilities.NewIDGenerator(v.GetInt64("SNOWFLAKE_NODE"))
	if err != nil {
		sugar.Warnf("snowflake node unavailable, falling back to ksuid: %v", err)
	}
	svc := subscriber.NewService(store, ids)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// mount http server
	srv := &http.Server{
		Addr:    v.GetString("HTTP_ADDR"),
		Handler: router.RegisterRoutes(sugar, svc),
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", srv.Addr, "store", v.GetString("STORE_DRIVER"))

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), v.GetDuration("SHUTDOWN_TIMEOUT"))
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

// openRepository builds the configured document store. The returned closer
// releases the underlying connection or file.
func openRepository(v *viper.Viper, logger *zap.SugaredLogger) (subscriber.Repository, io.Closer, error) {
	switch driver := v.GetString("STORE_DRIVER"); driver {
	case "bolt":
		store, err := database.OpenBolt(v.GetString("BOLT_PATH"))
		if err != nil {
			return nil, nil, err
		}
		logger.Infow("bolt store opened", "path", v.GetString("BOLT_PATH"))
		return repo.NewBoltRepo(store), store, nil
	case "postgres":
		sqlDB, err := database.Connect(database.ConfigFromViper(v))
		if err != nil {
			return nil, nil, err
		}
		// wrap with sqlx for convenience in repos
		db := sqlx.NewDb(sqlDB, "postgres")
		r := repo.NewPostgresRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), database.ConfigFromViper(v).Timeout)
		defer cancel()
		if err := r.EnsureTable(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ensure subscribers table: %w", err)
		}
		logger.Info("postgres store connected")
		return r, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}
}
