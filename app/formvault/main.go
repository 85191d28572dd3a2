package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jrazmi/formvault/app/formvault/api"
	"github.com/jrazmi/formvault/bridge/scaffolding/mid"
	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/collections/stores/collectionspgxstore"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo/stores/dynrecordspgxstore"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo/stores/templatespgxstore"
	"github.com/jrazmi/formvault/infrastructure/postgresdb"
	"github.com/jrazmi/formvault/infrastructure/web"
	"github.com/jrazmi/formvault/sdk/logger"
	"github.com/jrazmi/formvault/sdk/telemetry"
)

var build = "develop"
var appName = "FORMVAULT"

func main() {
	godotenv.Load()
	ctx := context.Background()

	log, err := logger.NewFromEnv(appName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuring logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	// :*: START DATABASES :*:
	pool, err := postgresdb.NewFromEnv(appName, postgresdb.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("configuring postgres support: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		pool.Close()
	}()

	if err := postgresdb.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	// END DATABASES //

	// REPOSITORIES //
	log.InfoContext(ctx, "startup", "status", "initializing repository support")

	registry := collections.NewRegistry(log, collectionspgxstore.NewStore(log, pool))

	templates := templatesrepo.NewRepository(log, templatespgxstore.NewStore(log, pool), registry)
	records := dynrecordsrepo.NewRepository(log, templates, registry, dynrecordspgxstore.NewStore(log, pool))
	templates.SetRecordPurger(records)
	// END REPOSITORIES //

	handler, err := webHandler(log, pool, templates, records)
	if err != nil {
		return fmt.Errorf("webhandler: %w", err)
	}

	server, err := web.NewServerFromEnv(appName,
		web.WithHandler(handler),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig.String())
		defer log.InfoContext(ctx, "shutdown", "status", "shutdown complete", "signal", sig.String())

		ctx, cancel := context.WithTimeout(ctx, server.Config.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func webHandler(log *logger.Logger, pool *postgresdb.Pool, templates *templatesrepo.Repository, records *dynrecordsrepo.Repository) (http.Handler, error) {
	app, err := web.NewWebHandlerFromEnv(appName,
		web.WithLogging(log.Logger),
		web.WithTelemetry(telemetry.NewTelemetry()),
		web.WithGlobalMiddleware(
			mid.PublicCORS(),
			mid.Logger(log),
			mid.Errors(log),
			mid.Metrics(),
			mid.Panics(),
		),
	)
	if err != nil {
		return nil, err
	}

	api.AddRoutes(app, api.Config{
		Build:     build,
		Log:       log,
		Pool:      pool,
		Templates: templates,
		Records:   records,
	})

	return app, nil
}
