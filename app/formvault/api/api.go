// Package api registers the HTTP surface of the formvault application.
package api

import (
	"context"
	"expvar"
	"net/http"
	"os"
	"runtime"

	"github.com/jrazmi/formvault/bridge/repositories/dynrecordsrepobridge"
	"github.com/jrazmi/formvault/bridge/repositories/templatesrepobridge"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
	"github.com/jrazmi/formvault/infrastructure/postgresdb"
	"github.com/jrazmi/formvault/infrastructure/web"
	"github.com/jrazmi/formvault/sdk/logger"
)

// Config carries everything the API routes need.
type Config struct {
	Build     string
	Log       *logger.Logger
	Pool      *postgresdb.Pool
	Templates *templatesrepo.Repository
	Records   *dynrecordsrepo.Repository
}

// AddRoutes registers the check endpoints and the repository bridges under
// /api/v1.
func AddRoutes(app *web.WebHandler, cfg Config) {
	app.GET("/liveness", liveness(cfg))
	app.GET("/readiness", readiness(cfg))
	app.HandleRaw("GET /debug/vars", expvar.Handler())

	group := app.Group("/api/v1")

	templatesrepobridge.AddHttpRoutes(group, templatesrepobridge.Config{
		Log:        cfg.Log,
		Repository: cfg.Templates,
	})

	dynrecordsrepobridge.AddHttpRoutes(group, dynrecordsrepobridge.Config{
		Log:        cfg.Log,
		Repository: cfg.Records,
	})
}

// liveness reports build and host information. If it answers, the process is
// up.
func liveness(cfg Config) web.HandlerFunc {
	host, _ := os.Hostname()

	return func(ctx context.Context, r *http.Request) web.Encoder {
		info := struct {
			Status     string `json:"status"`
			Build      string `json:"build"`
			Host       string `json:"host"`
			GOMAXPROCS int    `json:"GOMAXPROCS"`
		}{
			Status:     "up",
			Build:      cfg.Build,
			Host:       host,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		}

		return web.NewJSONResponse(info)
	}
}

// readiness checks the database round trip. Not ready answers 500 so load
// balancers pull the instance.
func readiness(cfg Config) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		status := struct {
			Status string `json:"status"`
		}{Status: "ok"}

		if err := postgresdb.StatusCheck(ctx, cfg.Pool); err != nil {
			cfg.Log.ErrorContext(ctx, "readiness failure", "err", err)
			status.Status = "db not ready"
			return web.NewJSONResponseWithStatus(status, http.StatusInternalServerError)
		}

		return web.NewJSONResponse(status)
	}
}
