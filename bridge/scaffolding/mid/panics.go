package mid

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/jrazmi/formvault/bridge/scaffolding/errs"
	"github.com/jrazmi/formvault/bridge/scaffolding/metrics"
	"github.com/jrazmi/formvault/infrastructure/web"
)

// Panics recovers from panics and converts the panic into an error so it is
// reported by Metrics and handled by Errors.
func Panics() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) (resp web.Encoder) {
			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					resp = errs.Newf(errs.InternalOnlyLog, "PANIC [%v] TRACE[%s]", rec, string(trace))

					metrics.AddPanics(ctx)
				}
			}()

			return next(ctx, r)
		}
	}
}
