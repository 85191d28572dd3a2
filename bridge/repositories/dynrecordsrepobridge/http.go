// Package dynrecordsrepobridge contains HTTP route registration for dynamic
// records. Every route is scoped by the owning template's ID.
package dynrecordsrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/formvault/bridge/scaffolding/responses"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/infrastructure/web"
	"github.com/jrazmi/formvault/sdk/logger"
)

// Config holds configuration for the dynamic record bridge
type Config struct {
	Log        *logger.Logger
	Repository *dynrecordsrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for dynamic records
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)

	group.POST("/records/{template_id}", b.httpCreate, cfg.Middleware...)
	group.GET("/records/{template_id}", b.httpList, cfg.Middleware...)
	group.GET("/records/{template_id}/{record_id}", b.httpGetByID, cfg.Middleware...)
	group.PUT("/records/{template_id}/{record_id}", b.httpUpdate, cfg.Middleware...)
	group.PATCH("/records/{template_id}/{record_id}", b.httpSetStatusFlag, cfg.Middleware...)
	group.DELETE("/records/{template_id}/{record_id}", b.httpDelete, cfg.Middleware...)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var payload map[string]any
	if err := web.Decode(r, &payload); err != nil {
		return invalidArgument(err)
	}

	rec, err := b.recordRepository.Create(ctx, web.Param(r, "template_id"), payload)
	if err != nil {
		return toAppError(err)
	}

	return responses.NewCreatedResponse(rec)
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	templateID := web.Param(r, "template_id")

	tpl, _, err := b.recordRepository.Resolve(ctx, templateID)
	if err != nil {
		return toAppError(err)
	}

	recs, err := b.recordRepository.List(ctx, templateID)
	if err != nil {
		return toAppError(err)
	}

	return NewRecordListResponse(tpl, recs)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	rec, err := b.recordRepository.GetByID(ctx, web.Param(r, "template_id"), web.Param(r, "record_id"))
	if err != nil {
		return toAppError(err)
	}

	return responses.NewRecordResponse(rec)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var payload map[string]any
	if err := web.Decode(r, &payload); err != nil {
		return invalidArgument(err)
	}

	rec, err := b.recordRepository.Update(ctx, web.Param(r, "template_id"), web.Param(r, "record_id"), payload)
	if err != nil {
		return toAppError(err)
	}

	return responses.NewRecordResponse(rec)
}

func (b *bridge) httpSetStatusFlag(ctx context.Context, r *http.Request) web.Encoder {
	rec, err := b.recordRepository.SetStatusFlag(ctx, web.Param(r, "template_id"), web.Param(r, "record_id"))
	if err != nil {
		return toAppError(err)
	}

	return responses.NewRecordResponse(rec)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	rec, err := b.recordRepository.Delete(ctx, web.Param(r, "template_id"), web.Param(r, "record_id"))
	if err != nil {
		return toAppError(err)
	}

	return responses.NewRecordResponse(rec)
}
