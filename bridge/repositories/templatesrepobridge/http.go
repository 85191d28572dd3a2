// Package templatesrepobridge contains HTTP route registration for Template
package templatesrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/formvault/bridge/scaffolding/responses"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
	"github.com/jrazmi/formvault/infrastructure/web"
	"github.com/jrazmi/formvault/sdk/logger"
)

// Config holds configuration for the Template bridge
type Config struct {
	Log        *logger.Logger
	Repository *templatesrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Template
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)

	group.GET("/templates", b.httpList, cfg.Middleware...)
	group.GET("/templates/{template_id}", b.httpGetByID, cfg.Middleware...)
	group.GET("/templates/{owner_id}/own", b.httpListByOwner, cfg.Middleware...)
	group.POST("/templates/{owner_id}", b.httpCreate, cfg.Middleware...)
	group.PUT("/templates/{template_id}", b.httpUpdate, cfg.Middleware...)
	group.DELETE("/templates/{template_id}", b.httpDelete, cfg.Middleware...)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input CreateTemplateInput
	if err := web.Decode(r, &input); err != nil {
		return invalidArgument(err)
	}

	tpl, err := b.templateRepository.Create(ctx, templatesrepo.NewTemplate{
		OwnerID: web.Param(r, "owner_id"),
		Name:    input.Name,
		Fields:  input.Fields,
	})
	if err != nil {
		return toAppError(err)
	}

	return responses.NewCreatedResponse(tpl)
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	tpls, err := b.templateRepository.List(ctx)
	if err != nil {
		return toAppError(err)
	}

	return responses.NewListResponse(tpls)
}

func (b *bridge) httpListByOwner(ctx context.Context, r *http.Request) web.Encoder {
	tpls, err := b.templateRepository.ListByOwner(ctx, web.Param(r, "owner_id"))
	if err != nil {
		return toAppError(err)
	}

	return responses.NewListResponse(tpls)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	tpl, err := b.templateRepository.GetByID(ctx, web.Param(r, "template_id"))
	if err != nil {
		return toAppError(err)
	}

	return responses.NewRecordResponse(tpl)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input UpdateTemplateInput
	if err := web.Decode(r, &input); err != nil {
		return invalidArgument(err)
	}

	tpl, err := b.templateRepository.Update(ctx, web.Param(r, "template_id"), templatesrepo.UpdateTemplate{
		Name:   input.Name,
		Fields: input.Fields,
	})
	if err != nil {
		return toAppError(err)
	}

	return responses.NewRecordResponse(tpl)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	templateID := web.Param(r, "template_id")

	if err := b.templateRepository.Delete(ctx, templateID); err != nil {
		return toAppError(err)
	}

	return responses.NewCodeResponse("deleted", "template "+templateID+" deleted")
}
