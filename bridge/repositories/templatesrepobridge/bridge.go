package templatesrepobridge

import (
	"context"
	"errors"

	"github.com/jrazmi/formvault/bridge/scaffolding/errs"
	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
)

// bridge provides HTTP handlers for Template operations.
type bridge struct {
	templateRepository *templatesrepo.Repository
}

// newBridge creates a new Template bridge
func newBridge(templateRepository *templatesrepo.Repository) *bridge {
	return &bridge{
		templateRepository: templateRepository,
	}
}

// toAppError maps repository errors onto the bridge error taxonomy. Unknown
// errors are logged in full but answer with a generic internal message so
// storage internals never reach the caller.
func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, templatesrepo.ErrTemplateNotFound):
		return errs.New(errs.NotFound, err)
	case errors.Is(err, templatesrepo.ErrInvalidInput):
		return errs.New(errs.InvalidArgument, err)
	case errors.Is(err, collections.ErrShapeConflict):
		return errs.New(errs.Conflict, err)
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Newf(errs.Unavailable, "storage timeout, retry")
	default:
		return errs.New(errs.InternalOnlyLog, err)
	}
}

func invalidArgument(err error) *errs.Error {
	return errs.New(errs.InvalidArgument, err)
}
