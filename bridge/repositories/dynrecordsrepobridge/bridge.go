package dynrecordsrepobridge

import (
	"context"
	"errors"

	"github.com/jrazmi/formvault/bridge/scaffolding/errs"
	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
)

// bridge provides HTTP handlers for dynamic record operations.
type bridge struct {
	recordRepository *dynrecordsrepo.Repository
}

// newBridge creates a new dynamic record bridge
func newBridge(recordRepository *dynrecordsrepo.Repository) *bridge {
	return &bridge{
		recordRepository: recordRepository,
	}
}

// toAppError maps repository errors onto the bridge error taxonomy. A record
// route can fail on the template too, so both not-found sentinels map here.
func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, dynrecordsrepo.ErrRecordNotFound):
		return errs.New(errs.NotFound, err)
	case errors.Is(err, templatesrepo.ErrTemplateNotFound):
		return errs.New(errs.NotFound, err)
	case errors.Is(err, dynrecordsrepo.ErrInvalidInput):
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
