// Package templatesrepo is the source of truth for template definitions and
// the orchestrator of their lifecycle: persisting the definition, keeping the
// owner association in step, and materializing the backing collection.
package templatesrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/fieldtypes"
	"github.com/jrazmi/formvault/sdk/cryptids"
	"github.com/jrazmi/formvault/sdk/logger"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidInput     = errors.New("invalid template input")
)

// Storer defines the data storage interface for templates and their owner
// associations.
type Storer interface {
	Create(ctx context.Context, tpl Template) (Template, error)
	GetByID(ctx context.Context, templateID string) (Template, error)
	List(ctx context.Context) ([]Template, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Template, error)
	Update(ctx context.Context, templateID string, name string, fields []fieldtypes.Field) (Template, error)
	Delete(ctx context.Context, templateID string) error
	AttachOwner(ctx context.Context, ownerID, templateID string) error
	DetachOwner(ctx context.Context, ownerID, templateID string) error
}

// CollectionRegistry materializes and removes the dynamic collection behind a
// template.
type CollectionRegistry interface {
	GetOrCreate(ctx context.Context, templateID string, fields []fieldtypes.Field) (collections.Handle, error)
	Drop(ctx context.Context, templateID string) error
}

// RecordPurger deletes every record belonging to a template. Implemented by
// the dynamic record repository and wired in at startup.
type RecordPurger interface {
	DeleteAllForTemplate(ctx context.Context, templateID string) (int64, error)
}

// Repository provides access to template storage and drives the template
// lifecycle.
type Repository struct {
	log      *logger.Logger
	storer   Storer
	registry CollectionRegistry
	purger   RecordPurger
}

func NewRepository(log *logger.Logger, storer Storer, registry CollectionRegistry) *Repository {
	return &Repository{
		log:      log,
		storer:   storer,
		registry: registry,
	}
}

// SetRecordPurger wires the record cascade. Separate from the constructor
// because the record repository itself depends on this repository.
func (r *Repository) SetRecordPurger(p RecordPurger) {
	r.purger = p
}

// Create persists a template, attaches it to its owner, and eagerly
// materializes its collection. The three steps are one logical unit: if
// materialization fails the persisted rows are unwound and the error
// surfaces to the caller.
func (r *Repository) Create(ctx context.Context, nt NewTemplate) (Template, error) {
	if nt.OwnerID == "" || nt.Name == "" {
		return Template{}, fmt.Errorf("owner and name are required: %w", ErrInvalidInput)
	}
	if err := fieldtypes.ValidateFields(nt.Fields); err != nil {
		return Template{}, fmt.Errorf("%s: %w", err, ErrInvalidInput)
	}

	templateID, err := cryptids.GenerateID()
	if err != nil {
		return Template{}, fmt.Errorf("generate template id: %w", err)
	}

	tpl, err := r.storer.Create(ctx, Template{
		TemplateID: templateID,
		Name:       nt.Name,
		OwnerID:    nt.OwnerID,
		Fields:     nt.Fields,
	})
	if err != nil {
		return Template{}, fmt.Errorf("create template: %w", err)
	}

	if err := r.storer.AttachOwner(ctx, nt.OwnerID, templateID); err != nil {
		r.unwindCreate(ctx, nt.OwnerID, templateID)
		return Template{}, fmt.Errorf("attach owner: %w", err)
	}

	if _, err := r.registry.GetOrCreate(ctx, templateID, nt.Fields); err != nil {
		r.unwindCreate(ctx, nt.OwnerID, templateID)
		return Template{}, fmt.Errorf("materialize collection: %w", err)
	}

	r.log.InfoContext(ctx, "created template", "template_id", templateID, "owner_id", nt.OwnerID)
	return tpl, nil
}

// unwindCreate removes the rows a failed Create left behind. Best effort:
// failures here only get logged, the original error is what surfaces.
func (r *Repository) unwindCreate(ctx context.Context, ownerID, templateID string) {
	if err := r.storer.DetachOwner(ctx, ownerID, templateID); err != nil {
		r.log.ErrorContext(ctx, "unwind detach owner", "template_id", templateID, "err", err)
	}
	if err := r.storer.Delete(ctx, templateID); err != nil {
		r.log.ErrorContext(ctx, "unwind delete template", "template_id", templateID, "err", err)
	}
}

// Update replaces a template's name and field list wholesale and
// re-materializes its collection. Records created under the old field list
// keep their stored values; new fields read as absent on them.
func (r *Repository) Update(ctx context.Context, templateID string, ut UpdateTemplate) (Template, error) {
	if ut.Name == "" {
		return Template{}, fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	if err := fieldtypes.ValidateFields(ut.Fields); err != nil {
		return Template{}, fmt.Errorf("%s: %w", err, ErrInvalidInput)
	}

	prev, err := r.storer.GetByID(ctx, templateID)
	if err != nil {
		return Template{}, r.mapNotFound(err, "get template")
	}

	tpl, err := r.storer.Update(ctx, templateID, ut.Name, ut.Fields)
	if err != nil {
		return Template{}, r.mapNotFound(err, "update template")
	}

	if _, err := r.registry.GetOrCreate(ctx, templateID, ut.Fields); err != nil {
		// Keep store and registry consistent: restore the previous
		// definition before surfacing the failure.
		if _, rerr := r.storer.Update(ctx, templateID, prev.Name, prev.Fields); rerr != nil {
			r.log.ErrorContext(ctx, "restore template after failed materialization",
				"template_id", templateID, "err", rerr)
		}
		return Template{}, fmt.Errorf("materialize collection: %w", err)
	}

	r.log.InfoContext(ctx, "updated template", "template_id", templateID)
	return tpl, nil
}

// Delete removes a template, its owner association, and every record in its
// collection.
func (r *Repository) Delete(ctx context.Context, templateID string) error {
	tpl, err := r.storer.GetByID(ctx, templateID)
	if err != nil {
		return r.mapNotFound(err, "get template")
	}

	if r.purger != nil {
		count, err := r.purger.DeleteAllForTemplate(ctx, templateID)
		if err != nil {
			return fmt.Errorf("purge records: %w", err)
		}
		r.log.InfoContext(ctx, "purged records", "template_id", templateID, "count", count)
	}

	if err := r.registry.Drop(ctx, templateID); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}

	if err := r.storer.DetachOwner(ctx, tpl.OwnerID, templateID); err != nil {
		return fmt.Errorf("detach owner: %w", err)
	}

	if err := r.storer.Delete(ctx, templateID); err != nil {
		return r.mapNotFound(err, "delete template")
	}

	r.log.InfoContext(ctx, "deleted template", "template_id", templateID, "owner_id", tpl.OwnerID)
	return nil
}

// GetByID returns one template.
func (r *Repository) GetByID(ctx context.Context, templateID string) (Template, error) {
	tpl, err := r.storer.GetByID(ctx, templateID)
	if err != nil {
		return Template{}, r.mapNotFound(err, "get template")
	}
	return tpl, nil
}

// List returns every template.
func (r *Repository) List(ctx context.Context) ([]Template, error) {
	tpls, err := r.storer.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tpls, nil
}

// ListByOwner returns the templates attached to one owner.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Template, error) {
	tpls, err := r.storer.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list templates for owner %s: %w", ownerID, err)
	}
	return tpls, nil
}

func (r *Repository) mapNotFound(err error, op string) error {
	if errors.Is(err, ErrTemplateNotFound) {
		return ErrTemplateNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
