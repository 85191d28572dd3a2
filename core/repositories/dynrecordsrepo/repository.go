// Package dynrecordsrepo is the CRUD surface over a template's materialized
// collection. Every operation resolves the template to a fresh collection
// handle first, so a template whose fields changed since last use heals
// itself before the record is touched.
package dynrecordsrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/fieldtypes"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
	"github.com/jrazmi/formvault/sdk/logger"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidInput   = errors.New("invalid record input")
)

// TemplateSource looks up the owning template of a collection.
type TemplateSource interface {
	GetByID(ctx context.Context, templateID string) (templatesrepo.Template, error)
}

// CollectionResolver turns a template's current field list into a live
// collection handle.
type CollectionResolver interface {
	GetOrCreate(ctx context.Context, templateID string, fields []fieldtypes.Field) (collections.Handle, error)
}

// Storer defines the data storage interface for dynamic records. All
// operations run against an already-resolved collection handle.
type Storer interface {
	Insert(ctx context.Context, h collections.Handle, recordID string, values map[string]any, extras map[string]any) (Record, error)
	List(ctx context.Context, h collections.Handle) ([]Record, error)
	GetByID(ctx context.Context, h collections.Handle, recordID string) (Record, error)
	Update(ctx context.Context, h collections.Handle, recordID string, values map[string]any, extras map[string]any) (Record, error)
	SetStatusFlag(ctx context.Context, h collections.Handle, recordID string) (Record, error)
	Delete(ctx context.Context, h collections.Handle, recordID string) (Record, error)
	DeleteAll(ctx context.Context, h collections.Handle) (int64, error)
}

// Repository provides access to dynamic record storage.
type Repository struct {
	log       *logger.Logger
	templates TemplateSource
	resolver  CollectionResolver
	storer    Storer
}

func NewRepository(log *logger.Logger, templates TemplateSource, resolver CollectionResolver, storer Storer) *Repository {
	return &Repository{
		log:       log,
		templates: templates,
		resolver:  resolver,
		storer:    storer,
	}
}

// Resolve returns the owning template and its live collection handle.
// Returns templatesrepo.ErrTemplateNotFound when the template is gone.
func (r *Repository) Resolve(ctx context.Context, templateID string) (templatesrepo.Template, collections.Handle, error) {
	tpl, err := r.templates.GetByID(ctx, templateID)
	if err != nil {
		return templatesrepo.Template{}, collections.Handle{}, err
	}

	h, err := r.resolver.GetOrCreate(ctx, templateID, tpl.Fields)
	if err != nil {
		return templatesrepo.Template{}, collections.Handle{}, fmt.Errorf("resolve collection: %w", err)
	}

	return tpl, h, nil
}

// Create coerces the declared fields present in payload, passes unrecognized
// keys through untouched, and writes the record. A coercion failure fails
// the whole write; nothing is stored.
func (r *Repository) Create(ctx context.Context, templateID string, payload map[string]any) (Record, error) {
	_, h, err := r.Resolve(ctx, templateID)
	if err != nil {
		return nil, err
	}

	values, extras, err := splitPayload(h, payload)
	if err != nil {
		return nil, err
	}

	recordID := uuid.NewString()
	rec, err := r.storer.Insert(ctx, h, recordID, values, extras)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	r.log.InfoContext(ctx, "created record", "template_id", templateID, "record_id", recordID)
	return withDeclaredKeys(h, rec), nil
}

// List returns every record of the template's collection in a stable order.
func (r *Repository) List(ctx context.Context, templateID string) ([]Record, error) {
	_, h, err := r.Resolve(ctx, templateID)
	if err != nil {
		return nil, err
	}

	recs, err := r.storer.List(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	for i, rec := range recs {
		recs[i] = withDeclaredKeys(h, rec)
	}
	return recs, nil
}

// GetByID returns one record.
func (r *Repository) GetByID(ctx context.Context, templateID, recordID string) (Record, error) {
	_, h, err := r.Resolve(ctx, templateID)
	if err != nil {
		return nil, err
	}

	rec, err := r.storer.GetByID(ctx, h, recordID)
	if err != nil {
		return nil, r.mapNotFound(err, "get record")
	}

	return withDeclaredKeys(h, rec), nil
}

// Update applies a shallow merge: declared fields present in payload are
// coerced and replaced, unrecognized keys are merged into the extras, and
// omitted fields are left unchanged rather than cleared.
func (r *Repository) Update(ctx context.Context, templateID, recordID string, payload map[string]any) (Record, error) {
	_, h, err := r.Resolve(ctx, templateID)
	if err != nil {
		return nil, err
	}

	values, extras, err := splitPayload(h, payload)
	if err != nil {
		return nil, err
	}

	if len(values) == 0 && len(extras) == 0 {
		rec, err := r.storer.GetByID(ctx, h, recordID)
		if err != nil {
			return nil, r.mapNotFound(err, "get record")
		}
		return withDeclaredKeys(h, rec), nil
	}

	rec, err := r.storer.Update(ctx, h, recordID, values, extras)
	if err != nil {
		return nil, r.mapNotFound(err, "update record")
	}

	return withDeclaredKeys(h, rec), nil
}

// SetStatusFlag marks the record's external post-processing step as done.
// Setting an already-set flag is a no-op success.
func (r *Repository) SetStatusFlag(ctx context.Context, templateID, recordID string) (Record, error) {
	_, h, err := r.Resolve(ctx, templateID)
	if err != nil {
		return nil, err
	}

	rec, err := r.storer.SetStatusFlag(ctx, h, recordID)
	if err != nil {
		return nil, r.mapNotFound(err, "set status flag")
	}

	return withDeclaredKeys(h, rec), nil
}

// Delete removes one record and returns it for caller confirmation.
func (r *Repository) Delete(ctx context.Context, templateID, recordID string) (Record, error) {
	_, h, err := r.Resolve(ctx, templateID)
	if err != nil {
		return nil, err
	}

	rec, err := r.storer.Delete(ctx, h, recordID)
	if err != nil {
		return nil, r.mapNotFound(err, "delete record")
	}

	r.log.InfoContext(ctx, "deleted record", "template_id", templateID, "record_id", recordID)
	return withDeclaredKeys(h, rec), nil
}

// DeleteAllForTemplate deletes every record with this template ref. Used by
// the template deletion cascade.
func (r *Repository) DeleteAllForTemplate(ctx context.Context, templateID string) (int64, error) {
	_, h, err := r.Resolve(ctx, templateID)
	if err != nil {
		return 0, err
	}

	count, err := r.storer.DeleteAll(ctx, h)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}

	return count, nil
}

func (r *Repository) mapNotFound(err error, op string) error {
	if errors.Is(err, ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// withDeclaredKeys rewrites storage column keys back to the declared field
// names, so a record created under "dueDate" also reads back under "dueDate"
// even though its column is lower-cased. Idempotent: once a key is renamed the
// column key is gone.
func withDeclaredKeys(h collections.Handle, rec Record) Record {
	for col, name := range h.FieldNames {
		if col == name {
			continue
		}
		if v, ok := rec[col]; ok {
			delete(rec, col)
			rec[name] = v
		}
	}
	return rec
}

// splitPayload partitions a payload into coerced declared-field values and
// untouched extras. System keys cannot be set through a payload; in
// particular the status flag only moves through its dedicated transition.
func splitPayload(h collections.Handle, payload map[string]any) (map[string]any, map[string]any, error) {
	values := make(map[string]any)
	extras := make(map[string]any)

	for key, raw := range payload {
		col := fieldtypes.ColumnName(key)
		switch col {
		case fieldtypes.ColumnRecordID, fieldtypes.ColumnTemplateRef,
			fieldtypes.ColumnStatusFlag, fieldtypes.ColumnExtras:
			continue
		}

		st, declared := h.Columns[col]
		if !declared {
			extras[key] = raw
			continue
		}

		coerced, err := fieldtypes.Coerce(raw, st)
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %s: %w", key, err, ErrInvalidInput)
		}
		values[col] = coerced
	}

	return values, extras, nil
}
