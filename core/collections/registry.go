// Package collections materializes one live, queryable table per template and
// caches a handle to it. A handle is only re-declared when the template's
// field signature changes; requesting an unchanged signature never touches
// the database.
package collections

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jrazmi/formvault/core/fieldtypes"
	"github.com/jrazmi/formvault/sdk/logger"
)

// ErrShapeConflict reports that a collection could not be declared because an
// existing column already carries an incompatible type.
var ErrShapeConflict = errors.New("collection shape conflict")

// Column is one typed column of a collection shape declaration.
type Column struct {
	Name string
	Type fieldtypes.StorageType
}

// Handle is an opaque reference to a materialized collection. FieldNames maps
// each column back to the declared field name it stores; records must read
// back under declared names, not storage identifiers.
type Handle struct {
	TemplateID string
	Table      string
	Signature  string
	Columns    map[string]fieldtypes.StorageType
	FieldNames map[string]string
}

// ShapeStore declares and removes the underlying storage shape of a
// collection. Declare must be idempotent for an unchanged shape.
type ShapeStore interface {
	Declare(ctx context.Context, table string, columns []Column) error
	Drop(ctx context.Context, table string) error
}

// TableName derives the deterministic collection name for a template, so a
// collection can be located without an auxiliary index.
func TableName(templateID string) string {
	return "tpl_" + templateID
}

// Registry is the process-wide cache of collection handles. It is safe for
// concurrent use; the lock only guards the cache map, not the storage I/O.
type Registry struct {
	log   *logger.Logger
	store ShapeStore

	mu    sync.Mutex
	cache map[string]Handle
}

func NewRegistry(log *logger.Logger, store ShapeStore) *Registry {
	return &Registry{
		log:   log,
		store: store,
		cache: make(map[string]Handle),
	}
}

// GetOrCreate returns the live handle for a template, declaring the storage
// shape only when no handle exists yet or the field signature changed.
//
// Concurrent first-requests for the same template may race to declare; the
// declaration is idempotent so both converge to a single live handle.
func (r *Registry) GetOrCreate(ctx context.Context, templateID string, fields []fieldtypes.Field) (Handle, error) {
	sig := fieldtypes.Signature(fields)

	r.mu.Lock()
	if h, ok := r.cache[templateID]; ok && h.Signature == sig {
		r.mu.Unlock()
		return h, nil
	}
	r.mu.Unlock()

	columns := make([]Column, 0, len(fields))
	colTypes := make(map[string]fieldtypes.StorageType, len(fields))
	colNames := make(map[string]string, len(fields))
	for _, f := range fields {
		col := fieldtypes.ColumnName(f.Name)
		st := fieldtypes.Resolve(f.Type)
		columns = append(columns, Column{Name: col, Type: st})
		colTypes[col] = st
		colNames[col] = f.Name
	}

	table := TableName(templateID)
	if err := r.store.Declare(ctx, table, columns); err != nil {
		return Handle{}, fmt.Errorf("declare collection %s: %w", table, err)
	}

	h := Handle{
		TemplateID: templateID,
		Table:      table,
		Signature:  sig,
		Columns:    colTypes,
		FieldNames: colNames,
	}

	r.mu.Lock()
	r.cache[templateID] = h
	r.mu.Unlock()

	r.log.InfoContext(ctx, "materialized collection", "template_id", templateID, "table", table)
	return h, nil
}

// Drop removes a template's collection and evicts its handle. Used by the
// template deletion cascade.
func (r *Registry) Drop(ctx context.Context, templateID string) error {
	table := TableName(templateID)
	if err := r.store.Drop(ctx, table); err != nil {
		return fmt.Errorf("drop collection %s: %w", table, err)
	}

	r.mu.Lock()
	delete(r.cache, templateID)
	r.mu.Unlock()

	return nil
}

// Reset clears the handle cache. Cached handles are rebuilt lazily on the
// next request; existing tables are untouched.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]Handle)
	r.mu.Unlock()
}
