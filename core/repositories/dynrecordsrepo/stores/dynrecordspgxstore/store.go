// Package dynrecordspgxstore provides Postgres storage for dynamic records.
// Every statement is composed against a resolved collection handle; all
// identifiers go through QuoteIdentifier, all values through positional args.
package dynrecordspgxstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/infrastructure/postgresdb"
	"github.com/jrazmi/formvault/sdk/logger"
)

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Insert(ctx context.Context, h collections.Handle, recordID string, values map[string]any, extras map[string]any) (dynrecordsrepo.Record, error) {
	qtable, err := postgresdb.QuoteIdentifier(h.Table)
	if err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}

	cols := []string{`"record_id"`, `"template_ref"`, `"extras"`}
	args := []any{recordID, h.TemplateID, extrasOrEmpty(extras)}

	for _, col := range sortedKeys(values) {
		qcol, err := postgresdb.QuoteIdentifier(col)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		cols = append(cols, qcol)
		args = append(args, values[col])
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		qtable, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return collectRecord(rows)
}

func (s *Store) List(ctx context.Context, h collections.Handle) ([]dynrecordsrepo.Record, error) {
	qtable, err := postgresdb.QuoteIdentifier(h.Table)
	if err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE template_ref = $1 ORDER BY record_id", qtable)

	rows, err := s.pool.Query(ctx, query, h.TemplateID)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	recs := make([]dynrecordsrepo.Record, len(maps))
	for i, m := range maps {
		recs[i] = foldExtras(m)
	}
	return recs, nil
}

func (s *Store) GetByID(ctx context.Context, h collections.Handle, recordID string) (dynrecordsrepo.Record, error) {
	qtable, err := postgresdb.QuoteIdentifier(h.Table)
	if err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE record_id = $1", qtable)

	rows, err := s.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return collectRecord(rows)
}

func (s *Store) Update(ctx context.Context, h collections.Handle, recordID string, values map[string]any, extras map[string]any) (dynrecordsrepo.Record, error) {
	qtable, err := postgresdb.QuoteIdentifier(h.Table)
	if err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}

	set := make([]string, 0, len(values)+1)
	args := []any{recordID}
	arg := 2

	for _, col := range sortedKeys(values) {
		qcol, err := postgresdb.QuoteIdentifier(col)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		set = append(set, fmt.Sprintf("%s = $%d", qcol, arg))
		args = append(args, values[col])
		arg++
	}

	if len(extras) > 0 {
		set = append(set, fmt.Sprintf("extras = extras || $%d", arg))
		args = append(args, extras)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE record_id = $1 RETURNING *",
		qtable, strings.Join(set, ", "))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return collectRecord(rows)
}

func (s *Store) SetStatusFlag(ctx context.Context, h collections.Handle, recordID string) (dynrecordsrepo.Record, error) {
	qtable, err := postgresdb.QuoteIdentifier(h.Table)
	if err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}

	query := fmt.Sprintf("UPDATE %s SET status_flag = TRUE WHERE record_id = $1 RETURNING *", qtable)

	rows, err := s.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return collectRecord(rows)
}

func (s *Store) Delete(ctx context.Context, h collections.Handle, recordID string) (dynrecordsrepo.Record, error) {
	qtable, err := postgresdb.QuoteIdentifier(h.Table)
	if err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE record_id = $1 RETURNING *", qtable)

	rows, err := s.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return collectRecord(rows)
}

func (s *Store) DeleteAll(ctx context.Context, h collections.Handle) (int64, error) {
	qtable, err := postgresdb.QuoteIdentifier(h.Table)
	if err != nil {
		return 0, fmt.Errorf("table name: %w", err)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE template_ref = $1", qtable)

	tag, err := s.pool.Exec(ctx, query, h.TemplateID)
	if err != nil {
		return 0, postgresdb.HandlePgError(err)
	}

	return tag.RowsAffected(), nil
}

// collectRecord reads exactly one row into a record, mapping the empty
// result to ErrRecordNotFound.
func collectRecord(rows pgx.Rows) (dynrecordsrepo.Record, error) {
	m, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dynrecordsrepo.ErrRecordNotFound
		}
		return nil, postgresdb.HandlePgError(err)
	}
	return foldExtras(m), nil
}

// foldExtras flattens the extras document into the record. Declared columns
// win on a key collision.
func foldExtras(m map[string]any) dynrecordsrepo.Record {
	rec := dynrecordsrepo.Record(m)

	ex, ok := m["extras"].(map[string]any)
	if !ok {
		delete(m, "extras")
		return rec
	}
	delete(m, "extras")

	for k, v := range ex {
		if _, exists := rec[k]; !exists {
			rec[k] = v
		}
	}
	return rec
}

func extrasOrEmpty(extras map[string]any) map[string]any {
	if extras == nil {
		return map[string]any{}
	}
	return extras
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
