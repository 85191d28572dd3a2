// Package collectionspgxstore declares dynamic collection tables in Postgres.
package collectionspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/fieldtypes"
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

// Declare creates the collection table if missing and adds one typed column
// per declared field. Re-declaring an unchanged shape is a no-op. An existing
// column with a different type is a shape conflict: nothing is altered and
// collections.ErrShapeConflict is returned.
func (s *Store) Declare(ctx context.Context, table string, columns []collections.Column) error {
	qtable, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return fmt.Errorf("table name: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			record_id TEXT PRIMARY KEY,
			template_ref TEXT NOT NULL,
			status_flag BOOLEAN NOT NULL DEFAULT FALSE,
			extras JSONB NOT NULL DEFAULT '{}'
		)`, qtable)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return postgresdb.HandlePgError(err)
	}

	for _, col := range columns {
		if err := s.addColumn(ctx, table, qtable, col); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) addColumn(ctx context.Context, table, qtable string, col collections.Column) error {
	existing, err := s.columnDataType(ctx, table, col.Name)
	if err != nil {
		return err
	}

	if existing != "" {
		if existing != pgDataType(col.Type) {
			return fmt.Errorf("column %s is %s, want %s: %w",
				col.Name, existing, pgDataType(col.Type), collections.ErrShapeConflict)
		}
		return nil
	}

	qcol, err := postgresdb.QuoteIdentifier(col.Name)
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}

	query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		qtable, qcol, fieldtypes.ColumnType(col.Type))

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return postgresdb.HandlePgError(err)
	}

	return nil
}

// columnDataType returns the information_schema data type of an existing
// column, or "" when the column does not exist.
func (s *Store) columnDataType(ctx context.Context, table, column string) (string, error) {
	query := `
		SELECT data_type
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2`

	var dataType string
	err := s.pool.QueryRow(ctx, query, table, column).Scan(&dataType)
	if err != nil {
		if errors.Is(err, postgresdb.ErrDBNotFound) {
			return "", nil
		}
		return "", postgresdb.HandlePgError(err)
	}

	return dataType, nil
}

// Drop removes a collection table entirely.
func (s *Store) Drop(ctx context.Context, table string) error {
	qtable, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return fmt.Errorf("table name: %w", err)
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", qtable)); err != nil {
		return postgresdb.HandlePgError(err)
	}

	return nil
}

// pgDataType maps a storage type to the data_type value information_schema
// reports for it.
func pgDataType(st fieldtypes.StorageType) string {
	switch st {
	case fieldtypes.Text:
		return "text"
	case fieldtypes.Numeric:
		return "double precision"
	case fieldtypes.Timestamp:
		return "timestamp with time zone"
	case fieldtypes.Flag:
		return "boolean"
	default:
		return "jsonb"
	}
}
