// Package templatespgxstore provides Postgres storage for templates.
package templatespgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/formvault/core/fieldtypes"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
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

func (s *Store) Create(ctx context.Context, tpl templatesrepo.Template) (templatesrepo.Template, error) {
	query := `
		INSERT INTO templates (template_id, name, owner_id, fields)
		VALUES ($1, $2, $3, $4)
		RETURNING template_id, name, owner_id, fields, created_at, updated_at`

	rows, err := s.pool.Query(ctx, query, tpl.TemplateID, tpl.Name, tpl.OwnerID, tpl.Fields)
	if err != nil {
		return templatesrepo.Template{}, postgresdb.HandlePgError(err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[templatesrepo.Template])
	if err != nil {
		return templatesrepo.Template{}, postgresdb.HandlePgError(err)
	}

	return created, nil
}

func (s *Store) GetByID(ctx context.Context, templateID string) (templatesrepo.Template, error) {
	query := `
		SELECT template_id, name, owner_id, fields, created_at, updated_at
		FROM templates
		WHERE template_id = $1`

	rows, err := s.pool.Query(ctx, query, templateID)
	if err != nil {
		return templatesrepo.Template{}, postgresdb.HandlePgError(err)
	}

	tpl, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[templatesrepo.Template])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return templatesrepo.Template{}, templatesrepo.ErrTemplateNotFound
		}
		return templatesrepo.Template{}, postgresdb.HandlePgError(err)
	}

	return tpl, nil
}

func (s *Store) List(ctx context.Context) ([]templatesrepo.Template, error) {
	query := `
		SELECT template_id, name, owner_id, fields, created_at, updated_at
		FROM templates
		ORDER BY created_at DESC, template_id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	tpls, err := pgx.CollectRows(rows, pgx.RowToStructByName[templatesrepo.Template])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return tpls, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]templatesrepo.Template, error) {
	query := `
		SELECT t.template_id, t.name, t.owner_id, t.fields, t.created_at, t.updated_at
		FROM templates t
		JOIN owner_templates ot ON ot.template_id = t.template_id
		WHERE ot.owner_id = $1
		ORDER BY t.created_at DESC, t.template_id`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	tpls, err := pgx.CollectRows(rows, pgx.RowToStructByName[templatesrepo.Template])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return tpls, nil
}

func (s *Store) Update(ctx context.Context, templateID string, name string, fields []fieldtypes.Field) (templatesrepo.Template, error) {
	query := `
		UPDATE templates
		SET name = $2, fields = $3, updated_at = NOW()
		WHERE template_id = $1
		RETURNING template_id, name, owner_id, fields, created_at, updated_at`

	rows, err := s.pool.Query(ctx, query, templateID, name, fields)
	if err != nil {
		return templatesrepo.Template{}, postgresdb.HandlePgError(err)
	}

	tpl, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[templatesrepo.Template])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return templatesrepo.Template{}, templatesrepo.ErrTemplateNotFound
		}
		return templatesrepo.Template{}, postgresdb.HandlePgError(err)
	}

	return tpl, nil
}

func (s *Store) Delete(ctx context.Context, templateID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM templates WHERE template_id = $1", templateID)
	if err != nil {
		return postgresdb.HandlePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return templatesrepo.ErrTemplateNotFound
	}
	return nil
}

func (s *Store) AttachOwner(ctx context.Context, ownerID, templateID string) error {
	query := `
		INSERT INTO owner_templates (owner_id, template_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, ownerID, templateID); err != nil {
		return postgresdb.HandlePgError(err)
	}
	return nil
}

func (s *Store) DetachOwner(ctx context.Context, ownerID, templateID string) error {
	query := "DELETE FROM owner_templates WHERE owner_id = $1 AND template_id = $2"

	if _, err := s.pool.Exec(ctx, query, ownerID, templateID); err != nil {
		return fmt.Errorf("detach owner: %w", postgresdb.HandlePgError(err))
	}
	return nil
}
