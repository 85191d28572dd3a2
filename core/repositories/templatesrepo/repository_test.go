package templatesrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/fieldtypes"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
	"github.com/jrazmi/formvault/sdk/logger"
)

// ============================================================================
// Stubbed Storer Implementation
// ============================================================================

type StubStorer struct {
	mu        sync.Mutex
	templates map[string]templatesrepo.Template
	owners    map[string]string // templateID -> ownerID

	createErr error
	attachErr error
	updateErr error
	deleteErr error
}

func NewStubStorer() *StubStorer {
	return &StubStorer{
		templates: make(map[string]templatesrepo.Template),
		owners:    make(map[string]string),
	}
}

func (s *StubStorer) Create(ctx context.Context, tpl templatesrepo.Template) (templatesrepo.Template, error) {
	if s.createErr != nil {
		return templatesrepo.Template{}, s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.TemplateID] = tpl
	return tpl, nil
}

func (s *StubStorer) GetByID(ctx context.Context, templateID string) (templatesrepo.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return templatesrepo.Template{}, templatesrepo.ErrTemplateNotFound
	}
	return tpl, nil
}

func (s *StubStorer) List(ctx context.Context) ([]templatesrepo.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpls := make([]templatesrepo.Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		tpls = append(tpls, tpl)
	}
	return tpls, nil
}

func (s *StubStorer) ListByOwner(ctx context.Context, ownerID string) ([]templatesrepo.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tpls []templatesrepo.Template
	for id, owner := range s.owners {
		if owner == ownerID {
			tpls = append(tpls, s.templates[id])
		}
	}
	return tpls, nil
}

func (s *StubStorer) Update(ctx context.Context, templateID string, name string, fields []fieldtypes.Field) (templatesrepo.Template, error) {
	if s.updateErr != nil {
		return templatesrepo.Template{}, s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return templatesrepo.Template{}, templatesrepo.ErrTemplateNotFound
	}
	tpl.Name = name
	tpl.Fields = fields
	s.templates[templateID] = tpl
	return tpl, nil
}

func (s *StubStorer) Delete(ctx context.Context, templateID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[templateID]; !ok {
		return templatesrepo.ErrTemplateNotFound
	}
	delete(s.templates, templateID)
	return nil
}

func (s *StubStorer) AttachOwner(ctx context.Context, ownerID, templateID string) error {
	if s.attachErr != nil {
		return s.attachErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[templateID] = ownerID
	return nil
}

func (s *StubStorer) DetachOwner(ctx context.Context, ownerID, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, templateID)
	return nil
}

// ============================================================================
// Stubbed CollectionRegistry / RecordPurger
// ============================================================================

type StubRegistry struct {
	getOrCreateErr error
	dropErr        error
	getOrCreates   int
	drops          int
}

func (r *StubRegistry) GetOrCreate(ctx context.Context, templateID string, fields []fieldtypes.Field) (collections.Handle, error) {
	r.getOrCreates++
	if r.getOrCreateErr != nil {
		return collections.Handle{}, r.getOrCreateErr
	}
	return collections.Handle{
		TemplateID: templateID,
		Table:      collections.TableName(templateID),
		Signature:  fieldtypes.Signature(fields),
	}, nil
}

func (r *StubRegistry) Drop(ctx context.Context, templateID string) error {
	r.drops++
	return r.dropErr
}

type StubPurger struct {
	purged   []string
	purgeErr error
}

func (p *StubPurger) DeleteAllForTemplate(ctx context.Context, templateID string) (int64, error) {
	if p.purgeErr != nil {
		return 0, p.purgeErr
	}
	p.purged = append(p.purged, templateID)
	return 3, nil
}

func newTestRepository(storer *StubStorer, registry *StubRegistry) *templatesrepo.Repository {
	return templatesrepo.NewRepository(logger.NewDefault(), storer, registry)
}

var testFields = []fieldtypes.Field{
	{Name: "email", Type: "string"},
	{Name: "age", Type: "number"},
}

// ============================================================================
// Tests
// ============================================================================

func TestCreateMaterializesCollection(t *testing.T) {
	storer := NewStubStorer()
	registry := &StubRegistry{}
	repo := newTestRepository(storer, registry)

	tpl, err := repo.Create(context.Background(), templatesrepo.NewTemplate{
		OwnerID: "owner-1",
		Name:    "signup form",
		Fields:  testFields,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if tpl.TemplateID == "" {
		t.Error("expected a generated template id")
	}
	if registry.getOrCreates != 1 {
		t.Errorf("registry calls = %d, want 1", registry.getOrCreates)
	}
	if storer.owners[tpl.TemplateID] != "owner-1" {
		t.Error("owner association not recorded")
	}
}

func TestCreateValidation(t *testing.T) {
	repo := newTestRepository(NewStubStorer(), &StubRegistry{})
	ctx := context.Background()

	tests := []struct {
		name string
		nt   templatesrepo.NewTemplate
	}{
		{"missing owner", templatesrepo.NewTemplate{Name: "x", Fields: testFields}},
		{"missing name", templatesrepo.NewTemplate{OwnerID: "o", Fields: testFields}},
		{"empty fields", templatesrepo.NewTemplate{OwnerID: "o", Name: "x"}},
		{"reserved field", templatesrepo.NewTemplate{OwnerID: "o", Name: "x", Fields: []fieldtypes.Field{{Name: "record_id", Type: "string"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.nt)
			if !errors.Is(err, templatesrepo.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateUnwindsOnMaterializationFailure(t *testing.T) {
	storer := NewStubStorer()
	registry := &StubRegistry{getOrCreateErr: errors.New("ddl failed")}
	repo := newTestRepository(storer, registry)

	_, err := repo.Create(context.Background(), templatesrepo.NewTemplate{
		OwnerID: "owner-1",
		Name:    "signup form",
		Fields:  testFields,
	})
	if err == nil {
		t.Fatal("expected materialization failure to surface")
	}

	if len(storer.templates) != 0 {
		t.Error("template row should be unwound after materialization failure")
	}
	if len(storer.owners) != 0 {
		t.Error("owner association should be unwound after materialization failure")
	}
}

func TestUpdateRestoresPreviousOnFailure(t *testing.T) {
	storer := NewStubStorer()
	registry := &StubRegistry{}
	repo := newTestRepository(storer, registry)
	ctx := context.Background()

	tpl, err := repo.Create(ctx, templatesrepo.NewTemplate{
		OwnerID: "owner-1",
		Name:    "signup form",
		Fields:  testFields,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	registry.getOrCreateErr = errors.New("ddl failed")

	_, err = repo.Update(ctx, tpl.TemplateID, templatesrepo.UpdateTemplate{
		Name:   "renamed",
		Fields: []fieldtypes.Field{{Name: "email", Type: "string"}},
	})
	if err == nil {
		t.Fatal("expected materialization failure to surface")
	}

	got, err := repo.GetByID(ctx, tpl.TemplateID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "signup form" || len(got.Fields) != len(testFields) {
		t.Errorf("template should be restored to its previous definition, got %+v", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := newTestRepository(NewStubStorer(), &StubRegistry{})

	_, err := repo.Update(context.Background(), "missing", templatesrepo.UpdateTemplate{
		Name:   "x",
		Fields: testFields,
	})
	if !errors.Is(err, templatesrepo.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	storer := NewStubStorer()
	registry := &StubRegistry{}
	purger := &StubPurger{}
	repo := newTestRepository(storer, registry)
	repo.SetRecordPurger(purger)
	ctx := context.Background()

	tpl, err := repo.Create(ctx, templatesrepo.NewTemplate{
		OwnerID: "owner-1",
		Name:    "signup form",
		Fields:  testFields,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Delete(ctx, tpl.TemplateID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(purger.purged) != 1 || purger.purged[0] != tpl.TemplateID {
		t.Error("records should be purged before the template goes away")
	}
	if registry.drops != 1 {
		t.Errorf("registry drops = %d, want 1", registry.drops)
	}
	if len(storer.templates) != 0 || len(storer.owners) != 0 {
		t.Error("template and owner association should be removed")
	}

	if err := repo.Delete(ctx, tpl.TemplateID); !errors.Is(err, templatesrepo.ErrTemplateNotFound) {
		t.Fatalf("second delete should report ErrTemplateNotFound, got %v", err)
	}
}

func TestDeleteStopsOnPurgeFailure(t *testing.T) {
	storer := NewStubStorer()
	registry := &StubRegistry{}
	purger := &StubPurger{purgeErr: errors.New("purge failed")}
	repo := newTestRepository(storer, registry)
	repo.SetRecordPurger(purger)
	ctx := context.Background()

	tpl, err := repo.Create(ctx, templatesrepo.NewTemplate{
		OwnerID: "owner-1",
		Name:    "signup form",
		Fields:  testFields,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Delete(ctx, tpl.TemplateID); err == nil {
		t.Fatal("expected purge failure to surface")
	}
	if registry.drops != 0 {
		t.Error("collection should not be dropped when the purge fails")
	}
	if _, err := repo.GetByID(ctx, tpl.TemplateID); err != nil {
		t.Error("template should survive a failed cascade")
	}
}

func TestListByOwner(t *testing.T) {
	storer := NewStubStorer()
	repo := newTestRepository(storer, &StubRegistry{})
	ctx := context.Background()

	for _, owner := range []string{"owner-1", "owner-1", "owner-2"} {
		if _, err := repo.Create(ctx, templatesrepo.NewTemplate{
			OwnerID: owner,
			Name:    "form",
			Fields:  testFields,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tpls, err := repo.ListByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(tpls) != 2 {
		t.Errorf("owner-1 templates = %d, want 2", len(tpls))
	}
}
