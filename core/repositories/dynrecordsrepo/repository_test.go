package dynrecordsrepo_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/fieldtypes"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
	"github.com/jrazmi/formvault/sdk/logger"
)

// ============================================================================
// Stubbed Dependencies
// ============================================================================

type StubTemplateSource struct {
	templates map[string]templatesrepo.Template
}

func (s *StubTemplateSource) GetByID(ctx context.Context, templateID string) (templatesrepo.Template, error) {
	tpl, ok := s.templates[templateID]
	if !ok {
		return templatesrepo.Template{}, templatesrepo.ErrTemplateNotFound
	}
	return tpl, nil
}

type StubResolver struct{}

func (StubResolver) GetOrCreate(ctx context.Context, templateID string, fields []fieldtypes.Field) (collections.Handle, error) {
	cols := make(map[string]fieldtypes.StorageType, len(fields))
	names := make(map[string]string, len(fields))
	for _, f := range fields {
		col := fieldtypes.ColumnName(f.Name)
		cols[col] = fieldtypes.Resolve(f.Type)
		names[col] = f.Name
	}
	return collections.Handle{
		TemplateID: templateID,
		Table:      collections.TableName(templateID),
		Signature:  fieldtypes.Signature(fields),
		Columns:    cols,
		FieldNames: names,
	}, nil
}

type StubRecordStore struct {
	records map[string]dynrecordsrepo.Record

	lastValues map[string]any
	lastExtras map[string]any
}

func NewStubRecordStore() *StubRecordStore {
	return &StubRecordStore{
		records: make(map[string]dynrecordsrepo.Record),
	}
}

func (s *StubRecordStore) Insert(ctx context.Context, h collections.Handle, recordID string, values map[string]any, extras map[string]any) (dynrecordsrepo.Record, error) {
	s.lastValues = values
	s.lastExtras = extras

	rec := dynrecordsrepo.Record{
		fieldtypes.ColumnRecordID:    recordID,
		fieldtypes.ColumnTemplateRef: h.TemplateID,
		fieldtypes.ColumnStatusFlag:  false,
	}
	for k, v := range values {
		rec[k] = v
	}
	for k, v := range extras {
		rec[k] = v
	}
	s.records[recordID] = rec
	return rec, nil
}

func (s *StubRecordStore) List(ctx context.Context, h collections.Handle) ([]dynrecordsrepo.Record, error) {
	recs := make([]dynrecordsrepo.Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *StubRecordStore) GetByID(ctx context.Context, h collections.Handle, recordID string) (dynrecordsrepo.Record, error) {
	rec, ok := s.records[recordID]
	if !ok {
		return nil, dynrecordsrepo.ErrRecordNotFound
	}
	return rec, nil
}

func (s *StubRecordStore) Update(ctx context.Context, h collections.Handle, recordID string, values map[string]any, extras map[string]any) (dynrecordsrepo.Record, error) {
	s.lastValues = values
	s.lastExtras = extras

	rec, ok := s.records[recordID]
	if !ok {
		return nil, dynrecordsrepo.ErrRecordNotFound
	}
	for k, v := range values {
		rec[k] = v
	}
	for k, v := range extras {
		rec[k] = v
	}
	return rec, nil
}

func (s *StubRecordStore) SetStatusFlag(ctx context.Context, h collections.Handle, recordID string) (dynrecordsrepo.Record, error) {
	rec, ok := s.records[recordID]
	if !ok {
		return nil, dynrecordsrepo.ErrRecordNotFound
	}
	rec[fieldtypes.ColumnStatusFlag] = true
	return rec, nil
}

func (s *StubRecordStore) Delete(ctx context.Context, h collections.Handle, recordID string) (dynrecordsrepo.Record, error) {
	rec, ok := s.records[recordID]
	if !ok {
		return nil, dynrecordsrepo.ErrRecordNotFound
	}
	delete(s.records, recordID)
	return rec, nil
}

func (s *StubRecordStore) DeleteAll(ctx context.Context, h collections.Handle) (int64, error) {
	count := int64(len(s.records))
	s.records = make(map[string]dynrecordsrepo.Record)
	return count, nil
}

func newTestRepository(store *StubRecordStore) *dynrecordsrepo.Repository {
	source := &StubTemplateSource{
		templates: map[string]templatesrepo.Template{
			"tpl1": {
				TemplateID: "tpl1",
				Name:       "signup form",
				OwnerID:    "owner-1",
				Fields: []fieldtypes.Field{
					{Name: "email", Type: "string"},
					{Name: "age", Type: "number"},
					{Name: "joined", Type: "date"},
					{Name: "active", Type: "boolean"},
					{Name: "dueDate", Type: "date"},
					{Name: "profile", Type: "json"},
				},
			},
		},
	}
	return dynrecordsrepo.NewRepository(logger.NewDefault(), source, StubResolver{}, store)
}

// ============================================================================
// Tests
// ============================================================================

func TestCreateCoercesDeclaredFields(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)

	rec, err := repo.Create(context.Background(), "tpl1", map[string]any{
		"email":  "a@b.co",
		"age":    "42",
		"joined": "2025-06-15",
		"active": "true",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if store.lastValues["email"] != "a@b.co" {
		t.Errorf("email = %v", store.lastValues["email"])
	}
	if store.lastValues["age"] != float64(42) {
		t.Errorf("age should be coerced to a number, got %T %v", store.lastValues["age"], store.lastValues["age"])
	}
	if _, ok := store.lastValues["joined"].(time.Time); !ok {
		t.Errorf("joined should be coerced to a time, got %T", store.lastValues["joined"])
	}
	if store.lastValues["active"] != true {
		t.Errorf("active should be coerced to a bool, got %v", store.lastValues["active"])
	}
	if rec.RecordID() == "" {
		t.Error("expected a generated record id")
	}
}

func TestMixedCaseFieldNameRoundTrip(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)
	ctx := context.Background()

	rec, err := repo.Create(ctx, "tpl1", map[string]any{
		"email":   "a@b.co",
		"dueDate": "2025-01-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, ok := store.lastValues["duedate"].(time.Time); !ok {
		t.Errorf("value should be stored under the lower-cased column, got %v", store.lastValues)
	}
	if _, ok := rec["dueDate"]; !ok {
		t.Errorf("created record should carry the declared name, got %v", rec)
	}
	if _, ok := rec["duedate"]; ok {
		t.Error("column name must not leak into the created record")
	}

	got, err := repo.GetByID(ctx, "tpl1", rec.RecordID())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, ok := got["dueDate"]; !ok {
		t.Errorf("read record should carry the declared name, got %v", got)
	}

	recs, err := repo.List(ctx, "tpl1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, ok := recs[0]["dueDate"]; !ok {
		t.Errorf("listed record should carry the declared name, got %v", recs[0])
	}
}

func TestCreateEncodesOpaqueString(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)

	_, err := repo.Create(context.Background(), "tpl1", map[string]any{
		"profile": "hello",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, ok := store.lastValues["profile"].(json.RawMessage)
	if !ok {
		t.Fatalf("opaque value should be stored as a JSON document, got %T", store.lastValues["profile"])
	}
	if string(raw) != `"hello"` {
		t.Errorf("opaque string = %s, want %q quoted", raw, "hello")
	}
}

func TestCreatePassesUnrecognizedKeysThrough(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)

	_, err := repo.Create(context.Background(), "tpl1", map[string]any{
		"email":    "a@b.co",
		"referrer": "newsletter",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if store.lastExtras["referrer"] != "newsletter" {
		t.Errorf("unrecognized key should land in extras, got %v", store.lastExtras)
	}
	if _, ok := store.lastValues["referrer"]; ok {
		t.Error("unrecognized key must not be treated as a declared column")
	}
}

func TestCreateSkipsSystemKeys(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)

	rec, err := repo.Create(context.Background(), "tpl1", map[string]any{
		"email":       "a@b.co",
		"record_id":   "spoofed",
		"status_flag": true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rec.RecordID() == "spoofed" {
		t.Error("payload must not set the record id")
	}
	if rec.StatusFlag() {
		t.Error("payload must not set the status flag")
	}
	if _, ok := store.lastExtras["status_flag"]; ok {
		t.Error("system keys must not leak into extras")
	}
}

func TestCreateRejectsUncoercibleValue(t *testing.T) {
	repo := newTestRepository(NewStubRecordStore())

	_, err := repo.Create(context.Background(), "tpl1", map[string]any{
		"age": "not a number",
	})
	if !errors.Is(err, dynrecordsrepo.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateUnknownTemplate(t *testing.T) {
	repo := newTestRepository(NewStubRecordStore())

	_, err := repo.Create(context.Background(), "missing", map[string]any{"email": "a@b.co"})
	if !errors.Is(err, templatesrepo.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestUpdateMergesShallowly(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)
	ctx := context.Background()

	rec, err := repo.Create(ctx, "tpl1", map[string]any{
		"email": "a@b.co",
		"age":   float64(30),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := repo.Update(ctx, "tpl1", rec.RecordID(), map[string]any{
		"age": float64(31),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated["age"] != float64(31) {
		t.Errorf("age = %v, want 31", updated["age"])
	}
	if updated["email"] != "a@b.co" {
		t.Errorf("omitted field should keep its value, got %v", updated["email"])
	}
}

func TestUpdateEmptyPayloadIsARead(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)
	ctx := context.Background()

	rec, err := repo.Create(ctx, "tpl1", map[string]any{"email": "a@b.co"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	store.lastValues = nil
	store.lastExtras = nil

	got, err := repo.Update(ctx, "tpl1", rec.RecordID(), map[string]any{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.RecordID() != rec.RecordID() {
		t.Error("empty update should return the unchanged record")
	}
	if store.lastValues != nil {
		t.Error("empty update must not write")
	}
}

func TestSetStatusFlagIdempotent(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)
	ctx := context.Background()

	rec, err := repo.Create(ctx, "tpl1", map[string]any{"email": "a@b.co"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := repo.SetStatusFlag(ctx, "tpl1", rec.RecordID())
	if err != nil {
		t.Fatalf("first SetStatusFlag: %v", err)
	}
	if !first.StatusFlag() {
		t.Error("status flag should be set")
	}

	second, err := repo.SetStatusFlag(ctx, "tpl1", rec.RecordID())
	if err != nil {
		t.Fatalf("second SetStatusFlag: %v", err)
	}
	if !second.StatusFlag() {
		t.Error("setting an already-set flag should succeed and stay set")
	}
}

func TestRecordNotFound(t *testing.T) {
	repo := newTestRepository(NewStubRecordStore())
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "tpl1", "missing"); !errors.Is(err, dynrecordsrepo.ErrRecordNotFound) {
		t.Errorf("GetByID: expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.Delete(ctx, "tpl1", "missing"); !errors.Is(err, dynrecordsrepo.ErrRecordNotFound) {
		t.Errorf("Delete: expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.SetStatusFlag(ctx, "tpl1", "missing"); !errors.Is(err, dynrecordsrepo.ErrRecordNotFound) {
		t.Errorf("SetStatusFlag: expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteAllForTemplate(t *testing.T) {
	store := NewStubRecordStore()
	repo := newTestRepository(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, "tpl1", map[string]any{"email": "a@b.co"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	count, err := repo.DeleteAllForTemplate(ctx, "tpl1")
	if err != nil {
		t.Fatalf("DeleteAllForTemplate: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	recs, err := repo.List(ctx, "tpl1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records remaining = %d, want 0", len(recs))
	}
}
