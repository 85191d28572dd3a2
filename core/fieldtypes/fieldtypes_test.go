package fieldtypes_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrazmi/formvault/core/fieldtypes"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		want     fieldtypes.StorageType
	}{
		{"string", "string", fieldtypes.Text},
		{"number", "number", fieldtypes.Numeric},
		{"date", "date", fieldtypes.Timestamp},
		{"boolean", "boolean", fieldtypes.Flag},
		{"case insensitive", "  String ", fieldtypes.Text},
		{"unknown falls back to opaque", "geo_point", fieldtypes.Opaque},
		{"empty falls back to opaque", "", fieldtypes.Opaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldtypes.Resolve(tt.typeName); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.typeName, got, tt.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		st      fieldtypes.StorageType
		want    any
		wantErr bool
	}{
		{"nil passes through", nil, fieldtypes.Text, nil, false},
		{"text keeps string", "hello", fieldtypes.Text, "hello", false},
		{"text casts number", float64(42), fieldtypes.Text, "42", false},
		{"text casts bool", true, fieldtypes.Text, "true", false},
		{"text rejects object", map[string]any{}, fieldtypes.Text, nil, true},
		{"numeric keeps float", 3.5, fieldtypes.Numeric, 3.5, false},
		{"numeric parses string", " 12.25 ", fieldtypes.Numeric, 12.25, false},
		{"numeric rejects junk", "twelve", fieldtypes.Numeric, nil, true},
		{"numeric rejects bool", true, fieldtypes.Numeric, nil, true},
		{"flag keeps bool", false, fieldtypes.Flag, false, false},
		{"flag parses string", "true", fieldtypes.Flag, true, false},
		{"flag accepts one", float64(1), fieldtypes.Flag, true, false},
		{"flag accepts zero", float64(0), fieldtypes.Flag, false, false},
		{"flag rejects two", float64(2), fieldtypes.Flag, nil, true},
		{"opaque wraps object as document", map[string]any{"a": 1}, fieldtypes.Opaque, json.RawMessage(`{"a":1}`), false},
		{"opaque wraps bare string as document", "hello", fieldtypes.Opaque, json.RawMessage(`"hello"`), false},
		{"opaque wraps number as document", float64(7), fieldtypes.Opaque, json.RawMessage(`7`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fieldtypes.Coerce(tt.value, tt.st)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Coerce(%v, %v) expected error, got %v", tt.value, tt.st, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Coerce(%v, %v) unexpected error: %v", tt.value, tt.st, err)
			}
			switch want := tt.want.(type) {
			case json.RawMessage:
				raw, ok := got.(json.RawMessage)
				if !ok || string(raw) != string(want) {
					t.Errorf("Coerce(%v, %v) = %v (%T), want %s", tt.value, tt.st, got, got, want)
				}
			default:
				if got != tt.want {
					t.Errorf("Coerce(%v, %v) = %v, want %v", tt.value, tt.st, got, tt.want)
				}
			}
		})
	}
}

func TestCoerceTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	got, err := fieldtypes.Coerce(now, fieldtypes.Timestamp)
	if err != nil {
		t.Fatalf("time.Time passthrough: %v", err)
	}
	if !got.(time.Time).Equal(now) {
		t.Errorf("time.Time passthrough = %v, want %v", got, now)
	}

	got, err = fieldtypes.Coerce("2025-06-15", fieldtypes.Timestamp)
	if err != nil {
		t.Fatalf("date string: %v", err)
	}
	ts := got.(time.Time)
	if ts.Year() != 2025 || ts.Month() != time.June || ts.Day() != 15 {
		t.Errorf("date string = %v, want 2025-06-15", ts)
	}

	got, err = fieldtypes.Coerce(float64(now.UnixMilli()), fieldtypes.Timestamp)
	if err != nil {
		t.Fatalf("epoch millis: %v", err)
	}
	if !got.(time.Time).Equal(now) {
		t.Errorf("epoch millis = %v, want %v", got, now)
	}

	if _, err := fieldtypes.Coerce("not a date", fieldtypes.Timestamp); err == nil {
		t.Error("expected error for unparseable date string")
	}
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  []fieldtypes.Field
		wantErr bool
	}{
		{
			name: "valid list",
			fields: []fieldtypes.Field{
				{Name: "email", Type: "string"},
				{Name: "age", Type: "number"},
			},
		},
		{
			name:    "empty list",
			fields:  nil,
			wantErr: true,
		},
		{
			name: "invalid identifier",
			fields: []fieldtypes.Field{
				{Name: "full name", Type: "string"},
			},
			wantErr: true,
		},
		{
			name: "leading digit",
			fields: []fieldtypes.Field{
				{Name: "1st_place", Type: "string"},
			},
			wantErr: true,
		},
		{
			name: "reserved name",
			fields: []fieldtypes.Field{
				{Name: "record_id", Type: "string"},
			},
			wantErr: true,
		},
		{
			name: "duplicate after lowercasing",
			fields: []fieldtypes.Field{
				{Name: "Email", Type: "string"},
				{Name: "email", Type: "string"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fieldtypes.ValidateFields(tt.fields)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFields() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	a := []fieldtypes.Field{
		{Name: "email", Type: "string"},
		{Name: "age", Type: "number"},
	}
	b := []fieldtypes.Field{
		{Name: "age", Type: "number"},
		{Name: "Email", Type: "String"},
	}

	if fieldtypes.Signature(a) != fieldtypes.Signature(b) {
		t.Error("signatures should ignore order and case")
	}

	c := []fieldtypes.Field{
		{Name: "email", Type: "string"},
		{Name: "age", Type: "string"},
	}
	if fieldtypes.Signature(a) == fieldtypes.Signature(c) {
		t.Error("signatures should change when a field type changes")
	}
}
