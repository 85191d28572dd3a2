// Package fieldtypes maps declared template field types to concrete storage
// types and coerces inbound values into them.
package fieldtypes

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jrazmi/formvault/sdk/validation"
)

// Field is a single declared field of a template. The order of a template's
// fields is preserved for display only; storage identity ignores it.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// StorageType is the closed set of concrete types a declared field can map to.
type StorageType string

const (
	Text      StorageType = "text"
	Numeric   StorageType = "numeric"
	Timestamp StorageType = "timestamp"
	Flag      StorageType = "flag"
	Opaque    StorageType = "opaque"
)

// Resolve maps a declared type name to a storage type. Unknown names map to
// Opaque rather than failing: templates with a typo in a field type still
// function, at the cost of weaker integrity guarantees for that field.
func Resolve(typeName string) StorageType {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "string":
		return Text
	case "number":
		return Numeric
	case "date":
		return Timestamp
	case "boolean":
		return Flag
	default:
		return Opaque
	}
}

// ColumnType returns the Postgres column type backing a storage type.
func ColumnType(st StorageType) string {
	switch st {
	case Text:
		return "TEXT"
	case Numeric:
		return "DOUBLE PRECISION"
	case Timestamp:
		return "TIMESTAMPTZ"
	case Flag:
		return "BOOLEAN"
	default:
		return "JSONB"
	}
}

// Coerce converts a decoded JSON value into the given storage type. A nil
// value passes through untouched for every type. Opaque accepts anything and
// re-encodes it as a JSON document: a bare string handed to the driver as-is
// would reach the document column unquoted and be rejected.
func Coerce(value any, st StorageType) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch st {
	case Text:
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		default:
			return nil, fmt.Errorf("cannot cast %T to text", value)
		}

	case Numeric:
		switch v := value.(type) {
		case float64:
			return v, nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to numeric", v)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("cannot cast %T to numeric", value)
		}

	case Timestamp:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := validation.ParseFlexibleDate(v)
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to timestamp", v)
			}
			return t, nil
		case float64:
			// Millisecond epoch, the other wire format clients send dates in.
			return time.UnixMilli(int64(v)).UTC(), nil
		default:
			return nil, fmt.Errorf("cannot cast %T to timestamp", value)
		}

	case Flag:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to flag", v)
			}
			return b, nil
		case float64:
			if v == 0 {
				return false, nil
			}
			if v == 1 {
				return true, nil
			}
			return nil, fmt.Errorf("cannot cast %v to flag", v)
		default:
			return nil, fmt.Errorf("cannot cast %T to flag", value)
		}

	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %T as document: %w", value, err)
		}
		return json.RawMessage(raw), nil
	}
}

// System columns every dynamic collection carries. Declared fields may not
// shadow them.
const (
	ColumnRecordID    = "record_id"
	ColumnTemplateRef = "template_ref"
	ColumnStatusFlag  = "status_flag"
	ColumnExtras      = "extras"
)

var columnNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ColumnName returns the column a declared field is stored under.
func ColumnName(fieldName string) string {
	return strings.ToLower(strings.TrimSpace(fieldName))
}

// ValidateFields enforces the boundary rules for a template's field list:
// non-empty, names valid as identifiers, unique after lower-casing, and not
// shadowing a system column.
func ValidateFields(fields []Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields must be a non-empty list")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		col := ColumnName(f.Name)
		if !columnNamePattern.MatchString(col) {
			return fmt.Errorf("invalid field name %q", f.Name)
		}
		switch col {
		case ColumnRecordID, ColumnTemplateRef, ColumnStatusFlag, ColumnExtras:
			return fmt.Errorf("field name %q is reserved", f.Name)
		}
		if _, ok := seen[col]; ok {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[col] = struct{}{}
	}

	return nil
}

// Signature returns a structural fingerprint of a field list: equal for any
// two lists with the same name+resolved-type pairs regardless of order.
func Signature(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, ColumnName(f.Name)+"="+string(Resolve(f.Type)))
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return fmt.Sprintf("%x", sum)
}
