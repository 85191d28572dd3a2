package templatesrepo

import (
	"time"

	"github.com/jrazmi/formvault/core/fieldtypes"
)

// Template is a named, owned definition of a record shape. Fields keep their
// declared order for display; the collection registry ignores it.
type Template struct {
	TemplateID string             `db:"template_id" json:"template_id"`
	Name       string             `db:"name" json:"name"`
	OwnerID    string             `db:"owner_id" json:"owner_id"`
	Fields     []fieldtypes.Field `db:"fields" json:"fields"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `db:"updated_at" json:"updated_at"`
}

// NewTemplate contains the fields required to create a template.
type NewTemplate struct {
	OwnerID string
	Name    string
	Fields  []fieldtypes.Field
}

// UpdateTemplate replaces a template's name and field list wholesale. There
// is no partial field patch.
type UpdateTemplate struct {
	Name   string
	Fields []fieldtypes.Field
}
