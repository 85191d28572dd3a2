package templatesrepobridge

import (
	"errors"

	"github.com/jrazmi/formvault/core/fieldtypes"
)

// CreateTemplateInput is the request body for creating a template. The owner
// comes from the URL, not the body.
type CreateTemplateInput struct {
	Name   string             `json:"name"`
	Fields []fieldtypes.Field `json:"fields"`
}

func (i CreateTemplateInput) Validate() error {
	if i.Name == "" {
		return errors.New("name is required")
	}
	if len(i.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	return nil
}

// UpdateTemplateInput is the request body for replacing a template's name and
// field list.
type UpdateTemplateInput struct {
	Name   string             `json:"name"`
	Fields []fieldtypes.Field `json:"fields"`
}

func (i UpdateTemplateInput) Validate() error {
	if i.Name == "" {
		return errors.New("name is required")
	}
	if len(i.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	return nil
}
