package dynrecordsrepobridge

import (
	"encoding/json"

	"github.com/jrazmi/formvault/core/fieldtypes"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
)

// RecordListResponse returns the records of a template together with the
// template's display metadata, so a caller can render them without a second
// request.
type RecordListResponse struct {
	TemplateID   string                  `json:"template_id"`
	TemplateName string                  `json:"template_name"`
	Fields       []fieldtypes.Field      `json:"fields"`
	Records      []dynrecordsrepo.Record `json:"records"`
	Count        int                     `json:"count"`
}

func NewRecordListResponse(tpl templatesrepo.Template, records []dynrecordsrepo.Record) RecordListResponse {
	return RecordListResponse{
		TemplateID:   tpl.TemplateID,
		TemplateName: tpl.Name,
		Fields:       tpl.Fields,
		Records:      records,
		Count:        len(records),
	}
}

func (r RecordListResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}
