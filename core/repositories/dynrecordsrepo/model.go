package dynrecordsrepo

// Record is one stored document of a dynamic collection. Declared fields
// appear under their column names, free-form extras are folded in flat, and
// the system values are always present under record_id, template_ref and
// status_flag.
type Record map[string]any

// RecordID returns the record's identifier, or "" when absent.
func (r Record) RecordID() string {
	id, _ := r["record_id"].(string)
	return id
}

// StatusFlag reports whether the record's post-processing flag is set.
func (r Record) StatusFlag() bool {
	b, _ := r["status_flag"].(bool)
	return b
}
