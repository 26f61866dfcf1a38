// Package models defines the domain models for the metadata catalogue adapter
package models

// Key-namespace suffixes. The backend stores institutions, collections and
// projects as a single kind of group sharing one name space, so collection and
// project keys carry a disambiguating suffix.
const (
	CollectionKeySuffix = "-collection"
	ProjectKeySuffix    = "-project"
)

// Pagination carries list windowing parameters through to the backend.
type Pagination struct {
	Offset int `json:"offset" query:"offset"`
	Limit  int `json:"limit" query:"limit"`
}

// MetadataRecord is a metadata record as seen by API consumers.
type MetadataRecord struct {
	ID             string         `json:"id"`
	PID            *string        `json:"pid,omitempty"`
	InstitutionKey string         `json:"institution_key"`
	CollectionKey  string         `json:"collection_key"`
	SchemaKey      string         `json:"schema_key"`
	Metadata       map[string]any `json:"metadata"`
	DOI            string         `json:"doi,omitempty"`
	Validated      bool           `json:"validated"`
	Errors         map[string]any `json:"errors"`
	State          string         `json:"state"`
}

// MetadataRecordIn is the mutable input counterpart of MetadataRecord.
//
// The three consent/provenance fields (terms, data agreement, capture method)
// are never sent in the primary create/update call; the backend's schema has
// no column for them, so they are persisted as workflow annotations.
type MetadataRecordIn struct {
	CollectionKey string         `json:"collection_key"`
	SchemaKey     string         `json:"schema_key"`
	Metadata      map[string]any `json:"metadata"`
	DOI           string         `json:"doi,omitempty"`
	AutoAssignDOI bool           `json:"auto_assign_doi"`

	TermsConditionsAccepted bool   `json:"terms_conditions_accepted"`
	DataAgreementAccepted   bool   `json:"data_agreement_accepted"`
	DataAgreementURL        string `json:"data_agreement_url,omitempty"`
	CaptureMethod           string `json:"capture_method,omitempty"`
}

// Collection is a metadata collection owned by an institution.
type Collection struct {
	InstitutionKey string   `json:"institution_key"`
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	DOIScope       string   `json:"doi_scope"`
	ProjectKeys    []string `json:"project_keys"`
}

// CollectionIn is the input counterpart of Collection (the institution key
// comes from the caller's scope, not the payload).
type CollectionIn struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DOIScope    string   `json:"doi_scope"`
	ProjectKeys []string `json:"project_keys"`
}

// Project is a cross-institution project; it has no owning institution.
type Project struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ValidationResult reports the outcome of validating a metadata record.
// Success is true iff the error mapping is empty.
type ValidationResult struct {
	Success bool           `json:"success"`
	Errors  map[string]any `json:"errors"`
}

// WorkflowResult reports the outcome of a workflow state transition.
type WorkflowResult struct {
	Success bool           `json:"success"`
	Errors  map[string]any `json:"errors"`
}
