// Package adapter translates between the domain model and the CKAN backend's
// data shapes, and orchestrates the multi-step record workflows. The adapter
// holds no state of its own; every read re-fetches from the backend.
package adapter

import (
	"strings"

	"catalogue-adapter/internal/ckan"
)

// CKAN action function names used by the adapter.
const (
	actionRecordList       = "metadata_record_list"
	actionRecordShow       = "metadata_record_show"
	actionRecordCreate     = "metadata_record_create"
	actionRecordUpdate     = "metadata_record_update"
	actionRecordDelete     = "metadata_record_delete"
	actionRecordValidate   = "metadata_record_validate"
	actionRecordTransition = "metadata_record_workflow_state_transition"
	actionAnnotationCreate = "metadata_record_workflow_annotation_create"
	actionAnnotationUpdate = "metadata_record_workflow_annotation_update"
	actionCollectionList   = "metadata_collection_list"
	actionCollectionCreate = "metadata_collection_create"
	actionProjectList      = "infrastructure_list"
	actionProjectCreate    = "infrastructure_create"
	actionProjectUpdate    = "infrastructure_update"
)

// Adapter is the catalogue adapter over a CKAN backend.
type Adapter struct {
	ckan   ckan.Invoker
	logger Logger
}

// New creates a new Adapter.
func New(invoker ckan.Invoker, logger Logger) *Adapter {
	return &Adapter{
		ckan:   invoker,
		logger: logger,
	}
}

// normalizeKey appends suffix to key unless it already carries it. The
// backend keeps institutions, collections and projects in one shared group
// name space, so suffixing is what keeps the kinds from colliding.
func normalizeKey(key, suffix string) string {
	if strings.HasSuffix(key, suffix) {
		return key
	}
	return key + suffix
}

// withFallback runs primary; if it fails with an error matched by shouldRetry,
// it runs secondary exactly once. Any other primary error, or a secondary
// failure, is returned unchanged.
func withFallback(primary func() error, shouldRetry func(error) bool, secondary func() error) error {
	err := primary()
	if err == nil || !shouldRetry(err) {
		return err
	}
	return secondary()
}
