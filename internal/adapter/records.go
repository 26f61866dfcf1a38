package adapter

import (
	"context"
	"encoding/json"

	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

// ListMetadataRecords returns the institution's metadata records, passing the
// pagination window straight through to the backend. Order is whatever the
// backend returns.
func (a *Adapter) ListMetadataRecords(ctx context.Context, institutionKey string, pagination models.Pagination, token string) ([]models.MetadataRecord, error) {
	raw, err := a.ckan.Invoke(ctx, actionRecordList, token, ckan.Params{
		"owner_org":        institutionKey,
		"offset":           pagination.Offset,
		"limit":            pagination.Limit,
		"all_fields":       true,
		"deserialize_json": true,
	})
	if err != nil {
		return nil, err
	}
	ckanRecords, err := parseRecordList(actionRecordList, raw)
	if err != nil {
		return nil, err
	}
	records := make([]models.MetadataRecord, 0, len(ckanRecords))
	for _, record := range ckanRecords {
		records = append(records, recordFromCKAN(record))
	}
	return records, nil
}

// GetMetadataRecord fetches a metadata record scoped to the given
// institution. A record that is soft-deleted in the backend, or that belongs
// to a different institution, is reported as not found; callers must not be
// able to distinguish "wrong institution" from true absence.
func (a *Adapter) GetMetadataRecord(ctx context.Context, institutionKey, recordID, token string) (models.MetadataRecord, error) {
	record, err := a.getScopedRecord(ctx, institutionKey, recordID, token)
	if err != nil {
		return models.MetadataRecord{}, err
	}
	return recordFromCKAN(record), nil
}

func (a *Adapter) getScopedRecord(ctx context.Context, institutionKey, recordID, token string) (ckanRecord, error) {
	raw, err := a.ckan.Invoke(ctx, actionRecordShow, token, ckan.Params{
		"id":               recordID,
		"deserialize_json": true,
	})
	if err != nil {
		return ckanRecord{}, err
	}
	record, err := parseRecord(actionRecordShow, raw)
	if err != nil {
		return ckanRecord{}, err
	}
	if record.State != "active" || record.OwnerOrg != institutionKey {
		return ckanRecord{}, ckan.NewError(ckan.KindNotFound, actionRecordShow, "CKAN resource not found")
	}
	return record, nil
}

// CreateMetadataRecord creates a metadata record, annotates it with the
// consent/provenance fields, and opportunistically validates it.
func (a *Adapter) CreateMetadataRecord(ctx context.Context, institutionKey string, record models.MetadataRecordIn, token string) (models.MetadataRecord, error) {
	return a.saveMetadataRecord(ctx, actionRecordCreate, institutionKey, "", record, token)
}

// UpdateMetadataRecord updates a metadata record after confirming it belongs
// to the given institution, then runs the same annotate-and-validate workflow
// as create.
func (a *Adapter) UpdateMetadataRecord(ctx context.Context, institutionKey, recordID string, record models.MetadataRecordIn, token string) (models.MetadataRecord, error) {
	if _, err := a.getScopedRecord(ctx, institutionKey, recordID, token); err != nil {
		return models.MetadataRecord{}, err
	}
	return a.saveMetadataRecord(ctx, actionRecordUpdate, institutionKey, recordID, record, token)
}

// saveMetadataRecord is the shared create/update workflow: translate, invoke,
// annotate, then opportunistically validate. Annotation failures degrade to
// warnings, and a failed opportunistic validation leaves the record in its
// unvalidated state; neither ever fails the mutation itself.
func (a *Adapter) saveMetadataRecord(ctx context.Context, action, institutionKey, recordID string, record models.MetadataRecordIn, token string) (models.MetadataRecord, error) {
	params, err := recordToCKAN(institutionKey, record)
	if err != nil {
		return models.MetadataRecord{}, err
	}
	params["deserialize_json"] = true
	if recordID != "" {
		params["id"] = recordID
	}

	raw, err := a.ckan.Invoke(ctx, action, token, params)
	if err != nil {
		return models.MetadataRecord{}, err
	}
	saved, err := parseRecord(action, raw)
	if err != nil {
		return models.MetadataRecord{}, err
	}

	for _, warning := range a.annotateRecord(ctx, saved.ID, record, token) {
		a.logger.Error("%s", warning)
	}

	if !saved.Validated {
		// validate the record here for the caller's convenience; a failure
		// to do so is a system error, not a validation error
		result, err := a.ValidateMetadataRecord(ctx, institutionKey, saved.ID, token)
		if err != nil {
			a.logger.Warn("an error occurred while validating metadata record %s: %s", saved.ID, ckan.MessageOf(err))
		} else {
			saved.Validated = true
			saved.Errors = result.Errors
		}
	}

	return recordFromCKAN(saved), nil
}

// DeleteMetadataRecord soft-deletes a metadata record after confirming it
// belongs to the given institution.
func (a *Adapter) DeleteMetadataRecord(ctx context.Context, institutionKey, recordID, token string) (bool, error) {
	if _, err := a.getScopedRecord(ctx, institutionKey, recordID, token); err != nil {
		return false, err
	}
	if _, err := a.ckan.Invoke(ctx, actionRecordDelete, token, ckan.Params{"id": recordID}); err != nil {
		return false, err
	}
	return true, nil
}

// ckanValidationActivity is the activity payload of a validate action.
type ckanValidationActivity struct {
	Data struct {
		Results []struct {
			Errors map[string]any `json:"errors"`
		} `json:"results"`
	} `json:"data"`
}

// ValidateMetadataRecord validates a metadata record against its schema and
// merges every backend-reported result fragment into one error mapping.
// Later fragments win on key collision.
func (a *Adapter) ValidateMetadataRecord(ctx context.Context, institutionKey, recordID, token string) (models.ValidationResult, error) {
	if _, err := a.getScopedRecord(ctx, institutionKey, recordID, token); err != nil {
		return models.ValidationResult{}, err
	}

	raw, err := a.ckan.Invoke(ctx, actionRecordValidate, token, ckan.Params{"id": recordID})
	if err != nil {
		return models.ValidationResult{}, err
	}

	var activity ckanValidationActivity
	if err := json.Unmarshal(raw, &activity); err != nil {
		return models.ValidationResult{}, ckan.NewError(ckan.KindUnexpectedResponse, actionRecordValidate,
			"malformed validation activity payload: %v", err)
	}

	merged := map[string]any{}
	for _, result := range activity.Data.Results {
		for field, messages := range result.Errors {
			merged[field] = messages
		}
	}

	return models.ValidationResult{
		Success: len(merged) == 0,
		Errors:  merged,
	}, nil
}

// ckanWorkflowActivity is the activity payload of a workflow state
// transition action.
type ckanWorkflowActivity struct {
	Data struct {
		Errors map[string]any `json:"errors"`
	} `json:"data"`
}

// ChangeMetadataRecordState transitions a metadata record to the named
// workflow state; success means the backend reported no transition errors.
func (a *Adapter) ChangeMetadataRecordState(ctx context.Context, institutionKey, recordID, state, token string) (models.WorkflowResult, error) {
	if _, err := a.getScopedRecord(ctx, institutionKey, recordID, token); err != nil {
		return models.WorkflowResult{}, err
	}

	raw, err := a.ckan.Invoke(ctx, actionRecordTransition, token, ckan.Params{
		"id":                recordID,
		"workflow_state_id": state,
	})
	if err != nil {
		return models.WorkflowResult{}, err
	}

	var activity ckanWorkflowActivity
	if err := json.Unmarshal(raw, &activity); err != nil {
		return models.WorkflowResult{}, ckan.NewError(ckan.KindUnexpectedResponse, actionRecordTransition,
			"malformed workflow activity payload: %v", err)
	}

	return models.WorkflowResult{
		Success: len(activity.Data.Errors) == 0,
		Errors:  activity.Data.Errors,
	}, nil
}
