package adapter

import (
	"encoding/json"
	"fmt"

	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

// ckanRecord is the parsed shape of a CKAN metadata record. The State field
// is CKAN's own lifecycle state ("active"/"deleted"); WorkflowStateID is the
// domain workflow state.
type ckanRecord struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	OwnerOrg             string         `json:"owner_org"`
	MetadataCollectionID string         `json:"metadata_collection_id"`
	MetadataStandardID   string         `json:"metadata_standard_id"`
	MetadataJSON         map[string]any `json:"metadata_json"`
	DOI                  string         `json:"doi"`
	Validated            bool           `json:"validated"`
	Errors               map[string]any `json:"errors"`
	State                string         `json:"state"`
	WorkflowStateID      string         `json:"workflow_state_id"`
}

type ckanGroupRef struct {
	ID string `json:"id"`
}

type ckanCollection struct {
	OrganizationID  string         `json:"organization_id"`
	Name            string         `json:"name"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DOICollection   string         `json:"doi_collection"`
	Infrastructures []ckanGroupRef `json:"infrastructures"`
}

type ckanProject struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// parseRecord decodes a CKAN metadata record payload, treating missing
// required fields as an unexpected-backend-shape error rather than producing
// a half-empty record.
func parseRecord(action string, raw json.RawMessage) (ckanRecord, error) {
	var record ckanRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return ckanRecord{}, ckan.NewError(ckan.KindUnexpectedResponse, action,
			"malformed metadata record payload: %v", err)
	}
	if err := checkRecordShape(record); err != nil {
		return ckanRecord{}, ckan.NewError(ckan.KindUnexpectedResponse, action, "%v", err)
	}
	return record, nil
}

func parseRecordList(action string, raw json.RawMessage) ([]ckanRecord, error) {
	var records []ckanRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, ckan.NewError(ckan.KindUnexpectedResponse, action,
			"malformed metadata record list payload: %v", err)
	}
	for _, record := range records {
		if err := checkRecordShape(record); err != nil {
			return nil, ckan.NewError(ckan.KindUnexpectedResponse, action, "%v", err)
		}
	}
	return records, nil
}

func checkRecordShape(record ckanRecord) error {
	switch {
	case record.ID == "":
		return fmt.Errorf("metadata record is missing required field 'id'")
	case record.OwnerOrg == "":
		return fmt.Errorf("metadata record %s is missing required field 'owner_org'", record.ID)
	case record.MetadataCollectionID == "":
		return fmt.Errorf("metadata record %s is missing required field 'metadata_collection_id'", record.ID)
	case record.MetadataStandardID == "":
		return fmt.Errorf("metadata record %s is missing required field 'metadata_standard_id'", record.ID)
	}
	return nil
}

// recordFromCKAN converts a CKAN metadata record into the domain model. The
// pid is the backend's name alias, surfaced only when it differs from the id
// (CKAN defaults name to id when no alias was assigned).
func recordFromCKAN(record ckanRecord) models.MetadataRecord {
	var pid *string
	if record.Name != record.ID {
		name := record.Name
		pid = &name
	}
	return models.MetadataRecord{
		ID:             record.ID,
		PID:            pid,
		InstitutionKey: record.OwnerOrg,
		CollectionKey:  record.MetadataCollectionID,
		SchemaKey:      record.MetadataStandardID,
		Metadata:       record.MetadataJSON,
		DOI:            record.DOI,
		Validated:      record.Validated,
		Errors:         record.Errors,
		State:          record.WorkflowStateID,
	}
}

// recordToCKAN converts a MetadataRecordIn into a CKAN create/update
// parameter bag. The metadata payload goes over the wire serialized; the
// consent/provenance fields are deliberately absent here (they travel as
// workflow annotations).
func recordToCKAN(institutionKey string, record models.MetadataRecordIn) (ckan.Params, error) {
	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize record metadata: %w", err)
	}
	return ckan.Params{
		"owner_org":              institutionKey,
		"metadata_collection_id": record.CollectionKey,
		"metadata_standard_id":   record.SchemaKey,
		"metadata_json":          string(metadataJSON),
		"doi":                    record.DOI,
		"auto_assign_doi":        record.AutoAssignDOI,
	}, nil
}

func parseCollection(action string, raw json.RawMessage) (ckanCollection, error) {
	var collection ckanCollection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return ckanCollection{}, ckan.NewError(ckan.KindUnexpectedResponse, action,
			"malformed collection payload: %v", err)
	}
	if err := checkCollectionShape(collection); err != nil {
		return ckanCollection{}, ckan.NewError(ckan.KindUnexpectedResponse, action, "%v", err)
	}
	return collection, nil
}

func parseCollectionList(action string, raw json.RawMessage) ([]ckanCollection, error) {
	var collections []ckanCollection
	if err := json.Unmarshal(raw, &collections); err != nil {
		return nil, ckan.NewError(ckan.KindUnexpectedResponse, action,
			"malformed collection list payload: %v", err)
	}
	for _, collection := range collections {
		if err := checkCollectionShape(collection); err != nil {
			return nil, ckan.NewError(ckan.KindUnexpectedResponse, action, "%v", err)
		}
	}
	return collections, nil
}

func checkCollectionShape(collection ckanCollection) error {
	switch {
	case collection.Name == "":
		return fmt.Errorf("collection is missing required field 'name'")
	case collection.OrganizationID == "":
		return fmt.Errorf("collection %s is missing required field 'organization_id'", collection.Name)
	}
	return nil
}

// collectionFromCKAN converts a CKAN collection into the domain model.
// Project keys are projected from the associated infrastructure list in
// backend response order.
func collectionFromCKAN(collection ckanCollection) models.Collection {
	projectKeys := make([]string, 0, len(collection.Infrastructures))
	for _, ref := range collection.Infrastructures {
		projectKeys = append(projectKeys, ref.ID)
	}
	return models.Collection{
		InstitutionKey: collection.OrganizationID,
		Key:            collection.Name,
		Name:           collection.Title,
		Description:    collection.Description,
		DOIScope:       collection.DOICollection,
		ProjectKeys:    projectKeys,
	}
}

func collectionToCKAN(institutionKey string, collection models.CollectionIn) ckan.Params {
	infrastructures := make([]ckanGroupRef, 0, len(collection.ProjectKeys))
	for _, key := range collection.ProjectKeys {
		infrastructures = append(infrastructures, ckanGroupRef{ID: key})
	}
	return ckan.Params{
		"name":            collection.Key,
		"title":           collection.Name,
		"description":     collection.Description,
		"organization_id": institutionKey,
		"doi_collection":  collection.DOIScope,
		"infrastructures": infrastructures,
	}
}

func parseProject(action string, raw json.RawMessage) (ckanProject, error) {
	var project ckanProject
	if err := json.Unmarshal(raw, &project); err != nil {
		return ckanProject{}, ckan.NewError(ckan.KindUnexpectedResponse, action,
			"malformed project payload: %v", err)
	}
	if project.Name == "" {
		return ckanProject{}, ckan.NewError(ckan.KindUnexpectedResponse, action,
			"project is missing required field 'name'")
	}
	return project, nil
}

func parseProjectList(action string, raw json.RawMessage) ([]ckanProject, error) {
	var projects []ckanProject
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, ckan.NewError(ckan.KindUnexpectedResponse, action,
			"malformed project list payload: %v", err)
	}
	for _, project := range projects {
		if project.Name == "" {
			return nil, ckan.NewError(ckan.KindUnexpectedResponse, action,
				"project is missing required field 'name'")
		}
	}
	return projects, nil
}

func projectFromCKAN(project ckanProject) models.Project {
	return models.Project{
		Key:         project.Name,
		Name:        project.Title,
		Description: project.Description,
	}
}

func projectToCKAN(project models.Project) ckan.Params {
	return ckan.Params{
		"name":        project.Key,
		"title":       project.Name,
		"description": project.Description,
	}
}
