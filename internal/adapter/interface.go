package adapter

import (
	"context"

	"catalogue-adapter/pkg/models"
)

// Catalogue is the inbound surface of the adapter, consumed by the web and
// MCP layers. Every call takes the caller's bearer token, which is forwarded
// to the backend for authorization; institution-scoped calls take the
// caller's institution key.
type Catalogue interface {
	ListMetadataRecords(ctx context.Context, institutionKey string, pagination models.Pagination, token string) ([]models.MetadataRecord, error)
	GetMetadataRecord(ctx context.Context, institutionKey, recordID, token string) (models.MetadataRecord, error)
	CreateMetadataRecord(ctx context.Context, institutionKey string, record models.MetadataRecordIn, token string) (models.MetadataRecord, error)
	UpdateMetadataRecord(ctx context.Context, institutionKey, recordID string, record models.MetadataRecordIn, token string) (models.MetadataRecord, error)
	DeleteMetadataRecord(ctx context.Context, institutionKey, recordID, token string) (bool, error)
	ValidateMetadataRecord(ctx context.Context, institutionKey, recordID, token string) (models.ValidationResult, error)
	ChangeMetadataRecordState(ctx context.Context, institutionKey, recordID, state, token string) (models.WorkflowResult, error)
	ListCollections(ctx context.Context, institutionKey, token string) ([]models.Collection, error)
	CreateCollection(ctx context.Context, institutionKey string, collection models.CollectionIn, token string) (models.Collection, error)
	ListProjects(ctx context.Context, token string) ([]models.Project, error)
	UpsertProject(ctx context.Context, project models.Project, token string) (models.Project, error)
}

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
