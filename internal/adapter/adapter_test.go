package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

// NoOpLogger for testing
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, args ...any) {}
func (l *NoOpLogger) Info(msg string, args ...any)  {}
func (l *NoOpLogger) Warn(msg string, args ...any)  {}
func (l *NoOpLogger) Error(msg string, args ...any) {}

// MockInvoker satisfies ckan.Invoker
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, action, token string, params ckan.Params) (json.RawMessage, error) {
	args := m.Called(ctx, action, token, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func newTestAdapter(t *testing.T) (*Adapter, *MockInvoker) {
	t.Helper()
	invoker := new(MockInvoker)
	return New(invoker, &NoOpLogger{}), invoker
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

// ckanRecordFixture builds a CKAN record payload; overrides patch individual
// backend fields.
func ckanRecordFixture(t *testing.T, overrides map[string]any) json.RawMessage {
	t.Helper()
	record := map[string]any{
		"id":                     "rec-1",
		"name":                   "rec-1",
		"owner_org":              "inst-a",
		"metadata_collection_id": "coll-a-collection",
		"metadata_standard_id":   "schema-1",
		"metadata_json":          map[string]any{"title": "Test Dataset"},
		"doi":                    "",
		"validated":              false,
		"errors":                 map[string]any{},
		"state":                  "active",
		"workflow_state_id":      "submitted",
	}
	for k, v := range overrides {
		record[k] = v
	}
	return mustJSON(t, record)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "dap-collection", normalizeKey("dap", models.CollectionKeySuffix))
	assert.Equal(t, "sasdi-project", normalizeKey("sasdi", models.ProjectKeySuffix))
}

func TestNormalizeKey_Idempotent(t *testing.T) {
	once := normalizeKey("dap", models.CollectionKeySuffix)
	twice := normalizeKey(once, models.CollectionKeySuffix)
	assert.Equal(t, once, twice)
}

func TestWithFallback_PrimarySucceeds(t *testing.T) {
	secondaryCalled := false
	err := withFallback(
		func() error { return nil },
		func(err error) bool { return true },
		func() error { secondaryCalled = true; return nil },
	)
	assert.NoError(t, err)
	assert.False(t, secondaryCalled)
}

func TestWithFallback_RetriesOnMatch(t *testing.T) {
	err := withFallback(
		func() error { return ckan.NewError(ckan.KindBadRequest, "x", "duplicate") },
		func(err error) bool { return ckan.IsKind(err, ckan.KindBadRequest) },
		func() error { return nil },
	)
	assert.NoError(t, err)
}

func TestWithFallback_NonMatchingErrorPropagates(t *testing.T) {
	primaryErr := errors.New("boom")
	secondaryCalled := false
	err := withFallback(
		func() error { return primaryErr },
		func(err error) bool { return false },
		func() error { secondaryCalled = true; return nil },
	)
	assert.Equal(t, primaryErr, err)
	assert.False(t, secondaryCalled)
}

func TestWithFallback_SecondaryFailurePropagates(t *testing.T) {
	secondaryErr := errors.New("still broken")
	err := withFallback(
		func() error { return ckan.NewError(ckan.KindBadRequest, "x", "duplicate") },
		func(err error) bool { return true },
		func() error { return secondaryErr },
	)
	assert.Equal(t, secondaryErr, err)
}
