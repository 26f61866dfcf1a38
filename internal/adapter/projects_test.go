package adapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

func projectIn() models.Project {
	return models.Project{
		Key:         "sasdi",
		Name:        "SASDI",
		Description: "Spatial data infrastructure",
	}
}

func ckanProjectFixture(t *testing.T) json.RawMessage {
	t.Helper()
	return mustJSON(t, map[string]any{
		"name":        "sasdi-project",
		"title":       "SASDI",
		"description": "Spatial data infrastructure",
	})
}

func TestUpsertProject_CreatesWithNormalizedKey(t *testing.T) {
	a, invoker := newTestAdapter(t)

	invoker.On("Invoke", mock.Anything, actionProjectCreate, testToken, mock.MatchedBy(func(p ckan.Params) bool {
		return p["name"] == "sasdi-project" && p["title"] == "SASDI"
	})).Return(ckanProjectFixture(t), nil)

	project, err := a.UpsertProject(context.Background(), projectIn(), testToken)
	require.NoError(t, err)

	assert.Equal(t, "sasdi-project", project.Key)
	invoker.AssertNotCalled(t, "Invoke", mock.Anything, actionProjectUpdate, testToken, mock.Anything)
}

func TestUpsertProject_DuplicateNameFallsBackToUpdate(t *testing.T) {
	a, invoker := newTestAdapter(t)

	invoker.On("Invoke", mock.Anything, actionProjectCreate, testToken, mock.Anything).
		Return(nil, ckan.NewError(ckan.KindBadRequest, actionProjectCreate,
			`{"name": ["Group name already exists in database"]}`))

	var updateParams ckan.Params
	invoker.On("Invoke", mock.Anything, actionProjectUpdate, testToken, mock.Anything).
		Run(func(args mock.Arguments) {
			updateParams = args.Get(3).(ckan.Params)
		}).
		Return(ckanProjectFixture(t), nil)

	project, err := a.UpsertProject(context.Background(), projectIn(), testToken)
	require.NoError(t, err)

	assert.Equal(t, "sasdi-project", project.Key)
	// the update call reuses the translated fields and addresses the group
	// by its normalized key
	assert.Equal(t, "sasdi-project", updateParams["id"])
	assert.Equal(t, "sasdi-project", updateParams["name"])
	assert.Equal(t, "SASDI", updateParams["title"])
	assert.Equal(t, "Spatial data infrastructure", updateParams["description"])
	invoker.AssertNumberOfCalls(t, "Invoke", 2)
}

func TestUpsertProject_OtherValidationFailurePropagates(t *testing.T) {
	a, invoker := newTestAdapter(t)

	invoker.On("Invoke", mock.Anything, actionProjectCreate, testToken, mock.Anything).
		Return(nil, ckan.NewError(ckan.KindBadRequest, actionProjectCreate,
			`{"title": ["Missing value"]}`))

	_, err := a.UpsertProject(context.Background(), projectIn(), testToken)
	require.Error(t, err)

	assert.True(t, ckan.IsKind(err, ckan.KindBadRequest))
	invoker.AssertNotCalled(t, "Invoke", mock.Anything, actionProjectUpdate, testToken, mock.Anything)
}

func TestUpsertProject_TransportFailurePropagates(t *testing.T) {
	a, invoker := newTestAdapter(t)

	invoker.On("Invoke", mock.Anything, actionProjectCreate, testToken, mock.Anything).
		Return(nil, ckan.NewError(ckan.KindServiceUnavailable, actionProjectCreate, "connection refused"))

	_, err := a.UpsertProject(context.Background(), projectIn(), testToken)
	require.Error(t, err)
	assert.True(t, ckan.IsKind(err, ckan.KindServiceUnavailable))
	invoker.AssertNotCalled(t, "Invoke", mock.Anything, actionProjectUpdate, testToken, mock.Anything)
}

func TestListProjects(t *testing.T) {
	a, invoker := newTestAdapter(t)

	invoker.On("Invoke", mock.Anything, actionProjectList, testToken, mock.MatchedBy(func(p ckan.Params) bool {
		return p["all_fields"] == true
	})).Return(mustJSON(t, []map[string]any{
		{"name": "sasdi-project", "title": "SASDI", "description": ""},
		{"name": "dirisa-project", "title": "DIRISA", "description": ""},
	}), nil)

	projects, err := a.ListProjects(context.Background(), testToken)
	require.NoError(t, err)

	require.Len(t, projects, 2)
	assert.Equal(t, "sasdi-project", projects[0].Key)
	assert.Equal(t, "DIRISA", projects[1].Name)
}

func TestCreateCollection_NormalizesKey(t *testing.T) {
	a, invoker := newTestAdapter(t)

	invoker.On("Invoke", mock.Anything, actionCollectionCreate, testToken, mock.MatchedBy(func(p ckan.Params) bool {
		return p["name"] == "dap-collection" && p["organization_id"] == "inst-a"
	})).Return(mustJSON(t, map[string]any{
		"organization_id": "inst-a",
		"name":            "dap-collection",
		"title":           "Data Portal",
		"description":     "",
		"doi_collection":  "DAP",
		"infrastructures": []map[string]any{},
	}), nil)

	collection, err := a.CreateCollection(context.Background(), "inst-a", models.CollectionIn{
		Key:      "dap",
		Name:     "Data Portal",
		DOIScope: "DAP",
	}, testToken)
	require.NoError(t, err)

	assert.Equal(t, "dap-collection", collection.Key)
	assert.Equal(t, "inst-a", collection.InstitutionKey)
}

func TestListCollections(t *testing.T) {
	a, invoker := newTestAdapter(t)

	invoker.On("Invoke", mock.Anything, actionCollectionList, testToken, mock.MatchedBy(func(p ckan.Params) bool {
		return p["owner_org"] == "inst-a" && p["all_fields"] == true
	})).Return(mustJSON(t, []map[string]any{
		{
			"organization_id": "inst-a",
			"name":            "dap-collection",
			"title":           "Data Portal",
			"description":     "",
			"doi_collection":  "DAP",
			"infrastructures": []map[string]any{{"id": "sasdi-project"}},
		},
	}), nil)

	collections, err := a.ListCollections(context.Background(), "inst-a", testToken)
	require.NoError(t, err)

	require.Len(t, collections, 1)
	assert.Equal(t, []string{"sasdi-project"}, collections[0].ProjectKeys)
}
