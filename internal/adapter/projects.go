package adapter

import (
	"context"
	"encoding/json"
	"strings"

	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

// duplicateGroupNameMessage is the backend's validation message for a group
// create whose name is already taken. Matching on it is what turns create
// into an upsert: the collision is the existence check.
const duplicateGroupNameMessage = "Group name already exists in database"

// ListProjects returns all projects. Projects are cross-institution, so no
// owner scoping applies.
func (a *Adapter) ListProjects(ctx context.Context, token string) ([]models.Project, error) {
	raw, err := a.ckan.Invoke(ctx, actionProjectList, token, ckan.Params{
		"all_fields": true,
	})
	if err != nil {
		return nil, err
	}
	ckanProjects, err := parseProjectList(actionProjectList, raw)
	if err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0, len(ckanProjects))
	for _, project := range ckanProjects {
		projects = append(projects, projectFromCKAN(project))
	}
	return projects, nil
}

// UpsertProject creates a project, retrying once as an update when the
// backend reports the (suffix-normalized) name already taken. There is no
// existence check before the create; the duplicate-name failure is used
// reactively instead, saving a round trip. Any other create failure
// propagates unchanged.
func (a *Adapter) UpsertProject(ctx context.Context, project models.Project, token string) (models.Project, error) {
	project.Key = normalizeKey(project.Key, models.ProjectKeySuffix)
	params := projectToCKAN(project)

	var raw json.RawMessage
	err := withFallback(
		func() error {
			var err error
			raw, err = a.ckan.Invoke(ctx, actionProjectCreate, token, params)
			return err
		},
		func(err error) bool {
			return ckan.IsKind(err, ckan.KindBadRequest) &&
				strings.Contains(ckan.MessageOf(err), duplicateGroupNameMessage)
		},
		func() error {
			params["id"] = params["name"]
			var err error
			raw, err = a.ckan.Invoke(ctx, actionProjectUpdate, token, params)
			return err
		},
	)
	if err != nil {
		return models.Project{}, err
	}

	upserted, err := parseProject(actionProjectCreate, raw)
	if err != nil {
		return models.Project{}, err
	}
	return projectFromCKAN(upserted), nil
}
