package adapter

import (
	"context"

	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

// ListCollections returns the institution's metadata collections.
func (a *Adapter) ListCollections(ctx context.Context, institutionKey, token string) ([]models.Collection, error) {
	raw, err := a.ckan.Invoke(ctx, actionCollectionList, token, ckan.Params{
		"owner_org":  institutionKey,
		"all_fields": true,
	})
	if err != nil {
		return nil, err
	}
	ckanCollections, err := parseCollectionList(actionCollectionList, raw)
	if err != nil {
		return nil, err
	}
	collections := make([]models.Collection, 0, len(ckanCollections))
	for _, collection := range ckanCollections {
		collections = append(collections, collectionFromCKAN(collection))
	}
	return collections, nil
}

// CreateCollection creates a metadata collection under the given institution.
// The collection key is suffix-normalized before translation.
func (a *Adapter) CreateCollection(ctx context.Context, institutionKey string, collection models.CollectionIn, token string) (models.Collection, error) {
	collection.Key = normalizeKey(collection.Key, models.CollectionKeySuffix)

	raw, err := a.ckan.Invoke(ctx, actionCollectionCreate, token, collectionToCKAN(institutionKey, collection))
	if err != nil {
		return models.Collection{}, err
	}
	created, err := parseCollection(actionCollectionCreate, raw)
	if err != nil {
		return models.Collection{}, err
	}
	return collectionFromCKAN(created), nil
}
