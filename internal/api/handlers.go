// Package api contains the HTTP handlers for the catalogue adapter
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"catalogue-adapter/internal/adapter"
	"catalogue-adapter/internal/auth"
	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/pkg/models"
)

// Server holds the dependencies for the API server.
type Server struct {
	Catalogue adapter.Catalogue
}

// NewServer creates a new Server.
func NewServer(catalogue adapter.Catalogue) *Server {
	return &Server{Catalogue: catalogue}
}

// Register mounts the catalogue routes on the given group. The group is
// expected to carry the auth.RequireToken middleware.
func (s *Server) Register(g *echo.Group) {
	g.GET("/projects", s.ListProjects)
	g.PUT("/projects", s.UpsertProject)

	g.GET("/:institution/records", s.ListRecords)
	g.POST("/:institution/records", s.CreateRecord)
	g.GET("/:institution/records/:id", s.GetRecord)
	g.PUT("/:institution/records/:id", s.UpdateRecord)
	g.DELETE("/:institution/records/:id", s.DeleteRecord)
	g.POST("/:institution/records/:id/validate", s.ValidateRecord)
	g.POST("/:institution/records/:id/state", s.ChangeRecordState)

	g.GET("/:institution/collections", s.ListCollections)
	g.POST("/:institution/collections", s.CreateCollection)
}

// ListRecords returns an institution's metadata records
// (GET /catalogue/:institution/records)
func (s *Server) ListRecords(c echo.Context) error {
	ctx := c.Request().Context()

	var pagination models.Pagination
	if err := c.Bind(&pagination); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters: "+err.Error())
	}

	records, err := s.Catalogue.ListMetadataRecords(ctx, c.Param("institution"), pagination, auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// GetRecord returns a single metadata record scoped to the institution
// (GET /catalogue/:institution/records/:id)
func (s *Server) GetRecord(c echo.Context) error {
	ctx := c.Request().Context()

	record, err := s.Catalogue.GetMetadataRecord(ctx, c.Param("institution"), c.Param("id"), auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// CreateRecord creates a metadata record
// (POST /catalogue/:institution/records)
func (s *Server) CreateRecord(c echo.Context) error {
	ctx := c.Request().Context()

	var record models.MetadataRecordIn
	if err := c.Bind(&record); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	created, err := s.Catalogue.CreateMetadataRecord(ctx, c.Param("institution"), record, auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, created)
}

// UpdateRecord updates a metadata record
// (PUT /catalogue/:institution/records/:id)
func (s *Server) UpdateRecord(c echo.Context) error {
	ctx := c.Request().Context()

	var record models.MetadataRecordIn
	if err := c.Bind(&record); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	updated, err := s.Catalogue.UpdateMetadataRecord(ctx, c.Param("institution"), c.Param("id"), record, auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteRecord soft-deletes a metadata record
// (DELETE /catalogue/:institution/records/:id)
func (s *Server) DeleteRecord(c echo.Context) error {
	ctx := c.Request().Context()

	deleted, err := s.Catalogue.DeleteMetadataRecord(ctx, c.Param("institution"), c.Param("id"), auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": deleted})
}

// ValidateRecord validates a metadata record against its schema
// (POST /catalogue/:institution/records/:id/validate)
func (s *Server) ValidateRecord(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := s.Catalogue.ValidateMetadataRecord(ctx, c.Param("institution"), c.Param("id"), auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ChangeRecordState transitions a metadata record's workflow state
// (POST /catalogue/:institution/records/:id/state)
func (s *Server) ChangeRecordState(c echo.Context) error {
	ctx := c.Request().Context()

	var body struct {
		State string `json:"state"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if body.State == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "state is required")
	}

	result, err := s.Catalogue.ChangeMetadataRecordState(ctx, c.Param("institution"), c.Param("id"), body.State, auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListCollections returns an institution's metadata collections
// (GET /catalogue/:institution/collections)
func (s *Server) ListCollections(c echo.Context) error {
	ctx := c.Request().Context()

	collections, err := s.Catalogue.ListCollections(ctx, c.Param("institution"), auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, collections)
}

// CreateCollection creates a metadata collection
// (POST /catalogue/:institution/collections)
func (s *Server) CreateCollection(c echo.Context) error {
	ctx := c.Request().Context()

	var collection models.CollectionIn
	if err := c.Bind(&collection); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	created, err := s.Catalogue.CreateCollection(ctx, c.Param("institution"), collection, auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, created)
}

// ListProjects returns all projects
// (GET /catalogue/projects)
func (s *Server) ListProjects(c echo.Context) error {
	ctx := c.Request().Context()

	projects, err := s.Catalogue.ListProjects(ctx, auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// UpsertProject creates or updates a project
// (PUT /catalogue/projects)
func (s *Server) UpsertProject(c echo.Context) error {
	ctx := c.Request().Context()

	var project models.Project
	if err := c.Bind(&project); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	upserted, err := s.Catalogue.UpsertProject(ctx, project, auth.Token(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, upserted)
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// Health returns basic health status (always returns 200 OK)
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "catalogue-adapter",
		Version:   "1.0.0",
	})
}

// httpError maps a classified backend error onto an HTTP status.
func httpError(err error) error {
	var ce *ckan.Error
	if errors.As(err, &ce) {
		switch ce.Kind {
		case ckan.KindServiceUnavailable:
			return echo.NewHTTPError(http.StatusServiceUnavailable, ce.Message)
		case ckan.KindBadRequest:
			return echo.NewHTTPError(http.StatusBadRequest, ce.Message)
		case ckan.KindForbidden:
			return echo.NewHTTPError(http.StatusForbidden, ce.Message)
		case ckan.KindNotFound:
			return echo.NewHTTPError(http.StatusNotFound, ce.Message)
		case ckan.KindUnexpectedResponse:
			return echo.NewHTTPError(http.StatusBadGateway, ce.Message)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
