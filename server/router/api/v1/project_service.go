package v1

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/usememos/convo/store"
)

type createProjectRequest struct {
	Name string `json:"name"`
}

type projectResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func (s *APIV1Service) listProjects(c *echo.Context) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return err
	}
	projects, err := s.Store.ListProjects(c.Request().Context(), &store.FindProject{UserID: userID})
	if err != nil {
		return toHTTPError(err, "failed to list projects")
	}
	resp := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, projectResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) createProject(c *echo.Context) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return err
	}
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project payload")
	}
	project, err := s.Store.CreateProject(c.Request().Context(), &store.Project{
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		return toHTTPError(err, "failed to create project")
	}
	return c.JSON(http.StatusCreated, projectResponse{
		ID:        project.ID,
		Name:      project.Name,
		CreatedAt: project.CreatedAt,
	})
}
