package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tinkerfai/tinkerfai/engine/project"
)

type listProjectsResponse struct {
	Envelope
	Projects []project.Project `json:"projects"`
}

type createProjectResponse struct {
	Envelope
	Project project.Project `json:"project"`
}

type getProjectResponse struct {
	Envelope
	Data struct {
		Project project.Project `json:"project"`
	} `json:"data"`
}

// ListProjects returns the caller's projects, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	var out listProjectsResponse
	if err := c.do(ctx, call{op: "list projects", method: http.MethodGet, path: "/projects", auth: true, result: &out}); err != nil {
		return nil, err
	}
	project.SortNewestFirst(out.Projects)
	return out.Projects, nil
}

// CreateProject validates req locally and creates the project.
func (c *Client) CreateProject(ctx context.Context, req project.CreateRequest) (*project.Project, error) {
	if err := req.Normalize(); err != nil {
		return nil, &ValidationError{Field: "project", Message: err.Error()}
	}
	var out createProjectResponse
	if err := c.do(ctx, call{op: "create project", method: http.MethodPost, path: "/projects", auth: true, body: req, result: &out}); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// GetProject returns a project owned by the caller.
func (c *Client) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var out getProjectResponse
	if err := c.do(ctx, call{op: "get project", method: http.MethodGet, path: "/projects/" + url.PathEscape(id), auth: true, result: &out}); err != nil {
		return nil, err
	}
	return &out.Data.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) (string, error) {
	var out Envelope
	if err := c.do(ctx, call{op: "delete project", method: http.MethodDelete, path: "/projects/" + url.PathEscape(id), auth: true, result: &out}); err != nil {
		return "", err
	}
	return out.Message, nil
}
