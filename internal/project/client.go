// Package project lists and reads Azure DevOps team projects.
package project

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

// Connector supplies the core client. *devops.Provider implements it.
type Connector interface {
	CoreClient(ctx context.Context) (core.Client, error)
	DefaultProject() string
	Invalidate()
}

// Client runs project operations.
type Client struct {
	conn   Connector
	logger *slog.Logger
}

// NewClient creates a project client.
func NewClient(conn Connector, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{conn: conn, logger: logger}
}

// ListProjects returns the projects in the organization, optionally filtered by state.
func (c *Client) ListProjects(ctx context.Context, req ListRequest) (projects []core.TeamProjectReference, err error) {
	state, err := ParseState(req.State)
	if err != nil {
		return nil, err
	}
	if req.Top < 0 {
		return nil, apperrors.NewValidationError("top", "", "must not be negative")
	}

	api, err := c.conn.CoreClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaCore, "get_projects", "")
	defer func() { done(err) }()

	args := core.GetProjectsArgs{StateFilter: state}
	if req.Top > 0 {
		top := req.Top
		args.Top = &top
	}
	resp, err := api.GetProjects(ctx, args)
	if err != nil {
		return nil, devops.WrapAPIError(c.conn, "list projects", err)
	}
	if resp == nil || resp.Value == nil {
		return []core.TeamProjectReference{}, nil
	}
	return resp.Value, nil
}

// GetProject returns one project by name or ID (the default project when empty).
func (c *Client) GetProject(ctx context.Context, req GetRequest) (project *core.TeamProject, err error) {
	name := strings.TrimSpace(req.Project)
	if name == "" {
		name = c.conn.DefaultProject()
	}

	api, err := c.conn.CoreClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaCore, "get_project", name)
	defer func() { done(err) }()

	includeCapabilities := req.IncludeCapabilities
	project, err = api.GetProject(ctx, core.GetProjectArgs{
		ProjectId:           &name,
		IncludeCapabilities: &includeCapabilities,
	})
	if err != nil {
		if devops.StatusCode(err) == http.StatusNotFound {
			return nil, apperrors.NewNotFoundError("project", name)
		}
		return nil, devops.WrapAPIError(c.conn, "get project", err)
	}
	if project == nil {
		return nil, apperrors.NewNotFoundError("project", name)
	}
	return project, nil
}

// ParseState maps a project state filter name to the SDK value. Empty means not set.
func ParseState(s string) (*core.ProjectState, error) {
	var v core.ProjectState
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "wellformed":
		v = core.ProjectStateValues.WellFormed
	case "createpending":
		v = core.ProjectStateValues.CreatePending
	case "deleting":
		v = core.ProjectStateValues.Deleting
	case "new":
		v = core.ProjectStateValues.New
	case "all":
		v = core.ProjectStateValues.All
	default:
		return nil, apperrors.NewValidationError("state", s, "must be one of wellFormed, createPending, deleting, new, all")
	}
	return &v, nil
}
