// Package pipeline lists build pipeline definitions.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

// Connector supplies the build client. *devops.Provider implements it.
type Connector interface {
	BuildClient(ctx context.Context) (build.Client, error)
	DefaultProject() string
	Invalidate()
}

// Client runs pipeline operations.
type Client struct {
	conn   Connector
	logger *slog.Logger
}

// NewClient creates a pipeline client.
func NewClient(conn Connector, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{conn: conn, logger: logger}
}

// ListRequest filters a definition listing.
type ListRequest struct {
	Project      string
	Name         string // supports the * wildcard
	Path         string // folder, e.g. \Release
	Top          int
	LatestBuilds bool
}

// ListDefinitions returns the build definitions of a project.
func (c *Client) ListDefinitions(ctx context.Context, req ListRequest) (defs []build.BuildDefinitionReference, err error) {
	if req.Top < 0 {
		return nil, apperrors.NewValidationError("top", "", "must not be negative")
	}
	project := req.Project
	if project == "" {
		project = c.conn.DefaultProject()
	}

	api, err := c.conn.BuildClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaBuild, "get_definitions", project)
	defer func() { done(err) }()

	args := build.GetDefinitionsArgs{Project: &project}
	if name := strings.TrimSpace(req.Name); name != "" {
		args.Name = &name
	}
	if path := strings.TrimSpace(req.Path); path != "" {
		args.Path = &path
	}
	if req.Top > 0 {
		top := req.Top
		args.Top = &top
	}
	if req.LatestBuilds {
		latest := true
		args.IncludeLatestBuilds = &latest
	}

	resp, err := api.GetDefinitions(ctx, args)
	if err != nil {
		return nil, devops.WrapAPIError(c.conn, "list build definitions", err)
	}
	if resp == nil || resp.Value == nil {
		return []build.BuildDefinitionReference{}, nil
	}
	return resp.Value, nil
}

// ListDefinitionsArgs contains parameters for listing build definitions
type ListDefinitionsArgs struct {
	Project      string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
	Name         string `json:"name,omitempty" jsonschema:"Filter by definition name; * is a wildcard"`
	Path         string `json:"path,omitempty" jsonschema:"Filter by folder path, e.g. \\Release"`
	Top          int    `json:"top,omitempty" jsonschema:"Maximum number of definitions to return"`
	LatestBuilds bool   `json:"latest_builds,omitempty" jsonschema:"Include the latest build of each definition"`
}

// ListDefinitionsResult contains build definitions
type ListDefinitionsResult struct {
	Definitions []DefinitionInfo `json:"definitions"`
	Count       int              `json:"count"`
}

// DefinitionInfo is a JSON-friendly projection of a build definition.
type DefinitionInfo struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Path        string     `json:"path,omitempty"`
	Revision    int        `json:"revision,omitempty"`
	QueueStatus string     `json:"queue_status,omitempty"`
	CreatedDate string     `json:"created_date,omitempty"`
	URL         string     `json:"url,omitempty"`
	LatestBuild *BuildInfo `json:"latest_build,omitempty"`
}

// BuildInfo summarizes one build run.
type BuildInfo struct {
	ID          int    `json:"id"`
	BuildNumber string `json:"build_number,omitempty"`
	Status      string `json:"status,omitempty"`
	Result      string `json:"result,omitempty"`
	FinishTime  string `json:"finish_time,omitempty"`
}

// ListDefinitionsMCP is the MCP wrapper for ListDefinitions
func (c *Client) ListDefinitionsMCP(ctx context.Context, args ListDefinitionsArgs) (ListDefinitionsResult, error) {
	defs, err := c.ListDefinitions(ctx, ListRequest(args))
	if err != nil {
		return ListDefinitionsResult{}, err
	}

	infos := make([]DefinitionInfo, 0, len(defs))
	for _, d := range defs {
		infos = append(infos, summarize(d))
	}
	return ListDefinitionsResult{Definitions: infos, Count: len(infos)}, nil
}

func summarize(d build.BuildDefinitionReference) DefinitionInfo {
	info := DefinitionInfo{
		Name: deref(d.Name),
		Path: deref(d.Path),
		URL:  deref(d.Url),
	}
	if d.Id != nil {
		info.ID = *d.Id
	}
	if d.Revision != nil {
		info.Revision = *d.Revision
	}
	if d.QueueStatus != nil {
		info.QueueStatus = string(*d.QueueStatus)
	}
	if d.CreatedDate != nil {
		info.CreatedDate = d.CreatedDate.Time.UTC().Format(time.RFC3339)
	}
	if b := d.LatestBuild; b != nil {
		lb := &BuildInfo{BuildNumber: deref(b.BuildNumber)}
		if b.Id != nil {
			lb.ID = *b.Id
		}
		if b.Status != nil {
			lb.Status = string(*b.Status)
		}
		if b.Result != nil {
			lb.Result = string(*b.Result)
		}
		if b.FinishTime != nil {
			lb.FinishTime = b.FinishTime.Time.UTC().Format(time.RFC3339)
		}
		info.LatestBuild = lb
	}
	return info
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
