// Package workitem fetches Azure DevOps work items by ID and by WIQL query.
package workitem

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

// Connector supplies the work item tracking client. *devops.Provider implements it.
type Connector interface {
	WorkItemTrackingClient(ctx context.Context) (workitemtracking.Client, error)
	DefaultProject() string
	Invalidate()
}

// Client runs work item operations against Azure DevOps.
type Client struct {
	conn   Connector
	logger *slog.Logger
}

// NewClient creates a work item client.
func NewClient(conn Connector, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{conn: conn, logger: logger}
}

func (c *Client) project(p string) string {
	if p != "" {
		return p
	}
	return c.conn.DefaultProject()
}

// GetWorkItems fetches up to MaxBatchSize work items by ID. An empty result
// or a 404 is a NotFoundError naming the requested IDs.
func (c *Client) GetWorkItems(ctx context.Context, req GetRequest) (items []workitemtracking.WorkItem, err error) {
	args, err := c.buildGetArgs(req)
	if err != nil {
		return nil, err
	}

	api, err := c.conn.WorkItemTrackingClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaWorkItem, "get_work_items", *args.Project)
	defer func() { done(err) }()

	resp, err := api.GetWorkItems(ctx, args)
	if err != nil {
		if devops.StatusCode(err) == http.StatusNotFound {
			return nil, apperrors.NewWorkItemsNotFoundError(req.IDs)
		}
		return nil, devops.WrapAPIError(c.conn, "get work item(s)", err)
	}
	if resp == nil || len(*resp) == 0 {
		return nil, apperrors.NewWorkItemsNotFoundError(req.IDs)
	}
	return *resp, nil
}

func (c *Client) buildGetArgs(req GetRequest) (workitemtracking.GetWorkItemsArgs, error) {
	if err := ValidateIDs(req.IDs); err != nil {
		return workitemtracking.GetWorkItemsArgs{}, err
	}
	expand, err := ParseExpand(req.Expand)
	if err != nil {
		return workitemtracking.GetWorkItemsArgs{}, err
	}
	if expand != nil && len(req.Fields) > 0 {
		return workitemtracking.GetWorkItemsArgs{}, apperrors.NewValidationError("expand", req.Expand,
			"cannot be combined with fields")
	}
	policy, err := ParseErrorPolicy(req.ErrorPolicy)
	if err != nil {
		return workitemtracking.GetWorkItemsArgs{}, err
	}
	asOf, err := ParseAsOf(req.AsOf)
	if err != nil {
		return workitemtracking.GetWorkItemsArgs{}, err
	}

	project := c.project(req.Project)
	ids := append([]int(nil), req.IDs...)
	args := workitemtracking.GetWorkItemsArgs{
		Ids:         &ids,
		Project:     &project,
		AsOf:        asOf,
		Expand:      expand,
		ErrorPolicy: policy,
	}
	if len(req.Fields) > 0 {
		fields := append([]string(nil), req.Fields...)
		args.Fields = &fields
	}
	return args, nil
}

// ListWorkItems runs a WIQL query and fetches the matching work items.
// A query with no matches returns an empty result without a second call.
func (c *Client) ListWorkItems(ctx context.Context, req ListRequest) (result *ListResult, err error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperrors.NewValidationError("query", "", "a WIQL query must be provided")
	}
	top, err := clampTop(req.Top)
	if err != nil {
		return nil, err
	}
	project := c.project(req.Project)

	api, err := c.conn.WorkItemTrackingClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaWorkItem, "list_work_items", project)
	defer func() { done(err) }()

	qr, err := api.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &query},
		Project: &project,
		Top:     &top,
	})
	if err != nil {
		return nil, devops.WrapAPIError(c.conn, "list work items", err)
	}

	ids := referenceIDs(qr)
	if len(ids) == 0 {
		return &ListResult{Count: 0, WorkItems: []workitemtracking.WorkItem{}}, nil
	}
	if len(ids) > MaxBatchSize {
		ids = ids[:MaxBatchSize]
	}

	args := workitemtracking.GetWorkItemsArgs{Ids: &ids, Project: &project}
	if len(req.Fields) > 0 {
		fields := append([]string(nil), req.Fields...)
		args.Fields = &fields
	}
	resp, err := api.GetWorkItems(ctx, args)
	if err != nil {
		return nil, devops.WrapAPIError(c.conn, "list work items", err)
	}

	items := []workitemtracking.WorkItem{}
	if resp != nil {
		items = *resp
	}
	c.logger.Debug("WIQL query resolved", "references", len(ids), "work_items", len(items))
	return &ListResult{Count: len(items), WorkItems: items}, nil
}

func referenceIDs(qr *workitemtracking.WorkItemQueryResult) []int {
	if qr == nil || qr.WorkItems == nil {
		return nil
	}
	ids := make([]int, 0, len(*qr.WorkItems))
	for _, ref := range *qr.WorkItems {
		if ref.Id != nil {
			ids = append(ids, *ref.Id)
		}
	}
	return ids
}
