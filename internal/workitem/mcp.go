package workitem

import "context"

// GetWorkItemsMCP is the MCP wrapper for GetWorkItems
func (c *Client) GetWorkItemsMCP(ctx context.Context, args GetWorkItemsArgs) (GetWorkItemsResult, error) {
	items, err := c.GetWorkItems(ctx, GetRequest{
		IDs:         args.IDs,
		Project:     args.Project,
		Fields:      args.Fields,
		AsOf:        args.AsOf,
		Expand:      args.Expand,
		ErrorPolicy: args.ErrorPolicy,
	})
	if err != nil {
		return GetWorkItemsResult{}, err
	}

	infos := summarizeAll(items)
	return GetWorkItemsResult{WorkItems: infos, Count: len(infos)}, nil
}

// ListWorkItemsMCP is the MCP wrapper for ListWorkItems
func (c *Client) ListWorkItemsMCP(ctx context.Context, args ListWorkItemsArgs) (ListWorkItemsResult, error) {
	res, err := c.ListWorkItems(ctx, ListRequest{
		Query:   args.Query,
		Project: args.Project,
		Top:     args.Top,
		Fields:  args.Fields,
	})
	if err != nil {
		return ListWorkItemsResult{}, err
	}

	infos := summarizeAll(res.WorkItems)
	return ListWorkItemsResult{Count: len(infos), WorkItems: infos}, nil
}
