package project

import "context"

// ListProjectsMCP is the MCP wrapper for ListProjects
func (c *Client) ListProjectsMCP(ctx context.Context, args ListProjectsArgs) (ListProjectsResult, error) {
	projects, err := c.ListProjects(ctx, ListRequest{State: args.State, Top: args.Top})
	if err != nil {
		return ListProjectsResult{}, err
	}

	infos := make([]ProjectInfo, 0, len(projects))
	for _, p := range projects {
		infos = append(infos, summarizeReference(p))
	}
	return ListProjectsResult{Projects: infos, Count: len(infos)}, nil
}

// GetProjectMCP is the MCP wrapper for GetProject
func (c *Client) GetProjectMCP(ctx context.Context, args GetProjectArgs) (GetProjectResult, error) {
	p, err := c.GetProject(ctx, GetRequest{Project: args.Project, IncludeCapabilities: args.IncludeCapabilities})
	if err != nil {
		return GetProjectResult{}, err
	}
	return GetProjectResult{Project: summarizeProject(*p)}, nil
}
