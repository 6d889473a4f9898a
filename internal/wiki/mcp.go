package wiki

import (
	"context"
)

// MCP Tool wrapper methods
// These methods wrap the client methods with Args/Result types for MCP integration.

// ListWikisMCP is the MCP wrapper for GetWikis
func (c *Client) ListWikisMCP(ctx context.Context, args ListWikisArgs) (ListWikisResult, error) {
	wikis, err := c.GetWikis(ctx, args.Project)
	if err != nil {
		return ListWikisResult{}, err
	}

	summaries := make([]WikiSummary, 0, len(wikis))
	for _, w := range wikis {
		summaries = append(summaries, summarizeWiki(w))
	}
	return ListWikisResult{Wikis: summaries, Count: len(summaries)}, nil
}

// GetPageContentMCP is the MCP wrapper for GetPageContent
func (c *Client) GetPageContentMCP(ctx context.Context, args GetPageContentArgs) (GetPageContentResult, error) {
	req := PageRequest{
		Project:        args.Project,
		Wiki:           args.WikiIdentifier,
		Path:           args.Path,
		Version:        args.Version,
		RecursionLevel: args.RecursionLevel,
	}
	content, err := c.GetPageContent(ctx, req)
	if err != nil {
		return GetPageContentResult{}, err
	}

	path, _ := NormalizePath(args.Path)
	return GetPageContentResult{WikiIdentifier: args.WikiIdentifier, Path: path, Content: content}, nil
}

// GetPageMCP is the MCP wrapper for GetPage
func (c *Client) GetPageMCP(ctx context.Context, args GetPageArgs) (GetPageResult, error) {
	includeContent := true
	if args.IncludeContent != nil {
		includeContent = *args.IncludeContent
	}

	resp, err := c.GetPage(ctx, PageRequest{
		Project:        args.Project,
		Wiki:           args.WikiIdentifier,
		Path:           args.Path,
		Version:        args.Version,
		RecursionLevel: args.RecursionLevel,
	}, includeContent)
	if err != nil {
		return GetPageResult{}, err
	}

	return GetPageResult{Page: summarizePage(resp.Page), ETag: firstETag(resp)}, nil
}

// CreateWikiMCP is the MCP wrapper for CreateWiki
func (c *Client) CreateWikiMCP(ctx context.Context, args CreateWikiArgs) (CreateWikiResult, error) {
	created, err := c.CreateWiki(ctx, CreateWikiRequest{
		Name:       args.Name,
		Project:    args.Project,
		MappedPath: args.MappedPath,
	})
	if err != nil {
		return CreateWikiResult{}, err
	}
	if created == nil {
		return CreateWikiResult{Wiki: WikiSummary{Name: args.Name}}, nil
	}
	return CreateWikiResult{Wiki: summarizeWiki(*created)}, nil
}

// UpdatePageMCP is the MCP wrapper for UpdatePage
func (c *Client) UpdatePageMCP(ctx context.Context, args UpdatePageArgs) (UpdatePageResult, error) {
	out, err := c.UpdatePage(ctx, UpdatePageRequest{
		PageRequest: PageRequest{
			Project: args.Project,
			Wiki:    args.WikiIdentifier,
			Path:    args.Path,
			Version: args.Version,
		},
		Content: args.Content,
		Comment: args.Comment,
		ETag:    args.ETag,
	})
	if err != nil {
		return UpdatePageResult{}, err
	}

	result := UpdatePageResult{Created: out.Created}
	if out.Response != nil {
		result.Page = summarizePage(out.Response.Page)
		result.ETag = firstETag(out.Response)
	}
	return result, nil
}
