// Package repository lists the Git repositories of an Azure DevOps project.
package repository

import (
	"context"
	"log/slog"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
)

// Connector supplies the git client. *devops.Provider implements it.
type Connector interface {
	GitClient(ctx context.Context) (git.Client, error)
	DefaultProject() string
	Invalidate()
}

// Client runs repository operations.
type Client struct {
	conn   Connector
	logger *slog.Logger
}

// NewClient creates a repository client.
func NewClient(conn Connector, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{conn: conn, logger: logger}
}

// ListRepositories returns the repositories in project (the default project when empty).
func (c *Client) ListRepositories(ctx context.Context, project string, includeHidden bool) (repos []git.GitRepository, err error) {
	if project == "" {
		project = c.conn.DefaultProject()
	}

	api, err := c.conn.GitClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaGit, "get_repositories", project)
	defer func() { done(err) }()

	resp, err := api.GetRepositories(ctx, git.GetRepositoriesArgs{
		Project:       &project,
		IncludeHidden: &includeHidden,
	})
	if err != nil {
		return nil, devops.WrapAPIError(c.conn, "list repositories", err)
	}
	if resp == nil {
		return []git.GitRepository{}, nil
	}
	return *resp, nil
}

// ListRepositoriesArgs contains parameters for listing repositories
type ListRepositoriesArgs struct {
	Project       string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
	IncludeHidden bool   `json:"include_hidden,omitempty" jsonschema:"Include hidden repositories"`
}

// ListRepositoriesResult contains the repositories of a project
type ListRepositoriesResult struct {
	Repositories []RepositoryInfo `json:"repositories"`
	Count        int              `json:"count"`
}

// RepositoryInfo is a JSON-friendly projection of a Git repository.
type RepositoryInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Project       string `json:"project,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Size          uint64 `json:"size,omitempty"`
	IsFork        bool   `json:"is_fork,omitempty"`
	RemoteURL     string `json:"remote_url,omitempty"`
	WebURL        string `json:"web_url,omitempty"`
}

// ListRepositoriesMCP is the MCP wrapper for ListRepositories
func (c *Client) ListRepositoriesMCP(ctx context.Context, args ListRepositoriesArgs) (ListRepositoriesResult, error) {
	repos, err := c.ListRepositories(ctx, args.Project, args.IncludeHidden)
	if err != nil {
		return ListRepositoriesResult{}, err
	}

	infos := make([]RepositoryInfo, 0, len(repos))
	for _, r := range repos {
		infos = append(infos, summarize(r))
	}
	return ListRepositoriesResult{Repositories: infos, Count: len(infos)}, nil
}

func summarize(r git.GitRepository) RepositoryInfo {
	info := RepositoryInfo{
		Name:          deref(r.Name),
		DefaultBranch: deref(r.DefaultBranch),
		RemoteURL:     deref(r.RemoteUrl),
		WebURL:        deref(r.WebUrl),
	}
	if r.Id != nil {
		info.ID = r.Id.String()
	}
	if r.Project != nil {
		info.Project = deref(r.Project.Name)
	}
	if r.Size != nil {
		info.Size = *r.Size
	}
	if r.IsFork != nil {
		info.IsFork = *r.IsFork
	}
	return info
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
