// Package wiki implements the Azure DevOps wiki operations: listing wikis,
// reading pages, creating project wikis and creating or updating pages.
package wiki

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	azwiki "github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
	"github.com/olgasafonova/azure-devops-mcp-server/metrics"
	"github.com/olgasafonova/azure-devops-mcp-server/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Server exception type keys for the two not-found cases
const (
	typeKeyWikiNotFound     = "WikiNotFoundException"
	typeKeyWikiPageNotFound = "WikiPageNotFoundException"

	// wikiNotFoundText is matched against the error body when no type key is present
	wikiNotFoundText = "Wiki not found"
)

// Connector supplies wiki sub-area clients. *devops.Provider implements it.
type Connector interface {
	WikiClient(ctx context.Context) (azwiki.Client, error)
	ProjectID(ctx context.Context, nameOrID string) (uuid.UUID, error)
	DefaultProject() string
	Invalidate()
}

// Client runs wiki operations against Azure DevOps.
type Client struct {
	conn   Connector
	logger *slog.Logger
}

// NewClient creates a wiki client.
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

// GetWikis lists the wikis in project (the default project when empty).
func (c *Client) GetWikis(ctx context.Context, project string) (wikis []azwiki.WikiV2, err error) {
	project = c.project(project)

	api, err := c.conn.WikiClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaWiki, "get_wikis", project)
	defer func() { done(err) }()

	resp, err := api.GetAllWikis(ctx, azwiki.GetAllWikisArgs{Project: &project})
	if err != nil {
		return nil, devops.WrapAPIError(c.conn, "get wikis", err)
	}
	if resp == nil {
		return []azwiki.WikiV2{}, nil
	}
	return *resp, nil
}

// GetPageContent returns the raw markdown of a page.
func (c *Client) GetPageContent(ctx context.Context, req PageRequest) (content string, err error) {
	req, err = c.prepare(req)
	if err != nil {
		return "", err
	}

	api, err := c.conn.WikiClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, done := c.trackPage(ctx, "get_page_content", req)
	defer func() { done(err) }()

	body, err := api.GetPageText(ctx, azwiki.GetPageTextArgs{
		Project:           &req.Project,
		WikiIdentifier:    &req.Wiki,
		Path:              &req.Path,
		RecursionLevel:    &req.recursion,
		VersionDescriptor: versionDescriptor(req.Version),
	})
	if err != nil {
		return "", c.mapPageError("get wiki page content", req, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", apperrors.NewAPIError(fmt.Sprintf("failed to get wiki page content: %v", err), 0, err)
	}
	return string(data), nil
}

// GetPage returns page metadata, optionally with content, plus the page ETag.
func (c *Client) GetPage(ctx context.Context, req PageRequest, includeContent bool) (page *azwiki.WikiPageResponse, err error) {
	req, err = c.prepare(req)
	if err != nil {
		return nil, err
	}

	api, err := c.conn.WikiClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := c.trackPage(ctx, "get_page", req)
	defer func() { done(err) }()

	page, err = c.getPage(ctx, api, req, includeContent)
	if err != nil {
		return nil, c.mapPageError("get wiki page", req, err)
	}
	return page, nil
}

func (c *Client) getPage(ctx context.Context, api azwiki.Client, req PageRequest, includeContent bool) (*azwiki.WikiPageResponse, error) {
	return api.GetPage(ctx, azwiki.GetPageArgs{
		Project:           &req.Project,
		WikiIdentifier:    &req.Wiki,
		Path:              &req.Path,
		RecursionLevel:    &req.recursion,
		VersionDescriptor: versionDescriptor(req.Version),
		IncludeContent:    &includeContent,
	})
}

// CreateWiki creates a project wiki.
func (c *Client) CreateWiki(ctx context.Context, req CreateWikiRequest) (created *azwiki.WikiV2, err error) {
	name := strings.TrimSpace(req.Name)
	if err := ValidateWikiName(name); err != nil {
		return nil, err
	}
	mappedPath := req.MappedPath
	if mappedPath == "" {
		mappedPath = "/"
	}
	project := c.project(req.Project)

	api, err := c.conn.WikiClient(ctx)
	if err != nil {
		return nil, err
	}

	projectID, err := c.conn.ProjectID(ctx, project)
	if err != nil {
		return nil, err
	}

	ctx, done := devops.Track(ctx, devops.AreaWiki, "create_wiki", project)
	defer func() {
		done(err)
		metrics.RecordEdit("create_wiki", 0, err == nil)
	}()

	wikiType := azwiki.WikiTypeValues.ProjectWiki
	created, err = api.CreateWiki(ctx, azwiki.CreateWikiArgs{
		Project: &project,
		WikiCreateParams: &azwiki.WikiCreateParametersV2{
			Name:       &name,
			ProjectId:  &projectID,
			Type:       &wikiType,
			MappedPath: &mappedPath,
		},
	})
	if err != nil {
		return nil, devops.WrapAPIError(c.conn, "create wiki", err)
	}

	c.logger.Info("Wiki created", "name", name, "project", project)
	return created, nil
}

// UpdatePage creates the page at req.Path or replaces its content. Without an
// ETag the current one is fetched first; a missing page is then created.
func (c *Client) UpdatePage(ctx context.Context, req UpdatePageRequest) (result *UpdateOutcome, err error) {
	pageReq, err := c.prepare(req.PageRequest)
	if err != nil {
		return nil, err
	}

	api, err := c.conn.WikiClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := c.trackPage(ctx, "update_page", pageReq)
	defer func() {
		done(err)
		metrics.RecordEdit("update_page", len(req.Content), err == nil)
	}()

	etag := req.ETag
	created := false
	if etag == "" {
		existing, getErr := c.getPage(ctx, api, pageReq, false)
		switch {
		case getErr == nil:
			etag = firstETag(existing)
		case devops.StatusCode(getErr) == http.StatusNotFound:
			mapped := c.mapPageError("update wiki page", pageReq, getErr)
			if _, isWiki := mapped.(*apperrors.WikiNotFoundError); isWiki {
				return nil, mapped
			}
			created = true
		default:
			return nil, c.mapUpdateError(pageReq, getErr)
		}
	}

	args := azwiki.CreateOrUpdatePageArgs{
		Parameters:        &azwiki.WikiPageCreateOrUpdateParameters{Content: &req.Content},
		Project:           &pageReq.Project,
		WikiIdentifier:    &pageReq.Wiki,
		Path:              &pageReq.Path,
		VersionDescriptor: versionDescriptor(pageReq.Version),
	}
	if etag != "" {
		args.Version = &etag
	}
	if req.Comment != "" {
		args.Comment = &req.Comment
	}

	resp, err := api.CreateOrUpdatePage(ctx, args)
	if err != nil {
		return nil, c.mapUpdateError(pageReq, err)
	}

	c.logger.Info("Wiki page saved",
		"wiki", pageReq.Wiki,
		"path", pageReq.Path,
		"created", created,
		"bytes", len(req.Content))
	return &UpdateOutcome{Response: resp, Created: created}, nil
}

// prepare validates a page request and fills in defaults.
func (c *Client) prepare(req PageRequest) (PageRequest, error) {
	if err := ValidateWikiIdentifier(req.Wiki); err != nil {
		return req, err
	}
	path, err := NormalizePath(req.Path)
	if err != nil {
		return req, err
	}
	recursion, err := ParseRecursionLevel(req.RecursionLevel)
	if err != nil {
		return req, err
	}

	req.Path = path
	req.recursion = recursion
	req.Project = c.project(req.Project)
	if req.Version == "" {
		req.Version = DefaultVersion
	}
	return req, nil
}

func (c *Client) trackPage(ctx context.Context, action string, req PageRequest) (context.Context, func(error)) {
	ctx, done := devops.Track(ctx, devops.AreaWiki, action, req.Project)
	tracing.AddWikiAttributes(trace.SpanFromContext(ctx), req.Wiki, req.Path)
	return ctx, done
}

// mapPageError distinguishes a missing wiki from a missing page on 404.
// The structured type key wins; the body text is the fallback.
func (c *Client) mapPageError(action string, req PageRequest, err error) error {
	if apperrors.IsTaxonomy(err) {
		return err
	}
	if devops.StatusCode(err) != http.StatusNotFound {
		return devops.WrapAPIError(c.conn, action, err)
	}

	switch devops.TypeKey(err) {
	case typeKeyWikiNotFound:
		return &apperrors.WikiNotFoundError{Wiki: req.Wiki}
	case typeKeyWikiPageNotFound:
		return &apperrors.WikiPageNotFoundError{Wiki: req.Wiki, Path: req.Path}
	}
	if mentionsWikiNotFound(err) {
		return &apperrors.WikiNotFoundError{Wiki: req.Wiki}
	}
	return &apperrors.WikiPageNotFoundError{Wiki: req.Wiki, Path: req.Path}
}

// mapUpdateError only singles out a missing wiki; other failures are API errors.
func (c *Client) mapUpdateError(req PageRequest, err error) error {
	if apperrors.IsTaxonomy(err) {
		return err
	}
	if devops.StatusCode(err) == http.StatusNotFound &&
		(devops.TypeKey(err) == typeKeyWikiNotFound || mentionsWikiNotFound(err)) {
		return &apperrors.WikiNotFoundError{Wiki: req.Wiki}
	}
	return devops.WrapAPIError(c.conn, "update wiki page", err)
}

func mentionsWikiNotFound(err error) bool {
	return strings.Contains(devops.ErrorText(err), wikiNotFoundText) ||
		strings.Contains(err.Error(), wikiNotFoundText)
}

func versionDescriptor(branch string) *git.GitVersionDescriptor {
	versionType := git.GitVersionTypeValues.Branch
	return &git.GitVersionDescriptor{Version: &branch, VersionType: &versionType}
}

func firstETag(resp *azwiki.WikiPageResponse) string {
	if resp == nil || resp.ETag == nil || len(*resp.ETag) == 0 {
		return ""
	}
	return (*resp.ETag)[0]
}
