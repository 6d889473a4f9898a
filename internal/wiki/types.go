package wiki

import (
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	azwiki "github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
)

// DefaultVersion is the branch used when a request names none
const DefaultVersion = "main"

// PageRequest identifies a wiki page.
type PageRequest struct {
	Project        string // empty means the default project
	Wiki           string // wiki name or ID
	Path           string // page path; a leading "/" is added when missing
	Version        string // branch; defaults to DefaultVersion
	RecursionLevel string // none, oneLevel, oneLevelPlusNestedEmptyFolders, full

	recursion git.VersionControlRecursionType
}

// CreateWikiRequest describes a new project wiki.
type CreateWikiRequest struct {
	Name       string
	Project    string // name or ID; empty means the default project
	MappedPath string // defaults to "/"
}

// UpdatePageRequest describes a page write.
type UpdatePageRequest struct {
	PageRequest
	Content string
	Comment string
	ETag    string // If-Match value; fetched automatically when empty
}

// UpdateOutcome is the result of UpdatePage.
type UpdateOutcome struct {
	Response *azwiki.WikiPageResponse
	Created  bool // the page did not exist before the write
}

// WikiSummary is a JSON-friendly projection of a wiki.
type WikiSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	RepositoryID string `json:"repository_id,omitempty"`
	MappedPath   string `json:"mapped_path,omitempty"`
	URL          string `json:"url,omitempty"`
	RemoteURL    string `json:"remote_url,omitempty"`
}

// PageInfo is a JSON-friendly projection of a wiki page.
type PageInfo struct {
	ID           int       `json:"id,omitempty"`
	Path         string    `json:"path"`
	GitItemPath  string    `json:"git_item_path,omitempty"`
	Content      string    `json:"content,omitempty"`
	IsParentPage bool      `json:"is_parent_page,omitempty"`
	Order        int       `json:"order,omitempty"`
	URL          string    `json:"url,omitempty"`
	RemoteURL    string    `json:"remote_url,omitempty"`
	SubPages     []PageRef `json:"sub_pages,omitempty"`
}

// PageRef points at a sub-page. Deeper levels are flattened into the list.
type PageRef struct {
	ID           int    `json:"id,omitempty"`
	Path         string `json:"path"`
	IsParentPage bool   `json:"is_parent_page,omitempty"`
}

func summarizeWiki(w azwiki.WikiV2) WikiSummary {
	s := WikiSummary{
		Name:       deref(w.Name),
		MappedPath: deref(w.MappedPath),
		URL:        deref(w.Url),
		RemoteURL:  deref(w.RemoteUrl),
	}
	if w.Id != nil {
		s.ID = w.Id.String()
	}
	if w.ProjectId != nil {
		s.ProjectID = w.ProjectId.String()
	}
	if w.RepositoryId != nil {
		s.RepositoryID = w.RepositoryId.String()
	}
	if w.Type != nil {
		s.Type = string(*w.Type)
	}
	return s
}

func summarizePage(p *azwiki.WikiPage) PageInfo {
	if p == nil {
		return PageInfo{}
	}
	info := PageInfo{
		Path:         deref(p.Path),
		GitItemPath:  deref(p.GitItemPath),
		Content:      deref(p.Content),
		IsParentPage: derefBool(p.IsParentPage),
		URL:          deref(p.Url),
		RemoteURL:    deref(p.RemoteUrl),
	}
	if p.Id != nil {
		info.ID = *p.Id
	}
	if p.Order != nil {
		info.Order = *p.Order
	}
	info.SubPages = appendSubPages(info.SubPages, p.SubPages)
	return info
}

func appendSubPages(refs []PageRef, pages *[]azwiki.WikiPage) []PageRef {
	if pages == nil {
		return refs
	}
	for _, sp := range *pages {
		ref := PageRef{Path: deref(sp.Path), IsParentPage: derefBool(sp.IsParentPage)}
		if sp.Id != nil {
			ref.ID = *sp.Id
		}
		refs = append(refs, ref)
		refs = appendSubPages(refs, sp.SubPages)
	}
	return refs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
