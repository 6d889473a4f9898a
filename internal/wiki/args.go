package wiki

// ListWikisArgs contains parameters for listing wikis
type ListWikisArgs struct {
	Project string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
}

// ListWikisResult is the result of listing wikis
type ListWikisResult struct {
	Wikis []WikiSummary `json:"wikis"`
	Count int           `json:"count"`
}

// GetPageContentArgs contains parameters for reading raw page content
type GetPageContentArgs struct {
	WikiIdentifier string `json:"wiki_identifier" jsonschema:"Wiki name or ID"`
	Path           string `json:"path" jsonschema:"Page path, e.g. /Home or /Guides/Setup"`
	Version        string `json:"version,omitempty" jsonschema:"Branch to read from (default main)"`
	RecursionLevel string `json:"recursion_level,omitempty" jsonschema:"none (default), oneLevel, oneLevelPlusNestedEmptyFolders or full"`
	Project        string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
}

// GetPageContentResult is the raw markdown of a page
type GetPageContentResult struct {
	WikiIdentifier string `json:"wiki_identifier"`
	Path           string `json:"path"`
	Content        string `json:"content"`
}

// GetPageArgs contains parameters for reading a page with metadata
type GetPageArgs struct {
	WikiIdentifier string `json:"wiki_identifier" jsonschema:"Wiki name or ID"`
	Path           string `json:"path" jsonschema:"Page path, e.g. /Home or /Guides/Setup"`
	Version        string `json:"version,omitempty" jsonschema:"Branch to read from (default main)"`
	RecursionLevel string `json:"recursion_level,omitempty" jsonschema:"none (default), oneLevel, oneLevelPlusNestedEmptyFolders or full"`
	IncludeContent *bool  `json:"include_content,omitempty" jsonschema:"Include page markdown (default true)"`
	Project        string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
}

// GetPageResult is a page with its metadata and ETag
type GetPageResult struct {
	Page PageInfo `json:"page"`
	ETag string   `json:"etag,omitempty"`
}

// CreateWikiArgs contains parameters for creating a project wiki
type CreateWikiArgs struct {
	Name       string `json:"name" jsonschema:"Name of the new wiki"`
	Project    string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
	MappedPath string `json:"mapped_path,omitempty" jsonschema:"Folder in the backing repository (default /)"`
}

// CreateWikiResult is the created wiki
type CreateWikiResult struct {
	Wiki WikiSummary `json:"wiki"`
}

// UpdatePageArgs contains parameters for creating or updating a page
type UpdatePageArgs struct {
	WikiIdentifier string `json:"wiki_identifier" jsonschema:"Wiki name or ID"`
	Path           string `json:"path" jsonschema:"Page path to create or update"`
	Content        string `json:"content" jsonschema:"Full markdown content of the page"`
	Comment        string `json:"comment,omitempty" jsonschema:"Commit comment for the change"`
	Version        string `json:"version,omitempty" jsonschema:"Branch to write to (default main)"`
	ETag           string `json:"etag,omitempty" jsonschema:"ETag from azdo_get_wiki_page; fetched automatically when omitted"`
	Project        string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
}

// UpdatePageResult is the saved page
type UpdatePageResult struct {
	Page    PageInfo `json:"page"`
	ETag    string   `json:"etag,omitempty"`
	Created bool     `json:"created"`
}
