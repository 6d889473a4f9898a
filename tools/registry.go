// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are declared once in AllTools and bound to typed domain methods by
// HandlerRegistry.
package tools

// Areas group tools by Azure DevOps service.
const (
	AreaWiki      = "wiki"
	AreaWorkItems = "work_items"
	AreaProjects  = "projects"
	AreaRepos     = "repositories"
	AreaPipelines = "pipelines"
)

// Tool categories
const (
	CategoryRead   = "read"
	CategoryWrite  = "write"
	CategoryQuery  = "query"
	CategoryBrowse = "browse"
)

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a domain client method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "azdo_get_work_items")
	Name string

	// Method is the domain method name (e.g., "GetWorkItems")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (read, write, query, browse)
	Category string

	// Area is the Azure DevOps service the tool talks to
	Area string

	// ReadOnly indicates the tool doesn't modify anything in the organization
	ReadOnly bool

	// Destructive indicates the tool can overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ToolsByArea returns the specs for one area.
func ToolsByArea(area string) []ToolSpec {
	return filter(func(s ToolSpec) bool { return s.Area == area })
}

// ToolsByCategory returns the specs in one category.
func ToolsByCategory(category string) []ToolSpec {
	return filter(func(s ToolSpec) bool { return s.Category == category })
}

// FindTool looks a spec up by tool name.
func FindTool(name string) (ToolSpec, bool) {
	for _, s := range AllTools {
		if s.Name == name {
			return s, true
		}
	}
	return ToolSpec{}, false
}

func filter(keep func(ToolSpec) bool) []ToolSpec {
	var out []ToolSpec
	for _, s := range AllTools {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
