package workitem

// GetWorkItemsArgs contains parameters for fetching work items by ID
type GetWorkItemsArgs struct {
	IDs         []int    `json:"ids" jsonschema:"Work item IDs to fetch (1 to 200)"`
	Fields      []string `json:"fields,omitempty" jsonschema:"Field reference names to return, e.g. System.Title. Cannot be combined with expand"`
	AsOf        string   `json:"as_of,omitempty" jsonschema:"Return the work items as of this RFC 3339 time"`
	Expand      string   `json:"expand,omitempty" jsonschema:"none, relations, fields, links or all"`
	ErrorPolicy string   `json:"error_policy,omitempty" jsonschema:"fail (default) or omit to skip IDs that cannot be read"`
	Project     string   `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
}

// GetWorkItemsResult contains the fetched work items
type GetWorkItemsResult struct {
	WorkItems []WorkItemInfo `json:"work_items"`
	Count     int            `json:"count"`
}

// ListWorkItemsArgs contains parameters for a WIQL query
type ListWorkItemsArgs struct {
	Query   string   `json:"query" jsonschema:"WIQL query, e.g. SELECT [System.Id] FROM WorkItems WHERE [System.State] = 'Active'"`
	Top     int      `json:"top,omitempty" jsonschema:"Maximum number of work items (default and max 200)"`
	Fields  []string `json:"fields,omitempty" jsonschema:"Field reference names to return for each work item"`
	Project string   `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
}

// ListWorkItemsResult contains the work items matching a query
type ListWorkItemsResult struct {
	Count     int            `json:"count"`
	WorkItems []WorkItemInfo `json:"work_items"`
}
