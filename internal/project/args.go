package project

// ListProjectsArgs contains parameters for listing projects
type ListProjectsArgs struct {
	State string `json:"state,omitempty" jsonschema:"Filter by state: wellFormed, createPending, deleting, new or all"`
	Top   int    `json:"top,omitempty" jsonschema:"Maximum number of projects to return"`
}

// ListProjectsResult contains the projects in the organization
type ListProjectsResult struct {
	Projects []ProjectInfo `json:"projects"`
	Count    int           `json:"count"`
}

// GetProjectArgs contains parameters for reading one project
type GetProjectArgs struct {
	Project             string `json:"project,omitempty" jsonschema:"Project name or ID (defaults to the configured project)"`
	IncludeCapabilities bool   `json:"include_capabilities,omitempty" jsonschema:"Include process template and version control capabilities"`
}

// GetProjectResult contains one project
type GetProjectResult struct {
	Project ProjectInfo `json:"project"`
}
