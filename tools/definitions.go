package tools

// AllTools contains all tool specifications for the Azure DevOps MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// WIKI TOOLS
	// ==========================================================================
	{
		Name:     "azdo_list_wikis",
		Method:   "ListWikis",
		Title:    "List Wikis",
		Category: CategoryBrowse,
		Area:     AreaWiki,
		Description: `List the wikis in an Azure DevOps project.

USE WHEN: User asks "what wikis do we have", "which wiki holds the docs", or needs a wiki name before reading a page.

NOT FOR: Reading page content (use azdo_get_wiki_page_content).

PARAMETERS:
- project: Project name or ID (defaults to the configured project)

RETURNS: Wiki IDs, names, types (projectWiki or codeWiki) and backing repository IDs.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "azdo_get_wiki_page_content",
		Method:   "GetPageContent",
		Title:    "Get Wiki Page Content",
		Category: CategoryRead,
		Area:     AreaWiki,
		Description: `Read the raw markdown of a wiki page.

USE WHEN: User says "show me the Onboarding page", "what does the wiki say about X" and the page path is known.

NOT FOR: Page metadata or the ETag needed for edits (use azdo_get_wiki_page).

PARAMETERS:
- wiki_identifier: Wiki name or ID (required)
- path: Page path, e.g. /Home (required)
- version: Branch (default main)
- recursion_level: none (default), oneLevel, oneLevelPlusNestedEmptyFolders, full

RETURNS: The page markdown. Fails with "wiki not found" or "wiki page not found" when either is missing.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "azdo_get_wiki_page",
		Method:   "GetPage",
		Title:    "Get Wiki Page",
		Category: CategoryRead,
		Area:     AreaWiki,
		Description: `Get a wiki page with its metadata, sub-pages and ETag.

USE WHEN: User wants page details, the list of child pages, or is about to edit a page.

NOT FOR: Just reading text (azdo_get_wiki_page_content is lighter).

PARAMETERS:
- wiki_identifier: Wiki name or ID (required)
- path: Page path (required)
- include_content: Include markdown (default true)
- recursion_level: none (default), oneLevel, oneLevelPlusNestedEmptyFolders, full
- version: Branch (default main)

RETURNS: Page ID, path, git item path, content, sub-pages and the ETag to pass to azdo_update_wiki_page.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "azdo_create_wiki",
		Method:   "CreateWiki",
		Title:    "Create Wiki",
		Category: CategoryWrite,
		Area:     AreaWiki,
		Description: `Create a new project wiki.

USE WHEN: User says "create a wiki for the team", "set up a wiki in project X".

NOT FOR: Adding pages to an existing wiki (use azdo_update_wiki_page).

PARAMETERS:
- name: Wiki name (required)
- project: Project name or ID (defaults to the configured project)
- mapped_path: Repository folder (default /)

RETURNS: The created wiki's ID, name and type.`,
		OpenWorld: true,
	},
	{
		Name:     "azdo_update_wiki_page",
		Method:   "UpdatePage",
		Title:    "Create or Update Wiki Page",
		Category: CategoryWrite,
		Area:     AreaWiki,
		Description: `Create a wiki page or replace the content of an existing one.

USE WHEN: User says "add a page", "update the Release Notes page", "write this to the wiki".

NOT FOR: Creating the wiki itself (use azdo_create_wiki).

PARAMETERS:
- wiki_identifier: Wiki name or ID (required)
- path: Page path (required)
- content: Full markdown (required; replaces the whole page)
- comment: Commit comment (optional)
- etag: From azdo_get_wiki_page; looked up automatically when omitted
- version: Branch (default main)

WARNING: The content replaces the page. Read it first if you only mean to append.

RETURNS: The saved page, its new ETag and whether the page was created.`,
		Destructive: true,
		Idempotent:  true,
		OpenWorld:   true,
	},

	// ==========================================================================
	// WORK ITEM TOOLS
	// ==========================================================================
	{
		Name:     "azdo_get_work_items",
		Method:   "GetWorkItems",
		Title:    "Get Work Items",
		Category: CategoryRead,
		Area:     AreaWorkItems,
		Description: `Fetch work items by ID.

USE WHEN: User mentions specific IDs: "show bug 1234", "what's the status of 42 and 43".

NOT FOR: Finding work items by criteria (use azdo_list_work_items with a WIQL query).

PARAMETERS:
- ids: Work item IDs, 1 to 200 (required)
- fields: Field reference names, e.g. ["System.Title","System.State"] (cannot be combined with expand)
- expand: none, relations, fields, links or all
- as_of: RFC 3339 time to read historical values
- error_policy: fail (default) or omit

RETURNS: Work items with ID, revision, fields and relations. Fails with "not found" when none of the IDs exist.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "azdo_list_work_items",
		Method:   "ListWorkItems",
		Title:    "Query Work Items",
		Category: CategoryQuery,
		Area:     AreaWorkItems,
		Description: `Find work items with a WIQL query.

USE WHEN: User asks "my active bugs", "open tasks in the current sprint", "items changed this week".

NOT FOR: Known IDs (use azdo_get_work_items).

PARAMETERS:
- query: WIQL, e.g. SELECT [System.Id] FROM WorkItems WHERE [System.AssignedTo] = @Me AND [System.State] <> 'Closed' (required)
- top: Max results (default and max 200)
- fields: Field reference names to return

RETURNS: count and work_items. An empty match returns count 0.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// PROJECT, REPOSITORY AND PIPELINE TOOLS
	// ==========================================================================
	{
		Name:     "azdo_list_projects",
		Method:   "ListProjects",
		Title:    "List Projects",
		Category: CategoryBrowse,
		Area:     AreaProjects,
		Description: `List the projects in the organization.

USE WHEN: User asks "which projects exist", or a project name is needed for another tool.

PARAMETERS:
- state: wellFormed, createPending, deleting, new or all
- top: Max results

RETURNS: Project IDs, names, states and visibility.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "azdo_get_project",
		Method:   "GetProject",
		Title:    "Get Project",
		Category: CategoryRead,
		Area:     AreaProjects,
		Description: `Get details of one project.

USE WHEN: User asks about a project's default team, process template or visibility.

NOT FOR: Listing all projects (use azdo_list_projects).

PARAMETERS:
- project: Project name or ID (defaults to the configured project)
- include_capabilities: Include process and version control capabilities

RETURNS: Project details.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "azdo_list_repositories",
		Method:   "ListRepositories",
		Title:    "List Repositories",
		Category: CategoryBrowse,
		Area:     AreaRepos,
		Description: `List the Git repositories of a project.

USE WHEN: User asks "what repos are in this project", "what is the default branch of X".

PARAMETERS:
- project: Project name or ID (defaults to the configured project)
- include_hidden: Include hidden repositories

RETURNS: Repository IDs, names, default branches, sizes and clone URLs.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "azdo_list_build_definitions",
		Method:   "ListDefinitions",
		Title:    "List Build Pipelines",
		Category: CategoryBrowse,
		Area:     AreaPipelines,
		Description: `List the build pipeline definitions of a project.

USE WHEN: User asks "what pipelines do we have", "did the nightly build pass".

PARAMETERS:
- name: Name filter, * is a wildcard
- path: Folder filter
- top: Max results
- latest_builds: Include the latest build per definition

RETURNS: Definition IDs, names, folders, queue status and optionally the latest build result.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
