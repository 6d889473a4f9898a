package tools

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	azwiki "github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/pipeline"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/project"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/repository"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/wiki"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/workitem"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubOrg implements every domain Connector with small canned SDK fakes.
type stubOrg struct {
	wiki  *stubWiki
	wit   *stubWIT
	panic bool
}

func (s *stubOrg) WikiClient(context.Context) (azwiki.Client, error) {
	if s.panic {
		panic("boom")
	}
	return s.wiki, nil
}
func (s *stubOrg) WorkItemTrackingClient(context.Context) (workitemtracking.Client, error) {
	return s.wit, nil
}
func (s *stubOrg) CoreClient(context.Context) (core.Client, error)   { return stubCore{}, nil }
func (s *stubOrg) GitClient(context.Context) (git.Client, error)     { return stubGit{}, nil }
func (s *stubOrg) BuildClient(context.Context) (build.Client, error) { return stubBuild{}, nil }
func (s *stubOrg) ProjectID(context.Context, string) (uuid.UUID, error) {
	return uuid.MustParse("11111111-2222-3333-4444-555555555555"), nil
}
func (s *stubOrg) DefaultProject() string { return "Fabrikam" }
func (s *stubOrg) Invalidate()            {}

type stubWiki struct {
	azwiki.Client
}

func (stubWiki) GetAllWikis(context.Context, azwiki.GetAllWikisArgs) (*[]azwiki.WikiV2, error) {
	id, name := uuid.New(), "Fabrikam.wiki"
	return &[]azwiki.WikiV2{{Id: &id, Name: &name}}, nil
}

func (stubWiki) GetPage(_ context.Context, args azwiki.GetPageArgs) (*azwiki.WikiPageResponse, error) {
	status, msg := 404, "Wiki not found"
	return nil, azuredevops.WrappedError{StatusCode: &status, Message: &msg}
}

type stubWIT struct {
	workitemtracking.Client
	getCalls int
}

func (s *stubWIT) QueryByWiql(context.Context, workitemtracking.QueryByWiqlArgs) (*workitemtracking.WorkItemQueryResult, error) {
	return &workitemtracking.WorkItemQueryResult{}, nil
}

func (s *stubWIT) GetWorkItems(context.Context, workitemtracking.GetWorkItemsArgs) (*[]workitemtracking.WorkItem, error) {
	s.getCalls++
	return &[]workitemtracking.WorkItem{}, nil
}

type stubCore struct{ core.Client }
type stubGit struct{ git.Client }
type stubBuild struct{ build.Client }

func newTestRegistry(org *stubOrg) *HandlerRegistry {
	logger := quietLogger()
	return NewHandlerRegistry(Clients{
		Wiki:      wiki.NewClient(org, logger),
		WorkItems: workitem.NewClient(org, logger),
		Projects:  project.NewClient(org, logger),
		Repos:     repository.NewClient(org, logger),
		Pipelines: pipeline.NewClient(org, logger),
	}, logger)
}

// connect registers every tool on a fresh server and returns a client session to it.
func connect(t *testing.T, h *HandlerRegistry) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "azure-devops-mcp-server", Version: "test"}, nil)
	h.RegisterAll(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func resultText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestNewHandlerRegistry(t *testing.T) {
	logger := quietLogger()
	registry := NewHandlerRegistry(Clients{}, logger)

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.logger != logger {
		t.Error("Registry should hold the logger reference")
	}
	if NewHandlerRegistry(Clients{}, nil).logger == nil {
		t.Error("nil logger should fall back to the default")
	}
}

func TestRegisterAll_ListsEveryTool(t *testing.T) {
	cs := connect(t, newTestRegistry(&stubOrg{wiki: &stubWiki{}, wit: &stubWIT{}}))

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	got := map[string]*mcp.Tool{}
	for _, tool := range res.Tools {
		got[tool.Name] = tool
	}
	for _, spec := range AllTools {
		tool, ok := got[spec.Name]
		if !ok {
			t.Errorf("tool %s not registered", spec.Name)
			continue
		}
		if tool.InputSchema == nil {
			t.Errorf("tool %s has no input schema", spec.Name)
		}
	}
	if len(res.Tools) != len(AllTools) {
		t.Errorf("registered %d tools, want %d", len(res.Tools), len(AllTools))
	}
}

func TestCallTool_Success(t *testing.T) {
	cs := connect(t, newTestRegistry(&stubOrg{wiki: &stubWiki{}, wit: &stubWIT{}}))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "azdo_list_wikis", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "Fabrikam.wiki") {
		t.Errorf("result %q should contain the wiki name", resultText(res))
	}
}

func TestCallTool_EmptyQueryResult(t *testing.T) {
	wit := &stubWIT{}
	cs := connect(t, newTestRegistry(&stubOrg{wiki: &stubWiki{}, wit: wit}))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "azdo_list_work_items",
		Arguments: map[string]any{"query": "SELECT [System.Id] FROM WorkItems"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), `"count":0`) {
		t.Errorf("result %q should report count 0", resultText(res))
	}
	if wit.getCalls != 0 {
		t.Errorf("GetWorkItems called %d times, want 0", wit.getCalls)
	}
}

func TestCallTool_DomainErrorIsToolError(t *testing.T) {
	cs := connect(t, newTestRegistry(&stubOrg{wiki: &stubWiki{}, wit: &stubWIT{}}))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "azdo_get_wiki_page",
		Arguments: map[string]any{"wiki_identifier": "Missing", "path": "/Home"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected a tool error")
	}
	text := resultText(res)
	if !strings.Contains(text, "azdo_get_wiki_page failed") || !strings.Contains(text, "wiki not found") {
		t.Errorf("error text %q should name the tool and the missing wiki", text)
	}
}

func TestCallTool_ValidationError(t *testing.T) {
	cs := connect(t, newTestRegistry(&stubOrg{wiki: &stubWiki{}, wit: &stubWIT{}}))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "azdo_get_work_items",
		Arguments: map[string]any{"ids": []int{}},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(res), "validation failed for ids") {
		t.Errorf("expected an ids validation error, got %q", resultText(res))
	}
}

func TestCallTool_PanicIsRecovered(t *testing.T) {
	cs := connect(t, newTestRegistry(&stubOrg{wiki: &stubWiki{}, wit: &stubWIT{}, panic: true}))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "azdo_list_wikis", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(res), "internal error") {
		t.Errorf("expected an internal error result, got %q", resultText(res))
	}
}

func TestBuildTool(t *testing.T) {
	registry := NewHandlerRegistry(Clients{}, quietLogger())

	tests := []struct {
		name      string
		spec      ToolSpec
		wantRO    bool
		wantIdem  bool
		wantDestr *bool
		wantOpen  bool
	}{
		{
			name:     "read-only tool",
			spec:     ToolSpec{Name: "azdo_list_wikis", Title: "List Wikis", Description: "List wikis", ReadOnly: true, Idempotent: true},
			wantRO:   true,
			wantIdem: true,
		},
		{
			name:      "destructive write",
			spec:      ToolSpec{Name: "azdo_update_wiki_page", Description: "Write a page", Destructive: true, OpenWorld: true},
			wantDestr: ptr(true),
			wantOpen:  true,
		},
		{
			name:      "additive write",
			spec:      ToolSpec{Name: "azdo_create_wiki", Description: "Create a wiki"},
			wantDestr: ptr(false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.spec.Name || tool.Description != tt.spec.Description {
				t.Errorf("tool = %q/%q, want %q/%q", tool.Name, tool.Description, tt.spec.Name, tt.spec.Description)
			}
			a := tool.Annotations
			if a == nil {
				t.Fatal("Expected annotations")
			}
			if a.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", a.ReadOnlyHint, tt.wantRO)
			}
			if a.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", a.IdempotentHint, tt.wantIdem)
			}
			switch {
			case tt.wantDestr == nil && a.DestructiveHint != nil:
				t.Errorf("DestructiveHint = %v, want unset", *a.DestructiveHint)
			case tt.wantDestr != nil && (a.DestructiveHint == nil || *a.DestructiveHint != *tt.wantDestr):
				t.Errorf("DestructiveHint = %v, want %v", a.DestructiveHint, *tt.wantDestr)
			}
			if tt.wantOpen && (a.OpenWorldHint == nil || !*a.OpenWorldHint) {
				t.Error("Expected OpenWorldHint to be true")
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	registry := NewHandlerRegistry(Clients{}, quietLogger())

	var err error
	func() {
		defer registry.recoverPanic("test_tool", &err)
		panic("test panic")
	}()

	if err == nil || !strings.Contains(err.Error(), "test_tool failed") {
		t.Errorf("err = %v, want a test_tool failure", err)
	}
}

func TestLogExecution(t *testing.T) {
	registry := NewHandlerRegistry(Clients{}, quietLogger())
	spec := ToolSpec{Name: "test_tool", Area: AreaWiki}

	registry.logExecution(spec, wiki.GetPageArgs{WikiIdentifier: "Docs", Path: "/Home"}, wiki.GetPageResult{})
	registry.logExecution(spec, workitem.GetWorkItemsArgs{IDs: []int{1, 2}}, workitem.GetWorkItemsResult{Count: 2})
	registry.logExecution(spec, pipeline.ListDefinitionsArgs{Name: "CI"}, pipeline.ListDefinitionsResult{})
	registry.logExecution(spec, struct{}{}, nil)
}

func TestAllToolsWellFormed(t *testing.T) {
	if len(AllTools) == 0 {
		t.Fatal("AllTools should not be empty")
	}

	seen := map[string]bool{}
	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if !strings.HasPrefix(spec.Name, "azdo_") {
			t.Errorf("Tool %s should be prefixed azdo_", spec.Name)
		}
		if seen[spec.Name] {
			t.Errorf("Tool %s is defined twice", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Method == "" || spec.Description == "" || spec.Area == "" || spec.Category == "" {
			t.Errorf("Tool %s is missing Method, Description, Area or Category", spec.Name)
		}
		if spec.ReadOnly && spec.Destructive {
			t.Errorf("Tool %s cannot be both read-only and destructive", spec.Name)
		}
	}
}

func TestToolsByArea(t *testing.T) {
	for _, area := range []string{AreaWiki, AreaWorkItems, AreaProjects, AreaRepos, AreaPipelines} {
		specs := ToolsByArea(area)
		if len(specs) == 0 {
			t.Errorf("Expected tools for area %s", area)
		}
		for _, s := range specs {
			if s.Area != area {
				t.Errorf("Tool %s has area %s, expected %s", s.Name, s.Area, area)
			}
		}
	}
	if got := len(ToolsByArea("unknown")); got != 0 {
		t.Errorf("Expected 0 tools for unknown area, got %d", got)
	}
	if got := len(ToolsByArea(AreaWiki)); got != 5 {
		t.Errorf("wiki tools = %d, want 5", got)
	}
}

func TestToolsByCategoryAndFind(t *testing.T) {
	for _, s := range ToolsByCategory(CategoryWrite) {
		if s.ReadOnly {
			t.Errorf("write tool %s is marked read-only", s.Name)
		}
	}
	if _, ok := FindTool("azdo_get_work_items"); !ok {
		t.Error("FindTool should find azdo_get_work_items")
	}
	if _, ok := FindTool("azdo_delete_wiki"); ok {
		t.Error("FindTool should not find unknown tools")
	}
}
