package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/pipeline"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/project"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/repository"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/wiki"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/workitem"
	"github.com/olgasafonova/azure-devops-mcp-server/metrics"
	"github.com/olgasafonova/azure-devops-mcp-server/tracing"
)

// Clients bundles the domain clients the tools dispatch to.
type Clients struct {
	Wiki      *wiki.Client
	WorkItems *workitem.Client
	Projects  *project.Client
	Repos     *repository.Client
	Pipelines *pipeline.Client
}

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	clients Clients
	logger  *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(clients Clients, logger *slog.Logger) *HandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerRegistry{clients: clients, logger: logger}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)
	c := h.clients

	switch spec.Method {
	// Wiki tools
	case "ListWikis":
		return h.register(server, tool, spec, c.Wiki.ListWikisMCP)
	case "GetPageContent":
		return h.register(server, tool, spec, c.Wiki.GetPageContentMCP)
	case "GetPage":
		return h.register(server, tool, spec, c.Wiki.GetPageMCP)
	case "CreateWiki":
		return h.register(server, tool, spec, c.Wiki.CreateWikiMCP)
	case "UpdatePage":
		return h.register(server, tool, spec, c.Wiki.UpdatePageMCP)

	// Work item tools
	case "GetWorkItems":
		return h.register(server, tool, spec, c.WorkItems.GetWorkItemsMCP)
	case "ListWorkItems":
		return h.register(server, tool, spec, c.WorkItems.ListWorkItemsMCP)

	// Project, repository and pipeline tools
	case "ListProjects":
		return h.register(server, tool, spec, c.Projects.ListProjectsMCP)
	case "GetProject":
		return h.register(server, tool, spec, c.Projects.GetProjectMCP)
	case "ListRepositories":
		return h.register(server, tool, spec, c.Repos.ListRepositoriesMCP)
	case "ListDefinitions":
		return h.register(server, tool, spec, c.Pipelines.ListDefinitionsMCP)

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	} else if !spec.ReadOnly {
		annotations.DestructiveHint = ptr(false)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the domain method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, out Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Area)
		span.SetAttributes(
			attribute.String("mcp.tool.category", spec.Category),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Warn("Tool failed", "tool", spec.Name, "area", spec.Area, "error", err)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic turns a panic in a tool handler into an error result.
func (h *HandlerRegistry) recoverPanic(toolName string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s failed: internal error", toolName)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "area", spec.Area}

	switch a := args.(type) {
	// Wiki args
	case wiki.ListWikisArgs:
		attrs = append(attrs, "project", a.Project)
	case wiki.GetPageContentArgs:
		attrs = append(attrs, "wiki", a.WikiIdentifier, "path", a.Path)
	case wiki.GetPageArgs:
		attrs = append(attrs, "wiki", a.WikiIdentifier, "path", a.Path)
	case wiki.CreateWikiArgs:
		attrs = append(attrs, "name", a.Name, "project", a.Project)
	case wiki.UpdatePageArgs:
		attrs = append(attrs, "wiki", a.WikiIdentifier, "path", a.Path, "content_bytes", len(a.Content))
	// Work item args
	case workitem.GetWorkItemsArgs:
		attrs = append(attrs, "ids", len(a.IDs))
	case workitem.ListWorkItemsArgs:
		attrs = append(attrs, "top", a.Top)
	// Project, repository and pipeline args
	case project.ListProjectsArgs:
		attrs = append(attrs, "state", a.State)
	case project.GetProjectArgs:
		attrs = append(attrs, "project", a.Project)
	case repository.ListRepositoriesArgs:
		attrs = append(attrs, "project", a.Project)
	case pipeline.ListDefinitionsArgs:
		attrs = append(attrs, "project", a.Project, "name", a.Name)
	}

	switch r := result.(type) {
	case wiki.ListWikisResult:
		attrs = append(attrs, "wikis", r.Count)
	case wiki.GetPageContentResult:
		attrs = append(attrs, "content_bytes", len(r.Content))
	case wiki.GetPageResult:
		attrs = append(attrs, "sub_pages", len(r.Page.SubPages))
	case wiki.UpdatePageResult:
		attrs = append(attrs, "created", r.Created)
	case workitem.GetWorkItemsResult:
		attrs = append(attrs, "work_items", r.Count)
	case workitem.ListWorkItemsResult:
		attrs = append(attrs, "work_items", r.Count)
	case project.ListProjectsResult:
		attrs = append(attrs, "projects", r.Count)
	case repository.ListRepositoriesResult:
		attrs = append(attrs, "repositories", r.Count)
	case pipeline.ListDefinitionsResult:
		attrs = append(attrs, "definitions", r.Count)
	}

	h.logger.Info("Tool executed", attrs...)
}

// register binds a method value to the generic register by its concrete signature.
func (h *HandlerRegistry) register(server *mcp.Server, tool *mcp.Tool, spec ToolSpec, method any) bool {
	switch m := method.(type) {
	// Wiki tools
	case func(context.Context, wiki.ListWikisArgs) (wiki.ListWikisResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetPageContentArgs) (wiki.GetPageContentResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetPageArgs) (wiki.GetPageResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.CreateWikiArgs) (wiki.CreateWikiResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.UpdatePageArgs) (wiki.UpdatePageResult, error):
		register(h, server, tool, spec, m)

	// Work item tools
	case func(context.Context, workitem.GetWorkItemsArgs) (workitem.GetWorkItemsResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, workitem.ListWorkItemsArgs) (workitem.ListWorkItemsResult, error):
		register(h, server, tool, spec, m)

	// Project, repository and pipeline tools
	case func(context.Context, project.ListProjectsArgs) (project.ListProjectsResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, project.GetProjectArgs) (project.GetProjectResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, repository.ListRepositoriesArgs) (repository.ListRepositoriesResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, pipeline.ListDefinitionsArgs) (pipeline.ListDefinitionsResult, error):
		register(h, server, tool, spec, m)

	default:
		h.logger.Error("Unknown method type, tool not registered", "tool", spec.Name)
		return false
	}
	return true
}
