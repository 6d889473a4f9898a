package main

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/olgasafonova/azure-devops-mcp-server/tools"
)

func newToolsCmd() *cobra.Command {
	var area string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools this server registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := tools.AllTools
			if area != "" {
				specs = tools.ToolsByArea(area)
			}
			renderTools(os.Stdout, specs)
			return nil
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "only list tools for one area (wiki, work_items, projects, repositories, pipelines)")
	return cmd
}

func renderTools(out io.Writer, specs []tools.ToolSpec) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TOOL"),
		text.FgHiCyan.Sprint("AREA"),
		text.FgHiCyan.Sprint("ACCESS"),
		text.FgHiCyan.Sprint("SUMMARY"),
	})
	for _, s := range specs {
		t.AppendRow(table.Row{s.Name, s.Area, access(s), summary(s.Description)})
	}
	t.AppendFooter(table.Row{"", "", "", len(specs)})
	t.Render()
}

func access(s tools.ToolSpec) string {
	switch {
	case s.ReadOnly:
		return "read"
	case s.Destructive:
		return "write (overwrites)"
	default:
		return "write"
	}
}

// summary is the first line of a tool description.
func summary(desc string) string {
	line, _, _ := strings.Cut(desc, "\n")
	return line
}
