// Command evals inspects the tool selection eval suites.
//
// Usage:
//
//	go run ./cmd/evals -dir ./evals -suite all
//
// It reports what the suites cover and fails when a registered tool has no
// cases. Scoring a model needs an evals.ToolSelector from your LLM harness.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/olgasafonova/azure-devops-mcp-server/evals"
	"github.com/olgasafonova/azure-devops-mcp-server/tools"
)

func main() {
	dir := flag.String("dir", "./evals", "Directory containing the eval YAML files")
	suite := flag.String("suite", "all", "Suite to show: tool_selection, confusion_pairs, arguments, or all")
	verbose := flag.Bool("verbose", false, "Show individual cases")
	flag.Parse()

	if err := run(os.Stdout, *dir, *suite, *verbose); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, dir, suite string, verbose bool) error {
	suites, err := evals.LoadAll(dir)
	if err != nil {
		return err
	}
	_, _ = color.New(color.Bold).Fprintf(out, "Azure DevOps MCP Server evals (%s)\n\n", dir)

	switch suite {
	case "tool_selection":
		showToolSelection(out, suites.ToolSelection, verbose)
	case "confusion_pairs":
		showConfusionPairs(out, suites.ConfusionPairs, verbose)
	case "arguments":
		showArguments(out, suites.Arguments, verbose)
	case "all":
		showToolSelection(out, suites.ToolSelection, verbose)
		showConfusionPairs(out, suites.ConfusionPairs, verbose)
		showArguments(out, suites.Arguments, verbose)
	default:
		return fmt.Errorf("unknown suite %q", suite)
	}
	return showCoverage(out, suites)
}

func showToolSelection(out io.Writer, s *evals.ToolSelectionSuite, verbose bool) {
	fmt.Fprintf(out, "%s v%s: %d tests\n", s.Name, s.Version, len(s.Tests))
	if !verbose {
		return
	}
	for _, t := range s.Tests {
		fmt.Fprintf(out, "  [%s] %s\n    → %s\n", t.ID, t.Input, t.ExpectedTool)
		if len(t.NotTools) > 0 {
			fmt.Fprintf(out, "    ✗ %v\n", t.NotTools)
		}
	}
}

func showConfusionPairs(out io.Writer, s *evals.ConfusionPairSuite, verbose bool) {
	total := 0
	for _, p := range s.Pairs {
		total += len(p.Tests)
	}
	fmt.Fprintf(out, "%s v%s: %d tests across %d pairs\n", s.Name, s.Version, total, len(s.Pairs))
	if !verbose {
		return
	}
	for _, p := range s.Pairs {
		fmt.Fprintf(out, "  %s %v\n    rule: %s\n", p.ID, p.Tools, p.Disambiguation)
		for _, t := range p.Tests {
			fmt.Fprintf(out, "    %q → %s (%s)\n", t.Input, t.Expected, t.Reason)
		}
	}
}

func showArguments(out io.Writer, s *evals.ArgumentSuite, verbose bool) {
	fmt.Fprintf(out, "%s v%s: %d tests\n", s.Name, s.Version, len(s.Tests))
	if !verbose {
		return
	}
	for _, t := range s.Tests {
		fmt.Fprintf(out, "  [%s] %s\n    tool: %s required: %v expected: %v\n", t.ID, t.Input, t.Tool, t.RequiredArgs, t.ExpectedArgs)
		if len(t.ForbiddenArgs) > 0 {
			fmt.Fprintf(out, "    forbidden: %v\n", t.ForbiddenArgs)
		}
		if t.ArgNotes != "" {
			fmt.Fprintf(out, "    notes: %s\n", t.ArgNotes)
		}
	}
}

// showCoverage prints cases per registered tool and fails on gaps.
func showCoverage(out io.Writer, s *evals.Suites) error {
	refs := s.ReferencedTools()

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"TOOL", "AREA", "CASES"})
	specs := append([]tools.ToolSpec(nil), tools.AllTools...)
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	for _, spec := range specs {
		tw.AppendRow(table.Row{spec.Name, spec.Area, refs[spec.Name]})
	}
	tw.AppendFooter(table.Row{"TOTAL", "", s.TestCount()})
	fmt.Fprintln(out)
	tw.Render()

	cov := evals.CheckCoverage(s, tools.AllTools)
	if cov.Complete() {
		_, _ = color.New(color.FgGreen).Fprintf(out, "✓ all %d tools covered\n", len(tools.AllTools))
		return nil
	}
	if len(cov.Untested) > 0 {
		_, _ = color.New(color.FgYellow).Fprintf(out, "untested tools: %v\n", cov.Untested)
	}
	if len(cov.Unknown) > 0 {
		_, _ = color.New(color.FgYellow).Fprintf(out, "unknown tools referenced: %v\n", cov.Unknown)
	}
	return fmt.Errorf("eval coverage incomplete")
}
