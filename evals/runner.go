package evals

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/olgasafonova/azure-devops-mcp-server/tools"
)

// ToolSelector picks a tool and its arguments for a natural language request.
type ToolSelector interface {
	SelectTool(ctx context.Context, input string) (toolName string, args map[string]any, err error)
}

// Result is the outcome of one evaluated case.
type Result struct {
	ID           string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// EvalMetrics aggregates a suite run.
type EvalMetrics struct {
	TotalTests  int
	PassedTests int
	FailedTests int
	Accuracy    float64
	ByGroup     map[string]*GroupMetrics // category, pair ID or tool, per suite
	ByTool      map[string]*ToolMetrics
	Failures    []string
}

// GroupMetrics counts cases in one group.
type GroupMetrics struct {
	Total  int
	Passed int
}

// ToolMetrics tracks selection accuracy per tool.
type ToolMetrics struct {
	Expected       int
	Correct        int
	FalsePositives int // selected when another tool was expected
	FalseNegatives int // expected but another tool was selected
}

func newMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByGroup: make(map[string]*GroupMetrics),
		ByTool:  make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	tm, ok := m.ByTool[name]
	if !ok {
		tm = &ToolMetrics{}
		m.ByTool[name] = tm
	}
	return tm
}

func (m *EvalMetrics) record(group string, r Result) {
	m.TotalTests++
	g, ok := m.ByGroup[group]
	if !ok {
		g = &GroupMetrics{}
		m.ByGroup[group] = g
	}
	g.Total++

	expected := m.tool(r.ExpectedTool)
	expected.Expected++
	switch {
	case r.ActualTool == r.ExpectedTool:
		expected.Correct++
	default:
		expected.FalseNegatives++
		if r.ActualTool != "" {
			m.tool(r.ActualTool).FalsePositives++
		}
	}

	if r.Passed {
		m.PassedTests++
		g.Passed++
		return
	}
	m.FailedTests++
	m.Failures = append(m.Failures, fmt.Sprintf("[%s] %s: %s", r.ID, r.Input, strings.Join(r.Errors, "; ")))
}

func (m *EvalMetrics) finish() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

// EvaluateToolSelection scores selector against a tool selection suite.
func EvaluateToolSelection(ctx context.Context, suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []Result) {
	metrics := newMetrics()
	results := make([]Result, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		tool, args, err := selector.SelectTool(ctx, test.Input)
		r := Result{ID: test.ID, Input: test.Input, ExpectedTool: test.ExpectedTool, ActualTool: tool, Passed: true}
		if err != nil {
			r.fail("selector error: %v", err)
		}
		if tool != test.ExpectedTool {
			r.fail("wrong tool: expected %s, got %s", test.ExpectedTool, tool)
		}
		for _, forbidden := range test.NotTools {
			if tool == forbidden {
				r.fail("selected forbidden tool %s", forbidden)
			}
		}
		r.checkArgs(test.ExpectedArgs, args)

		metrics.record(test.Category, r)
		results = append(results, r)
	}
	metrics.finish()
	return metrics, results
}

// EvaluateConfusionPairs scores selector on requests that sit between two tools.
func EvaluateConfusionPairs(ctx context.Context, suite *ConfusionPairSuite, selector ToolSelector) (*EvalMetrics, []Result) {
	metrics := newMetrics()
	var results []Result

	for _, pair := range suite.Pairs {
		for i, test := range pair.Tests {
			tool, _, err := selector.SelectTool(ctx, test.Input)
			r := Result{
				ID:           fmt.Sprintf("%s-%d", pair.ID, i+1),
				Input:        test.Input,
				ExpectedTool: test.Expected,
				ActualTool:   tool,
				Passed:       true,
			}
			if err != nil {
				r.fail("selector error: %v", err)
			}
			if tool != test.Expected {
				r.fail("expected %s, got %s (%s)", test.Expected, tool, test.Reason)
			}
			metrics.record(pair.ID, r)
			results = append(results, r)
		}
	}
	metrics.finish()
	return metrics, results
}

// EvaluateArguments scores the arguments selector extracts. A case fails
// outright when the wrong tool is picked.
func EvaluateArguments(ctx context.Context, suite *ArgumentSuite, selector ToolSelector) (*EvalMetrics, []Result) {
	metrics := newMetrics()
	results := make([]Result, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		tool, args, err := selector.SelectTool(ctx, test.Input)
		r := Result{ID: test.ID, Input: test.Input, ExpectedTool: test.Tool, ActualTool: tool, Passed: true}
		switch {
		case err != nil:
			r.fail("selector error: %v", err)
		case tool != test.Tool:
			r.fail("wrong tool: expected %s, got %s", test.Tool, tool)
		default:
			for _, name := range test.RequiredArgs {
				if _, ok := args[name]; !ok {
					r.fail("missing required arg %s", name)
				}
			}
			r.checkArgs(test.ExpectedArgs, args)
			for _, name := range test.ForbiddenArgs {
				if _, ok := args[name]; ok {
					r.fail("forbidden arg %s was set", name)
				}
			}
		}
		metrics.record(test.Tool, r)
		results = append(results, r)
	}
	metrics.finish()
	return metrics, results
}

func (r *Result) fail(format string, a ...any) {
	r.Passed = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, a...))
}

func (r *Result) checkArgs(expected, actual map[string]any) {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		want := expected[key]
		got, ok := actual[key]
		if !ok {
			r.fail("missing arg %s (expected %v)", key, want)
			continue
		}
		if !compareValues(want, got) {
			r.fail("wrong arg %s: expected %v, got %v", key, want, got)
		}
	}
}

// compareValues treats all numbers as float64 and compares slices element-wise.
func compareValues(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	if ef, ok := toFloat(expected); ok {
		af, ok := toFloat(actual)
		return ok && ef == af
	}

	ev, av := reflect.ValueOf(expected), reflect.ValueOf(actual)
	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(expected, actual)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Coverage compares the tools the suites reference with the registered tools.
type Coverage struct {
	Untested []string // registered tools no case expects
	Unknown  []string // referenced names that are not registered
}

// Complete reports whether every tool is tested and every reference is valid.
func (c Coverage) Complete() bool {
	return len(c.Untested) == 0 && len(c.Unknown) == 0
}

// CheckCoverage compares suites against specs.
func CheckCoverage(s *Suites, specs []tools.ToolSpec) Coverage {
	refs := s.ReferencedTools()
	registered := make(map[string]bool, len(specs))

	var cov Coverage
	for _, spec := range specs {
		registered[spec.Name] = true
		if refs[spec.Name] == 0 {
			cov.Untested = append(cov.Untested, spec.Name)
		}
	}
	for name := range refs {
		if !registered[name] {
			cov.Unknown = append(cov.Unknown, name)
		}
	}
	sort.Strings(cov.Untested)
	sort.Strings(cov.Unknown)
	return cov
}

// FormatMetrics renders a summary of a suite run.
func FormatMetrics(m *EvalMetrics, suiteName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", m.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", m.PassedTests, m.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", m.FailedTests)

	if len(m.ByGroup) > 0 {
		groups := make([]string, 0, len(m.ByGroup))
		for g := range m.ByGroup {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		b.WriteString("\nBy Group:\n")
		for _, g := range groups {
			gm := m.ByGroup[g]
			fmt.Fprintf(&b, "  %-30s: %d/%d (%.0f%%)\n", g, gm.Passed, gm.Total, float64(gm.Passed)/float64(gm.Total)*100)
		}
	}

	const maxShown = 10
	if n := len(m.Failures); n > 0 {
		shown := m.Failures
		if n > maxShown {
			fmt.Fprintf(&b, "\nFailed Tests (showing first %d of %d):\n", maxShown, n)
			shown = shown[:maxShown]
		} else {
			b.WriteString("\nFailed Tests:\n")
		}
		for _, f := range shown {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	return b.String()
}
