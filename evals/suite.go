// Package evals measures how well a model picks Azure DevOps tools and fills
// their arguments from natural language requests.
//
// Suites are YAML files kept next to this package. A ToolSelector (an LLM
// harness, or a stub in tests) is scored against them.
package evals

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Suite file names inside an evals directory.
const (
	ToolSelectionFile = "tool_selection.yaml"
	ConfusionPairFile = "confusion_pairs.yaml"
	ArgumentFile      = "argument_correctness.yaml"
)

// ToolSelectionTest is a single request with the tool it should map to.
type ToolSelectionTest struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Input        string         `json:"input"`
	ExpectedTool string         `json:"expected_tool"`
	ExpectedArgs map[string]any `json:"expected_args,omitempty"`
	NotTools     []string       `json:"not_tools,omitempty"`
}

// ToolSelectionSuite contains all tool selection tests.
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// ConfusionPairTest is one request that must land on one side of a pair.
type ConfusionPairTest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// ConfusionPair groups tools that are easy to mix up.
type ConfusionPair struct {
	ID             string              `json:"id"`
	Tools          []string            `json:"tools"`
	Disambiguation string              `json:"disambiguation"`
	Tests          []ConfusionPairTest `json:"tests"`
}

// ConfusionPairSuite contains all confusion pairs.
type ConfusionPairSuite struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Pairs       []ConfusionPair `json:"pairs"`
}

// ArgumentTest checks the arguments extracted for a request.
type ArgumentTest struct {
	ID            string         `json:"id"`
	Tool          string         `json:"tool"`
	Input         string         `json:"input"`
	RequiredArgs  []string       `json:"required_args"`
	ExpectedArgs  map[string]any `json:"expected_args,omitempty"`
	ForbiddenArgs []string       `json:"forbidden_args,omitempty"`
	ArgNotes      string         `json:"arg_notes,omitempty"`
}

// ArgumentSuite contains all argument correctness tests.
type ArgumentSuite struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Tests       []ArgumentTest `json:"tests"`
}

// Suites bundles the three suites of an evals directory.
type Suites struct {
	ToolSelection  *ToolSelectionSuite
	ConfusionPairs *ConfusionPairSuite
	Arguments      *ArgumentSuite
}

func loadSuite[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	var suite T
	if err := yaml.UnmarshalStrict(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &suite, nil
}

// LoadToolSelectionSuite loads tool selection tests from a YAML file.
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	return loadSuite[ToolSelectionSuite](path)
}

// LoadConfusionPairSuite loads confusion pairs from a YAML file.
func LoadConfusionPairSuite(path string) (*ConfusionPairSuite, error) {
	return loadSuite[ConfusionPairSuite](path)
}

// LoadArgumentSuite loads argument tests from a YAML file.
func LoadArgumentSuite(path string) (*ArgumentSuite, error) {
	return loadSuite[ArgumentSuite](path)
}

// LoadAll loads every suite from dir.
func LoadAll(dir string) (*Suites, error) {
	ts, err := LoadToolSelectionSuite(filepath.Join(dir, ToolSelectionFile))
	if err != nil {
		return nil, fmt.Errorf("loading tool selection: %w", err)
	}
	cp, err := LoadConfusionPairSuite(filepath.Join(dir, ConfusionPairFile))
	if err != nil {
		return nil, fmt.Errorf("loading confusion pairs: %w", err)
	}
	args, err := LoadArgumentSuite(filepath.Join(dir, ArgumentFile))
	if err != nil {
		return nil, fmt.Errorf("loading arguments: %w", err)
	}
	return &Suites{ToolSelection: ts, ConfusionPairs: cp, Arguments: args}, nil
}

// TestCount is the number of individual cases across all suites.
func (s *Suites) TestCount() int {
	n := len(s.ToolSelection.Tests) + len(s.Arguments.Tests)
	for _, p := range s.ConfusionPairs.Pairs {
		n += len(p.Tests)
	}
	return n
}

// ReferencedTools returns every tool name the suites mention, with the
// number of cases that expect it.
func (s *Suites) ReferencedTools() map[string]int {
	refs := make(map[string]int)
	for _, t := range s.ToolSelection.Tests {
		refs[t.ExpectedTool]++
		for _, nt := range t.NotTools {
			refs[nt] += 0
		}
	}
	for _, p := range s.ConfusionPairs.Pairs {
		for _, tool := range p.Tools {
			refs[tool] += 0
		}
		for _, t := range p.Tests {
			refs[t.Expected]++
		}
	}
	for _, t := range s.Arguments.Tests {
		refs[t.Tool]++
	}
	return refs
}
