// Azure DevOps MCP Server - A Model Context Protocol server for Azure DevOps
// Provides tools for wikis, work items, projects, repositories and pipelines
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/config"
	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

const (
	ServerName    = "azure-devops-mcp-server"
	ServerVersion = "1.0.0"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeAuthFailed = 2
)

// Global flags
var (
	configPath  string
	httpAddr    string
	metricsAddr string
	debugLog    bool
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return getExitCode(err)
	}
	return ExitCodeSuccess
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   ServerName,
		Short: "MCP server for Azure DevOps wikis, work items, projects, repositories and pipelines",
		Long: `azure-devops-mcp-server exposes Azure DevOps to MCP clients.

Configure it with AZURE_DEVOPS_ORG_URL, AZURE_DEVOPS_PAT and AZURE_DEVOPS_PROJECT,
or a YAML/JSON file passed with --config. Environment variables win over the file.`,
		Version:      ServerVersion,
		SilenceUsage: true,
		// serve is the default so MCP clients can launch the bare binary
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.SetVersionTemplate(`{{printf "azure-devops-mcp-server version %s\n" .Version}}`)

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML or JSON)")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(), newCheckCmd(), newToolsCmd())
	return root
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if debugLog {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLogger returns a text logger on stderr (stdout is used for MCP protocol).
func buildLogger(level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// getExitCode maps an error to a process exit code.
func getExitCode(err error) int {
	var authErr *apperrors.AuthenticationError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}
	return ExitCodeError
}

// recoverPanic logs a panic and turns it into an error instead of crashing
func recoverPanic(logger *slog.Logger, operation string, errp *error) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s: panic: %v", operation, r)
		}
	}
}
