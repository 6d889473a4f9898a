package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/config"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/project"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the organization URL, token and default project",
		Long: `check performs the connection handshake and resolves the default project.

Exit codes:
  0  connection and project are fine
  1  configuration or project lookup failed
  2  authentication failed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			provider := devops.NewProvider(cfg, devops.WithLogger(logger))
			defer provider.Close()
			return runCheck(cmd.Context(), os.Stdout, cfg, provider)
		},
	}
}

// runCheck reports each step to out and returns the first failure.
func runCheck(ctx context.Context, out io.Writer, cfg *config.Config, provider *devops.Provider) error {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	_, _ = bold.Fprintf(out, "Checking %s\n", cfg.OrgURL)

	start := time.Now()
	session, err := provider.Connect(ctx)
	if err != nil {
		_, _ = red.Fprintf(out, "  ✗ handshake failed: %v\n", err)
		return err
	}
	_, _ = green.Fprintf(out, "  ✓ authenticated as %s (%s)\n",
		displayName(session.Identity.ProviderDisplayName), time.Since(start).Round(time.Millisecond))

	p, err := project.NewClient(provider, nil).GetProject(ctx, project.GetRequest{Project: cfg.Project})
	if err != nil {
		_, _ = red.Fprintf(out, "  ✗ project %q: %v\n", cfg.Project, err)
		return err
	}
	id := ""
	if p.Id != nil {
		id = p.Id.String()
	}
	_, _ = green.Fprintf(out, "  ✓ project %s (%s)\n", cfg.Project, id)
	_, _ = fmt.Fprintln(out, "Ready.")
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "unknown identity"
	}
	return name
}
