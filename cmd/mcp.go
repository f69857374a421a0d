package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/zjrosen/texdup/internal/config"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve duplicate checks over the Model Context Protocol (stdio)",
	Long: `Run an MCP server on stdin/stdout so editors and agents can check
documents incrementally. Tools: analyze_document, clear_cache, add_exclusion.

Logs go to stderr when --debug or TEXDUP_DEBUG is set.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	// stdout carries the protocol
	if os.Getenv("TEXDUP_DEBUG") != "" || debugFlag {
		log.InitWriter(os.Stderr)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	provider, shutdown, err := newTracing()
	if err != nil {
		return err
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, project := tierPaths()
	server := mcpserver.New(mcpserver.Options{
		Config:      cfg,
		GlobalPath:  global,
		ProjectPath: project,
		Tracer:      provider.Tracer(),
		Flags:       newFlags(),
		Version:     version,
	})
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.ErrorErr(log.CatMCP, "server stopped", err)
		return fmt.Errorf("serving mcp: %w", err)
	}
	return nil
}
