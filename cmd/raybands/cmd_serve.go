package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"raybands/internal/logging"
	"raybands/internal/mcpserve"
)

var serveFlags struct {
	dbPath string
	mock   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the run_bands, get_report
and list_runs tools, so agent hosts can drive band extraction directly.

The server monitors for parent process death and self-terminates when the
host disconnects, preventing zombie processes.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.dbPath, "db", defaultDBPath(), "Run-history DB path")
	f.BoolVar(&serveFlags.mock, "mock", false, "Use the in-memory mock session")
}

func runServe(cmd *cobra.Command, _ []string) error {
	connect, grabber, err := sessionWiring(serveFlags.mock)
	if err != nil {
		return err
	}

	log := logging.New("mcp")
	srv := mcpserve.NewServer(mcpserve.Options{
		Connect: connect,
		Grabber: grabber,
		DBPath:  serveFlags.dbPath,
		Logger:  log,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserve.WatchParent(ctx, log, cancel)

	log.Info("starting raybands MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
