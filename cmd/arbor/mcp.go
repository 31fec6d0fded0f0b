package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [FILE]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the editor as an MCP Server so that AI agents can inspect and edit
behavior trees through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()
		logger := session.Logger

		if len(args) == 1 {
			if err := session.Editor.LoadFile(args[0]); err != nil {
				return err
			}
		}
		srv := mcp.NewServer(session.Editor)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting arbor MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			logger.Info("Starting arbor MCP server (SSE)", "port", port)
			httpSrv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           srv.SSEHandler(fmt.Sprintf("http://localhost:%d", port)),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, httpSrv, logger)
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
