package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/geocat/internal/adapters/driving/mcp"
)

var (
	serveAddr string
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over HTTP",
	Long: `Starts the HTTP query API:

  GET /api/search?q=&limit=&offset=
  GET /api/id/{uuid}
  GET /health

With --mcp the MCP endpoint is also mounted at /mcp.

The server follows newly published catalogs without restarting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve MCP (streamable HTTP) at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	addr := serveAddr
	if addr == "" {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		addr = cfg.Server.Addr
	}

	server, err := httpapi.NewServer(queryService)
	if err != nil {
		return err
	}
	if serveMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{Query: queryService})
		if err != nil {
			return err
		}
		server.Mount("/mcp", mcpServer.Handler())
	}

	cmd.Printf("Serving catalog on http://%s\n", addr)
	if err := server.Run(cmd.Context(), addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
