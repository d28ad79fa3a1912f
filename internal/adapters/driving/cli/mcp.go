package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog to MCP clients",
	Long: `Exposes the catalog to MCP clients through two tools, search_catalog and
get_record, and the geocat://catalog and geocat://records/{uuid} resources.

The server speaks JSON-RPC over stdio unless --addr is given, in which case
it listens for streamable HTTP instead. "geocat serve --mcp" mounts the same
endpoint under /mcp next to the query API.

Client configuration:
  {
    "mcpServers": {
      "geocat": {
        "command": "/path/to/geocat",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "listen for streamable HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{Query: queryService})
	if err != nil {
		return err
	}

	if mcpAddr != "" {
		cmd.Printf("MCP server listening on http://%s\n", mcpAddr)
		return server.RunHTTP(cmd.Context(), mcpAddr)
	}
	return server.Run(cmd.Context())
}
