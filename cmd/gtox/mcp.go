package main

import (
	"fmt"

	"github.com/EricFan2002/GTOJsonExplorer/internal/cli"
	gtoxmcp "github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the explorer over the Model Context Protocol",
	Long: `Exposes goto, toggle, select, retry and snapshot as MCP tools over a
loaded game tree, so an agent can walk it. Use --transport sse to listen
on HTTP instead of stdio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		src, err := openSource(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer src.ex.Close()

		srv := gtoxmcp.NewServer(src.ex, gtoxmcp.WithLogger(app.logger))
		switch transport {
		case "stdio":
			return srv.ServeStdio()
		case "sse":
			return srv.ServeSSE(sigCtx, addr, "http://localhost"+addr)
		default:
			return fmt.Errorf("unknown transport %q", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addSourceFlags(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().String("addr", ":8080", "Listen address for the sse transport")
}
