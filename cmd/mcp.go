package cmd

import (
	"github.com/huangsam/gitsummary/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the gitsummary MCP server",
	Long:  `Launch an MCP server that lets AI agents build branch reports via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	// Logs go to stderr, so stdio stays free for the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, gitClient, cacheManager)
	},
}
