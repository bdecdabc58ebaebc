package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirillkom/green-loan-compliance/internal/adapters/mcpserver"
)

func (rt *runtime) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve loan search and assessment tools over MCP stdio",
		Long: `Runs an MCP server on stdin/stdout. Logs go to stderr so the protocol
stream stays clean.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				server, err := mcpserver.NewServer(&mcpserver.Ports{
					Index:      b.Index,
					Extraction: b.Extraction,
					Assessment: b.Assessment,
				})
				if err != nil {
					return err
				}
				slog.Info("mcp_serving", "transport", "stdio", "version", mcpserver.Version)
				return server.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}
