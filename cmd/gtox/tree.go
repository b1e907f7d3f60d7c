package main

import (
	"fmt"

	"github.com/EricFan2002/GTOJsonExplorer/internal/cli"
	"github.com/EricFan2002/GTOJsonExplorer/internal/presentation/graph"
	"github.com/EricFan2002/GTOJsonExplorer/internal/presentation/text"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the game tree",
	Long: `Loads a game tree, optionally navigates to --goto, and prints the
expanded tree once the background loads settle.`,
	Example: `  gtox tree -f flop.json --goto "/childrens/BET 2/childrens/CALL/dealcards/As"
  gtox tree -f flop.json --format mermaid`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "mermaid" {
			return fmt.Errorf("unknown format %q", format)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		src, err := openSource(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer src.ex.Close()

		if path, _ := cmd.Flags().GetString("goto"); cmd.Flags().Changed("goto") {
			if err := src.ex.GotoPath(sigCtx, path); err != nil {
				return fmt.Errorf("goto %q: %w", path, err)
			}
		}
		src.ex.Wait()

		out := cmd.OutOrStdout()
		if format == "mermaid" {
			_, err := fmt.Fprintln(out, graph.GenerateMermaid(src.ex.Snapshot()))
			return err
		}
		return text.New(out).Print(src.ex.Lines())
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	addSourceFlags(treeCmd)
	treeCmd.Flags().String("goto", "", "Navigate to this node path before printing")
	treeCmd.Flags().String("format", "text", "Output format: text or mermaid")
}
