package main

import (
	"fmt"
	"os"

	"github.com/EricFan2002/GTOJsonExplorer/internal/cli"
	"github.com/EricFan2002/GTOJsonExplorer/internal/presentation/text"
	"github.com/EricFan2002/GTOJsonExplorer/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a game tree interactively",
	Long: `Opens a solver output (--file) or a server session (--session) in the
terminal browser. Nodes are fetched as you expand them; deep jumps recover
the whole path in the background.

When stdout is not a terminal the initial tree is printed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		src, err := openSource(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer src.ex.Close()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			if src.local == nil {
				return fmt.Errorf("--watch needs a local --file")
			}
			path, _ := cmd.Flags().GetString("file")
			changes, err := cli.WatchDataset(sigCtx, path, cli.DefaultWatchDebounce, app.logger)
			if err != nil {
				return err
			}
			go src.local.ReloadOnChange(sigCtx, changes, src.ex)
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			src.ex.Wait()
			return text.New(cmd.OutOrStdout()).Print(src.ex.Lines())
		}

		err = tui.Run(sigCtx, src.ex,
			tui.WithResizeDebounce(app.cfg.Explorer.ResizeDebounce),
		)
		return cli.IgnoreInterrupt(err)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addSourceFlags(browseCmd)
	browseCmd.Flags().BoolP("watch", "w", false, "Reload the tree when --file changes")
}
