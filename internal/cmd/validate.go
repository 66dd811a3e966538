package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/motionchart/internal/primitives"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph.yaml>...",
	Short: "Validate motion graph files",
	Long: `Load each graph file, check its structure and build it.

Reports the graph ID, node and action counts and the config version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		cfg, err := primitives.Load(path)
		if err == nil {
			_, err = cfg.Build()
		}
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (graph %s, %d nodes, %d actions, version %s)\n",
			path, cfg.ID, len(cfg.Nodes), len(cfg.Actions), primitives.ComputeVersion(cfg))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d graph files invalid", failed, len(args))
	}
	return nil
}
