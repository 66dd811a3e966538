package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/primitives"
	"github.com/comalice/motionchart/internal/production"
)

var dotCmd = &cobra.Command{
	Use:   "dot <graph.yaml>",
	Short: "Render a motion graph as Graphviz DOT",
	Long: `Render a motion graph as Graphviz DOT, clustered by action.

Examples:
  # Render to an image
  motionchart dot configs/locomotion.yaml | dot -Tsvg > graph.svg

  # Highlight a node
  motionchart dot configs/locomotion.yaml --highlight walk:standard

  # Dump the normalized graph as JSON
  motionchart dot configs/locomotion.yaml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDot,
}

var (
	dotHighlight string
	dotJSON      bool
	dotOutput    string
)

func init() {
	rootCmd.AddCommand(dotCmd)

	dotCmd.Flags().StringVar(&dotHighlight, "highlight", "", "Node to highlight (action:primitive)")
	dotCmd.Flags().BoolVar(&dotJSON, "json", false, "Emit JSON instead of DOT")
	dotCmd.Flags().StringVarP(&dotOutput, "output", "o", "", "Write to file instead of stdout")
}

func runDot(cmd *cobra.Command, args []string) error {
	cfg, err := primitives.Load(args[0])
	if err != nil {
		return err
	}

	var current motionchart.NodeID
	if dotHighlight != "" {
		if _, err := cfg.FindNode(dotHighlight); err != nil {
			return err
		}
		current, _ = motionchart.ParseNodeID(dotHighlight)
	}

	v := &production.DefaultVisualizer{}
	var out []byte
	if dotJSON {
		if out, err = v.ExportJSON(cfg); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
	} else {
		out = []byte(v.ExportDOT(cfg, current))
	}

	if dotOutput != "" {
		return os.WriteFile(dotOutput, out, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
