// internal/cli/explore.go
package latlens

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mwiater/latlens/cli"
	"github.com/mwiater/latlens/internal/record"
)

var startExplorer = cli.StartExplorer

// exploreCmd launches the interactive terminal view over a call-log file.
var exploreCmd = &cobra.Command{
	Use:   "explore <file>",
	Short: "Explore a call-log file interactively",
	Long: `The 'explore' command opens an interactive latency-distribution view over a
call-log document: histogram with SLO and percentile overlays, live-tunable
binning, model/latency-range filters, and a sortable record grid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to read call-log file %s: %w", path, err)
		}
		records, err := record.ParseDocument(data)
		if err != nil {
			return fmt.Errorf("unable to parse call-log JSON %s: %w", path, err)
		}

		return startExplorer(getConfig(), filepath.Base(path), records)
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
