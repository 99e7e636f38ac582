// internal/cli/analyze.go
package latlens

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/latlens/internal/engine"
	"github.com/mwiater/latlens/internal/filter"
	"github.com/mwiater/latlens/internal/record"
	"github.com/mwiater/latlens/internal/report"
	"github.com/mwiater/latlens/internal/util"
)

type analyzeOptions struct {
	sloMs        float64
	desiredBins  int
	binWidthMs   float64
	model        string
	analysisPath string
	htmlPath     string
}

var analyzeOpts analyzeOptions

// analyzeCmd runs one computation over a call-log document and prints the
// summary, optionally writing analysis JSON and an HTML report.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Compute latency distribution & stats from a call-log JSON file",
	Long: `Read a call-log document ({"responses":[...]}), run a single analytics
computation, and print the latency histogram, percentiles, SLO posture, and
per-model breakdown. Optionally emit the analysis JSON and a self-contained
HTML report.`,
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

		settings := getConfig().Settings()
		if cmd.Flags().Changed("slo") {
			settings.SLOMs = analyzeOpts.sloMs
		}
		if cmd.Flags().Changed("bins") {
			settings.DesiredBins = analyzeOpts.desiredBins
		}
		if cmd.Flags().Changed("bin-width") && analyzeOpts.binWidthMs > 0 {
			width := analyzeOpts.binWidthMs
			settings.BinWidthMs = &width
		}

		eng := engine.New()
		out := eng.Handle(engine.SetSettingsMsg{Settings: settings})
		out = eng.Handle(engine.LoadMsg{Records: records})
		if analyzeOpts.model != "" {
			out = eng.Handle(engine.SetFiltersMsg{
				Filters: filter.Spec{Models: []string{analyzeOpts.model}},
			})
		}

		var snapshot engine.Snapshot
		switch result := out.(type) {
		case engine.ResultsMsg:
			snapshot = result.Snapshot
		case engine.ErrorMsg:
			return fmt.Errorf("analysis failed: %s", result.Message)
		}

		printSummary(cmd, records, snapshot, settings)

		analysis := report.Build(path, records, snapshot, settings)
		if analyzeOpts.analysisPath != "" {
			if err := report.WriteJSON(analyzeOpts.analysisPath, analysis); err != nil {
				return err
			}
			cmd.Printf("Analysis JSON written to %s\n", analyzeOpts.analysisPath)
		}
		if analyzeOpts.htmlPath != "" {
			html, err := report.GenerateHTML(analysis)
			if err != nil {
				return fmt.Errorf("failed generating HTML report: %w", err)
			}
			if err := util.WriteFile(analyzeOpts.htmlPath, []byte(html)); err != nil {
				return fmt.Errorf("unable to write HTML report %s: %w", analyzeOpts.htmlPath, err)
			}
			cmd.Printf("Report written to %s\n", analyzeOpts.htmlPath)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeOpts.sloMs, "slo", 800, "SLO latency boundary in milliseconds")
	analyzeCmd.Flags().IntVar(&analyzeOpts.desiredBins, "bins", 40, "Desired histogram bin count (1-120)")
	analyzeCmd.Flags().Float64Var(&analyzeOpts.binWidthMs, "bin-width", 0, "Explicit bin width in milliseconds (overrides --bins)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.model, "model", "", "Restrict the distribution to one model")
	analyzeCmd.Flags().StringVar(&analyzeOpts.analysisPath, "analysis-output", "", "Optional path to write the analysis JSON")
	analyzeCmd.Flags().StringVar(&analyzeOpts.htmlPath, "html-output", "", "Optional path to write a self-contained HTML report")

	rootCmd.AddCommand(analyzeCmd)
}

func printSummary(cmd *cobra.Command, records []record.Record, snapshot engine.Snapshot, settings engine.Settings) {
	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	warn := color.New(color.FgRed, color.Bold)

	header.Fprintf(cmd.OutOrStdout(), "Latency distribution (%d records, %d visible)\n",
		len(records), len(snapshot.VisibleIndices))

	s := snapshot.Stats
	label.Fprintf(cmd.OutOrStdout(), "  n=%d  p50=%s  p95=%s  p99=%s ms\n",
		s.N, util.FormatNumber(s.P50, 0), util.FormatNumber(s.P95, 0), util.FormatNumber(s.P99, 0))
	label.Fprintf(cmd.OutOrStdout(), "  errors %.1f%%  total cost $%.4f  avg/1k %s\n",
		s.ErrPct, s.TotalCost, util.FormatNumber(s.AvgCostPer1k, 4))
	if s.OverSLOPct != nil && *s.OverSLOPct > 0 {
		warn.Fprintf(cmd.OutOrStdout(), "  %.1f%% of calls over the %.0fms SLO\n", *s.OverSLOPct, settings.SLOMs)
	} else {
		label.Fprintf(cmd.OutOrStdout(), "  over SLO (%.0fms): %s%%\n", settings.SLOMs, util.FormatNumber(s.OverSLOPct, 1))
	}

	cmd.Println()
	for _, summary := range report.Build("", records, snapshot, settings).PerModel {
		label.Fprintf(cmd.OutOrStdout(), "  %-32s calls=%-6d median=%-8s err=%.1f%%\n",
			util.TruncateRunes(summary.Model, 32), summary.Count,
			util.FormatNumber(summary.MedianLatencyMs, 0), summary.ErrPct)
	}
}
