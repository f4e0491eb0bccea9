package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagFormat string
	flagOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ranked plan list as CSV or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "csv", "Output format: csv or json")
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

// exportDoc is the JSON export layout.
type exportDoc struct {
	RunID       string                   `json:"run_id"`
	Household   model.Household          `json:"household"`
	Utilization model.UtilizationTier    `json:"utilization"`
	AddOns      pipeline.AddOns          `json:"addons,omitempty"`
	Considered  int                      `json:"considered"`
	Ranked      int                      `json:"ranked"`
	Excluded    int                      `json:"excluded"`
	Exclusions  []model.Exclusion        `json:"exclusions,omitempty"`
	Results     []model.EstimationResult `json:"results"`
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	if flagFormat != "csv" && flagFormat != "json" {
		return fmt.Errorf("unknown export format %q (want csv or json)", flagFormat)
	}

	run, err := prepareRanking(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput) //nolint:gosec // user-chosen output path
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagOutput, err)
		}
		defer closeInto(&err, f, flagOutput)
		w = f
	}

	r := run.ranking
	switch flagFormat {
	case "json":
		err = cli.WriteJSON(w, exportDoc{
			RunID:       r.RunID,
			Household:   run.query.Household,
			Utilization: run.query.Utilization,
			AddOns:      run.query.AddOns,
			Considered:  r.Considered,
			Ranked:      r.Ranked,
			Excluded:    r.Excluded,
			Exclusions:  r.Exclusions,
			Results:     r.Results,
		})
	default:
		err = cli.WriteCSV(w, r.Results)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", flagFormat, err)
	}

	zap.L().Info("exported ranking",
		zap.String("command", "export"),
		zap.String("run_id", r.RunID),
		zap.String("format", flagFormat),
		zap.Int("rows", len(r.Results)))
	if flagOutput != "" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %d plans to %s\n", len(r.Results), flagOutput)
	}
	printExclusions(r.Excluded)
	return nil
}

// closeInto closes c and reports a close failure through err unless an
// earlier error is already set.
func closeInto(err *error, c io.Closer, name string) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing %s: %w", name, cerr)
	}
}
