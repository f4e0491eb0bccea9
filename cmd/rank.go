package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank plans by estimated annual cost",
	RunE:  runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	run, err := prepareRanking(cmd)
	if err != nil {
		return err
	}
	log := zap.L().With(zap.String("command", "rank"), zap.String("run_id", run.ranking.RunID))

	q := run.query
	r := run.ranking

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FEHB PLAN COSTS  %s · %s use",
		q.Household.Enrollment.Label(), q.Utilization.Label())))
	fmt.Println()

	if len(r.Results) == 0 {
		fmt.Println("  No plans match the current filters.")
		printExclusions(r.Excluded)
		return nil
	}

	hasAddOns := len(q.AddOns) > 0
	hasIncome := q.Household.AnnualIncome > 0

	headers := []string{"#", "Plan", "Name", "Type", "Premium"}
	if hasAddOns {
		headers = append(headers, "Add-ons")
	}
	headers = append(headers, "OOP", "Tax", "Seed", "Total", "Conf")
	if hasIncome {
		headers = append(headers, "Income")
	}

	rows := make([][]string, 0, len(r.Results))
	bars := make([]cli.BarEntry, 0, len(r.Results))
	lowConf := 0
	for i, res := range r.Results {
		row := []string{
			fmt.Sprintf("%d", i+1),
			res.PlanID,
			truncate(res.Carrier+" "+res.PlanName, 36),
			string(res.Category),
			cli.FormatCost(res.PremiumCost),
		}
		if hasAddOns {
			row = append(row, cli.FormatCost(res.AddOnPremium))
		}
		conf := string(res.Confidence)
		if res.Confidence == model.ConfidenceLow {
			conf += "*"
			lowConf++
		}
		row = append(row,
			cli.FormatCost(res.OOPCost),
			cli.FormatCost(-res.TaxSavings),
			cli.FormatCost(-res.HSASeed),
			cli.FormatCost(res.Total),
			conf,
		)
		if hasIncome {
			row = append(row, fmt.Sprintf("%.1f%%", res.PercentOfIncome))
		}
		rows = append(rows, row)
		bars = append(bars, cli.BarEntry{Label: res.PlanID, Value: res.Total})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  headers,
		Rows:     rows,
		LeftCols: 4,
	}))
	fmt.Println()
	fmt.Print(cli.RenderBarChart("Estimated annual total", bars, 40))
	fmt.Println()

	for _, a := range q.AddOns {
		fmt.Printf("  Includes %s: %s/yr\n", a.Label, cli.FormatCost(a.Annual))
	}
	if lowConf > 0 {
		fmt.Println(cli.RenderMuted(fmt.Sprintf(
			"  * %d estimates use default out-of-pocket amounts (see `fehbrank explain <plan>`)", lowConf)))
	}
	if r.Ranked > len(r.Results) {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  Showing %d of %d plans (--top -1 for all)", len(r.Results), r.Ranked)))
	}
	printExclusions(r.Excluded)

	for _, ex := range r.Exclusions {
		log.Info("plan excluded", zap.String("plan", ex.PlanID), zap.String("reason", ex.Reason))
	}
	log.Debug("rank rendered", zap.Int("shown", len(r.Results)))
	return nil
}

func printExclusions(n int) {
	if n == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, cli.RenderWarning(fmt.Sprintf(
		"  %d plans excluded: no premium for this enrollment tier", n)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
