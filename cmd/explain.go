package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/pipeline"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <plan-id>",
	Short: "Show the full cost breakdown for one plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	data, err := loadData(s.dataPath)
	if err != nil {
		return err
	}
	plan, ok := findPlan(data.Plans, args[0])
	if !ok {
		return fmt.Errorf("plan %q not found in dataset", args[0])
	}

	q := s.query
	var addOns pipeline.AddOns
	if plan.Program == model.ProgramFEHB {
		addOns, err = pipeline.ResolveAddOns(data.Plans, s.addOnSpec, q.Household.Enrollment)
		if err != nil {
			return fmt.Errorf("resolving add-ons: %w", err)
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", plan.ID, plan.FullName())))
	fmt.Println()

	info := [][]string{
		{"Program", string(plan.Program)},
		{"Category", string(pipeline.InferCategory(plan.Name))},
		{"Option type", orDash(plan.OptionType)},
		{"Network", orDash(plan.Network)},
		{"Nationwide", yesNo(plan.Nationwide)},
	}
	if len(plan.ServiceArea) > 0 {
		info = append(info, []string{"Service area", strings.Join(plan.ServiceArea, ", ")})
	}
	info = append(info,
		[]string{"HSA eligible", yesNo(plan.HSAEligible)},
		[]string{"HSA seed", cli.FormatOptional(plan.HSASeed, cli.FormatCost)},
		[]string{"---"},
	)
	for _, t := range model.EnrollmentTiers {
		p, ok := plan.Premium(t)
		v := "not offered"
		if ok && p >= 0 {
			v = cli.FormatCents(p) + "  (" + cli.FormatMonthly(p) + ")"
		}
		info = append(info, []string{t.Label() + " premium", v})
	}
	b := plan.Benefits
	info = append(info,
		[]string{"---"},
		[]string{"Deductible", cli.FormatOptional(b.Deductible, cli.FormatCost)},
		[]string{"Coinsurance", cli.FormatOptional(b.CoinsuranceRate, cli.FormatPercent)},
		[]string{"OOP maximum", cli.FormatOptional(b.OOPMax, cli.FormatCost)},
		[]string{"PCP copay", cli.FormatOptional(b.Copays.PrimaryCare, cli.FormatCost)},
		[]string{"Specialist copay", cli.FormatOptional(b.Copays.Specialist, cli.FormatCost)},
		[]string{"Urgent care copay", cli.FormatOptional(b.Copays.UrgentCare, cli.FormatCost)},
		[]string{"Rx copay", cli.FormatOptional(b.Copays.Prescription, cli.FormatCost)},
	)
	fmt.Print(cli.RenderTable(cli.Table{Title: "Plan", Headers: []string{"Field", "Value"}, Rows: info}))
	fmt.Println()

	res, err := s.estimator.EstimateWithAddOns(plan, q.Household, q.Utilization, addOns)
	if errors.Is(err, pipeline.ErrMissingTierPricing) {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("  %s has no premium for %s enrollment; it is excluded from rankings.",
			plan.ID, q.Household.Enrollment.Label())))
		printLinks(plan)
		return nil
	}
	if err != nil {
		return err
	}

	oop := s.estimator.OOPWithAddOns(plan, q.Household, q.Utilization, addOns)
	oopRows := [][]string{
		{"Utilization", fmt.Sprintf("%s (x%.2f)", q.Utilization.Label(), oop.Multiplier)},
	}
	if oop.UsedDefault {
		oopRows = append(oopRows,
			[]string{"Method", "default table"},
			[]string{"Reason", oop.Reason},
		)
	} else {
		capNote := cli.FormatCost(oop.Cap)
		if oop.Capped {
			capNote += " (applied)"
		}
		oopRows = append(oopRows,
			[]string{"Claims baseline", cli.FormatCost(oop.ClaimsBaseline)},
			[]string{"Deductible", cli.FormatCost(oop.Deductible)},
			[]string{"Coinsurance share", cli.FormatCost(oop.Coinsurance)},
			[]string{"Copays", cli.FormatCost(oop.Copays)},
			[]string{"Scaled estimate", cli.FormatCost(oop.Raw)},
			[]string{"OOP maximum", capNote},
		)
	}
	oopRows = append(oopRows, plannedCareRows(oop)...)
	oopRows = append(oopRows, []string{"---"}, []string{"Expected OOP", cli.FormatCents(oop.OOP)})
	fmt.Print(cli.RenderTable(cli.Table{Title: "Out-of-pocket estimate", Headers: []string{"Step", "Amount"}, Rows: oopRows}))
	fmt.Println()

	costRows := [][]string{{"Premium", cli.FormatCents(res.PremiumCost)}}
	for _, a := range addOns {
		costRows = append(costRows, []string{a.Label, cli.FormatCents(a.Annual)})
	}
	costRows = append(costRows,
		[]string{"Expected OOP", cli.FormatCents(res.OOPCost)},
		[]string{"Tax savings", cli.FormatCents(-res.TaxSavings)},
		[]string{"HSA seed", cli.FormatCents(-res.HSASeed)},
		[]string{"---"},
		[]string{"Total", cli.FormatCents(res.Total)},
		[]string{"Confidence", string(res.Confidence)},
	)
	if res.ConfidenceReason != "" {
		costRows = append(costRows, []string{"Reason", res.ConfidenceReason})
	}
	if q.Household.AnnualIncome > 0 {
		costRows = append(costRows, []string{"Share of income", fmt.Sprintf("%.2f%%", res.PercentOfIncome)})
	}

	if plan.Program == model.ProgramFEHB {
		all := q
		all.TopN = -1
		all.AddOns = addOns
		ranking := s.estimator.Rank(data.Plans, all)
		for i, r := range ranking.Results {
			if r.PlanID == plan.ID {
				costRows = append(costRows, []string{"Rank", fmt.Sprintf("%d of %d", i+1, ranking.Ranked)})
				if i > 0 {
					costRows = append(costRows, []string{"vs cheapest",
						cli.FormatDelta(res.Total, ranking.Results[0].Total)})
				}
				break
			}
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{Title: "Annual cost", Headers: []string{"Component", "Amount"}, Rows: costRows}))
	printLinks(plan)
	return nil
}

// plannedCareRows lists the unscaled planned-care components that are set.
func plannedCareRows(oop pipeline.OOPBreakdown) [][]string {
	var rows [][]string
	add := func(label string, v float64) {
		if v != 0 {
			rows = append(rows, []string{label, cli.FormatCost(v)})
		}
	}
	add("Surgery", oop.Surgery)
	add("Therapy program", oop.Therapy)
	add("Maternity", oop.Maternity)
	if oop.DentalWork != 0 {
		label := "Dental work (uncovered)"
		if oop.DentalCovered {
			label = "Dental work"
		}
		add(label, oop.DentalWork)
	}
	return rows
}

func printLinks(p model.PlanRecord) {
	if p.CarrierURL == "" && p.SBCURL == "" {
		return
	}
	fmt.Println()
	if p.CarrierURL != "" {
		fmt.Printf("  Carrier: %s\n", p.CarrierURL)
	}
	if p.SBCURL != "" {
		fmt.Printf("  SBC:     %s\n", p.SBCURL)
	}
	fmt.Println()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
