package cmd

import (
	"fmt"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if p := config.DataPath(cfg); p != "" {
		fmt.Printf("    Data path:       %s\n", p)
	} else {
		fmt.Println("    Data path:       bundled sample")
	}
	fmt.Printf("    Top N:           %d\n", cfg.General.TopN)
	fmt.Printf("    Utilization:     %s\n", cfg.General.Utilization)
	fmt.Printf("    Nationwide only: %v\n", cfg.General.NationwideOnly)
	fmt.Println()

	h := cfg.Household
	fmt.Println("  [Household]")
	fmt.Printf("    Enrollment:      %s\n", h.Enrollment.Label())
	fmt.Printf("    Members:         %d\n", len(h.Members))
	fmt.Printf("    FSA/HSA:         %v\n", h.FSAHSAEligible)
	if h.AnnualIncome > 0 {
		fmt.Printf("    Income:          %s\n", cli.FormatCost(h.AnnualIncome))
	}
	if h.ZIP != "" {
		fmt.Printf("    ZIP:             %s\n", h.ZIP)
	}
	if p := h.Planned; p.Any() {
		fmt.Printf("    Planned care:    surgery=%v therapy=%v maternity=%v crowns=%d\n",
			p.Surgery, p.Therapy, p.Maternity, p.Crowns)
	}
	fmt.Println()

	a := cfg.Assumptions.Apply(config.DefaultAssumptions())
	fmt.Println("  [Assumptions]")
	for _, t := range []struct {
		label string
		v     float64
	}{
		{"Default OOP (self)", a.DefaultOOP["self-only"]},
		{"Default OOP (+1)", a.DefaultOOP["self-plus-one"]},
		{"Default OOP (family)", a.DefaultOOP["self-and-family"]},
		{"Claims per member", a.ClaimsBaselinePerMember},
		{"Surgery allowed", a.Events.SurgeryAllowed},
		{"Therapy allowed", a.Events.TherapyAllowed},
		{"Maternity allowed", a.Events.MaternityAllowed},
		{"Crown unit cost", a.Dental.CrownUnitCost},
		{"Dental max/person", a.Dental.AnnualMaxPerPerson},
	} {
		fmt.Printf("    %-21s%s\n", t.label+":", cli.FormatCost(t.v))
	}
	fmt.Printf("    %-21s%s\n", "Pre-tax rate:", cli.FormatPercent(a.PreTaxSavingsRate))
	fmt.Printf("    %-21s%s\n", "Dental major cover:", cli.FormatPercent(a.Dental.MajorCoverage))
	fmt.Printf("    %-21sx%.2f / x%.2f / x%.2f\n", "Multipliers:",
		a.Multipliers["low"], a.Multipliers["moderate"], a.Multipliers["high"])
	fmt.Println()

	fmt.Println("  [Add-ons]")
	fmt.Printf("    Dental: %s\n", addOnLabel(cfg.AddOns.DentalPlan, cfg.AddOns.DentalMonthly))
	fmt.Printf("    Vision: %s\n", addOnLabel(cfg.AddOns.VisionPlan, cfg.AddOns.VisionMonthly))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `fehbrank setup` to reconfigure.")
	return nil
}

func addOnLabel(planID string, monthly *float64) string {
	switch {
	case planID != "":
		return planID
	case monthly != nil:
		return cli.FormatCents(*monthly) + "/mo"
	}
	return "none"
}
