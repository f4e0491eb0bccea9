package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/fehbrank/internal/config"
	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/source"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	ask := func() string {
		fmt.Print("     > ")
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to fehbrank!")
	fmt.Println()

	// 1. Dataset
	fmt.Println("  1. Plan dataset (CSV, XLSX or JSON file, or a directory of them)")
	fmt.Println("     Leave blank to use the bundled sample.")
	if cfg.General.DataPath != "" {
		fmt.Printf("     Current: %s\n", cfg.General.DataPath)
	}
	if p := ask(); p != "" {
		files, err := source.ScanDir(p)
		switch {
		case err != nil:
			fmt.Printf("     Could not read %s: %v (keeping previous value)\n", p, err)
		case len(files) == 0:
			fmt.Printf("     No dataset files found in %s (keeping previous value)\n", p)
		default:
			cfg.General.DataPath = p
			fmt.Printf("     Found %d dataset files\n", len(files))
		}
	}
	fmt.Println()

	// 2. Enrollment
	fmt.Println("  2. Enrollment")
	fmt.Println("     (1) Self Only [default]")
	fmt.Println("     (2) Self Plus One")
	fmt.Println("     (3) Self & Family")
	switch ask() {
	case "2":
		cfg.Household.Enrollment = model.SelfPlusOne
	case "3":
		cfg.Household.Enrollment = model.SelfAndFamily
	default:
		cfg.Household.Enrollment = model.SelfOnly
	}
	fmt.Println()

	// 3. Utilization
	fmt.Println("  3. Expected care use")
	fmt.Println("     (1) Low")
	fmt.Println("     (2) Moderate [default]")
	fmt.Println("     (3) High")
	switch ask() {
	case "1":
		cfg.General.Utilization = string(model.UtilizationLow)
	case "3":
		cfg.General.Utilization = string(model.UtilizationHigh)
	default:
		cfg.General.Utilization = string(model.UtilizationModerate)
	}
	fmt.Println()

	// 4. Pre-tax eligibility
	fmt.Println("  4. Are premiums paid pre-tax (FSA/HSA eligible)? [y/N]")
	cfg.Household.FSAHSAEligible = strings.HasPrefix(strings.ToLower(ask()), "y")
	fmt.Println()

	// 5. Income and ZIP
	fmt.Println("  5. Annual household income (optional)")
	if s := strings.NewReplacer("$", "", ",", "").Replace(ask()); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 {
			cfg.Household.AnnualIncome = v
		} else {
			fmt.Println("     Not a number, skipped")
		}
	}
	fmt.Println()
	fmt.Println("  6. ZIP code (optional, filters regional plans)")
	if z := ask(); z != "" {
		cfg.Household.ZIP = z
	}
	fmt.Println()

	// 7. Household profile
	fmt.Println("  7. Also save the household as a YAML profile? (path, blank to skip)")
	fmt.Println("     Use it later with --household <path>.")
	if p := ask(); p != "" {
		if err := config.SaveHousehold(p, cfg.Household); err != nil {
			fmt.Printf("     Could not save profile: %v\n", err)
		} else {
			fmt.Printf("     Saved %s\n", p)
		}
	}
	fmt.Println()

	// 8. Theme
	fmt.Println("  8. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Catppuccin Mocha")
	fmt.Println("     (3) Tokyo Night")
	fmt.Println("     (4) Terminal (ANSI 16)")
	switch ask() {
	case "2":
		cfg.Appearance.Theme = "catppuccin-mocha"
	case "3":
		cfg.Appearance.Theme = "tokyo-night"
	case "4":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `fehbrank setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
