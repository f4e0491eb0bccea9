package cmd

import (
	"fmt"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagProgram string

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List plans in the dataset",
	RunE:  runPlans,
}

func init() {
	plansCmd.Flags().StringVar(&flagProgram, "program", "fehb", "Program to list: fehb, dental, vision, all")
	rootCmd.AddCommand(plansCmd)
}

func runPlans(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	data, err := loadData(s.dataPath)
	if err != nil {
		return err
	}

	var programs []model.Program
	if flagProgram == "all" {
		programs = []model.Program{model.ProgramFEHB, model.ProgramDental, model.ProgramVision}
	} else {
		p, ok := model.ParseProgram(flagProgram)
		if !ok {
			return fmt.Errorf("unknown program %q", flagProgram)
		}
		programs = []model.Program{p}
	}

	var rows [][]string
	for _, program := range programs {
		f := s.query.Filter
		f.Program = program
		for _, p := range f.Apply(data.Plans) {
			rows = append(rows, planRow(p))
		}
	}

	if len(rows) == 0 {
		fmt.Println("\n  No plans match the current filters.")
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title: fmt.Sprintf("Plans  %d of %d", len(rows), len(data.Plans)),
		Headers: []string{"Plan", "Program", "Name", "Type", "Network",
			"Self", "Self+1", "Family", "Deductible", "OOP max", "HSA"},
		Rows:     rows,
		LeftCols: 5,
	}))
	return nil
}

func planRow(p model.PlanRecord) []string {
	premium := func(t model.EnrollmentTier) string {
		v, ok := p.Premium(t)
		if !ok || v < 0 {
			return "-"
		}
		return cli.FormatCost(v)
	}
	hsa := ""
	if p.HSAEligible {
		hsa = "yes"
		if p.HSASeed != nil {
			hsa += " " + cli.FormatCost(*p.HSASeed)
		}
	}
	network := orDash(p.Network)
	if p.Nationwide {
		network += " (natl)"
	}
	return []string{
		p.ID,
		string(p.Program),
		truncate(p.FullName(), 36),
		string(pipeline.InferCategory(p.Name)),
		network,
		premium(model.SelfOnly),
		premium(model.SelfPlusOne),
		premium(model.SelfAndFamily),
		cli.FormatOptional(p.Benefits.Deductible, cli.FormatCost),
		cli.FormatOptional(p.Benefits.OOPMax, cli.FormatCost),
		hsa,
	}
}
