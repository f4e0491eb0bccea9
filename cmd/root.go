// Package cmd implements the fehbrank CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/config"
	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/pipeline"
	"github.com/theirongolddev/fehbrank/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagData          string
	flagEnrollment    string
	flagUtilization   string
	flagFSA           bool
	flagNationwide    bool
	flagNetworks      []string
	flagCarrier       string
	flagCategories    []string
	flagHSAOnly       bool
	flagZIP           string
	flagTop           int
	flagHousehold     string
	flagDental        string
	flagVision        string
	flagDentalMonthly float64
	flagVisionMonthly float64
	flagIncome        float64
	flagSurgery       bool
	flagTherapy       bool
	flagMaternity     bool
	flagCrowns        int
	flagNoCache       bool
	flagQuiet         bool
	flagVerbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "fehbrank",
	Short: "FEHB plan cost estimator",
	Long: "Estimate and rank FEHB medical plans (plus FEDVIP dental and vision add-ons)\n" +
		"by expected annual cost for your household.",
	PersistentPreRunE: initLogging,
	RunE:              runRank,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	defer func() { _ = zap.L().Sync() }()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagData, "data", "", "Plan dataset file or directory (default: bundled sample)")
	pf.StringVarP(&flagEnrollment, "enrollment", "e", "", "Enrollment tier: self, self+1, family")
	pf.StringVarP(&flagUtilization, "utilization", "u", "", "Expected care use: low, moderate, high")
	pf.BoolVar(&flagFSA, "fsa", false, "Household is FSA/HSA eligible (premiums paid pre-tax)")
	pf.BoolVar(&flagNationwide, "nationwide", false, "Only nationwide plans")
	pf.StringSliceVar(&flagNetworks, "network", nil, "Network types to include (repeatable)")
	pf.StringVar(&flagCarrier, "carrier", "", "Filter to carrier (substring match)")
	pf.StringSliceVar(&flagCategories, "category", nil, "Plan categories: hdhp, rich, standard, basic")
	pf.BoolVar(&flagHSAOnly, "hsa-only", false, "Only HSA-eligible plans")
	pf.StringVar(&flagZIP, "zip", "", "ZIP code for service-area filtering")
	pf.IntVarP(&flagTop, "top", "n", 0, "Number of plans to show (negative for all)")
	pf.StringVar(&flagHousehold, "household", "", "YAML household profile")
	pf.StringVar(&flagDental, "dental", "", "FEDVIP dental plan ID to add")
	pf.StringVar(&flagVision, "vision", "", "FEDVIP vision plan ID to add")
	pf.Float64Var(&flagDentalMonthly, "dental-monthly", 0, "Dental add-on monthly premium")
	pf.Float64Var(&flagVisionMonthly, "vision-monthly", 0, "Vision add-on monthly premium")
	pf.Float64Var(&flagIncome, "income", 0, "Annual household income")
	pf.BoolVar(&flagSurgery, "surgery", false, "Plan for a major surgery this year")
	pf.BoolVar(&flagTherapy, "therapy", false, "Plan for a therapy program this year")
	pf.BoolVar(&flagMaternity, "maternity", false, "Plan for a maternity episode this year")
	pf.IntVar(&flagCrowns, "crowns", 0, "Crowns or implants planned this year")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

func initLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logCfg := cfg.Log
	if flagVerbose {
		logCfg.Level = "debug"
	}
	return config.InitLogger(logCfg)
}

// settings is everything a ranking run needs besides the dataset.
type settings struct {
	cfg       config.Config
	dataPath  string
	query     pipeline.Query
	addOnSpec pipeline.AddOnSpec
	estimator *pipeline.Estimator
}

// loadSettings merges config file, household profile, and flags, with
// flags winning over the profile and the profile over the config file.
func loadSettings(cmd *cobra.Command) (settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return settings{}, err
	}
	changed := cmd.Flags().Changed

	h := cfg.Household
	if flagHousehold != "" {
		h, err = config.LoadHousehold(flagHousehold)
		if err != nil {
			return settings{}, err
		}
	}
	if h.Enrollment == "" {
		h.Enrollment = model.SelfOnly
	}
	if changed("enrollment") {
		tier, err := model.ParseEnrollmentTier(flagEnrollment)
		if err != nil {
			return settings{}, err
		}
		h.Enrollment = tier
	}
	if changed("fsa") {
		h.FSAHSAEligible = flagFSA
	}
	if changed("income") {
		h.AnnualIncome = flagIncome
	}
	if changed("zip") {
		h.ZIP = flagZIP
	}
	if changed("surgery") {
		h.Planned.Surgery = flagSurgery
	}
	if changed("therapy") {
		h.Planned.Therapy = flagTherapy
	}
	if changed("maternity") {
		h.Planned.Maternity = flagMaternity
	}
	if changed("crowns") {
		h.Planned.Crowns = flagCrowns
	}
	if err := config.ValidateHousehold(h); err != nil {
		return settings{}, err
	}

	utilName := cfg.General.Utilization
	if changed("utilization") {
		utilName = flagUtilization
	}
	util := model.UtilizationModerate
	if utilName != "" {
		util, err = model.ParseUtilizationTier(utilName)
		if err != nil {
			return settings{}, err
		}
	}

	filter := pipeline.Filter{
		Program:        model.ProgramFEHB,
		NationwideOnly: cfg.General.NationwideOnly,
		Networks:       flagNetworks,
		Carrier:        flagCarrier,
		HSAOnly:        flagHSAOnly,
		ZIP:            h.ZIP,
	}
	if changed("nationwide") {
		filter.NationwideOnly = flagNationwide
	}
	for _, c := range flagCategories {
		cat, ok := pipeline.ParseCategory(c)
		if !ok {
			return settings{}, fmt.Errorf("unknown plan category %q", c)
		}
		filter.Categories = append(filter.Categories, cat)
	}

	topN := cfg.General.TopN
	if changed("top") {
		topN = flagTop
	}

	spec := pipeline.AddOnSpec{
		DentalPlan:    cfg.AddOns.DentalPlan,
		VisionPlan:    cfg.AddOns.VisionPlan,
		DentalMonthly: cfg.AddOns.DentalMonthly,
		VisionMonthly: cfg.AddOns.VisionMonthly,
	}
	if changed("dental") {
		spec.DentalPlan = flagDental
	}
	if changed("vision") {
		spec.VisionPlan = flagVision
	}
	if changed("dental-monthly") {
		spec.DentalMonthly = model.Float(flagDentalMonthly)
	}
	if changed("vision-monthly") {
		spec.VisionMonthly = model.Float(flagVisionMonthly)
	}

	dataPath := config.DataPath(cfg)
	if flagData != "" {
		dataPath = flagData
	}

	return settings{
		cfg:      cfg,
		dataPath: dataPath,
		query: pipeline.Query{
			Household:   h,
			Utilization: util,
			Filter:      filter,
			TopN:        topN,
		},
		addOnSpec: spec,
		estimator: pipeline.NewEstimator(cfg.Assumptions.Apply(config.DefaultAssumptions())),
	}, nil
}

// rankRun is one loaded dataset ranked under the current settings.
type rankRun struct {
	settings
	data    *pipeline.LoadResult
	ranking pipeline.Ranking
}

// prepareRanking loads the dataset, resolves add-ons, and ranks.
func prepareRanking(cmd *cobra.Command) (*rankRun, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	data, err := loadData(s.dataPath)
	if err != nil {
		return nil, err
	}

	addOns, err := pipeline.ResolveAddOns(data.Plans, s.addOnSpec, s.query.Household.Enrollment)
	if err != nil {
		return nil, fmt.Errorf("resolving add-ons: %w", err)
	}
	s.query.AddOns = addOns

	ranking := s.estimator.Rank(data.Plans, s.query)
	zap.L().Debug("ranking complete",
		zap.String("command", cmd.Name()),
		zap.String("run_id", ranking.RunID),
		zap.Int("considered", ranking.Considered),
		zap.Int("ranked", ranking.Ranked),
		zap.Int("excluded", ranking.Excluded))

	return &rankRun{settings: s, data: data, ranking: ranking}, nil
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData(dataPath string) (*pipeline.LoadResult, error) {
	progressFn := func(current, total int) {
		if flagQuiet || total < 2 {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 20))
	}
	return loadDataWith(dataPath, progressFn, flagQuiet)
}

func loadDataWith(dataPath string, progressFn pipeline.ProgressFunc, quiet bool) (*pipeline.LoadResult, error) {
	log := zap.L().With(zap.String("data", dataPath))

	// Try cached load unless --no-cache
	if !flagNoCache && dataPath != "" {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.Warn("cache unavailable, doing full parse", zap.Error(err))
		} else {
			defer cache.Close()

			cr, err := pipeline.LoadWithCache(dataPath, cache, progressFn)
			if err == nil {
				if !quiet && cr.TotalFiles > 1 {
					fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed files    \n",
						cli.FormatNumber(int64(cr.CacheHits)), cr.Reparsed)
				}
				reportLoad(&cr.LoadResult, quiet)
				return &cr.LoadResult, nil
			}
			log.Warn("cache-assisted load failed, falling back", zap.Error(err))
		}
	}

	result, err := pipeline.Load(dataPath, progressFn)
	if err != nil {
		return nil, err
	}
	reportLoad(result, quiet)
	return result, nil
}

// reportLoad prints dataset warnings to stderr.
func reportLoad(r *pipeline.LoadResult, quiet bool) {
	zap.L().Debug("dataset loaded",
		zap.Int("plans", len(r.Plans)),
		zap.Int("files", r.TotalFiles),
		zap.Int("file_errors", r.FileErrors),
		zap.Int("skipped_rows", r.SkippedRows),
		zap.Int("cell_warnings", r.CellWarnings),
		zap.Int("duplicates", r.Duplicates))
	if quiet {
		return
	}

	var notes []string
	if r.UsedSample {
		notes = append(notes, "using the bundled sample dataset (set --data for real plans)")
	}
	if r.FileErrors > 0 {
		notes = append(notes, fmt.Sprintf("%d files could not be parsed", r.FileErrors))
	}
	if r.SkippedRows > 0 {
		notes = append(notes, fmt.Sprintf("%d rows skipped", r.SkippedRows))
	}
	if r.CellWarnings > 0 {
		notes = append(notes, fmt.Sprintf("%d unreadable cells ignored", r.CellWarnings))
	}
	if r.Duplicates > 0 {
		notes = append(notes, fmt.Sprintf("%d duplicate plan IDs ignored", r.Duplicates))
	}
	for _, n := range notes {
		fmt.Fprintln(os.Stderr, cli.RenderMuted("  "+n))
	}
}

// findPlan looks up a plan by ID, ignoring case.
func findPlan(plans []model.PlanRecord, id string) (model.PlanRecord, bool) {
	for _, p := range plans {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return model.PlanRecord{}, false
}
