// Package tui provides the interactive Bubble Tea ranking UI for fehbrank.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/config"
	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/pipeline"
	"github.com/theirongolddev/fehbrank/internal/tui/components"
	"github.com/theirongolddev/fehbrank/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// LoadFunc loads the plan dataset, reporting progress as files are parsed.
type LoadFunc func(progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error)

// DataLoadedMsg is sent when the dataset finishes loading.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

const (
	tabRanking = iota
	tabDetail
	tabHousehold
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 140
	barWidth         = 16
)

// Options configures a new App.
type Options struct {
	Query     pipeline.Query
	AddOnSpec pipeline.AddOnSpec
	Estimator *pipeline.Estimator
	Load      LoadFunc
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	plans    []model.PlanRecord
	byID     map[string]model.PlanRecord
	loaded   bool
	loadErr  error
	loadTime time.Duration
	dataNote string

	// Ranking inputs and output
	query     pipeline.Query
	addOnSpec pipeline.AddOnSpec
	addOnErr  error
	estimator *pipeline.Estimator
	ranking   pipeline.Ranking

	// UI state
	width     int
	height    int
	activeTab int
	cursor    int

	// Household form (huh); values live behind a pointer so copies of
	// App share them.
	form     *huh.Form
	formVals *householdValues

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
	load        LoadFunc
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	est := opts.Estimator
	if est == nil {
		est = pipeline.NewEstimator(config.DefaultAssumptions())
	}

	return App{
		query:     opts.Query,
		addOnSpec: opts.AddOnSpec,
		estimator: est,
		load:      opts.Load,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
		formVals:  &householdValues{},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(loadDataCmd(a.load, a.loadSub), a.spinner.Tick)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(components.CardInnerWidth(a.contentWidth()))
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		if msg.Err == nil && msg.Result != nil {
			a.setPlans(msg.Result)
			a.rerank()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.activeTab == tabHousehold && a.form != nil {
			if msg.String() == "esc" {
				a.form = nil
				a.activeTab = tabRanking
				return a, nil
			}
			return a.updateForm(msg)
		}
		return a.handleKey(msg)
	}

	// Forward everything else (cursor blinks) to the open form.
	if a.activeTab == tabHousehold && a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" {
		return a, tea.Quit
	}
	if !a.loaded || a.loadErr != nil {
		return a, nil
	}

	switch key {
	case "tab":
		return a.switchTab((a.activeTab + 1) % len(components.Tabs))
	case "r", "d", "h":
		return a.switchTab(components.TabIdxByKey(rune(key[0])))
	case "esc":
		a.activeTab = tabRanking
	case "enter":
		if len(a.ranking.Results) > 0 {
			a.activeTab = tabDetail
		}
	case "j", "down":
		if a.cursor < len(a.ranking.Results)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "g", "home":
		a.cursor = 0
	case "G", "end":
		a.cursor = max(0, len(a.ranking.Results)-1)
	case "u":
		a.query.Utilization = nextUtilization(a.query.Utilization)
		a.rerank()
	case "e":
		a.query.Household.Enrollment = nextEnrollment(a.query.Household.Enrollment)
		a.rerank()
	case "n":
		a.query.Filter.NationwideOnly = !a.query.Filter.NationwideOnly
		a.rerank()
	case "f":
		a.query.Household.FSAHSAEligible = !a.query.Household.FSAHSAEligible
		a.rerank()
	case "+", "=":
		if n := a.query.Limit(); n > 0 {
			a.query.TopN = n + 5
			a.rerank()
		}
	case "-":
		if n := a.query.Limit(); n > 5 {
			a.query.TopN = n - 5
			a.rerank()
		}
	case "a":
		a.query.TopN = -1
		a.rerank()
	}
	return a, nil
}

func (a App) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx < 0 {
		return a, nil
	}
	a.activeTab = idx
	if idx == tabHousehold {
		a.formVals.fill(a.query)
		a.form = newHouseholdForm(a.formVals)
		if a.width > 0 {
			a.form = a.form.WithWidth(components.CardInnerWidth(a.contentWidth()))
		}
		return a, a.form.Init()
	}
	return a, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		if err := a.formVals.apply(&a.query); err != nil {
			zap.L().Warn("household form", zap.Error(err))
		}
		a.form = nil
		a.activeTab = tabRanking
		a.rerank()
		return a, nil
	case huh.StateAborted:
		a.form = nil
		a.activeTab = tabRanking
		return a, nil
	}
	return a, cmd
}

func (a *App) setPlans(res *pipeline.LoadResult) {
	a.plans = res.Plans
	a.byID = make(map[string]model.PlanRecord, len(res.Plans))
	for _, p := range res.Plans {
		a.byID[p.ID] = p
	}
	a.dataNote = fmt.Sprintf("%d plans", len(res.Plans))
	if res.UsedSample {
		a.dataNote += " (sample)"
	}
}

// rerank recomputes the ranking from the current query.
func (a *App) rerank() {
	q := a.query
	addOns, err := pipeline.ResolveAddOns(a.plans, a.addOnSpec, q.Household.Enrollment)
	a.addOnErr = err
	q.AddOns = addOns
	a.ranking = a.estimator.Rank(a.plans, q)

	if a.cursor >= len(a.ranking.Results) {
		a.cursor = max(0, len(a.ranking.Results)-1)
	}
	zap.L().Debug("ranked",
		zap.String("run_id", a.ranking.RunID),
		zap.Int("considered", a.ranking.Considered),
		zap.Int("excluded", a.ranking.Excluded))
}

func (a App) selected() (model.EstimationResult, bool) {
	if a.cursor < 0 || a.cursor >= len(a.ranking.Results) {
		return model.EstimationResult{}, false
	}
	return a.ranking.Results[a.cursor], true
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  fehbrank needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewError()
	}

	var body string
	switch a.activeTab {
	case tabDetail:
		body = a.viewDetail()
	case tabHousehold:
		body = a.viewHousehold()
	default:
		body = a.viewRanking()
	}

	header := a.viewHeader()
	status := components.RenderStatusBar(a.width, a.hints(), a.statusInfo())

	used := lipgloss.Height(header) + lipgloss.Height(status)
	bodyH := max(1, a.height-used)
	body = padHeight(truncateHeight(body, bodyH), bodyH)

	return header + "\n" + body + "\n" + status
}

func (a App) viewHeader() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render(" ◈ fehbrank")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Render(" · FEHB plan cost ranking")
	return logo + sub + "\n" + components.RenderTabBar(a.activeTab)
}

func (a App) hints() string {
	switch a.activeTab {
	case tabHousehold:
		return "[enter]next  [esc]cancel"
	case tabDetail:
		return "[j/k]plan  [esc]back  [q]uit"
	}
	return "[j/k]move [u]tilization [e]nrollment [n]ationwide [f]sa [+/-]top [q]uit"
}

func (a App) statusInfo() string {
	id := a.ranking.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s · run %s", a.dataNote, id)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fehbrank"))
	b.WriteString(subtitleStyle.Render(" · FEHB plan cost ranking"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Parsing plan files\n\n"))
		b.WriteString(components.ProgressBar(pct, 30))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Loading plans..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewError() string {
	t := theme.Active
	msg := lipgloss.NewStyle().Foreground(t.Red).Render("  Could not load a plan dataset")
	detail := lipgloss.NewStyle().Foreground(t.TextMuted).Render("  " + a.loadErr.Error())
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Render("  Set --data or [general] data_path, then retry. [q]uit")
	return "\n" + msg + "\n\n" + detail + "\n\n" + hint
}

func (a App) viewRanking() string {
	t := theme.Active
	w := a.contentWidth()
	r := a.ranking
	h := a.query.Household

	cheapest := components.Metric{Label: "Lowest total", Value: "n/a"}
	if len(r.Results) > 0 {
		cheapest.Value = cli.FormatCost(r.Results[0].Total)
		cheapest.Note = r.Results[0].PlanID
	}
	metrics := []components.Metric{
		cheapest,
		{Label: "Ranked", Value: fmt.Sprintf("%d of %d", len(r.Results), r.Considered)},
		{Label: "Excluded", Value: fmt.Sprintf("%d", r.Excluded), Note: "no premium for tier"},
		{Label: "Household", Value: h.Enrollment.Label(), Note: fmt.Sprintf("%s use · FSA %s",
			a.query.Utilization.Label(), yesNo(h.FSAHSAEligible))},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, w))
	b.WriteString("\n")

	if a.addOnErr != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Render("  add-ons ignored: " + a.addOnErr.Error()))
		b.WriteString("\n")
	}
	if a.query.Filter.NationwideOnly {
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("  nationwide plans only"))
		b.WriteString("\n")
	}

	if len(r.Results) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render("\n  No plans match the current filters."))
		return b.String()
	}

	maxTotal := 0.0
	for _, res := range r.Results {
		maxTotal = max(maxTotal, res.Total)
	}

	nameW := max(20, w-barWidth-50)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	b.WriteString(headStyle.Render(fmt.Sprintf("  %3s  %-6s %-*s %-8s %10s  %-*s %s",
		"#", "ID", nameW, "Plan", "Type", "Total", barWidth, "", "Conf")))
	b.WriteString("\n")

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	lowStyle := lipgloss.NewStyle().Foreground(t.Orange)
	highStyle := lipgloss.NewStyle().Foreground(t.Green)

	for i, res := range r.Results {
		name := truncate(res.Carrier+" "+res.PlanName, nameW)
		line := fmt.Sprintf("  %3d  %-6s %-*s %-8s %10s  ",
			i+1, res.PlanID, nameW, name, res.Category, cli.FormatCost(res.Total))
		style := rowStyle
		if i == a.cursor {
			style = selStyle
		}
		low := res.Confidence == model.ConfidenceLow
		conf := highStyle.Render("High")
		if low {
			conf = lowStyle.Render("Low")
		}
		b.WriteString(style.Render(line))
		b.WriteString(components.CostBar(res.Total, maxTotal, barWidth, low))
		b.WriteString(" ")
		b.WriteString(conf)
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) viewDetail() string {
	t := theme.Active
	w := a.contentWidth()
	res, ok := a.selected()
	if !ok {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("\n  No plan selected.")
	}
	plan := a.byID[res.PlanID]
	oop := a.estimator.OOPWithAddOns(plan, a.query.Household, a.query.Utilization, a.query.AddOns)

	label := lipgloss.NewStyle().Foreground(t.TextMuted)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary)
	credit := lipgloss.NewStyle().Foreground(t.Green)
	line := func(l, v string, style lipgloss.Style) string {
		return label.Render(fmt.Sprintf("%-22s", l)) + style.Render(v) + "\n"
	}

	var cost strings.Builder
	cost.WriteString(line("Premium", cli.FormatCents(res.PremiumCost), value))
	if res.AddOnPremium != 0 {
		cost.WriteString(line("FEDVIP add-ons", cli.FormatCents(res.AddOnPremium), value))
	}
	cost.WriteString(line("Expected OOP", cli.FormatCents(res.OOPCost), value))
	cost.WriteString(line("Tax savings", "-"+cli.FormatCents(res.TaxSavings), credit))
	cost.WriteString(line("HSA seed", "-"+cli.FormatCents(res.HSASeed), credit))
	cost.WriteString(line("Total", cli.FormatCents(res.Total), value.Bold(true)))
	if res.PercentOfIncome != 0 {
		cost.WriteString(line("Share of income", fmt.Sprintf("%.2f%%", res.PercentOfIncome), value))
	}

	var est strings.Builder
	est.WriteString(line("Multiplier", fmt.Sprintf("x%.2f (%s)", oop.Multiplier, a.query.Utilization.Label()), value))
	if oop.UsedDefault {
		est.WriteString(line("Method", "default table", lipgloss.NewStyle().Foreground(t.Orange)))
		est.WriteString(line("Reason", oop.Reason, value))
	} else {
		est.WriteString(line("Claims baseline", cli.FormatCost(oop.ClaimsBaseline), value))
		est.WriteString(line("Deductible", cli.FormatCost(oop.Deductible), value))
		est.WriteString(line("Coinsurance share", cli.FormatCost(oop.Coinsurance), value))
		est.WriteString(line("Copays", cli.FormatCost(oop.Copays), value))
		est.WriteString(line("Scaled estimate", cli.FormatCost(oop.Raw), value))
		capNote := cli.FormatCost(oop.Cap)
		if oop.Capped {
			capNote += " (applied)"
		}
		est.WriteString(line("OOP maximum", capNote, value))
	}
	for _, c := range []struct {
		label string
		v     float64
	}{
		{"Surgery", oop.Surgery},
		{"Therapy program", oop.Therapy},
		{"Maternity", oop.Maternity},
		{"Dental work", oop.DentalWork},
	} {
		if c.v != 0 {
			est.WriteString(line(c.label, cli.FormatCost(c.v), value))
		}
	}

	var info strings.Builder
	info.WriteString(line("Plan", plan.FullName(), value))
	info.WriteString(line("Category", string(res.Category), value))
	info.WriteString(line("Network", orNA(plan.Network), value))
	info.WriteString(line("Nationwide", yesNo(plan.Nationwide), value))
	if len(plan.ServiceArea) > 0 {
		info.WriteString(line("Service area", strings.Join(plan.ServiceArea, ", "), value))
	}
	info.WriteString(line("HSA eligible", yesNo(plan.HSAEligible), value))
	if plan.CarrierURL != "" {
		info.WriteString(line("Carrier", plan.CarrierURL, value))
	}
	if plan.SBCURL != "" {
		info.WriteString(line("SBC", plan.SBCURL, value))
	}

	widths := components.LayoutRow(w, 2)
	left := components.ContentCard(fmt.Sprintf("%s · annual cost", res.PlanID), cost.String(), widths[0], true)
	right := components.ContentCard("OOP estimate", est.String(), widths[1], false)
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return top + "\n" + components.ContentCard("Plan", info.String(), w, false)
}

func (a App) viewHousehold() string {
	if a.form == nil {
		return ""
	}
	return components.ContentCard("Household", a.form.View(), a.contentWidth(), true)
}

func loadDataCmd(load LoadFunc, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next
			// update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			if load == nil {
				load = func(p pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
					return pipeline.LoadSample()
				}
			}
			res, err := load(progressFn)
			sub <- DataLoadedMsg{Result: res, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func nextUtilization(u model.UtilizationTier) model.UtilizationTier {
	for i, t := range model.UtilizationTiers {
		if t == u {
			return model.UtilizationTiers[(i+1)%len(model.UtilizationTiers)]
		}
	}
	return model.UtilizationModerate
}

func nextEnrollment(e model.EnrollmentTier) model.EnrollmentTier {
	for i, t := range model.EnrollmentTiers {
		if t == e {
			return model.EnrollmentTiers[(i+1)%len(model.EnrollmentTiers)]
		}
	}
	return model.SelfOnly
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	if w <= 1 || len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}

func truncateHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

func padHeight(s string, h int) string {
	n := strings.Count(s, "\n") + 1
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}
