package tui

import (
	"strings"
	"testing"

	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
)

func loadedApp(t *testing.T) App {
	t.Helper()
	res, err := pipeline.LoadSample()
	if err != nil {
		t.Fatalf("LoadSample: %v", err)
	}
	a := NewApp(Options{Query: pipeline.Query{
		Household:   model.Household{Enrollment: model.SelfOnly},
		Utilization: model.UtilizationModerate,
	}})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(DataLoadedMsg{Result: res})
	return m.(App)
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	var m tea.Model = a
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m.(App)
}

func TestAppRanksOnLoad(t *testing.T) {
	a := loadedApp(t)
	if len(a.ranking.Results) == 0 {
		t.Fatal("expected ranked results after load")
	}
	if a.ranking.Results[0].Total > a.ranking.Results[len(a.ranking.Results)-1].Total {
		t.Error("results not ascending")
	}
	if !strings.Contains(a.View(), "Lowest total") {
		t.Error("ranking view missing summary cards")
	}
}

func TestAppCursorAndDetail(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "j", "down")
	if a.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", a.cursor)
	}
	a = press(t, a, "k")
	if a.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", a.cursor)
	}

	a = press(t, a, "enter")
	if a.activeTab != tabDetail {
		t.Fatalf("activeTab = %d, want detail", a.activeTab)
	}
	want := a.ranking.Results[1].PlanID
	if !strings.Contains(a.View(), want) {
		t.Errorf("detail view missing plan %s", want)
	}

	a = press(t, a, "esc")
	if a.activeTab != tabRanking {
		t.Errorf("esc should return to ranking, got tab %d", a.activeTab)
	}
}

func TestAppCycleKeysRerank(t *testing.T) {
	a := loadedApp(t)
	firstRun := a.ranking.RunID

	a = press(t, a, "u")
	if a.query.Utilization != model.UtilizationHigh {
		t.Errorf("utilization = %s, want high", a.query.Utilization)
	}
	if a.ranking.RunID == firstRun {
		t.Error("expected a new ranking run after changing utilization")
	}

	a = press(t, a, "e")
	if a.query.Household.Enrollment != model.SelfPlusOne {
		t.Errorf("enrollment = %s, want self-plus-one", a.query.Household.Enrollment)
	}

	a = press(t, a, "f")
	if !a.query.Household.FSAHSAEligible {
		t.Error("f should toggle FSA eligibility on")
	}
	for _, r := range a.ranking.Results {
		if r.PremiumCost > 0 && r.TaxSavings == 0 {
			t.Errorf("%s: expected tax savings once FSA eligible", r.PlanID)
		}
	}

	a = press(t, a, "n")
	for _, r := range a.ranking.Results {
		if !r.Nationwide {
			t.Errorf("%s is not nationwide", r.PlanID)
		}
	}
}

func TestAppTopN(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "-")
	if got := a.query.Limit(); got != 5 {
		t.Fatalf("limit = %d, want 5", got)
	}
	if len(a.ranking.Results) > 5 {
		t.Errorf("results = %d, want <= 5", len(a.ranking.Results))
	}
	a = press(t, a, "+")
	if got := a.query.Limit(); got != 10 {
		t.Errorf("limit = %d, want 10", got)
	}
	a = press(t, a, "a")
	if got := a.query.Limit(); got != -1 {
		t.Errorf("limit = %d, want -1", got)
	}
	if len(a.ranking.Results) != a.ranking.Considered-a.ranking.Excluded {
		t.Errorf("results = %d, want every ranked plan", len(a.ranking.Results))
	}
}

func TestAppHouseholdTabOpensForm(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "h")
	if a.activeTab != tabHousehold || a.form == nil {
		t.Fatal("h should open the household form")
	}
	if a.formVals.enrollment != model.SelfOnly {
		t.Errorf("form enrollment = %s, want self-only", a.formVals.enrollment)
	}
	a = press(t, a, "esc")
	if a.form != nil || a.activeTab != tabRanking {
		t.Error("esc should close the form")
	}
}

func TestAppLoadError(t *testing.T) {
	a := NewApp(Options{})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(DataLoadedMsg{Err: pipeline.ErrNoPlans})
	if !strings.Contains(m.View(), "Could not load") {
		t.Error("expected load error view")
	}
}

func TestHouseholdValuesApply(t *testing.T) {
	v := &householdValues{
		enrollment:  model.SelfAndFamily,
		utilization: model.UtilizationLow,
		fsa:         true,
		income:      "$85,000",
		zip:         " 20850 ",
	}
	q := pipeline.Query{Household: model.Household{Members: []model.Member{{Name: "A"}}}}
	if err := v.apply(&q); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if q.Household.AnnualIncome != 85000 {
		t.Errorf("income = %v, want 85000", q.Household.AnnualIncome)
	}
	if q.Filter.ZIP != "20850" || q.Household.ZIP != "20850" {
		t.Errorf("zip = %q / %q", q.Household.ZIP, q.Filter.ZIP)
	}
	if len(q.Household.Members) != 1 {
		t.Error("members should be kept")
	}

	v.income = "-3"
	if err := v.apply(&q); err == nil {
		t.Error("expected error for negative income")
	}
}

func TestHouseholdValuesPlannedCare(t *testing.T) {
	q := pipeline.Query{Household: model.Household{
		Enrollment: model.SelfPlusOne,
		Planned:    model.PlannedCare{Maternity: true, Crowns: 2},
	}}
	var v householdValues
	v.fill(q)
	if len(v.events) != 1 || v.events[0] != eventMaternity || v.crowns != "2" {
		t.Fatalf("fill: events=%v crowns=%q", v.events, v.crowns)
	}

	v.events = append(v.events, eventSurgery)
	v.crowns = "3"
	if err := v.apply(&q); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := model.PlannedCare{Surgery: true, Maternity: true, Crowns: 3}
	if q.Household.Planned != want {
		t.Errorf("planned = %+v, want %+v", q.Household.Planned, want)
	}

	v.crowns = "two"
	if err := v.apply(&q); err == nil {
		t.Error("expected error for non-numeric crowns")
	}
}
