package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/pipeline"

	"github.com/charmbracelet/huh"
)

// householdValues holds the form fields while the household form is open.
type householdValues struct {
	enrollment  model.EnrollmentTier
	utilization model.UtilizationTier
	fsa         bool
	nationwide  bool
	income      string
	zip         string
	events      []string
	crowns      string
}

const (
	eventSurgery   = "surgery"
	eventTherapy   = "therapy"
	eventMaternity = "maternity"
)

func (v *householdValues) fill(q pipeline.Query) {
	v.enrollment = q.Household.Enrollment
	if v.enrollment == "" {
		v.enrollment = model.SelfOnly
	}
	v.utilization = q.Utilization
	if v.utilization == "" {
		v.utilization = model.UtilizationModerate
	}
	v.fsa = q.Household.FSAHSAEligible
	v.nationwide = q.Filter.NationwideOnly
	v.income = ""
	if q.Household.AnnualIncome > 0 {
		v.income = strconv.FormatFloat(q.Household.AnnualIncome, 'f', -1, 64)
	}
	v.zip = q.Household.ZIP

	p := q.Household.Planned
	v.events = v.events[:0]
	for _, e := range []struct {
		name string
		on   bool
	}{{eventSurgery, p.Surgery}, {eventTherapy, p.Therapy}, {eventMaternity, p.Maternity}} {
		if e.on {
			v.events = append(v.events, e.name)
		}
	}
	v.crowns = ""
	if p.Crowns > 0 {
		v.crowns = strconv.Itoa(p.Crowns)
	}
}

// apply copies the form values into q. Members are kept.
func (v *householdValues) apply(q *pipeline.Query) error {
	income, err := parseIncome(v.income)
	if err != nil {
		return err
	}
	crowns, err := parseCrowns(v.crowns)
	if err != nil {
		return err
	}
	q.Household.Enrollment = v.enrollment
	q.Household.FSAHSAEligible = v.fsa
	q.Household.AnnualIncome = income
	q.Household.ZIP = strings.TrimSpace(v.zip)
	q.Filter.ZIP = q.Household.ZIP
	q.Filter.NationwideOnly = v.nationwide
	q.Utilization = v.utilization

	planned := model.PlannedCare{Crowns: crowns}
	for _, e := range v.events {
		switch e {
		case eventSurgery:
			planned.Surgery = true
		case eventTherapy:
			planned.Therapy = true
		case eventMaternity:
			planned.Maternity = true
		}
	}
	q.Household.Planned = planned
	return nil
}

func parseCrowns(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 20 {
		return 0, fmt.Errorf("crowns must be a whole number from 0 to 20")
	}
	return n, nil
}

func parseIncome(s string) (float64, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("income must be a non-negative number")
	}
	return f, nil
}

func validateZIP(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, ok := pipeline.StateForZIP(s); !ok {
		return fmt.Errorf("unrecognized ZIP code")
	}
	return nil
}

func newHouseholdForm(v *householdValues) *huh.Form {
	enrollOpts := make([]huh.Option[model.EnrollmentTier], 0, len(model.EnrollmentTiers))
	for _, t := range model.EnrollmentTiers {
		enrollOpts = append(enrollOpts, huh.NewOption(t.Label(), t))
	}
	utilOpts := make([]huh.Option[model.UtilizationTier], 0, len(model.UtilizationTiers))
	for _, u := range model.UtilizationTiers {
		utilOpts = append(utilOpts, huh.NewOption(u.Label(), u))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.EnrollmentTier]().
				Title("Enrollment").
				Options(enrollOpts...).
				Value(&v.enrollment),
			huh.NewSelect[model.UtilizationTier]().
				Title("Expected care use").
				Options(utilOpts...).
				Value(&v.utilization),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("FSA/HSA eligible?").
				Description("Premiums are paid pre-tax").
				Value(&v.fsa),
			huh.NewConfirm().
				Title("Nationwide plans only?").
				Value(&v.nationwide),
			huh.NewInput().
				Title("Annual household income").
				Placeholder("optional").
				Value(&v.income).
				Validate(func(s string) error {
					_, err := parseIncome(s)
					return err
				}),
			huh.NewInput().
				Title("ZIP code").
				Placeholder("optional").
				CharLimit(10).
				Value(&v.zip).
				Validate(validateZIP),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Planned care this year").
				Options(
					huh.NewOption("Major surgery", eventSurgery),
					huh.NewOption("Therapy program", eventTherapy),
					huh.NewOption("Maternity", eventMaternity),
				).
				Value(&v.events),
			huh.NewInput().
				Title("Crowns or implants").
				Placeholder("0").
				CharLimit(2).
				Value(&v.crowns).
				Validate(func(s string) error {
					_, err := parseCrowns(s)
					return err
				}),
		),
	).WithShowHelp(true)
}
