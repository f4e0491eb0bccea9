package pipeline

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// AddOnSpec names the FEDVIP coverage to add to every ranked plan, either
// by plan ID from the dataset or as a flat monthly premium. A plan ID
// takes precedence over a monthly amount.
type AddOnSpec struct {
	DentalPlan    string
	VisionPlan    string
	DentalMonthly *float64
	VisionMonthly *float64
}

// AddOn is one resolved add-on with its annual premium.
type AddOn struct {
	Program model.Program
	PlanID  string
	Label   string
	Annual  float64
}

// AddOns is the resolved add-on selection for a run.
type AddOns []AddOn

// Total returns the combined annual add-on premium.
func (a AddOns) Total() float64 {
	var t float64
	for _, x := range a {
		t += x.Annual
	}
	return t
}

// Covers reports whether the selection includes a program.
func (a AddOns) Covers(program model.Program) bool {
	for _, x := range a {
		if x.Program == program {
			return true
		}
	}
	return false
}

// ResolveAddOns prices spec for the given enrollment tier against plans.
func ResolveAddOns(plans []model.PlanRecord, spec AddOnSpec, enrollment model.EnrollmentTier) (AddOns, error) {
	var out AddOns
	for _, want := range []struct {
		program model.Program
		planID  string
		monthly *float64
	}{
		{model.ProgramDental, spec.DentalPlan, spec.DentalMonthly},
		{model.ProgramVision, spec.VisionPlan, spec.VisionMonthly},
	} {
		switch {
		case want.planID != "":
			a, err := addOnFromPlan(plans, want.program, want.planID, enrollment)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case want.monthly != nil:
			if *want.monthly < 0 {
				return nil, fmt.Errorf("%s add-on: monthly premium %g is negative", want.program, *want.monthly)
			}
			out = append(out, AddOn{
				Program: want.program,
				Label:   fmt.Sprintf("%s ($%.2f/mo)", want.program, *want.monthly),
				Annual:  *want.monthly * 12,
			})
		}
	}
	return out, nil
}

func addOnFromPlan(plans []model.PlanRecord, program model.Program, id string, enrollment model.EnrollmentTier) (AddOn, error) {
	for _, p := range plans {
		if !strings.EqualFold(p.ID, id) {
			continue
		}
		if p.Program != program {
			return AddOn{}, fmt.Errorf("add-on %s is a %s plan, not %s", p.ID, p.Program, program)
		}
		premium, ok := p.Premium(enrollment)
		if !ok || premium < 0 {
			return AddOn{}, fmt.Errorf("add-on %s %s: %w", p.ID, enrollment.Label(), ErrMissingTierPricing)
		}
		return AddOn{Program: program, PlanID: p.ID, Label: p.FullName(), Annual: premium}, nil
	}
	return AddOn{}, fmt.Errorf("%s add-on plan %q not found", program, id)
}
