package config

import (
	"strings"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// VisitProfile is the number of services a household uses in a year at
// Moderate utilization. Other tiers scale it by their multiplier.
type VisitProfile struct {
	PrimaryCare       float64
	Specialist        float64
	UrgentCare        float64
	PrescriptionFills float64
}

// EventCosts prices planned major care. A household's share of an event
// is the allowed charge times the part the plan's category leaves unpaid.
type EventCosts struct {
	SurgeryAllowed   float64
	TherapyAllowed   float64
	MaternityAllowed float64
	SurgeryPlanPay   map[model.PlanCategory]float64
	TherapyPlanPay   map[model.PlanCategory]float64
	MaternityPlanPay map[model.PlanCategory]float64
}

// DentalWork prices crowns and implants under FEDVIP dental coverage.
type DentalWork struct {
	CrownUnitCost      float64
	MajorCoverage      float64
	AnnualMaxPerPerson float64
}

// Assumptions is the fixed default table consulted whenever a plan or
// household omits a value. None of these numbers are derived from other
// plans in the dataset.
type Assumptions struct {
	// DefaultOOP is the annual out-of-pocket estimate used when a plan's
	// benefit detail is missing or invalid, before the utilization multiplier.
	DefaultOOP map[model.EnrollmentTier]float64
	// ClaimsBaselinePerMember is the expected allowed claims per covered
	// person at Moderate utilization.
	ClaimsBaselinePerMember float64
	// PreTaxSavingsRate is the marginal rate saved on premiums paid pre-tax:
	// 22% federal bracket plus 7.65% FICA.
	PreTaxSavingsRate float64
	Multipliers       map[model.UtilizationTier]float64
	Visits            VisitProfile
	Events            EventCosts
	Dental            DentalWork
}

// DefaultAssumptions returns the documented default table.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DefaultOOP: map[model.EnrollmentTier]float64{
			model.SelfOnly:      2500,
			model.SelfPlusOne:   4500,
			model.SelfAndFamily: 6000,
		},
		ClaimsBaselinePerMember: 4000,
		PreTaxSavingsRate:       0.2965,
		Multipliers: map[model.UtilizationTier]float64{
			model.UtilizationLow:      0.6,
			model.UtilizationModerate: 1.0,
			model.UtilizationHigh:     1.5,
		},
		Visits: VisitProfile{
			PrimaryCare:       6,
			Specialist:        12,
			UrgentCare:        2,
			PrescriptionFills: 120,
		},
		Events: EventCosts{
			SurgeryAllowed:   30000,
			TherapyAllowed:   6000,
			MaternityAllowed: 15000,
			SurgeryPlanPay:   defaultPlanPay(),
			TherapyPlanPay:   defaultPlanPay(),
			MaternityPlanPay: defaultPlanPay(),
		},
		Dental: DentalWork{
			CrownUnitCost:      1500,
			MajorCoverage:      0.5,
			AnnualMaxPerPerson: 2000,
		},
	}
}

func defaultPlanPay() map[model.PlanCategory]float64 {
	return map[model.PlanCategory]float64{
		model.CategoryHDHP:     0.7,
		model.CategoryRich:     0.9,
		model.CategoryStandard: 0.85,
		model.CategoryBasic:    0.75,
	}
}

// PlanPay returns the share of an event's allowed charge a plan category
// pays. Categories missing from the table fall back to Standard.
func PlanPay(table map[model.PlanCategory]float64, cat model.PlanCategory) float64 {
	if p, ok := table[cat]; ok {
		return p
	}
	return table[model.CategoryStandard]
}

// Multiplier returns the OOP scaling factor for a utilization tier.
// Unknown tiers scale by 1.
func (a Assumptions) Multiplier(tier model.UtilizationTier) float64 {
	if m, ok := a.Multipliers[tier]; ok {
		return m
	}
	return 1
}

// AssumptionOverrides lets the config file replace individual defaults.
// Only fields that are set override the table.
type AssumptionOverrides struct {
	DefaultOOPSelf          *float64 `toml:"default_oop_self,omitempty"`
	DefaultOOPSelfPlusOne   *float64 `toml:"default_oop_self_plus_one,omitempty"`
	DefaultOOPFamily        *float64 `toml:"default_oop_family,omitempty"`
	ClaimsBaselinePerMember *float64 `toml:"claims_baseline_per_member,omitempty"`
	PreTaxSavingsRate       *float64 `toml:"pretax_savings_rate,omitempty"`
	LowMultiplier           *float64 `toml:"low_multiplier,omitempty"`
	ModerateMultiplier      *float64 `toml:"moderate_multiplier,omitempty"`
	HighMultiplier          *float64 `toml:"high_multiplier,omitempty"`
	PrimaryCareVisits       *float64 `toml:"primary_care_visits,omitempty"`
	SpecialistVisits        *float64 `toml:"specialist_visits,omitempty"`
	UrgentCareVisits        *float64 `toml:"urgent_care_visits,omitempty"`
	PrescriptionFills       *float64 `toml:"prescription_fills,omitempty"`

	SurgeryAllowed   *float64 `toml:"surgery_allowed,omitempty"`
	TherapyAllowed   *float64 `toml:"therapy_allowed,omitempty"`
	MaternityAllowed *float64 `toml:"maternity_allowed,omitempty"`
	// Plan pay tables are keyed by category: hdhp, rich, standard, basic.
	SurgeryPlanPay   map[string]float64 `toml:"surgery_plan_pay,omitempty"`
	TherapyPlanPay   map[string]float64 `toml:"therapy_plan_pay,omitempty"`
	MaternityPlanPay map[string]float64 `toml:"maternity_plan_pay,omitempty"`

	CrownUnitCost            *float64 `toml:"crown_unit_cost,omitempty"`
	DentalMajorCoverage      *float64 `toml:"dental_major_coverage,omitempty"`
	DentalAnnualMaxPerPerson *float64 `toml:"dental_annual_max_per_person,omitempty"`
}

// Apply returns a copy of base with every set override applied.
func (o AssumptionOverrides) Apply(base Assumptions) Assumptions {
	out := base
	out.DefaultOOP = make(map[model.EnrollmentTier]float64, len(base.DefaultOOP))
	for k, v := range base.DefaultOOP {
		out.DefaultOOP[k] = v
	}
	out.Multipliers = make(map[model.UtilizationTier]float64, len(base.Multipliers))
	for k, v := range base.Multipliers {
		out.Multipliers[k] = v
	}

	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setMap := func(m map[model.EnrollmentTier]float64, k model.EnrollmentTier, src *float64) {
		if src != nil {
			m[k] = *src
		}
	}
	setMul := func(k model.UtilizationTier, src *float64) {
		if src != nil {
			out.Multipliers[k] = *src
		}
	}

	setMap(out.DefaultOOP, model.SelfOnly, o.DefaultOOPSelf)
	setMap(out.DefaultOOP, model.SelfPlusOne, o.DefaultOOPSelfPlusOne)
	setMap(out.DefaultOOP, model.SelfAndFamily, o.DefaultOOPFamily)
	set(&out.ClaimsBaselinePerMember, o.ClaimsBaselinePerMember)
	set(&out.PreTaxSavingsRate, o.PreTaxSavingsRate)
	setMul(model.UtilizationLow, o.LowMultiplier)
	setMul(model.UtilizationModerate, o.ModerateMultiplier)
	setMul(model.UtilizationHigh, o.HighMultiplier)
	set(&out.Visits.PrimaryCare, o.PrimaryCareVisits)
	set(&out.Visits.Specialist, o.SpecialistVisits)
	set(&out.Visits.UrgentCare, o.UrgentCareVisits)
	set(&out.Visits.PrescriptionFills, o.PrescriptionFills)

	set(&out.Events.SurgeryAllowed, o.SurgeryAllowed)
	set(&out.Events.TherapyAllowed, o.TherapyAllowed)
	set(&out.Events.MaternityAllowed, o.MaternityAllowed)
	out.Events.SurgeryPlanPay = mergePlanPay(base.Events.SurgeryPlanPay, o.SurgeryPlanPay)
	out.Events.TherapyPlanPay = mergePlanPay(base.Events.TherapyPlanPay, o.TherapyPlanPay)
	out.Events.MaternityPlanPay = mergePlanPay(base.Events.MaternityPlanPay, o.MaternityPlanPay)
	set(&out.Dental.CrownUnitCost, o.CrownUnitCost)
	set(&out.Dental.MajorCoverage, o.DentalMajorCoverage)
	set(&out.Dental.AnnualMaxPerPerson, o.DentalAnnualMaxPerPerson)

	return out
}

func mergePlanPay(base map[model.PlanCategory]float64, over map[string]float64) map[model.PlanCategory]float64 {
	out := make(map[model.PlanCategory]float64, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[model.PlanCategory(strings.ToUpper(strings.TrimSpace(k)))] = v
	}
	return out
}
