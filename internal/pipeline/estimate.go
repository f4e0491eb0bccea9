package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/fehbrank/internal/config"
	"github.com/theirongolddev/fehbrank/internal/model"
)

// ReasonDetailMissing is the confidence reason for plans without complete
// benefit detail.
const ReasonDetailMissing = "benefit detail missing"

// Estimator computes per-plan annual cost estimates from a fixed
// assumptions table. It holds no mutable state.
type Estimator struct {
	Assumptions config.Assumptions
}

// NewEstimator returns an Estimator using the given assumptions.
func NewEstimator(a config.Assumptions) *Estimator {
	return &Estimator{Assumptions: a}
}

var defaultEstimator = NewEstimator(config.DefaultAssumptions())

// Estimate prices plan for household at utilization tier using the
// default assumptions table.
func Estimate(plan model.PlanRecord, h model.Household, tier model.UtilizationTier) (model.EstimationResult, error) {
	return defaultEstimator.Estimate(plan, h, tier)
}

// OOPBreakdown shows how an out-of-pocket estimate was reached.
// Component amounts are unscaled; Raw is after the utilization multiplier.
// Planned care (Surgery through DentalWork) is never scaled. Medical
// events count toward the plan's OOP maximum; dental work does not.
type OOPBreakdown struct {
	Multiplier     float64
	ClaimsBaseline float64
	Deductible     float64
	Coinsurance    float64
	Copays         float64
	Raw            float64
	Surgery        float64
	Therapy        float64
	Maternity      float64
	DentalWork     float64
	DentalCovered  bool
	Cap            float64
	Capped         bool
	UsedDefault    bool
	Reason         string
	OOP            float64
}

// Events returns the combined cost of planned medical events.
func (b OOPBreakdown) Events() float64 {
	return b.Surgery + b.Therapy + b.Maternity
}

// Estimate prices plan for household at utilization tier with no add-ons.
func (e *Estimator) Estimate(plan model.PlanRecord, h model.Household, tier model.UtilizationTier) (model.EstimationResult, error) {
	return e.EstimateWithAddOns(plan, h, tier, nil)
}

// EstimateWithAddOns is Estimate plus FEDVIP dental and vision add-ons.
// Their premiums are carried into the total, and a dental add-on pays
// its share of planned dental work.
func (e *Estimator) EstimateWithAddOns(plan model.PlanRecord, h model.Household, tier model.UtilizationTier, addOns AddOns) (model.EstimationResult, error) {
	premium, ok := plan.Premium(h.Enrollment)
	if !ok || premium < 0 || math.IsNaN(premium) {
		return model.EstimationResult{}, fmt.Errorf("plan %s %s: %w", plan.ID, h.Enrollment.Label(), ErrMissingTierPricing)
	}

	oop := e.OOPWithAddOns(plan, h, tier, addOns)

	var tax float64
	if h.FSAHSAEligible {
		tax = premium * e.Assumptions.PreTaxSavingsRate
	}

	var seed float64
	if plan.HSAEligible && plan.HSASeed != nil {
		seed = *plan.HSASeed
	}

	r := model.EstimationResult{
		PlanID:       plan.ID,
		Carrier:      plan.Carrier,
		PlanName:     plan.Name,
		Category:     InferCategory(plan.Name),
		Network:      plan.Network,
		Nationwide:   plan.Nationwide,
		PremiumCost:  premium,
		AddOnPremium: addOns.Total(),
		OOPCost:      oop.OOP,
		TaxSavings:   tax,
		HSASeed:      seed,
		Confidence:   model.ConfidenceHigh,
	}
	r.Total = r.PremiumCost + r.AddOnPremium + r.OOPCost - r.TaxSavings - r.HSASeed
	if oop.UsedDefault {
		r.Confidence = model.ConfidenceLow
		r.ConfidenceReason = oop.Reason
	}
	if h.AnnualIncome > 0 {
		r.PercentOfIncome = r.Total / h.AnnualIncome * 100
	}
	return r, nil
}

// OOP estimates expected annual out-of-pocket spend with no add-ons.
func (e *Estimator) OOP(plan model.PlanRecord, h model.Household, tier model.UtilizationTier) OOPBreakdown {
	return e.OOPWithAddOns(plan, h, tier, nil)
}

// OOPWithAddOns estimates expected annual out-of-pocket spend. Complete
// and valid benefit detail is used when present, otherwise the default
// table. Planned care from the household is added on top.
func (e *Estimator) OOPWithAddOns(plan model.PlanRecord, h model.Household, tier model.UtilizationTier, addOns AddOns) OOPBreakdown {
	a := e.Assumptions
	b := OOPBreakdown{
		Multiplier:     a.Multiplier(tier),
		ClaimsBaseline: a.ClaimsBaselinePerMember * float64(h.CoveredCount()),
	}
	e.plannedCare(&b, InferCategory(plan.Name), h, addOns.Covers(model.ProgramDental))

	err := ValidateBenefits(plan.Benefits)
	if err != nil {
		b.UsedDefault = true
		b.Reason = err.Error()
		if errors.Is(err, errDetailMissing) {
			b.Reason = ReasonDetailMissing
		}
		b.Raw = a.DefaultOOP[h.Enrollment] * b.Multiplier
		b.OOP = b.Raw + b.Events() + b.DentalWork
		return b
	}

	d := plan.Benefits
	b.Deductible = *d.Deductible
	b.Coinsurance = *d.CoinsuranceRate * b.ClaimsBaseline
	b.Copays = e.copays(d.Copays)
	b.Cap = *d.OOPMax
	b.Raw = (b.Deductible + b.Coinsurance + b.Copays) * b.Multiplier
	medical := b.Raw + b.Events()
	if medical > b.Cap {
		medical = b.Cap
		b.Capped = true
	}
	b.OOP = medical + b.DentalWork
	return b
}

// plannedCare prices the household's planned events for a plan category.
// Crowns are paid by a dental add-on at the major-work coverage rate, up
// to the per-person annual maximum for everyone covered. Without one the
// household pays the full cost.
func (e *Estimator) plannedCare(b *OOPBreakdown, cat model.PlanCategory, h model.Household, dentalCovered bool) {
	ev := e.Assumptions.Events
	share := func(planned bool, allowed float64, table map[model.PlanCategory]float64) float64 {
		if !planned {
			return 0
		}
		return (1 - config.PlanPay(table, cat)) * allowed
	}
	p := h.Planned
	b.Surgery = share(p.Surgery, ev.SurgeryAllowed, ev.SurgeryPlanPay)
	b.Therapy = share(p.Therapy, ev.TherapyAllowed, ev.TherapyPlanPay)
	b.Maternity = share(p.Maternity, ev.MaternityAllowed, ev.MaternityPlanPay)

	if p.Crowns <= 0 {
		return
	}
	dw := e.Assumptions.Dental
	total := float64(p.Crowns) * dw.CrownUnitCost
	b.DentalWork = total
	b.DentalCovered = dentalCovered
	if dentalCovered {
		paid := math.Min(total*dw.MajorCoverage, dw.AnnualMaxPerPerson*float64(h.CoveredCount()))
		b.DentalWork = total - paid
	}
}

// copays prices the visit profile against a copay schedule. Services
// without a published copay cost nothing.
func (e *Estimator) copays(c model.CopaySchedule) float64 {
	v := e.Assumptions.Visits
	var total float64
	add := func(copay *float64, visits float64) {
		if copay != nil {
			total += *copay * visits
		}
	}
	add(c.PrimaryCare, v.PrimaryCare)
	add(c.Specialist, v.Specialist)
	add(c.UrgentCare, v.UrgentCare)
	add(c.Prescription, v.PrescriptionFills)
	return total
}

var errDetailMissing = errors.New(ReasonDetailMissing)

// ValidateBenefits checks that benefit detail is internally consistent and
// complete. Every present field is checked first, so a bad value is
// reported as *InvalidBenefitDetailError even when other fields are
// missing. Otherwise incomplete detail returns an error matching
// ReasonDetailMissing.
func ValidateBenefits(d model.BenefitDetail) error {
	if d.Deductible != nil {
		if ded := *d.Deductible; ded < 0 || math.IsNaN(ded) {
			return &InvalidBenefitDetailError{Field: "deductible", Value: ded, Rule: "is negative"}
		}
	}
	if d.CoinsuranceRate != nil {
		if coins := *d.CoinsuranceRate; coins < 0 || coins > 1 || math.IsNaN(coins) {
			return &InvalidBenefitDetailError{Field: "coinsurance", Value: coins, Rule: "is outside 0..1"}
		}
	}
	if d.OOPMax != nil {
		oopMax := *d.OOPMax
		switch {
		case oopMax < 0 || math.IsNaN(oopMax):
			return &InvalidBenefitDetailError{Field: "oop_max", Value: oopMax, Rule: "is negative"}
		case d.Deductible != nil && oopMax < *d.Deductible:
			return &InvalidBenefitDetailError{Field: "oop_max", Value: oopMax, Rule: "is below the deductible"}
		}
	}
	copays := []struct {
		field string
		value *float64
	}{
		{"copay_pcp", d.Copays.PrimaryCare},
		{"copay_specialist", d.Copays.Specialist},
		{"copay_urgent", d.Copays.UrgentCare},
		{"copay_rx", d.Copays.Prescription},
	}
	for _, c := range copays {
		if c.value != nil && *c.value < 0 {
			return &InvalidBenefitDetailError{Field: c.field, Value: *c.value, Rule: "is negative"}
		}
	}
	if !d.Complete() {
		return errDetailMissing
	}
	return nil
}
