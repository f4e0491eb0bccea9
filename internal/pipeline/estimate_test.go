package pipeline

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/theirongolddev/fehbrank/internal/config"
	"github.com/theirongolddev/fehbrank/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func selfOnly() model.Household {
	return model.Household{Enrollment: model.SelfOnly}
}

func detailedPlan(id string, premium, ded, coins, oopMax float64) model.PlanRecord {
	return model.PlanRecord{
		ID:       id,
		Program:  model.ProgramFEHB,
		Carrier:  "Test Carrier",
		Name:     "Standard Option",
		Premiums: map[model.EnrollmentTier]float64{model.SelfOnly: premium},
		Benefits: model.BenefitDetail{
			Deductible:      model.Float(ded),
			CoinsuranceRate: model.Float(coins),
			OOPMax:          model.Float(oopMax),
		},
	}
}

func partialPlan(id string, d model.BenefitDetail) model.PlanRecord {
	return model.PlanRecord{
		ID:       id,
		Program:  model.ProgramFEHB,
		Name:     "Standard Option",
		Premiums: map[model.EnrollmentTier]float64{model.SelfOnly: 1000},
		Benefits: d,
	}
}

func TestEstimate_NoBenefitDetailLowUtilization(t *testing.T) {
	plan := model.PlanRecord{
		ID:       "P1",
		Premiums: map[model.EnrollmentTier]float64{model.SelfOnly: 1200},
	}

	got, err := Estimate(plan, selfOnly(), model.UtilizationLow)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	wantOOP := config.DefaultAssumptions().DefaultOOP[model.SelfOnly] * 0.6
	if !almostEqual(got.OOPCost, wantOOP) {
		t.Errorf("OOPCost = %v, want %v", got.OOPCost, wantOOP)
	}
	if got.Confidence != model.ConfidenceLow {
		t.Errorf("Confidence = %s, want Low", got.Confidence)
	}
	if got.ConfidenceReason != ReasonDetailMissing {
		t.Errorf("ConfidenceReason = %q", got.ConfidenceReason)
	}
	if !almostEqual(got.Total, 1200+wantOOP) {
		t.Errorf("Total = %v, want %v", got.Total, 1200+wantOOP)
	}
}

func TestEstimate_BenefitDetailModerate(t *testing.T) {
	plan := detailedPlan("P2", 1200, 500, 0.2, 3000)

	got, err := Estimate(plan, selfOnly(), model.UtilizationModerate)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	baseline := config.DefaultAssumptions().ClaimsBaselinePerMember
	want := 1200 + math.Min(500+0.2*baseline, 3000) - 0
	if !almostEqual(got.Total, want) {
		t.Errorf("Total = %v, want %v", got.Total, want)
	}
	if got.Confidence != model.ConfidenceHigh || got.ConfidenceReason != "" {
		t.Errorf("Confidence = %s (%q), want High", got.Confidence, got.ConfidenceReason)
	}
	if got.TaxSavings != 0 {
		t.Errorf("TaxSavings = %v, want 0", got.TaxSavings)
	}
}

func TestEstimate_CapAppliesAfterMultiplier(t *testing.T) {
	plan := detailedPlan("P3", 1000, 2000, 0.2, 3000)
	e := NewEstimator(config.DefaultAssumptions())

	b := e.OOP(plan, selfOnly(), model.UtilizationHigh)
	if !almostEqual(b.Raw, (2000+800)*1.5) {
		t.Errorf("Raw = %v, want %v", b.Raw, (2000+800)*1.5)
	}
	if !b.Capped || b.OOP != 3000 {
		t.Errorf("OOP = %v capped=%v, want 3000 capped", b.OOP, b.Capped)
	}

	low := e.OOP(plan, selfOnly(), model.UtilizationLow)
	if low.Capped || !almostEqual(low.OOP, 2800*0.6) {
		t.Errorf("low OOP = %v capped=%v, want %v", low.OOP, low.Capped, 2800*0.6)
	}
}

func TestEstimate_Copays(t *testing.T) {
	plan := detailedPlan("P4", 1000, 0, 0, 10000)
	plan.Benefits.Copays = model.CopaySchedule{
		PrimaryCare: model.Float(20),
		Specialist:  model.Float(40),
	}
	a := config.DefaultAssumptions()
	e := NewEstimator(a)

	b := e.OOP(plan, selfOnly(), model.UtilizationModerate)
	want := 20*a.Visits.PrimaryCare + 40*a.Visits.Specialist
	if !almostEqual(b.Copays, want) || !almostEqual(b.OOP, want) {
		t.Errorf("Copays = %v OOP = %v, want %v", b.Copays, b.OOP, want)
	}
}

func TestEstimate_ClaimsBaselineScalesWithMembers(t *testing.T) {
	plan := detailedPlan("P5", 0, 0, 0.1, 100000)
	plan.Premiums[model.SelfAndFamily] = 5000
	h := model.Household{Enrollment: model.SelfAndFamily}
	e := NewEstimator(config.DefaultAssumptions())

	if got := e.OOP(plan, h, model.UtilizationModerate).ClaimsBaseline; got != 3*4000 {
		t.Errorf("baseline for empty family = %v, want 12000", got)
	}

	h.Members = []model.Member{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}}
	if got := e.OOP(plan, h, model.UtilizationModerate).ClaimsBaseline; got != 4*4000 {
		t.Errorf("baseline for four members = %v, want 16000", got)
	}
}

func TestEstimate_InvalidBenefitDetailFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		plan  model.PlanRecord
		field string
	}{
		{"negative deductible", detailedPlan("I1", 1000, -1, 0.2, 3000), "deductible"},
		{"coinsurance above one", detailedPlan("I2", 1000, 500, 1.5, 3000), "coinsurance"},
		{"negative coinsurance", detailedPlan("I3", 1000, 500, -0.1, 3000), "coinsurance"},
		{"cap below deductible", detailedPlan("I4", 1000, 600, 0.2, 500), "oop_max"},
		{"negative deductible alone", partialPlan("I5", model.BenefitDetail{Deductible: model.Float(-500)}), "deductible"},
		{"negative cap alone", partialPlan("I6", model.BenefitDetail{OOPMax: model.Float(-1)}), "oop_max"},
		{"negative copay without core detail", partialPlan("I7", model.BenefitDetail{
			Copays: model.CopaySchedule{Specialist: model.Float(-10)},
		}), "copay_specialist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Estimate(tt.plan, selfOnly(), model.UtilizationModerate)
			if err != nil {
				t.Fatalf("Estimate returned %v; invalid detail must be recovered", err)
			}
			if got.Confidence != model.ConfidenceLow {
				t.Errorf("Confidence = %s, want Low", got.Confidence)
			}
			if !strings.Contains(got.ConfidenceReason, tt.field) {
				t.Errorf("ConfidenceReason = %q, want mention of %s", got.ConfidenceReason, tt.field)
			}
			if !almostEqual(got.OOPCost, 2500) {
				t.Errorf("OOPCost = %v, want default 2500", got.OOPCost)
			}

			var ibe *InvalidBenefitDetailError
			if !errors.As(ValidateBenefits(tt.plan.Benefits), &ibe) || ibe.Field != tt.field {
				t.Errorf("ValidateBenefits = %v, want InvalidBenefitDetailError for %s", ibe, tt.field)
			}
		})
	}
}

func TestValidateBenefits_PartialDetailIsMissing(t *testing.T) {
	d := model.BenefitDetail{Deductible: model.Float(500), OOPMax: model.Float(4000)}
	err := ValidateBenefits(d)
	if !errors.Is(err, errDetailMissing) {
		t.Fatalf("err = %v, want detail missing", err)
	}
	var ibe *InvalidBenefitDetailError
	if errors.As(err, &ibe) {
		t.Errorf("valid partial detail reported as invalid: %v", ibe)
	}
}

func TestEstimate_MissingTierPricing(t *testing.T) {
	plan := detailedPlan("M1", 1000, 0, 0, 0)
	h := model.Household{Enrollment: model.SelfAndFamily}

	_, err := Estimate(plan, h, model.UtilizationModerate)
	if !errors.Is(err, ErrMissingTierPricing) {
		t.Fatalf("err = %v, want ErrMissingTierPricing", err)
	}

	plan.Premiums[model.SelfOnly] = -5
	if _, err := Estimate(plan, selfOnly(), model.UtilizationModerate); !errors.Is(err, ErrMissingTierPricing) {
		t.Errorf("negative premium: err = %v, want ErrMissingTierPricing", err)
	}
}

func TestEstimate_TaxSavingsAndSeed(t *testing.T) {
	plan := detailedPlan("H1", 2000, 1500, 0.2, 5000)
	plan.HSAEligible = true
	plan.HSASeed = model.Float(1200)

	h := selfOnly()
	plain, _ := Estimate(plan, h, model.UtilizationModerate)
	if plain.TaxSavings != 0 {
		t.Errorf("TaxSavings without FSA/HSA = %v, want 0", plain.TaxSavings)
	}
	if plain.HSASeed != 1200 {
		t.Errorf("HSASeed = %v, want 1200", plain.HSASeed)
	}

	h.FSAHSAEligible = true
	got, _ := Estimate(plan, h, model.UtilizationModerate)
	if !almostEqual(got.TaxSavings, 2000*0.2965) {
		t.Errorf("TaxSavings = %v, want %v", got.TaxSavings, 2000*0.2965)
	}
	want := got.PremiumCost + got.AddOnPremium + got.OOPCost - got.TaxSavings - got.HSASeed
	if !almostEqual(got.Total, want) {
		t.Errorf("Total = %v, want %v", got.Total, want)
	}

	plan.HSAEligible = false
	noSeed, _ := Estimate(plan, h, model.UtilizationModerate)
	if noSeed.HSASeed != 0 {
		t.Errorf("seed on non-HSA plan = %v, want 0", noSeed.HSASeed)
	}
}

func TestEstimate_NegativeTotalNotClamped(t *testing.T) {
	plan := detailedPlan("N1", 100, 0, 0, 0)
	plan.HSAEligible = true
	plan.HSASeed = model.Float(5000)

	got, err := Estimate(plan, selfOnly(), model.UtilizationLow)
	if err != nil {
		t.Fatal(err)
	}
	if got.Total >= 0 {
		t.Errorf("Total = %v, want negative", got.Total)
	}
}

func TestEstimate_AddOnsAndIncome(t *testing.T) {
	plan := detailedPlan("A1", 1000, 0, 0, 0)
	h := selfOnly()
	h.AnnualIncome = 50000
	e := NewEstimator(config.DefaultAssumptions())

	vision := AddOns{{Program: model.ProgramVision, Label: "vision", Annual: 300}}
	got, err := e.EstimateWithAddOns(plan, h, model.UtilizationModerate, vision)
	if err != nil {
		t.Fatal(err)
	}
	if got.AddOnPremium != 300 || !almostEqual(got.Total, 1300) {
		t.Errorf("AddOnPremium = %v Total = %v, want 300 and 1300", got.AddOnPremium, got.Total)
	}
	if !almostEqual(got.PercentOfIncome, 2.6) {
		t.Errorf("PercentOfIncome = %v, want 2.6", got.PercentOfIncome)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	plan := detailedPlan("D1", 1234.56, 700, 0.25, 6500)
	plan.Benefits.Copays.Prescription = model.Float(12)
	h := model.Household{Enrollment: model.SelfOnly, FSAHSAEligible: true, AnnualIncome: 80000}

	first, _ := Estimate(plan, h, model.UtilizationHigh)
	for i := 0; i < 20; i++ {
		again, _ := Estimate(plan, h, model.UtilizationHigh)
		if again != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestEstimate_OOPMonotonicInMultiplier(t *testing.T) {
	plans := []model.PlanRecord{
		detailedPlan("M1", 1000, 500, 0.2, 3000),
		detailedPlan("M2", 1000, 2000, 0.3, 4000),
		{ID: "M3", Premiums: map[model.EnrollmentTier]float64{model.SelfOnly: 1000}},
	}
	for _, p := range plans {
		var prev float64
		for i, tier := range model.UtilizationTiers {
			r, err := Estimate(p, selfOnly(), tier)
			if err != nil {
				t.Fatal(err)
			}
			if i > 0 && r.OOPCost < prev {
				t.Errorf("%s: OOP fell from %v to %v at %s", p.ID, prev, r.OOPCost, tier)
			}
			prev = r.OOPCost
		}
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		want model.PlanCategory
	}{
		{"High Deductible Health Plan", model.CategoryHDHP},
		{"HDHP", model.CategoryHDHP},
		{"Consumer Driven Option", model.CategoryHDHP},
		{"High Option", model.CategoryRich},
		{"Rich Plan", model.CategoryRich},
		{"Standard Option", model.CategoryStandard},
		{"Basic Option", model.CategoryBasic},
		{"Value Plan", model.CategoryStandard},
	}
	for _, tt := range tests {
		if got := InferCategory(tt.name); got != tt.want {
			t.Errorf("InferCategory(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestOOP_PlannedCare(t *testing.T) {
	dental := AddOns{{Program: model.ProgramDental, Label: "dental", Annual: 400}}
	hdhp := detailedPlan("H1", 1000, 500, 0.2, 20000)
	hdhp.Name = "High Deductible Health Plan"
	noDetail := model.PlanRecord{ID: "N1", Name: "Standard Option",
		Premiums: map[model.EnrollmentTier]float64{model.SelfOnly: 1000}}

	tests := []struct {
		name      string
		plan      model.PlanRecord
		enroll    model.EnrollmentTier
		planned   model.PlannedCare
		tier      model.UtilizationTier
		addOns    AddOns
		wantEvent float64
		wantDent  float64
		wantOOP   float64
		capped    bool
	}{
		{"nothing planned", detailedPlan("E0", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{}, model.UtilizationModerate, nil, 0, 0, 1300, false},
		{"surgery on standard", detailedPlan("E1", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Surgery: true}, model.UtilizationModerate, nil, 4500, 0, 5800, false},
		{"therapy on standard", detailedPlan("E2", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Therapy: true}, model.UtilizationModerate, nil, 900, 0, 2200, false},
		{"maternity on standard", detailedPlan("E3", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Maternity: true}, model.UtilizationModerate, nil, 2250, 0, 3550, false},
		{"all events", detailedPlan("E4", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Surgery: true, Therapy: true, Maternity: true}, model.UtilizationModerate, nil, 7650, 0, 8950, false},
		{"events are not scaled", detailedPlan("E5", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Surgery: true}, model.UtilizationHigh, nil, 4500, 0, 1950 + 4500, false},
		{"hdhp pays less", hdhp, model.SelfOnly,
			model.PlannedCare{Surgery: true}, model.UtilizationModerate, nil, 9000, 0, 10300, false},
		{"events count toward the cap", detailedPlan("E6", 1000, 500, 0.2, 3000), model.SelfOnly,
			model.PlannedCare{Surgery: true}, model.UtilizationModerate, nil, 4500, 0, 3000, true},
		{"default table is uncapped", noDetail, model.SelfOnly,
			model.PlannedCare{Surgery: true}, model.UtilizationModerate, nil, 4500, 0, 2500 + 4500, false},
		{"crowns without dental coverage", detailedPlan("C1", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Crowns: 2}, model.UtilizationModerate, nil, 0, 3000, 4300, false},
		{"crowns with dental coverage", detailedPlan("C2", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Crowns: 2}, model.UtilizationModerate, dental, 0, 1500, 2800, false},
		{"dental annual max per person", detailedPlan("C3", 1000, 500, 0.2, 20000), model.SelfOnly,
			model.PlannedCare{Crowns: 10}, model.UtilizationModerate, dental, 0, 13000, 14300, false},
		{"dental max scales with family", detailedPlan("C4", 1000, 500, 0.2, 50000), model.SelfAndFamily,
			model.PlannedCare{Crowns: 10}, model.UtilizationModerate, dental, 0, 9000, 500 + 0.2*12000 + 9000, false},
		{"dental work sits outside the cap", detailedPlan("C5", 1000, 500, 0.2, 3000), model.SelfOnly,
			model.PlannedCare{Surgery: true, Crowns: 2}, model.UtilizationModerate, nil, 4500, 3000, 6000, true},
	}

	e := NewEstimator(config.DefaultAssumptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := model.Household{Enrollment: tt.enroll, Planned: tt.planned}
			b := e.OOPWithAddOns(tt.plan, h, tt.tier, tt.addOns)
			if !almostEqual(b.Events(), tt.wantEvent) {
				t.Errorf("Events = %v, want %v", b.Events(), tt.wantEvent)
			}
			if !almostEqual(b.DentalWork, tt.wantDent) {
				t.Errorf("DentalWork = %v, want %v", b.DentalWork, tt.wantDent)
			}
			if !almostEqual(b.OOP, tt.wantOOP) {
				t.Errorf("OOP = %v, want %v", b.OOP, tt.wantOOP)
			}
			if b.Capped != tt.capped {
				t.Errorf("Capped = %v, want %v", b.Capped, tt.capped)
			}
		})
	}
}

func TestEstimate_PlannedCareInTotal(t *testing.T) {
	plan := detailedPlan("T1", 1000, 500, 0.2, 20000)
	h := selfOnly()
	h.Planned = model.PlannedCare{Maternity: true, Crowns: 1}
	dental := AddOns{{Program: model.ProgramDental, Label: "dental", Annual: 400}}

	got, err := NewEstimator(config.DefaultAssumptions()).EstimateWithAddOns(plan, h, model.UtilizationModerate, dental)
	if err != nil {
		t.Fatal(err)
	}
	// 1300 utilization + 2250 maternity + 750 of a 1500 crown.
	if !almostEqual(got.OOPCost, 4300) {
		t.Errorf("OOPCost = %v, want 4300", got.OOPCost)
	}
	if !almostEqual(got.Total, 1000+400+4300) {
		t.Errorf("Total = %v, want %v", got.Total, 1000+400+4300)
	}
}

func TestOOP_PlannedCareOverrides(t *testing.T) {
	a := config.AssumptionOverrides{
		SurgeryAllowed: model.Float(10000),
		SurgeryPlanPay: map[string]float64{"standard": 0.5},
		CrownUnitCost:  model.Float(1000),
	}.Apply(config.DefaultAssumptions())
	e := NewEstimator(a)

	h := selfOnly()
	h.Planned = model.PlannedCare{Surgery: true, Crowns: 1}
	b := e.OOP(detailedPlan("O1", 1000, 0, 0, 50000), h, model.UtilizationModerate)
	if !almostEqual(b.Surgery, 5000) || !almostEqual(b.DentalWork, 1000) {
		t.Errorf("surgery = %v dental = %v, want 5000 and 1000", b.Surgery, b.DentalWork)
	}
}
