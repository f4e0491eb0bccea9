package model

import "strings"

// Program identifies which federal benefits program a plan belongs to.
type Program string

const (
	ProgramFEHB   Program = "fehb"
	ProgramDental Program = "dental"
	ProgramVision Program = "vision"
)

// ParseProgram maps dataset spellings to a Program. Blank means FEHB.
func ParseProgram(s string) (Program, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fehb", "medical", "health":
		return ProgramFEHB, true
	case "dental", "fedvip-dental", "fedvip dental":
		return ProgramDental, true
	case "vision", "fedvip-vision", "fedvip vision":
		return ProgramVision, true
	}
	return "", false
}

// CopaySchedule holds flat per-service copays. Nil fields mean the plan
// did not publish a copay for that service.
type CopaySchedule struct {
	PrimaryCare  *float64 `json:"primary_care,omitempty"`
	Specialist   *float64 `json:"specialist,omitempty"`
	UrgentCare   *float64 `json:"urgent_care,omitempty"`
	Prescription *float64 `json:"prescription,omitempty"`
}

// IsEmpty reports whether no copay was published.
func (c CopaySchedule) IsEmpty() bool {
	return c.PrimaryCare == nil && c.Specialist == nil && c.UrgentCare == nil && c.Prescription == nil
}

// BenefitDetail is the optional cost-sharing design of a plan.
type BenefitDetail struct {
	Deductible      *float64      `json:"deductible,omitempty"`
	CoinsuranceRate *float64      `json:"coinsurance_rate,omitempty"`
	OOPMax          *float64      `json:"oop_max,omitempty"`
	Copays          CopaySchedule `json:"copays"`
}

// Complete reports whether every field the OOP formula needs is present.
func (b BenefitDetail) Complete() bool {
	return b.Deductible != nil && b.CoinsuranceRate != nil && b.OOPMax != nil
}

// PlanRecord is one FEHB or FEDVIP plan option for the plan year.
type PlanRecord struct {
	ID          string                     `json:"id"`
	Program     Program                    `json:"program"`
	Carrier     string                     `json:"carrier"`
	Name        string                     `json:"name"`
	OptionType  string                     `json:"option_type,omitempty"`
	Network     string                     `json:"network,omitempty"`
	Premiums    map[EnrollmentTier]float64 `json:"premiums"`
	Benefits    BenefitDetail              `json:"benefits"`
	HSAEligible bool                       `json:"hsa_eligible"`
	HSASeed     *float64                   `json:"hsa_seed,omitempty"`
	Nationwide  bool                       `json:"nationwide"`
	ServiceArea []string                   `json:"service_area,omitempty"`
	CarrierURL  string                     `json:"carrier_url,omitempty"`
	SBCURL      string                     `json:"sbc_url,omitempty"`
	SourceFile  string                     `json:"-"`
}

// FullName joins the carrier and option name the way OPM lists plans.
func (p PlanRecord) FullName() string {
	switch {
	case p.Carrier == "":
		return p.Name
	case p.Name == "":
		return p.Carrier
	case strings.HasPrefix(p.Name, p.Carrier):
		return p.Name
	}
	return p.Carrier + " " + p.Name
}

// Premium returns the annual employee premium for a tier.
func (p PlanRecord) Premium(tier EnrollmentTier) (float64, bool) {
	v, ok := p.Premiums[tier]
	return v, ok
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 {
	return &v
}
