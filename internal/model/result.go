package model

// Confidence says whether an estimate used the plan's own benefit detail.
type Confidence string

const (
	ConfidenceHigh Confidence = "High"
	ConfidenceLow  Confidence = "Low"
)

// PlanCategory is the coverage level inferred from the plan name.
type PlanCategory string

const (
	CategoryHDHP     PlanCategory = "HDHP"
	CategoryRich     PlanCategory = "RICH"
	CategoryStandard PlanCategory = "STANDARD"
	CategoryBasic    PlanCategory = "BASIC"
)

// EstimationResult is the per-plan cost estimate for one run.
type EstimationResult struct {
	PlanID           string       `json:"plan_id"`
	Carrier          string       `json:"carrier"`
	PlanName         string       `json:"plan_name"`
	Category         PlanCategory `json:"category"`
	Network          string       `json:"network,omitempty"`
	Nationwide       bool         `json:"nationwide"`
	PremiumCost      float64      `json:"premium"`
	AddOnPremium     float64      `json:"addon_premium"`
	OOPCost          float64      `json:"oop"`
	TaxSavings       float64      `json:"tax_savings"`
	HSASeed          float64      `json:"hsa_seed"`
	Total            float64      `json:"total"`
	Confidence       Confidence   `json:"confidence"`
	ConfidenceReason string       `json:"confidence_reason,omitempty"`
	PercentOfIncome  float64      `json:"percent_of_income,omitempty"`
}

// Exclusion records why a plan was left out of a ranking.
type Exclusion struct {
	PlanID string `json:"plan_id"`
	Reason string `json:"reason"`
}
