// Package model defines domain types for plan cost estimation.
package model

import (
	"fmt"
	"strings"
)

// EnrollmentTier is the FEHB enrollment type a premium is quoted for.
type EnrollmentTier string

const (
	SelfOnly      EnrollmentTier = "self-only"
	SelfPlusOne   EnrollmentTier = "self-plus-one"
	SelfAndFamily EnrollmentTier = "self-and-family"
)

// EnrollmentTiers lists every tier in display order.
var EnrollmentTiers = []EnrollmentTier{SelfOnly, SelfPlusOne, SelfAndFamily}

// ParseEnrollmentTier accepts the spellings found in OPM rate sheets and
// typed on the command line. A bare FEHB enrollment code suffix is also
// accepted: 1 = self only, 2 = self and family, 3 = self plus one.
func ParseEnrollmentTier(s string) (EnrollmentTier, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "", "&", "and").Replace(key)

	switch key {
	case "selfonly", "self", "single", "1":
		return SelfOnly, nil
	case "selfplusone", "self+one", "self+1", "selfplus1", "plusone", "3":
		return SelfPlusOne, nil
	case "selfandfamily", "self+family", "family", "selffamily", "2":
		return SelfAndFamily, nil
	}
	return "", fmt.Errorf("unknown enrollment tier %q", s)
}

// UnmarshalText lets config files use any spelling ParseEnrollmentTier
// accepts. An empty value leaves the tier unset.
func (t *EnrollmentTier) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*t = ""
		return nil
	}
	tier, err := ParseEnrollmentTier(string(b))
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// Label returns the human-readable tier name.
func (t EnrollmentTier) Label() string {
	switch t {
	case SelfOnly:
		return "Self Only"
	case SelfPlusOne:
		return "Self Plus One"
	case SelfAndFamily:
		return "Self & Family"
	}
	return string(t)
}

// UtilizationTier is an assumption about how much care a household uses.
type UtilizationTier string

const (
	UtilizationLow      UtilizationTier = "low"
	UtilizationModerate UtilizationTier = "moderate"
	UtilizationHigh     UtilizationTier = "high"
)

// UtilizationTiers lists every tier from lowest to highest.
var UtilizationTiers = []UtilizationTier{UtilizationLow, UtilizationModerate, UtilizationHigh}

// ParseUtilizationTier parses "low", "moderate" (or "medium"), and "high".
func ParseUtilizationTier(s string) (UtilizationTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return UtilizationLow, nil
	case "moderate", "medium", "mod", "m":
		return UtilizationModerate, nil
	case "high", "h":
		return UtilizationHigh, nil
	}
	return "", fmt.Errorf("unknown utilization tier %q", s)
}

// Label returns the capitalized tier name.
func (u UtilizationTier) Label() string {
	switch u {
	case UtilizationLow:
		return "Low"
	case UtilizationModerate:
		return "Moderate"
	case UtilizationHigh:
		return "High"
	}
	return string(u)
}

// Member is one person covered by the enrollment.
type Member struct {
	Name         string `toml:"name" yaml:"name"`
	Relationship string `toml:"relationship,omitempty" yaml:"relationship,omitempty"`
	Age          int    `toml:"age,omitempty" yaml:"age,omitempty"`
}

// PlannedCare is major care the household expects this year. It is
// priced per plan on top of the utilization estimate.
type PlannedCare struct {
	Surgery   bool `toml:"surgery,omitempty" yaml:"surgery,omitempty"`
	Therapy   bool `toml:"therapy,omitempty" yaml:"therapy,omitempty"`
	Maternity bool `toml:"maternity,omitempty" yaml:"maternity,omitempty"`
	// Crowns counts crowns or implants.
	Crowns int `toml:"crowns,omitempty" yaml:"crowns,omitempty"`
}

// Any reports whether any planned care is set.
func (p PlannedCare) Any() bool {
	return p.Surgery || p.Therapy || p.Maternity || p.Crowns > 0
}

// Household describes who is covered and how they pay.
type Household struct {
	Enrollment     EnrollmentTier `toml:"enrollment" yaml:"enrollment"`
	Members        []Member       `toml:"members,omitempty" yaml:"members,omitempty"`
	FSAHSAEligible bool           `toml:"fsa_hsa_eligible" yaml:"fsa_hsa_eligible"`
	AnnualIncome   float64        `toml:"annual_income,omitempty" yaml:"annual_income,omitempty"`
	ZIP            string         `toml:"zip,omitempty" yaml:"zip,omitempty"`
	Planned        PlannedCare    `toml:"planned" yaml:"planned,omitempty"`
}

// CoveredCount returns the number of covered people used to scale the
// claims baseline. When no members are listed the enrollment tier implies
// a minimum head count.
func (h Household) CoveredCount() int {
	n := len(h.Members)
	minimum := 1
	switch h.Enrollment {
	case SelfPlusOne:
		minimum = 2
	case SelfAndFamily:
		minimum = 3
	}
	if n == 0 {
		return minimum
	}
	return n
}
