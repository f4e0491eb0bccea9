package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// LoadHousehold reads a YAML household profile and validates it.
func LoadHousehold(path string) (model.Household, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied profile path
	if err != nil {
		return model.Household{}, fmt.Errorf("reading household %s: %w", path, err)
	}

	var raw struct {
		Enrollment     string            `yaml:"enrollment"`
		Members        []model.Member    `yaml:"members"`
		FSAHSAEligible bool              `yaml:"fsa_hsa_eligible"`
		AnnualIncome   float64           `yaml:"annual_income"`
		ZIP            string            `yaml:"zip"`
		Planned        model.PlannedCare `yaml:"planned"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.Household{}, fmt.Errorf("parsing household YAML: %w", err)
	}

	h := model.Household{
		Members:        raw.Members,
		FSAHSAEligible: raw.FSAHSAEligible,
		AnnualIncome:   raw.AnnualIncome,
		ZIP:            raw.ZIP,
		Planned:        raw.Planned,
	}
	if raw.Enrollment == "" {
		h.Enrollment = impliedEnrollment(len(raw.Members))
	} else {
		tier, err := model.ParseEnrollmentTier(raw.Enrollment)
		if err != nil {
			return model.Household{}, fmt.Errorf("household %s: %w", path, err)
		}
		h.Enrollment = tier
	}

	if err := ValidateHousehold(h); err != nil {
		return model.Household{}, fmt.Errorf("household %s: %w", path, err)
	}
	return h, nil
}

// SaveHousehold writes h as a YAML profile.
func SaveHousehold(path string, h model.Household) error {
	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("encoding household: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing household: %w", err)
	}
	return nil
}

// ValidateHousehold checks that the enrollment tier can cover the listed
// members and that numeric fields are sane.
func ValidateHousehold(h model.Household) error {
	switch h.Enrollment {
	case model.SelfOnly:
		if len(h.Members) > 1 {
			return fmt.Errorf("self-only enrollment cannot cover %d members", len(h.Members))
		}
	case model.SelfPlusOne:
		if len(h.Members) > 2 {
			return fmt.Errorf("self-plus-one enrollment cannot cover %d members", len(h.Members))
		}
	case model.SelfAndFamily:
	default:
		return fmt.Errorf("enrollment tier %q is not valid", h.Enrollment)
	}

	if h.AnnualIncome < 0 {
		return fmt.Errorf("annual income cannot be negative")
	}
	if h.Planned.Crowns < 0 {
		return fmt.Errorf("crown count cannot be negative")
	}
	for i, m := range h.Members {
		if m.Age < 0 {
			return fmt.Errorf("member %d (%s) has negative age", i, m.Name)
		}
	}
	return nil
}

func impliedEnrollment(members int) model.EnrollmentTier {
	switch {
	case members <= 1:
		return model.SelfOnly
	case members == 2:
		return model.SelfPlusOne
	default:
		return model.SelfAndFamily
	}
}
