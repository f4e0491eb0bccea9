package pipeline

import (
	"strings"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// InferCategory classifies a plan option by keywords in its name.
// HDHP is checked first so "High Deductible" is not read as a rich plan.
func InferCategory(name string) model.PlanCategory {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "hdhp"), strings.Contains(n, "high deductible"), strings.Contains(n, "consumer"):
		return model.CategoryHDHP
	case strings.Contains(n, "high"), strings.Contains(n, "rich"):
		return model.CategoryRich
	case strings.Contains(n, "standard"):
		return model.CategoryStandard
	case strings.Contains(n, "basic"):
		return model.CategoryBasic
	}
	return model.CategoryStandard
}

// ParseCategory maps user input to a category.
func ParseCategory(s string) (model.PlanCategory, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HDHP", "CDHP":
		return model.CategoryHDHP, true
	case "RICH", "HIGH":
		return model.CategoryRich, true
	case "STANDARD", "STD":
		return model.CategoryStandard, true
	case "BASIC":
		return model.CategoryBasic, true
	}
	return "", false
}
