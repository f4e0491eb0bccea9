package pipeline

import (
	"slices"
	"strings"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// Filter selects which plans are ranked. The zero value keeps every
// FEHB medical plan.
type Filter struct {
	Program        model.Program
	NationwideOnly bool
	Networks       []string
	Carrier        string
	Categories     []model.PlanCategory
	HSAOnly        bool
	ZIP            string
	State          string
}

// Match reports whether plan passes every set criterion.
func (f Filter) Match(p model.PlanRecord) bool {
	program := f.Program
	if program == "" {
		program = model.ProgramFEHB
	}
	if p.Program != program {
		return false
	}
	if f.NationwideOnly && !p.Nationwide {
		return false
	}
	if f.HSAOnly && !p.HSAEligible {
		return false
	}
	if len(f.Networks) > 0 && !slices.ContainsFunc(f.Networks, func(n string) bool {
		return strings.EqualFold(n, p.Network)
	}) {
		return false
	}
	if f.Carrier != "" && !strings.Contains(strings.ToLower(p.Carrier), strings.ToLower(f.Carrier)) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, InferCategory(p.Name)) {
		return false
	}
	return f.servesArea(p)
}

// servesArea checks the ZIP and state criteria. Nationwide plans serve
// every area, and plans that publish no service area are kept.
func (f Filter) servesArea(p model.PlanRecord) bool {
	if f.ZIP == "" && f.State == "" {
		return true
	}
	if p.Nationwide || len(p.ServiceArea) == 0 {
		return true
	}

	state := strings.ToUpper(f.State)
	var prefix string
	if f.ZIP != "" {
		prefix, _ = zipPrefix(f.ZIP)
		if state == "" {
			state, _ = StateForZIP(f.ZIP)
		}
	}
	for _, area := range p.ServiceArea {
		if (state != "" && area == state) || (prefix != "" && area == prefix) {
			return true
		}
	}
	return false
}

// Apply returns the plans that match, in input order.
func (f Filter) Apply(plans []model.PlanRecord) []model.PlanRecord {
	out := make([]model.PlanRecord, 0, len(plans))
	for _, p := range plans {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
