package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingTierPricing means a plan publishes no usable premium for the
// household's enrollment tier. Such plans are excluded from rankings.
var ErrMissingTierPricing = errors.New("no premium for enrollment tier")

// ErrNoPlans is returned by the loaders when no dataset yielded a plan.
var ErrNoPlans = errors.New("no plans loaded")

// InvalidBenefitDetailError describes benefit detail that is present but
// unusable. Estimate recovers from it by falling back to the default OOP
// table and reports it as the confidence reason.
type InvalidBenefitDetailError struct {
	Field string
	Value float64
	Rule  string
}

func (e *InvalidBenefitDetailError) Error() string {
	return fmt.Sprintf("invalid benefit detail: %s %g %s", e.Field, e.Value, e.Rule)
}
