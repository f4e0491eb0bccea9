package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// CSVHeader is the column order of ranked-plan CSV exports.
var CSVHeader = []string{
	"rank", "plan_id", "carrier", "plan_name", "category", "network", "nationwide",
	"premium", "addon_premium", "oop", "tax_savings", "hsa_seed", "total",
	"percent_of_income", "confidence", "confidence_reason",
}

// cents rounds a dollar amount half away from zero to two places.
func cents(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// WriteCSV writes ranked results with currency rounded to cents.
func WriteCSV(w io.Writer, results []model.EstimationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i, r := range results {
		pct := ""
		if r.PercentOfIncome != 0 {
			pct = decimal.NewFromFloat(r.PercentOfIncome).Round(2).StringFixed(2)
		}
		rec := []string{
			strconv.Itoa(i + 1),
			r.PlanID,
			r.Carrier,
			r.PlanName,
			string(r.Category),
			r.Network,
			strconv.FormatBool(r.Nationwide),
			cents(r.PremiumCost),
			cents(r.AddOnPremium),
			cents(r.OOPCost),
			cents(r.TaxSavings),
			cents(r.HSASeed),
			cents(r.Total),
			pct,
			string(r.Confidence),
			r.ConfidenceReason,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
