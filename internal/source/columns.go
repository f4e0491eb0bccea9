package source

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/theirongolddev/fehbrank/internal/model"
)

type column int

const (
	colUnknown column = iota
	colPlanID
	colProgram
	colCarrier
	colPlanName
	colOptionType
	colNetwork
	colPremiumSelf
	colPremiumSelfPlusOne
	colPremiumFamily
	colPremiumPeriod
	colDeductible
	colCoinsurance
	colOOPMax
	colCopayPCP
	colCopaySpecialist
	colCopayUrgent
	colCopayRx
	colHSAEligible
	colHSASeed
	colNationwide
	colServiceArea
	colCarrierURL
	colSBCURL
)

// headerAliases maps normalized header text to a column. Spellings from
// the OPM plan key and rate sheets are accepted alongside the canonical
// snake_case names.
var headerAliases = map[string]column{
	"planid": colPlanID, "id": colPlanID, "enrlcode": colPlanID, "enrollmentcode": colPlanID, "plancode": colPlanID,
	"program": colProgram, "coverage": colProgram,
	"carrier": colCarrier, "carriername": colCarrier,
	"planname": colPlanName, "planoptionname": colPlanName, "planoption": colPlanName, "name": colPlanName,
	"optiontype": colOptionType, "planoptiontype": colOptionType,
	"network": colNetwork, "networktype": colNetwork,
	"premiumself": colPremiumSelf, "premiumselfonly": colPremiumSelf, "selfonly": colPremiumSelf,
	"annualemployee":     colPremiumFamily,
	"premiumselfplusone": colPremiumSelfPlusOne, "selfplusone": colPremiumSelfPlusOne,
	"premiumfamily": colPremiumFamily, "premiumselfandfamily": colPremiumFamily, "selfandfamily": colPremiumFamily,
	"selffamily":    colPremiumFamily,
	"premiumperiod": colPremiumPeriod, "period": colPremiumPeriod,
	"deductible":  colDeductible,
	"coinsurance": colCoinsurance, "coinsurancerate": colCoinsurance,
	"oopmax": colOOPMax, "outofpocketmax": colOOPMax, "outofpocketmaximum": colOOPMax, "catastrophiclimit": colOOPMax,
	"copaypcp": colCopayPCP, "pcpcopay": colCopayPCP, "copayprimarycare": colCopayPCP,
	"copayspecialist": colCopaySpecialist, "specialistcopay": colCopaySpecialist, "specptcopay": colCopaySpecialist,
	"copayurgent": colCopayUrgent, "urgentcopay": colCopayUrgent, "copayurgentcare": colCopayUrgent,
	"copayrx": colCopayRx, "rxcopay": colCopayRx, "copayprescription": colCopayRx,
	"hsaeligible": colHSAEligible, "hdhp": colHSAEligible,
	"hsaseed": colHSASeed, "hsacontribution": colHSASeed, "premiumpassthrough": colHSASeed,
	"nationwide":  colNationwide,
	"servicearea": colServiceArea, "states": colServiceArea,
	"carrierurl": colCarrierURL, "website": colCarrierURL,
	"sbcurl": colSBCURL,
}

func normalizeHeader(h string) string {
	h = strings.ToLower(CleanText(h))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '(', ')', '/', '.', '?', '&', '+':
			return -1
		}
		return r
	}, h)
}

// columnIndex maps each known column to its position in header.
// The first occurrence of a column wins.
func columnIndex(header []string) map[column]int {
	idx := make(map[column]int, len(header))
	for i, h := range header {
		c, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := idx[c]; !seen {
			idx[c] = i
		}
	}
	return idx
}

var errMissingPlanID = errors.New("missing plan id")

// rowsToPlans converts a header row plus data rows into plan records.
// firstRow is the 1-based row number of rows[0] in the source file.
func rowsToPlans(file string, header []string, rows [][]string, firstRow int) ParseResult {
	res := ParseResult{}
	idx := columnIndex(header)
	if _, ok := idx[colPlanID]; !ok {
		res.Err = eris.Errorf("%s: no plan id column in header", file)
		return res
	}

	for i, row := range rows {
		rowNum := firstRow + i
		if isBlankRow(row) {
			continue
		}
		rp := rowParser{file: file, row: rowNum, cells: row, idx: idx}
		plan, err := rp.plan()
		res.Warnings = append(res.Warnings, rp.warnings...)
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{File: file, Row: rowNum, Err: err})
			continue
		}
		plan.SourceFile = file
		res.Plans = append(res.Plans, plan)
	}
	return res
}

type rowParser struct {
	file     string
	row      int
	cells    []string
	idx      map[column]int
	warnings []RowError
}

func (rp *rowParser) text(c column) string {
	i, ok := rp.idx[c]
	if !ok || i >= len(rp.cells) {
		return ""
	}
	return CleanText(rp.cells[i])
}

func (rp *rowParser) warn(c column, err error) {
	rp.warnings = append(rp.warnings, RowError{File: rp.file, Row: rp.row, Column: columnName(c), Err: err})
}

func (rp *rowParser) amount(c column) *float64 {
	v, ok, err := ParseAmount(rp.text(c))
	if err != nil {
		rp.warn(c, err)
		return nil
	}
	if !ok {
		return nil
	}
	return &v
}

func (rp *rowParser) rate(c column) *float64 {
	v, ok, err := ParseRate(rp.text(c))
	if err != nil {
		rp.warn(c, err)
		return nil
	}
	if !ok {
		return nil
	}
	return &v
}

func (rp *rowParser) flag(c column) bool {
	v, err := ParseBool(rp.text(c))
	if err != nil {
		rp.warn(c, err)
		return false
	}
	return v
}

func (rp *rowParser) plan() (model.PlanRecord, error) {
	id := strings.ToUpper(rp.text(colPlanID))
	if id == "" {
		return model.PlanRecord{}, errMissingPlanID
	}

	program, ok := model.ParseProgram(rp.text(colProgram))
	if !ok {
		return model.PlanRecord{}, eris.Errorf("unknown program %q", rp.text(colProgram))
	}

	periods, err := periodsPerYear(rp.text(colPremiumPeriod))
	if err != nil {
		return model.PlanRecord{}, err
	}

	p := model.PlanRecord{
		ID:          id,
		Program:     program,
		Carrier:     CleanName(rp.text(colCarrier)),
		Name:        CleanName(rp.text(colPlanName)),
		OptionType:  rp.text(colOptionType),
		Network:     strings.ToUpper(rp.text(colNetwork)),
		Premiums:    make(map[model.EnrollmentTier]float64, 3),
		HSAEligible: rp.flag(colHSAEligible),
		HSASeed:     rp.amount(colHSASeed),
		Nationwide:  rp.flag(colNationwide),
		ServiceArea: ParseList(rp.text(colServiceArea)),
		CarrierURL:  rp.text(colCarrierURL),
		SBCURL:      rp.text(colSBCURL),
	}

	premiumCols := map[model.EnrollmentTier]column{
		model.SelfOnly:      colPremiumSelf,
		model.SelfPlusOne:   colPremiumSelfPlusOne,
		model.SelfAndFamily: colPremiumFamily,
	}
	for tier, c := range premiumCols {
		if v := rp.amount(c); v != nil {
			p.Premiums[tier] = *v * periods
		}
	}

	p.Benefits = model.BenefitDetail{
		Deductible:      rp.amount(colDeductible),
		CoinsuranceRate: rp.rate(colCoinsurance),
		OOPMax:          rp.amount(colOOPMax),
		Copays: model.CopaySchedule{
			PrimaryCare:  rp.amount(colCopayPCP),
			Specialist:   rp.amount(colCopaySpecialist),
			UrgentCare:   rp.amount(colCopayUrgent),
			Prescription: rp.amount(colCopayRx),
		},
	}

	return p, nil
}

func periodsPerYear(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "annual", "annually", "yearly", "year":
		return 1, nil
	case "monthly", "month":
		return 12, nil
	case "biweekly", "bi-weekly", "payperiod":
		return 26, nil
	}
	return 0, eris.Errorf("unknown premium period %q", s)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func columnName(c column) string {
	for name, col := range canonicalNames {
		if col == c {
			return name
		}
	}
	return "?"
}

var canonicalNames = map[string]column{
	"plan_id": colPlanID, "program": colProgram, "carrier": colCarrier, "plan_name": colPlanName,
	"option_type": colOptionType, "network": colNetwork, "premium_self": colPremiumSelf,
	"premium_self_plus_one": colPremiumSelfPlusOne, "premium_family": colPremiumFamily,
	"premium_period": colPremiumPeriod, "deductible": colDeductible, "coinsurance": colCoinsurance,
	"oop_max": colOOPMax, "copay_pcp": colCopayPCP, "copay_specialist": colCopaySpecialist,
	"copay_urgent": colCopayUrgent, "copay_rx": colCopayRx, "hsa_eligible": colHSAEligible,
	"hsa_seed": colHSASeed, "nationwide": colNationwide, "service_area": colServiceArea,
	"carrier_url": colCarrierURL, "sbc_url": colSBCURL,
}
