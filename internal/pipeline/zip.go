package pipeline

import "strconv"

type zipRange struct {
	lo, hi int
	state  string
}

// zip3States maps 3-digit ZIP prefixes to USPS state codes.
var zip3States = []zipRange{
	{5, 5, "NY"}, {6, 7, "PR"}, {8, 8, "VI"}, {9, 9, "PR"},
	{10, 27, "MA"}, {28, 29, "RI"}, {30, 38, "NH"}, {39, 49, "ME"},
	{50, 54, "VT"}, {55, 55, "MA"}, {56, 59, "VT"}, {60, 69, "CT"},
	{70, 89, "NJ"}, {90, 99, "AE"}, {100, 149, "NY"}, {150, 196, "PA"},
	{197, 199, "DE"}, {200, 200, "DC"}, {201, 201, "VA"}, {202, 205, "DC"},
	{206, 219, "MD"}, {220, 246, "VA"}, {247, 268, "WV"}, {270, 289, "NC"},
	{290, 299, "SC"}, {300, 319, "GA"}, {320, 349, "FL"}, {350, 369, "AL"},
	{370, 385, "TN"}, {386, 397, "MS"}, {398, 399, "GA"}, {400, 427, "KY"},
	{430, 459, "OH"}, {460, 479, "IN"}, {480, 499, "MI"}, {500, 528, "IA"},
	{530, 549, "WI"}, {550, 567, "MN"}, {570, 577, "SD"}, {580, 588, "ND"},
	{590, 599, "MT"}, {600, 629, "IL"}, {630, 658, "MO"}, {660, 679, "KS"},
	{680, 693, "NE"}, {700, 714, "LA"}, {716, 729, "AR"}, {730, 749, "OK"},
	{750, 799, "TX"}, {800, 816, "CO"}, {820, 831, "WY"}, {832, 838, "ID"},
	{840, 847, "UT"}, {850, 865, "AZ"}, {870, 884, "NM"}, {885, 885, "TX"},
	{889, 898, "NV"}, {900, 961, "CA"}, {962, 966, "AP"}, {967, 968, "HI"},
	{969, 969, "GU"}, {970, 979, "OR"}, {980, 994, "WA"}, {995, 999, "AK"},
}

// StateForZIP returns the state code for a 5-digit (or ZIP+4) code.
func StateForZIP(zip string) (string, bool) {
	prefix, ok := zipPrefix(zip)
	if !ok {
		return "", false
	}
	n, _ := strconv.Atoi(prefix)
	for _, r := range zip3States {
		if n >= r.lo && n <= r.hi {
			return r.state, true
		}
	}
	return "", false
}

// zipPrefix returns the first three digits of a ZIP code.
func zipPrefix(zip string) (string, bool) {
	if len(zip) < 5 {
		return "", false
	}
	for _, c := range zip[:5] {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return zip[:3], true
}
