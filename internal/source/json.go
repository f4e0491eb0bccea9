package source

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// ReadJSON parses a JSON array of flat plan objects. Keys use the same
// names as CSV headers; values may be strings, numbers, or booleans.
func ReadJSON(data []byte, file string) ParseResult {
	var objs []map[string]any
	if err := json.Unmarshal(data, &objs); err != nil {
		return ParseResult{Err: eris.Wrapf(err, "json: decode %s", file)}
	}

	keySet := make(map[string]struct{})
	for _, o := range objs {
		for k := range o {
			keySet[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keySet))
	for k := range keySet {
		header = append(header, k)
	}
	sort.Strings(header)

	rows := make([][]string, len(objs))
	for i, o := range objs {
		row := make([]string, len(header))
		for j, k := range header {
			row[j] = jsonCell(o[k])
		}
		rows[i] = row
	}
	// Objects are numbered from 1 so row numbers read like array positions.
	return rowsToPlans(file, header, rows, 1)
}

func jsonCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = jsonCell(e)
		}
		return strings.Join(parts, ";")
	}
	return ""
}
