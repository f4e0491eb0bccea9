package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/theirongolddev/fehbrank/internal/model"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "plans.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func findPlan(t *testing.T, plans []model.PlanRecord, id string) model.PlanRecord {
	t.Helper()
	for _, p := range plans {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("plan %s not found", id)
	return model.PlanRecord{}
}

func TestReadCSV_AliasesAndPeriods(t *testing.T) {
	data := `Enrl_Code,Carrier Name,Plan Option Name,Network Type,Premium Period,Self Only,Self Plus One,Self & Family,Deductible,Coinsurance,Out-of-Pocket Max,HSA Eligible,HSA Seed
2g1,NORTHERN VALLEY HMO,High Option,hmo,monthly,100,200,300,"$1,000",20%,"$6,500",no,
,Orphan,Row,PPO,annual,1,2,3,,,,,
2g4,Northern Valley HMO,HDHP,hmo,annual,1200,,3000,Not covered,abc,5000,yes,750
`
	res := ReadCSV(strings.NewReader(data), "plans.csv")
	require.NoError(t, res.Err)
	require.Len(t, res.Plans, 2)
	require.Len(t, res.Skipped, 1)
	assert.ErrorIs(t, res.Skipped[0], errMissingPlanID)
	assert.Equal(t, 3, res.Skipped[0].Row)

	hmo := findPlan(t, res.Plans, "2G1")
	assert.Equal(t, "Northern Valley Hmo", hmo.Carrier)
	assert.Equal(t, "HMO", hmo.Network)
	assert.Equal(t, model.ProgramFEHB, hmo.Program)
	assert.InDelta(t, 1200, hmo.Premiums[model.SelfOnly], 1e-9)
	assert.InDelta(t, 3600, hmo.Premiums[model.SelfAndFamily], 1e-9)
	require.True(t, hmo.Benefits.Complete())
	assert.InDelta(t, 1000, *hmo.Benefits.Deductible, 1e-9)
	assert.InDelta(t, 0.2, *hmo.Benefits.CoinsuranceRate, 1e-9)
	assert.True(t, hmo.Benefits.Copays.IsEmpty())
	assert.Equal(t, "plans.csv", hmo.SourceFile)

	hdhp := findPlan(t, res.Plans, "2G4")
	_, ok := hdhp.Premium(model.SelfPlusOne)
	assert.False(t, ok)
	assert.InDelta(t, NotCoveredAmount, *hdhp.Benefits.Deductible, 1e-9)
	assert.Nil(t, hdhp.Benefits.CoinsuranceRate)
	assert.True(t, hdhp.HSAEligible)
	require.NotNil(t, hdhp.HSASeed)
	assert.InDelta(t, 750, *hdhp.HSASeed, 1e-9)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "coinsurance", res.Warnings[0].Column)
}

func TestReadCSV_NoPlanIDColumn(t *testing.T) {
	res := ReadCSV(strings.NewReader("carrier,plan_name\nA,B\n"), "bad.csv")
	assert.Error(t, res.Err)
	assert.Empty(t, res.Plans)
}

func TestReadCSV_BadProgramAndPeriod(t *testing.T) {
	data := "plan_id,program,premium_period,premium_self\nA1,life,annual,10\nA2,fehb,weekly,10\nA3,dental,monthly,5\n"
	res := ReadCSV(strings.NewReader(data), "mixed.csv")
	require.NoError(t, res.Err)
	require.Len(t, res.Plans, 1)
	assert.Len(t, res.Skipped, 2)
	assert.Equal(t, model.ProgramDental, res.Plans[0].Program)
	assert.InDelta(t, 60, res.Plans[0].Premiums[model.SelfOnly], 1e-9)
}

func TestReadCSV_RowErrorsCarryStack(t *testing.T) {
	data := "plan_id,program,premium_period,premium_self\nA1,life,annual,10\nA2,fehb,weekly,10\n"
	res := ReadCSV(strings.NewReader(data), "mixed.csv")
	require.Len(t, res.Skipped, 2)
	for _, skipped := range res.Skipped {
		u := eris.Unpack(skipped.Err)
		assert.Nil(t, u.ErrExternal, "row %d: %v", skipped.Row, skipped.Err)
		assert.NotEmpty(t, u.ErrRoot.Stack, "row %d: %v", skipped.Row, skipped.Err)
	}

	header := ReadCSV(strings.NewReader("carrier,plan_name\nA,B\n"), "bad.csv")
	require.Error(t, header.Err)
	assert.NotEmpty(t, eris.Unpack(header.Err).ErrRoot.Stack)
	assert.Contains(t, header.Err.Error(), "no plan id column")
}

func TestReadXLSX_PrefersPlansSheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Notes": {{"this sheet is ignored"}},
		"Plans": {
			{"plan_id", "carrier", "plan_name", "premium_self", "nationwide", "service_area"},
			{"111", "Sample Federal", "Standard Option", "3000", "yes", ""},
			{"", "", "", "", "", ""},
			{"2G1", "Valley", "High Option", "2400", "no", "MN;WI"},
		},
	})

	res := ReadXLSX(path)
	require.NoError(t, res.Err)
	require.Len(t, res.Plans, 2)
	assert.Empty(t, res.Skipped)
	assert.True(t, findPlan(t, res.Plans, "111").Nationwide)
	assert.Equal(t, []string{"MN", "WI"}, findPlan(t, res.Plans, "2G1").ServiceArea)
}

func TestReadXLSX_FirstSheetFallback(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Rates": {
			{"Plan ID", "Self Only"},
			{"X1", "$2,000"},
		},
	})
	res := ReadXLSX(path)
	require.NoError(t, res.Err)
	require.Len(t, res.Plans, 1)
	assert.InDelta(t, 2000, res.Plans[0].Premiums[model.SelfOnly], 1e-9)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	mem := readXLSXBytes(data, "mem.xlsx")
	require.NoError(t, mem.Err)
	assert.Equal(t, "mem.xlsx", mem.Plans[0].SourceFile)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	res := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, res.Err)
}

func TestReadJSON(t *testing.T) {
	data := []byte(`[
		{"plan_id": "V01", "program": "vision", "carrier": "Sample Vision", "premium_self": 95.5,
		 "service_area": ["va", "md"], "nationwide": false},
		{"plan_id": 224, "carrier": "Sample Mutual", "premium_self": "1,900", "hsa_eligible": true,
		 "deductible": 2000, "coinsurance": 0.2, "oop_max": 7000}
	]`)
	res := ReadJSON(data, "plans.json")
	require.NoError(t, res.Err)
	require.Len(t, res.Plans, 2)

	v := findPlan(t, res.Plans, "V01")
	assert.Equal(t, model.ProgramVision, v.Program)
	assert.Equal(t, []string{"VA", "MD"}, v.ServiceArea)

	m := findPlan(t, res.Plans, "224")
	assert.True(t, m.HSAEligible)
	assert.True(t, m.Benefits.Complete())
	assert.InDelta(t, 1900, m.Premiums[model.SelfOnly], 1e-9)
}

func TestReadJSON_Malformed(t *testing.T) {
	res := ReadJSON([]byte(`{"plan_id": "x"`), "broken.json")
	assert.Error(t, res.Err)
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.json", "~$lock.xlsx", "notes.txt", ".hidden/c.csv", "sub/d.xlsx"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("plan_id\n"), 0o644))
	}

	files, err := ScanDir(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f.Path)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.json", "b.csv", "sub/d.xlsx"}, names)

	single, err := ScanDir(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, FormatCSV, single[0].Format)

	_, err = ScanDir(filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)
}

func TestParseSample(t *testing.T) {
	res := ParseSample()
	require.NoError(t, res.Err)
	assert.Empty(t, res.Skipped)
	assert.Empty(t, res.Warnings)
	assert.Len(t, res.Plans, 16)

	std := findPlan(t, res.Plans, "101")
	assert.InDelta(t, 120.50*26, std.Premiums[model.SelfOnly], 1e-6)
	assert.False(t, std.Benefits.Copays.IsEmpty())
	assert.Equal(t, SampleName, std.SourceFile)

	noFamily := findPlan(t, res.Plans, "5T4")
	_, ok := noFamily.Premium(model.SelfAndFamily)
	assert.False(t, ok)
}
