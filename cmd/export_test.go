package cmd

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// execute runs rootCmd with args after restoring every flag to its
// default, so no value or Changed state leaks between runs.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else if err := f.Value.Set(f.DefValue); err != nil {
				t.Fatalf("resetting --%s: %v", f.Name, err)
			}
			f.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		reset(c.Flags())
	}
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

type exportedRanking struct {
	RunID      string                   `json:"run_id"`
	Household  model.Household          `json:"household"`
	Considered int                      `json:"considered"`
	Excluded   int                      `json:"excluded"`
	Results    []model.EstimationResult `json:"results"`
}

func readExport(t *testing.T, path string) exportedRanking {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var doc exportedRanking
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	return doc
}

func isolate(t *testing.T) string {
	t.Helper()
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("FEHBRANK_DATA", "")
	return cfgHome
}

func TestExportSampleRanking(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	jsonOut := filepath.Join(dir, "ranking.json")

	shared := []string{"--enrollment", "family", "--fsa", "--top=-1", "--quiet"}
	if err := execute(t, append([]string{"export", "--format", "json", "--output", jsonOut}, shared...)...); err != nil {
		t.Fatalf("export json: %v", err)
	}
	doc := readExport(t, jsonOut)

	if doc.RunID == "" {
		t.Error("missing run id")
	}
	if doc.Household.Enrollment != model.SelfAndFamily || !doc.Household.FSAHSAEligible {
		t.Errorf("household = %+v, want family and FSA eligible", doc.Household)
	}
	if doc.Excluded != 1 {
		t.Errorf("excluded = %d, want 1 (plan without a family premium)", doc.Excluded)
	}
	if len(doc.Results) != doc.Considered-doc.Excluded {
		t.Errorf("results = %d, want %d", len(doc.Results), doc.Considered-doc.Excluded)
	}
	for i := 1; i < len(doc.Results); i++ {
		if doc.Results[i-1].Total > doc.Results[i].Total {
			t.Fatalf("results not ascending at %d", i)
		}
	}

	csvOut := filepath.Join(dir, "ranking.csv")
	if err := execute(t, append([]string{"export", "--format", "csv", "--output", csvOut}, shared...)...); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	f, err := os.Open(csvOut)
	if err != nil {
		t.Fatalf("opening csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(records) != len(doc.Results)+1 {
		t.Errorf("csv rows = %d, want %d", len(records), len(doc.Results)+1)
	}
	if records[1][1] != doc.Results[0].PlanID {
		t.Errorf("first csv plan = %s, want %s", records[1][1], doc.Results[0].PlanID)
	}
}

func TestExportNationwideFlagOverridesConfig(t *testing.T) {
	cfgHome := isolate(t)
	cfgDir := filepath.Join(cfgHome, "fehbrank")
	if err := os.MkdirAll(cfgDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"),
		[]byte("[general]\nnationwide_only = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "ranking.json")

	if err := execute(t, "export", "--format", "json", "--output", out, "--top=-1", "--quiet"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := readExport(t, out).Considered; got != 7 {
		t.Errorf("config nationwide_only: considered = %d, want the 7 nationwide plans", got)
	}

	if err := execute(t, "export", "--format", "json", "--output", out, "--top=-1", "--quiet", "--nationwide=false"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := readExport(t, out).Considered; got != 12 {
		t.Errorf("--nationwide=false: considered = %d, want all 12 FEHB plans", got)
	}
}

func TestExportReportsUnwritableOutput(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "missing", "ranking.csv")
	if err := execute(t, "export", "--output", out, "--quiet"); err == nil {
		t.Error("expected error for output in a missing directory")
	}
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseInto(t *testing.T) {
	diskFull := errors.New("disk full")

	var err error
	closeInto(&err, failingCloser{diskFull}, "out.csv")
	if !errors.Is(err, diskFull) {
		t.Errorf("err = %v, want the close error", err)
	}

	earlier := errors.New("write failed")
	err = earlier
	closeInto(&err, failingCloser{diskFull}, "out.csv")
	if err != earlier {
		t.Errorf("err = %v, want the earlier error kept", err)
	}

	err = nil
	closeInto(&err, failingCloser{}, "out.csv")
	if err != nil {
		t.Errorf("err = %v, want nil after a clean close", err)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	isolate(t)
	if err := execute(t, "export", "--format", "xml", "--quiet"); err == nil {
		t.Error("expected error for xml format")
	}
}
