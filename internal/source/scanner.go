// Package source discovers and parses FEHB and FEDVIP plan dataset files.
package source

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

//go:embed sample/plans_2026_sample.csv
var sampleCSV []byte

// SampleName labels plans that come from the bundled sample dataset.
const SampleName = "bundled:plans_2026_sample.csv"

// ScanDir discovers dataset files at path. A file path is returned as-is
// when its extension is supported; a directory is walked recursively.
// Results are sorted by path so merges are deterministic.
func ScanDir(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scan: stat %s", path)
	}
	if !info.IsDir() {
		f, ok := classify(path)
		if !ok {
			return nil, eris.Errorf("scan: unsupported dataset file %s", path)
		}
		return []DiscoveredFile{f}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		// Excel lock files
		if strings.HasPrefix(d.Name(), "~$") {
			return nil
		}
		if f, ok := classify(p); ok {
			files = append(files, f)
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func classify(path string) (DiscoveredFile, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DiscoveredFile{Path: path, Format: FormatCSV}, true
	case ".xlsx":
		return DiscoveredFile{Path: path, Format: FormatXLSX}, true
	case ".json":
		return DiscoveredFile{Path: path, Format: FormatJSON}, true
	}
	return DiscoveredFile{}, false
}

// ParseFile reads one dataset file into plan records.
func ParseFile(df DiscoveredFile) ParseResult {
	var res ParseResult
	switch df.Format {
	case FormatXLSX:
		res = ReadXLSX(df.Path)
	case FormatCSV, FormatJSON:
		data, err := os.ReadFile(df.Path)
		if err != nil {
			return ParseResult{File: df, Err: eris.Wrapf(err, "read %s", df.Path)}
		}
		if df.Format == FormatCSV {
			res = ReadCSV(bytes.NewReader(data), df.Path)
		} else {
			res = ReadJSON(data, df.Path)
		}
	default:
		res = ParseResult{Err: eris.Errorf("unsupported format %q", df.Format)}
	}
	res.File = df
	return res
}

// ParseSample parses the bundled sample dataset.
func ParseSample() ParseResult {
	res := ReadCSV(bytes.NewReader(sampleCSV), SampleName)
	res.File = DiscoveredFile{Path: SampleName, Format: FormatCSV}
	return res
}
