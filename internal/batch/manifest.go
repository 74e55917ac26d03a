package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Report is the summary written next to the oriented files.
type Report struct {
	Files    int      `json:"files"`
	Success  int      `json:"success"`
	Oriented int      `json:"oriented"`
	Failed   int      `json:"failed_joints"`
	Results  []Result `json:"results"`
}

// Summarize totals results.
func Summarize(results []Result) Report {
	rep := Report{Files: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			rep.Success++
		}
		rep.Oriented += r.Oriented
		rep.Failed += len(r.Failed)
	}
	return rep
}

// WriteReport writes report.json to path.
func WriteReport(path string, results []Result) error {
	data, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
