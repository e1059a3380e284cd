// Package summary writes the machine-readable record of a coverage run next
// to its reports.
package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lucasnoah/covergate/internal/chain"
)

// Run describes one finished coverage run.
type Run struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"` // "success", "failed"
	Error           string             `json:"error,omitempty"`
	Runner          string             `json:"runner"`
	TestAssemblies  []string           `json:"test_assemblies"`
	ScopeAssemblies []string           `json:"scope_assemblies"`
	Steps           []chain.StepResult `json:"steps"`
	Outputs         Outputs            `json:"outputs"`
	StartedAt       string             `json:"started_at"`
	FinishedAt      string             `json:"finished_at"`
}

// Outputs lists the files the run was asked to produce.
type Outputs struct {
	NUnitResult      string `json:"nunit_result"`
	CoverageSnapshot string `json:"coverage_snapshot"`
	XMLReport        string `json:"xml_report"`
	HTMLReport       string `json:"html_report"`
}

// Finish stamps the terminal status of the run.
func (r *Run) Finish(err error) {
	r.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	r.Status = "success"
	if err != nil {
		r.Status = "failed"
		r.Error = err.Error()
	}
}

// Write stores r as indented JSON at path. The file is replaced through a
// rename so readers never see a partial summary.
func Write(path string, r *Run) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create summary directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".summary-*.json")
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace summary: %w", err)
	}
	return nil
}

// Read loads a summary written by Write.
func Read(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse summary %s: %w", path, err)
	}
	return &r, nil
}
