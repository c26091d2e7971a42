// Package report holds the per-environment version report and renders it
// for the terminal, JSON or YAML.
package report

import (
	"time"
)

// Status classifies one instance against the fleet's base version.
type Status string

const (
	StatusCurrent  Status = "current"
	StatusOutdated Status = "outdated"
	StatusMissing  Status = "missing"
	// StatusUnknown is used when no base version is available to compare.
	StatusUnknown Status = "unknown"
)

// Mode records how the report's output objects were selected.
type Mode string

const (
	ModeRun     Mode = "run"
	ModeGlobal  Mode = "global"
	ModeDaily   Mode = "daily"
	ModeCommand Mode = "command"
)

// Entry is one instance's line in a report.
type Entry struct {
	InstanceID string `json:"instance_id" yaml:"instance_id"`
	Value      string `json:"value,omitempty" yaml:"value,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Status     Status `json:"status" yaml:"status"`
}

// Report is the outcome of one collection for an environment.
type Report struct {
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	Environment string    `json:"environment" yaml:"environment"`
	Mode        Mode      `json:"mode" yaml:"mode"`
	RunID       string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	BaseVersion string    `json:"base_version,omitempty" yaml:"base_version,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Entries     []Entry   `json:"entries" yaml:"entries"`
}

// Classify compares a reported value with the base version.
func Classify(value, base string) Status {
	if base == "" {
		return StatusUnknown
	}
	if value == base {
		return StatusCurrent
	}
	return StatusOutdated
}

// Counts tallies entries per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, e := range r.Entries {
		counts[e.Status]++
	}
	return counts
}

// Healthy reports whether every instance reported the base version.
func (r *Report) Healthy() bool {
	for _, e := range r.Entries {
		if e.Status == StatusOutdated || e.Status == StatusMissing {
			return false
		}
	}
	return true
}
