package history

import (
	"time"

	"github.com/google/uuid"

	"musicmerge/internal/merge"
)

// Status is the final state of a recorded run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one merge invocation.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Game       string    `json:"game"`
	OutputPath string    `json:"output_path,omitempty"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Records    int       `json:"records"`
	Masters    int       `json:"masters"`
	LogPath    string    `json:"log_path,omitempty"`

	// Plugins is populated by Get; List leaves it empty.
	Plugins []Plugin `json:"plugins,omitempty"`
}

// Plugin is one load-order entry of a run.
type Plugin struct {
	Name        string `json:"name"`
	Outcome     string `json:"outcome"`
	Records     int    `json:"records"`
	NewRecords  int    `json:"new_records"`
	AddedTracks int    `json:"added_tracks"`
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ApplyReport copies the merge outcome onto r. A nil report leaves the
// counts untouched; err marks the run failed.
func (r *Run) ApplyReport(report *merge.Report, err error) {
	r.Status = StatusSucceeded
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
	if report == nil {
		return
	}
	r.Records = report.Records
	r.Masters = len(report.Masters)
	if report.Output != "" {
		r.OutputPath = report.Output
	}
	r.Plugins = make([]Plugin, 0, len(report.Entries))
	for _, e := range report.Entries {
		r.Plugins = append(r.Plugins, Plugin{
			Name:        e.Name,
			Outcome:     string(e.Outcome),
			Records:     e.Records,
			NewRecords:  e.NewRecords,
			AddedTracks: e.AddedTracks,
		})
	}
}
