package pipeline

import (
	"fmt"
	"time"
)

// Run kinds.
const (
	KindRun     = "run"
	KindIngest  = "ingest"
	KindRebuild = "rebuild"
)

// RunResult tracks the outcome of one fetch-classify-merge-write cycle.
type RunResult struct {
	RunID     string         `json:"run_id"`
	Kind      string         `json:"kind"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Fetched   int            `json:"fetched"`
	Dropped   map[string]int `json:"dropped"`
	NewVideos int            `json:"new_videos"`
	Total     int            `json:"total"`
	Written   bool           `json:"written"`
	Errors    []string       `json:"errors"`
	Success   bool           `json:"success"`
}

func newResult(id, kind string, start time.Time) *RunResult {
	return &RunResult{
		RunID:     id,
		Kind:      kind,
		StartedAt: start,
		Dropped:   map[string]int{},
		Errors:    []string{},
	}
}

// AddError records an error message.
func (r *RunResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *RunResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *RunResult) Summary() string {
	dropped := 0
	for _, n := range r.Dropped {
		dropped += n
	}
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	return fmt.Sprintf(
		"%s %s: status=%s fetched=%d dropped=%d new=%d total=%d errors=%d duration=%s",
		r.Kind, r.RunID, status, r.Fetched, dropped, r.NewVideos, r.Total,
		len(r.Errors), r.Duration.Round(time.Millisecond),
	)
}
