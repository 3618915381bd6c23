package runstore

import "time"

// Status represents the lifecycle of a pipeline run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAnalyzing  Status = "analyzing"
	StatusPlanned    Status = "planned"
	StatusGenerating Status = "generating"
	StatusAssembling Status = "assembling"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusPlanned,
	StatusGenerating,
	StatusAssembling,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// forwardTransitions lists the legal non-failure status progressions.
// Generating may complete directly when assembly is skipped.
var forwardTransitions = map[Status][]Status{
	StatusPending:    {StatusAnalyzing},
	StatusAnalyzing:  {StatusPlanned},
	StatusPlanned:    {StatusGenerating},
	StatusGenerating: {StatusAssembling, StatusCompleted},
	StatusAssembling: {StatusCompleted},
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) canAdvanceTo(next Status) bool {
	if next == StatusFailed {
		return !s.Terminal()
	}
	for _, allowed := range forwardTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Run is one pipeline execution persisted in SQLite.
type Run struct {
	ID           string
	AudioFile    string
	Theme        string
	Status       Status
	ErrorMessage string
	AnalysisFile string
	PlanFile     string
	ManifestFile string
	OutputFile   string
	ReportFile   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
