package docbase

import "time"

// JobKind identifies the type of ingestion job.
type JobKind string

// Ingestion job kinds.
const (
	JobCrawl  JobKind = "crawl"
	JobImport JobKind = "import"
)

// JobState is the lifecycle state of the ingestion job slot.
type JobState string

// Job states. The slot returns to idle after any terminal state.
const (
	JobIdle      JobState = "idle"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobCancelled JobState = "cancelled"
	JobFailed    JobState = "failed"
)

// JobStatus is a point-in-time snapshot of the ingestion job, pulled by
// callers. Reading it never blocks behind the ingestion loop.
type JobStatus struct {
	ID         string   `json:"id,omitempty"`
	Kind       JobKind  `json:"kind,omitempty"`
	Category   string   `json:"category,omitempty"`
	State      JobState `json:"state"`
	InProgress bool     `json:"inProgress"`

	// Progress is the completed fraction in [0,1]. It stays below 1
	// until the job reaches a terminal state.
	Progress   float64  `json:"progress"`
	StatusText string   `json:"statusText"`
	Errors     []string `json:"errors"`

	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// JobReport aggregates the outcome of a finished ingestion job.
type JobReport struct {
	Kind      JobKind  `json:"kind"`
	Category  string   `json:"category"`
	State     JobState `json:"state"`
	Processed int      `json:"processed"`
	Inserted  int      `json:"inserted"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Chunks    int      `json:"chunks"`
	Errors    []string `json:"errors"`

	Duration time.Duration `json:"duration"`
}
