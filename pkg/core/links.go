package core

import "time"

// LinkStatus classifies the outcome of checking a URL.
type LinkStatus string

// Link check outcomes.
const (
	LinkStatusOK          LinkStatus = "ok"
	LinkStatusBroken      LinkStatus = "broken"      // the server answered with an error status
	LinkStatusUnreachable LinkStatus = "unreachable" // no HTTP response at all
	LinkStatusSkipped     LinkStatus = "skipped"     // not an http(s) URL
)

// LinkResult is the outcome of checking one URL.
type LinkResult struct {
	URL        string        `json:"url"`
	Status     LinkStatus    `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// Failed reports whether the URL should be considered dead.
func (r LinkResult) Failed() bool {
	return r.Status == LinkStatusBroken || r.Status == LinkStatusUnreachable
}

// CheckRunStatus represents the status of a link-check run.
type CheckRunStatus string

// Check run status values.
const (
	CheckRunRunning   CheckRunStatus = "running"
	CheckRunCompleted CheckRunStatus = "completed"
	CheckRunFailed    CheckRunStatus = "failed"
)

// CheckRun records one execution of the link checker.
type CheckRun struct {
	ID          string         `json:"id"`
	CatalogPath string         `json:"catalog_path"`
	Status      CheckRunStatus `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	URLCount    int            `json:"url_count"`
	FailedCount int            `json:"failed_count"`
	Error       string         `json:"error,omitempty"`
}

// Store defines the interface for link-check history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateCheckRun(catalogPath string) (*CheckRun, error)
	CompleteCheckRun(id string, status CheckRunStatus, errMsg string) error
	GetCheckRun(id string) (*CheckRun, error)
	GetLatestCheckRun() (*CheckRun, error)
	ListCheckRuns(limit int) ([]*CheckRun, error)

	SaveLinkResults(runID string, results []LinkResult) error
	GetLinkResults(runID string) ([]LinkResult, error)
}
