package testrunaggregatorapi

import (
	"time"
)

const (
	// DefaultMainlineBranch is the branch whose results decide flakiness and breakage.
	DefaultMainlineBranch = "master"
)

// TestRunRecord is one test execution, the atomic unit of analysis.
type TestRunRecord struct {
	TestName  string        `json:"test_name"`
	Success   bool          `json:"success"`
	CommitID  CommitID      `json:"commit_id"`
	Branch    string        `json:"branch"`
	StartedAt time.Time     `json:"started_at"`
	Node      string        `json:"node"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// RunnerReport holds every record extracted from one runner file, in file order.
type RunnerReport struct {
	// Runner is the name the runner reported for itself.
	Runner string `json:"runner"`
	// Source is where the report was read from, like a file or object name.
	Source  string          `json:"source"`
	Records []TestRunRecord `json:"records"`
}

// RecordsOnBranch returns the records of the report that ran against branch,
// preserving their order.
func (r *RunnerReport) RecordsOnBranch(branch string) []TestRunRecord {
	var ret []TestRunRecord
	for _, record := range r.Records {
		if record.Branch == branch {
			ret = append(ret, record)
		}
	}
	return ret
}
