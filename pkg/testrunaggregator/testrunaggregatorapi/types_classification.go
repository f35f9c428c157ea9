package testrunaggregatorapi

// TestClassification is the verdict reached for one test.
type TestClassification string

const (
	TestFlaky        TestClassification = "flaky"
	TestMasterBroken TestClassification = "master-broken"
	TestHealthy      TestClassification = "healthy"
)

// BrokenTest names a test that is currently failing on the mainline branch and
// the commit its failures are attributed to.
type BrokenTest struct {
	TestName string   `json:"test_name"`
	CommitID CommitID `json:"commit_id"`
}

// TestHistory is the analyzed, chronologically ordered history of one test on
// the mainline branch.
type TestHistory struct {
	TestName       string             `json:"test_name"`
	Runs           int                `json:"runs"`
	Failures       int                `json:"failures"`
	Volatility     int                `json:"volatility"`
	LastSuccess    bool               `json:"last_success"`
	Classification TestClassification `json:"classification"`
}

// RunnerHealth is the outcome of checking a single runner.
type RunnerHealth struct {
	Runner               string  `json:"runner"`
	Source               string  `json:"source"`
	Healthy              bool    `json:"healthy"`
	Degenerate           bool    `json:"degenerate,omitempty"`
	Records              int     `json:"records"`
	Failures             int     `json:"failures"`
	MainlineRecords      int     `json:"mainline_records"`
	MainlineFailures     int     `json:"mainline_failures"`
	FailureRatio         float64 `json:"failure_ratio"`
	MainlineFailureRatio float64 `json:"mainline_failure_ratio"`
}

// ClassificationResult is everything a single aggregation produced.
type ClassificationResult struct {
	// MalfunctioningRunners has set semantics, but is kept in the order the
	// runners were read so that the first entry is stable.
	MalfunctioningRunners []string `json:"malfunctioning_runners"`
	// FlakyTests is ordered by first appearance in the consolidated dataset.
	FlakyTests []string `json:"flaky_tests"`
	// MasterBroken is ordered by first appearance in the consolidated dataset.
	MasterBroken []BrokenTest `json:"master_broken"`

	// DegenerateRunners are runners that reported no records or no mainline
	// records. They are also listed in MalfunctioningRunners.
	DegenerateRunners []string `json:"degenerate_runners,omitempty"`
	// SkippedSources are malformed files that were skipped instead of failing
	// the aggregation. They are also listed in MalfunctioningRunners.
	SkippedSources []string `json:"skipped_sources,omitempty"`

	Runners   []RunnerHealth `json:"runners,omitempty"`
	Histories []TestHistory  `json:"histories,omitempty"`
}

// MasterBrokenByTest returns MasterBroken as a test name to commit mapping.
func (r *ClassificationResult) MasterBrokenByTest() map[string]CommitID {
	ret := make(map[string]CommitID, len(r.MasterBroken))
	for _, broken := range r.MasterBroken {
		ret[broken.TestName] = broken.CommitID
	}
	return ret
}

// IsClean is true when no runner malfunctioned and no test is flaky or broken.
func (r *ClassificationResult) IsClean() bool {
	return len(r.MalfunctioningRunners) == 0 && len(r.FlakyTests) == 0 && len(r.MasterBroken) == 0
}
