package testvolatility

import (
	"fmt"
	"sort"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
)

const (
	// DefaultTolerance is the number of pass/fail transitions at which a test is flaky.
	DefaultTolerance = 2
)

// Analysis is the classification of every test of a consolidated dataset.
type Analysis struct {
	// FlakyTests is ordered by first appearance in the dataset.
	FlakyTests []string `json:"flaky_tests"`
	// MasterBroken is ordered by first appearance in the dataset.
	MasterBroken []testrunaggregatorapi.BrokenTest `json:"master_broken"`
	// Histories holds one entry per distinct test, in first appearance order.
	Histories []testrunaggregatorapi.TestHistory `json:"histories"`
}

// Analyze classifies every distinct test in dataset. The dataset is expected to
// hold only mainline records from trusted runners.
//
// For each test the records are ordered by start time and the number of
// pass/fail transitions counted. A test with at least tolerance transitions is
// flaky. Otherwise a test whose latest record failed is broken, attributed to
// the commit of its earliest failure.
func Analyze(dataset []testrunaggregatorapi.TestRunRecord, tolerance int) (*Analysis, error) {
	if tolerance < 1 {
		return nil, fmt.Errorf("tolerance must be at least 1, got %d", tolerance)
	}
	if len(dataset) == 0 {
		return nil, results.ForReason(results.ReasonEmptyDataset).Errorf("no mainline records to analyze")
	}

	testNames, recordsByTest := groupByTest(dataset)
	analysis := &Analysis{}
	for _, testName := range testNames {
		history, brokenAt := classify(testName, recordsByTest[testName], tolerance)
		analysis.Histories = append(analysis.Histories, history)

		switch history.Classification {
		case testrunaggregatorapi.TestFlaky:
			analysis.FlakyTests = append(analysis.FlakyTests, testName)
		case testrunaggregatorapi.TestMasterBroken:
			analysis.MasterBroken = append(analysis.MasterBroken, testrunaggregatorapi.BrokenTest{
				TestName: testName,
				CommitID: brokenAt,
			})
		}
	}

	return analysis, nil
}

// groupByTest returns the distinct test names in order of first appearance and
// the records of each, in dataset order.
func groupByTest(dataset []testrunaggregatorapi.TestRunRecord) ([]string, map[string][]testrunaggregatorapi.TestRunRecord) {
	var testNames []string
	recordsByTest := map[string][]testrunaggregatorapi.TestRunRecord{}
	for _, record := range dataset {
		if _, seen := recordsByTest[record.TestName]; !seen {
			testNames = append(testNames, record.TestName)
		}
		recordsByTest[record.TestName] = append(recordsByTest[record.TestName], record)
	}
	return testNames, recordsByTest
}

func classify(testName string, records []testrunaggregatorapi.TestRunRecord, tolerance int) (testrunaggregatorapi.TestHistory, testrunaggregatorapi.CommitID) {
	sorted := make([]testrunaggregatorapi.TestRunRecord, len(records))
	copy(sorted, records)
	// records sharing a start time keep their dataset order
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.Before(sorted[j].StartedAt)
	})

	history := testrunaggregatorapi.TestHistory{
		TestName:    testName,
		Runs:        len(sorted),
		Volatility:  Volatility(sorted),
		LastSuccess: sorted[len(sorted)-1].Success,
	}
	var firstFailure *testrunaggregatorapi.TestRunRecord
	for i := range sorted {
		if sorted[i].Success {
			continue
		}
		history.Failures++
		if firstFailure == nil {
			firstFailure = &sorted[i]
		}
	}

	switch {
	case history.Volatility >= tolerance:
		history.Classification = testrunaggregatorapi.TestFlaky
	case !history.LastSuccess:
		history.Classification = testrunaggregatorapi.TestMasterBroken
		return history, firstFailure.CommitID
	default:
		history.Classification = testrunaggregatorapi.TestHealthy
	}
	return history, ""
}

// Volatility counts the adjacent records whose outcomes differ.
func Volatility(records []testrunaggregatorapi.TestRunRecord) int {
	transitions := 0
	for i := 1; i < len(records); i++ {
		if records[i].Success != records[i-1].Success {
			transitions++
		}
	}
	return transitions
}
