package testvolatility

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testhelper"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
)

var epoch = time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

// run builds a mainline record whose start time is derived from the commit
// number, so commits are chronological.
func run(testName string, commit int, success bool) testrunaggregatorapi.TestRunRecord {
	return testrunaggregatorapi.TestRunRecord{
		TestName:  testName,
		Success:   success,
		CommitID:  testrunaggregatorapi.CommitID(strconv.Itoa(commit)),
		Branch:    "master",
		StartedAt: epoch.Add(time.Duration(commit) * time.Hour),
		Node:      "runner",
	}
}

func TestAnalyze(t *testing.T) {
	testCases := []struct {
		name             string
		dataset          []testrunaggregatorapi.TestRunRecord
		tolerance        int
		wantFlaky        []string
		wantMasterBroken []testrunaggregatorapi.BrokenTest
	}{
		{
			name:      "pass fail pass is flaky",
			dataset:   []testrunaggregatorapi.TestRunRecord{run("t1", 1, true), run("t1", 2, false), run("t1", 3, true)},
			tolerance: 2,
			wantFlaky: []string{"t1"},
		},
		{
			name:             "single failure is broken at its commit",
			dataset:          []testrunaggregatorapi.TestRunRecord{run("t2", 1, false)},
			tolerance:        2,
			wantMasterBroken: []testrunaggregatorapi.BrokenTest{{TestName: "t2", CommitID: "1"}},
		},
		{
			name:      "always passing is neither flaky nor broken",
			dataset:   []testrunaggregatorapi.TestRunRecord{run("t3", 1, true), run("t3", 2, true), run("t3", 3, true)},
			tolerance: 1,
		},
		{
			name:             "one transition below tolerance that ends failing is broken",
			dataset:          []testrunaggregatorapi.TestRunRecord{run("t4", 1, true), run("t4", 2, false), run("t4", 3, false)},
			tolerance:        2,
			wantMasterBroken: []testrunaggregatorapi.BrokenTest{{TestName: "t4", CommitID: "2"}},
		},
		{
			name:      "one transition at tolerance one is flaky even when failing",
			dataset:   []testrunaggregatorapi.TestRunRecord{run("t4", 1, true), run("t4", 2, false), run("t4", 3, false)},
			tolerance: 1,
			wantFlaky: []string{"t4"},
		},
		{
			name: "broken test is attributed to its first failure ever",
			dataset: []testrunaggregatorapi.TestRunRecord{
				run("t5", 1, false), run("t5", 2, true), run("t5", 3, false), run("t5", 4, false),
			},
			tolerance:        3,
			wantMasterBroken: []testrunaggregatorapi.BrokenTest{{TestName: "t5", CommitID: "1"}},
		},
		{
			name: "records are ordered by start time, not by dataset position",
			dataset: []testrunaggregatorapi.TestRunRecord{
				run("t6", 3, false), run("t6", 1, true), run("t6", 2, true),
			},
			tolerance:        2,
			wantMasterBroken: []testrunaggregatorapi.BrokenTest{{TestName: "t6", CommitID: "3"}},
		},
		{
			name: "sorting reveals transitions hidden by dataset order",
			dataset: []testrunaggregatorapi.TestRunRecord{
				run("t7", 2, false), run("t7", 4, true), run("t7", 1, true), run("t7", 3, true),
			},
			tolerance: 2,
			wantFlaky: []string{"t7"},
		},
		{
			name: "outputs keep first appearance order",
			dataset: []testrunaggregatorapi.TestRunRecord{
				run("zeta", 1, false), run("alpha", 1, true), run("mid", 1, false),
				run("zeta", 2, true), run("alpha", 2, false), run("mid", 2, false),
				run("zeta", 3, false), run("alpha", 3, true), run("beta", 3, false),
			},
			tolerance: 2,
			wantFlaky: []string{"zeta", "alpha"},
			wantMasterBroken: []testrunaggregatorapi.BrokenTest{
				{TestName: "mid", CommitID: "1"},
				{TestName: "beta", CommitID: "3"},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			analysis, err := Analyze(tc.dataset, tc.tolerance)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.wantFlaky, analysis.FlakyTests); diff != "" {
				t.Errorf("unexpected flaky tests (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantMasterBroken, analysis.MasterBroken); diff != "" {
				t.Errorf("unexpected broken tests (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyzeToleranceBoundary(t *testing.T) {
	// alternating outcomes: k records give k-1 transitions
	for tolerance := 1; tolerance <= 5; tolerance++ {
		for transitions := 0; transitions <= 6; transitions++ {
			var dataset []testrunaggregatorapi.TestRunRecord
			for i := 0; i <= transitions; i++ {
				dataset = append(dataset, run("t", i+1, i%2 == 0))
			}
			analysis, err := Analyze(dataset, tolerance)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assert.Equal(t, transitions, analysis.Histories[0].Volatility)
			assert.Equal(t, transitions >= tolerance, len(analysis.FlakyTests) == 1,
				"tolerance %d with %d transitions", tolerance, transitions)
		}
	}
}

func TestAnalyzeHistories(t *testing.T) {
	dataset := []testrunaggregatorapi.TestRunRecord{
		run("t_flaky", 1, true), run("t_broken", 1, false), run("t_healthy", 1, true), run("t_refail", 1, true),
		run("t_flaky", 3, true), run("t_healthy", 3, true), run("t_refail", 3, false),
		run("t_flaky", 2, false), run("t_healthy", 2, true), run("t_refail", 2, false),
	}
	analysis, err := Analyze(dataset, DefaultTolerance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testhelper.CompareWithFixture(t, analysis)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := Analyze(nil, DefaultTolerance)
	assert.True(t, results.HasReason(err, results.ReasonEmptyDataset), "expected an empty dataset error, got %v", err)

	_, err = Analyze([]testrunaggregatorapi.TestRunRecord{run("t", 1, true)}, 0)
	assert.Error(t, err)
	assert.False(t, results.HasReason(err, results.ReasonEmptyDataset))
}

func TestVolatility(t *testing.T) {
	assert.Equal(t, 0, Volatility(nil))
	assert.Equal(t, 0, Volatility([]testrunaggregatorapi.TestRunRecord{run("t", 1, false)}))
	assert.Equal(t, 3, Volatility([]testrunaggregatorapi.TestRunRecord{
		run("t", 1, true), run("t", 2, false), run("t", 3, false), run("t", 4, true), run("t", 5, false),
	}))
}
