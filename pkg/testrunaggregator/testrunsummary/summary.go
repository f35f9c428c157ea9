package testrunsummary

import (
	"fmt"
	"strings"

	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
)

// AllClearMessage is the whole summary when nothing needs attention.
const AllClearMessage = "All tests passed without issues"

// Build renders the human readable summary of an aggregation.
//
// Only the first malfunctioning runner is named. Flaky tests share one line and
// every broken test gets its own line, in the order given.
func Build(malfunctioningRunners, flakyTests []string, masterBroken []testrunaggregatorapi.BrokenTest, mainlineBranch string) string {
	return ForResult(&testrunaggregatorapi.ClassificationResult{
		MalfunctioningRunners: malfunctioningRunners,
		FlakyTests:            flakyTests,
		MasterBroken:          masterBroken,
	}, mainlineBranch)
}

// ForResult renders the summary of a classification result.
func ForResult(result *testrunaggregatorapi.ClassificationResult, mainlineBranch string) string {
	if result.IsClean() {
		return AllClearMessage
	}

	summary := &strings.Builder{}
	if len(result.MalfunctioningRunners) > 0 {
		fmt.Fprintf(summary, "Runner(s) %s are malfunctioning.\n", result.MalfunctioningRunners[0])
	}
	if len(result.FlakyTests) > 0 {
		fmt.Fprintf(summary, "Test(s) %s are flaky.\n", strings.Join(result.FlakyTests, ", "))
	}
	for _, broken := range result.MasterBroken {
		fmt.Fprintf(summary, "Test %s fails on %s after the %s commit.\n", broken.TestName, mainlineBranch, broken.CommitID)
	}
	return summary.String()
}
