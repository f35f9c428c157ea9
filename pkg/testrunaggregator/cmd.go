package testrunaggregator

import (
	"github.com/spf13/cobra"

	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatoranalyzer"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunnormalizer"
)

// Overall usage
// 1. every runner of the fleet uploads one result file, to a shared directory or GCS prefix
// 2. analyze reads every file, flattening it into one record per test per run
// 3. runners failing half of their tests or more, overall or on the mainline, are malfunctioning
//    and their records are dropped
// 4. the mainline records of the remaining runners are classified per test: many pass/fail
//    transitions make a test flaky, a test whose latest mainline run failed is broken
// 5. the summary is printed, the full result and metrics are optionally written to files
func NewTestRunAggregatorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "testrun-aggregator",
		Long: `Commands associated with aggregating test runs of a fleet of test runners`,
	}

	cmd.AddCommand(testrunaggregatoranalyzer.NewTestRunsAnalyzerCommand())
	cmd.AddCommand(testrunnormalizer.NewNormalizeCommand())

	return cmd
}
