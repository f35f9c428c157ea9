// The purpose of this tool is to read the result files of a fleet of test
// runners and report malfunctioning runners, flaky tests and tests that are
// broken on the mainline branch.
package main

import (
	"os"

	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator"
)

func main() {
	cmd := testrunaggregator.NewTestRunAggregatorCommand()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
