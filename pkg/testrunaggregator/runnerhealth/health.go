package runnerhealth

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
)

const (
	// DefaultMaxFailureRatio is the failure ratio at which a runner stops being trusted.
	DefaultMaxFailureRatio = 0.5
)

type Options struct {
	MainlineBranch string
	// MaxFailureRatio is exclusive: a runner whose ratio equals it is unhealthy.
	MaxFailureRatio float64
}

func DefaultOptions() Options {
	return Options{
		MainlineBranch:  testrunaggregatorapi.DefaultMainlineBranch,
		MaxFailureRatio: DefaultMaxFailureRatio,
	}
}

// Check decides whether a runner can be trusted. A runner is healthy only when
// the failure ratio of all of its records and the failure ratio of its mainline
// records are both strictly below MaxFailureRatio.
//
// A runner without any records, or without any mainline records, has no
// defined ratio. It is reported unhealthy and Degenerate together with a
// degenerate runner error, so callers can tell it apart from a runner that is
// simply failing too much.
func Check(report *testrunaggregatorapi.RunnerReport, opts Options) (testrunaggregatorapi.RunnerHealth, error) {
	mainlineRecords := report.RecordsOnBranch(opts.MainlineBranch)
	health := testrunaggregatorapi.RunnerHealth{
		Runner:           report.Runner,
		Source:           report.Source,
		Records:          len(report.Records),
		Failures:         countFailures(report.Records),
		MainlineRecords:  len(mainlineRecords),
		MainlineFailures: countFailures(mainlineRecords),
	}

	var err error
	health.FailureRatio, err = failureRatio(report.Records)
	if err != nil {
		health.Degenerate = true
		return health, results.ForReason(results.ReasonDegenerateRunner).WithError(err).Errorf("runner %s reported no test records", report.Runner)
	}
	health.MainlineFailureRatio, err = failureRatio(mainlineRecords)
	if err != nil {
		health.Degenerate = true
		return health, results.ForReason(results.ReasonDegenerateRunner).WithError(err).Errorf("runner %s reported no test records on %s", report.Runner, opts.MainlineBranch)
	}

	health.Healthy = health.FailureRatio < opts.MaxFailureRatio && health.MainlineFailureRatio < opts.MaxFailureRatio
	return health, nil
}

// failureRatio is the mean of the failure indicators of records: 1 for a
// failed record, 0 for a passed one.
func failureRatio(records []testrunaggregatorapi.TestRunRecord) (float64, error) {
	indicators := make(stats.Float64Data, 0, len(records))
	for _, record := range records {
		if record.Success {
			indicators = append(indicators, 0)
		} else {
			indicators = append(indicators, 1)
		}
	}
	ratio, err := stats.Mean(indicators)
	if err != nil {
		return 0, fmt.Errorf("failure ratio of %d records is undefined: %w", len(records), err)
	}
	return ratio, nil
}

func countFailures(records []testrunaggregatorapi.TestRunRecord) int {
	failures := 0
	for _, record := range records {
		if !record.Success {
			failures++
		}
	}
	return failures
}
