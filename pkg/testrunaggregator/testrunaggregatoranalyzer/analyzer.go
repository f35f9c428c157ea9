package testrunaggregatoranalyzer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/runnerhealth"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorlib"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunsummary"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testvolatility"
)

// TestRunAggregatorAnalyzerOptions
// 1. lists the runner files of a source
// 2. normalizes every file and checks the health of its runner
// 3. consolidates the mainline records of the healthy runners
// 4. classifies every test as flaky, broken or healthy and prints a summary
type TestRunAggregatorAnalyzerOptions struct {
	source testrunaggregatorlib.ResultSource
	health runnerhealth.Options

	tolerance     int
	concurrency   int
	skipMalformed bool

	// fs is where the output and metrics files are written to.
	fs          afero.Fs
	outputFile  string
	metricsFile string
	out         io.Writer
}

// runnerOutcome is what processing one runner file produced. Each file gets
// its own slot so workers never share state.
type runnerOutcome struct {
	source       string
	report       *testrunaggregatorapi.RunnerReport
	health       testrunaggregatorapi.RunnerHealth
	healthErr    error
	malformedErr error
}

func (o *TestRunAggregatorAnalyzerOptions) Run(ctx context.Context) error {
	result, err := o.Aggregate(ctx)
	if err != nil {
		return err
	}

	summary := testrunsummary.ForResult(result, o.health.MainlineBranch)
	if _, err := fmt.Fprintln(o.out, strings.TrimSuffix(summary, "\n")); err != nil {
		return results.ForReason(results.ReasonWritingOutput).ForError(err)
	}

	if len(o.outputFile) > 0 {
		if err := writeResultFile(o.fs, o.outputFile, result); err != nil {
			return err
		}
		logrus.WithField("file", o.outputFile).Info("Wrote classification result")
	}
	if len(o.metricsFile) > 0 {
		if err := writeMetricsFile(o.fs, o.metricsFile, result); err != nil {
			return err
		}
		logrus.WithField("file", o.metricsFile).Info("Wrote metrics")
	}
	return nil
}

// Aggregate reads every runner file of the source and classifies the result.
// The outcome does not depend on the concurrency, runners and tests are always
// reported in source order.
func (o *TestRunAggregatorAnalyzerOptions) Aggregate(ctx context.Context) (*testrunaggregatorapi.ClassificationResult, error) {
	names, err := o.source.List(ctx)
	if err != nil {
		return nil, results.ForReason(results.ReasonLoadingSource).WithError(err).Errorf("failed to list runner files in %s", o.source)
	}
	if len(names) == 0 {
		return nil, results.ForReason(results.ReasonEmptyDataset).Errorf("no runner files found in %s", o.source)
	}
	logrus.WithFields(logrus.Fields{
		"source": o.source.String(),
		"files":  len(names),
	}).Info("Aggregating runner files")

	outcomes, err := o.processRunnerFiles(ctx, names)
	if err != nil {
		return nil, err
	}

	result := &testrunaggregatorapi.ClassificationResult{}
	var malformedErrs []error
	var dataset []testrunaggregatorapi.TestRunRecord
	malfunctioning := sets.New[string]()
	addMalfunctioning := func(runner string) {
		if malfunctioning.Has(runner) {
			return
		}
		malfunctioning.Insert(runner)
		result.MalfunctioningRunners = append(result.MalfunctioningRunners, runner)
	}

	for _, outcome := range outcomes {
		if outcome.malformedErr != nil {
			if !o.skipMalformed {
				malformedErrs = append(malformedErrs, outcome.malformedErr)
				continue
			}
			logrus.WithError(outcome.malformedErr).WithField("source", outcome.source).Warn("Skipping malformed runner file")
			result.SkippedSources = append(result.SkippedSources, outcome.source)
			addMalfunctioning(outcome.source)
			continue
		}

		health := outcome.health
		result.Runners = append(result.Runners, health)
		logger := logrus.WithFields(logrus.Fields{
			"source":  outcome.source,
			"runner":  health.Runner,
			"records": health.Records,
		})
		switch {
		case health.Degenerate:
			logger.WithError(outcome.healthErr).Warn("Runner has no records to judge its health by, treating it as malfunctioning")
			result.DegenerateRunners = append(result.DegenerateRunners, health.Runner)
			addMalfunctioning(health.Runner)
		case !health.Healthy:
			logger.WithFields(logrus.Fields{
				"failureRatio":         health.FailureRatio,
				"mainlineFailureRatio": health.MainlineFailureRatio,
			}).Info("Runner is malfunctioning, discarding its records")
			addMalfunctioning(health.Runner)
		default:
			mainline := outcome.report.RecordsOnBranch(o.health.MainlineBranch)
			logger.WithField("mainlineRecords", len(mainline)).Debug("Runner is healthy")
			dataset = append(dataset, mainline...)
		}
	}
	if len(malformedErrs) > 0 {
		return nil, utilerrors.NewAggregate(malformedErrs)
	}

	if len(dataset) == 0 {
		return nil, results.ForReason(results.ReasonEmptyDataset).Errorf("no healthy runner in %s reported records on %s", o.source, o.health.MainlineBranch)
	}
	analysis, err := testvolatility.Analyze(dataset, o.tolerance)
	if err != nil {
		return nil, err
	}
	result.FlakyTests = analysis.FlakyTests
	result.MasterBroken = analysis.MasterBroken
	result.Histories = analysis.Histories

	logrus.WithFields(logrus.Fields{
		"malfunctioningRunners": len(result.MalfunctioningRunners),
		"flakyTests":            len(result.FlakyTests),
		"brokenTests":           len(result.MasterBroken),
		"mainlineRecords":       len(dataset),
	}).Info("Aggregation complete")
	return result, nil
}

// processRunnerFiles reads, normalizes and health checks every file. A file that
// cannot be read aborts the whole aggregation, a malformed file is recorded in
// its outcome for the caller to decide.
func (o *TestRunAggregatorAnalyzerOptions) processRunnerFiles(ctx context.Context, names []string) ([]runnerOutcome, error) {
	outcomes := make([]runnerOutcome, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, name := range names {
		g.Go(func() error {
			outcomes[i].source = name
			data, err := o.source.Read(ctx, name)
			if err != nil {
				return results.ForReason(results.ReasonLoadingSource).WithError(err).Errorf("failed to read runner file %s", name)
			}
			report, err := testrunaggregatorlib.NormalizeRunnerResult(name, data)
			if err != nil {
				outcomes[i].malformedErr = err
				return nil
			}
			outcomes[i].report = report
			outcomes[i].health, outcomes[i].healthErr = runnerhealth.Check(report, o.health)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
