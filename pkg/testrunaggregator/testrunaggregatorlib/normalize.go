package testrunaggregatorlib

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
)

// ParseRunnerResultFile decodes a runner file. JSON and YAML are both accepted.
// Valid JSON is decoded as JSON so numbers reach the field decoders untouched;
// anything else is decoded as YAML, where scalars keep the text they were
// written with.
func ParseRunnerResultFile(source string, data []byte) (*testrunaggregatorapi.RunnerResultFile, error) {
	file := &testrunaggregatorapi.RunnerResultFile{}
	decode := yaml.Unmarshal
	if json.Valid(data) {
		decode = json.Unmarshal
	}
	if err := decode(data, file); err != nil {
		return nil, results.ForReason(results.ReasonMalformedInput).WithError(err).Errorf("could not decode runner file %s", source)
	}
	return file, nil
}

// NormalizeRunnerResult decodes a runner file and flattens it into one record
// per test per run, each stamped with the runner's name.
func NormalizeRunnerResult(source string, data []byte) (*testrunaggregatorapi.RunnerReport, error) {
	file, err := ParseRunnerResultFile(source, data)
	if err != nil {
		return nil, err
	}
	return Normalize(source, file)
}

// Normalize flattens an already decoded runner file. Either every record is
// valid or an error is returned; a partially built report is never returned.
func Normalize(source string, file *testrunaggregatorapi.RunnerResultFile) (*testrunaggregatorapi.RunnerReport, error) {
	if file == nil {
		return nil, malformed(source, "", "file is empty")
	}
	if file.Name == nil || len(*file.Name) == 0 {
		return nil, malformed(source, "name", "is required")
	}
	if file.Runs == nil {
		return nil, malformed(source, "runs", "is required")
	}

	report := &testrunaggregatorapi.RunnerReport{
		Runner: *file.Name,
		Source: source,
	}
	for i, run := range *file.Runs {
		runPath := fmt.Sprintf("runs[%d]", i)
		if run.CommitID == nil || len(*run.CommitID) == 0 {
			return nil, malformed(source, runPath+".commit_id", "is required")
		}
		if run.Branch == nil || len(*run.Branch) == 0 {
			return nil, malformed(source, runPath+".branch", "is required")
		}
		if run.StartedAt == nil || run.StartedAt.IsZero() {
			return nil, malformed(source, runPath+".started_at", "is required")
		}
		if run.Tests == nil {
			return nil, malformed(source, runPath+".tests", "is required")
		}

		for j, test := range *run.Tests {
			testPath := fmt.Sprintf("%s.tests[%d]", runPath, j)
			if test.Name == nil || len(*test.Name) == 0 {
				return nil, malformed(source, testPath+".name", "is required")
			}
			if test.Success == nil {
				return nil, malformed(source, testPath+".success", "is required")
			}
			record := testrunaggregatorapi.TestRunRecord{
				TestName:  *test.Name,
				Success:   *test.Success,
				CommitID:  *run.CommitID,
				Branch:    *run.Branch,
				StartedAt: run.StartedAt.Time,
				Node:      report.Runner,
			}
			if test.Duration != nil {
				if *test.Duration < 0 {
					return nil, malformed(source, testPath+".duration", "must not be negative")
				}
				record.Duration = time.Duration(*test.Duration * float64(time.Second))
			}
			report.Records = append(report.Records, record)
		}
	}

	return report, nil
}

func malformed(source, field, problem string) error {
	if len(field) == 0 {
		return results.ForReason(results.ReasonMalformedInput).Errorf("runner file %s: %s", source, problem)
	}
	return results.ForReason(results.ReasonMalformedInput).Errorf("runner file %s: %s %s", source, field, problem)
}
