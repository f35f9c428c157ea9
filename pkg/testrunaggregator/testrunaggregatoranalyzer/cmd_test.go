package testrunaggregatoranalyzer

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestTestRunsAnalyzerFlagsValidate(t *testing.T) {
	testCases := []struct {
		name          string
		args          []string
		expectedError string
	}{
		{
			name: "defaults",
		},
		{
			name: "everything set",
			args: []string{"--tolerance=3", "--mainline-branch=main", "--max-failure-ratio=1", "--concurrency=4", "--skip-malformed", "--output-file=out/result.YAML", "--metrics-file=metrics.prom", "--log-level=debug"},
		},
		{
			name:          "tolerance below one",
			args:          []string{"--tolerance=0"},
			expectedError: "--tolerance must be at least 1, got 0",
		},
		{
			name:          "empty mainline",
			args:          []string{"--mainline-branch="},
			expectedError: "missing --mainline-branch: like master",
		},
		{
			name:          "zero failure ratio",
			args:          []string{"--max-failure-ratio=0"},
			expectedError: "--max-failure-ratio must be greater than 0 and at most 1, got 0",
		},
		{
			name:          "failure ratio above one",
			args:          []string{"--max-failure-ratio=1.5"},
			expectedError: "--max-failure-ratio must be greater than 0 and at most 1, got 1.5",
		},
		{
			name:          "no concurrency",
			args:          []string{"--concurrency=0"},
			expectedError: "--concurrency must be at least 1, got 0",
		},
		{
			name:          "unknown output format",
			args:          []string{"--output-file=result.xml"},
			expectedError: `unsupported --output-file extension ".xml", valid values are: [".json" ".yaml" ".yml"]`,
		},
		{
			name:          "unknown log level",
			args:          []string{"--log-level=loud"},
			expectedError: "invalid --log-level",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewTestRunsAnalyzerFlags()
			fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			f.BindFlags(fs)
			if err := fs.Parse(tc.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}
			f.Location = "testruns"

			err := f.Validate()
			if len(tc.expectedError) == 0 {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.expectedError)
			}
		})
	}
}

func TestTestRunsAnalyzerFlagsValidateLocation(t *testing.T) {
	f := NewTestRunsAnalyzerFlags()
	assert.Error(t, f.Validate())

	f.Location = "gs://"
	assert.Error(t, f.Validate())

	f.Location = "gs://bucket/testruns"
	assert.NoError(t, f.Validate())
}
