package testrunaggregatoranalyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/runnerhealth"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorlib"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testvolatility"
)

type TestRunsAnalyzerFlags struct {
	Authentication *testrunaggregatorlib.GoogleAuthenticationFlags
	Logging        *testrunaggregatorlib.LoggingFlags

	Location        string
	Tolerance       int
	MainlineBranch  string
	MaxFailureRatio float64
	Concurrency     int
	SkipMalformed   bool
	OutputFile      string
	MetricsFile     string
}

func NewTestRunsAnalyzerFlags() *TestRunsAnalyzerFlags {
	return &TestRunsAnalyzerFlags{
		Authentication: testrunaggregatorlib.NewGoogleAuthenticationFlags(),
		Logging:        testrunaggregatorlib.NewLoggingFlags(),

		Tolerance:       testvolatility.DefaultTolerance,
		MainlineBranch:  testrunaggregatorapi.DefaultMainlineBranch,
		MaxFailureRatio: runnerhealth.DefaultMaxFailureRatio,
		Concurrency:     1,
	}
}

func (f *TestRunsAnalyzerFlags) BindFlags(fs *pflag.FlagSet) {
	f.Authentication.BindFlags(fs)
	f.Logging.BindFlags(fs)

	fs.IntVar(&f.Tolerance, "tolerance", f.Tolerance, "Minimum number of pass/fail transitions on the mainline for a test to be flaky.")
	fs.StringVar(&f.MainlineBranch, "mainline-branch", f.MainlineBranch, "The branch whose results decide if a test is flaky or broken.")
	fs.Float64Var(&f.MaxFailureRatio, "max-failure-ratio", f.MaxFailureRatio, "Runners failing this share of their test records or more are malfunctioning. Applies to all records and to mainline records separately.")
	fs.IntVar(&f.Concurrency, "concurrency", f.Concurrency, "How many runner files to process at the same time.")
	fs.BoolVar(&f.SkipMalformed, "skip-malformed", f.SkipMalformed, "Skip malformed runner files and report them as malfunctioning instead of failing.")
	fs.StringVar(&f.OutputFile, "output-file", f.OutputFile, fmt.Sprintf("The optional file to write the classification result to. The format is picked by the extension, one of %v", sets.List(outputFileExtensions)))
	fs.StringVar(&f.MetricsFile, "metrics-file", f.MetricsFile, "The optional file to write prometheus metrics to, in the node exporter textfile format.")
}

func NewTestRunsAnalyzerCommand() *cobra.Command {
	f := NewTestRunsAnalyzerFlags()

	cmd := &cobra.Command{
		Use:   "analyze <directory|gs://bucket/prefix>",
		Short: "Classify runners and tests from a set of runner result files.",
		Long: `Read every runner result file of a directory or GCS prefix, drop the runners that are malfunctioning,
and classify the tests of the remaining mainline records as flaky or broken. A summary is printed to stdout.`,
		SilenceUsage: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			f.Location = args[0]
			if err := f.Validate(); err != nil {
				logrus.WithError(err).Fatal("Flags are invalid")
			}
			o, err := f.ToOptions(ctx)
			if err != nil {
				logrus.WithError(err).WithField("reason", results.FullReason(err)).Fatal("Failed to build runtime options")
			}

			if err := o.Run(ctx); err != nil {
				logrus.WithError(err).WithField("reason", results.FullReason(err)).Fatal("Command failed")
			}

			return nil
		},

		Args: testrunaggregatorlib.ExactlyOneLocation,
	}

	f.BindFlags(cmd.Flags())

	return cmd
}

// Validate checks to see if the user-input is likely to produce functional runtime options
func (f *TestRunsAnalyzerFlags) Validate() error {
	if len(f.Location) == 0 {
		return fmt.Errorf("missing location: like ./testruns or gs://bucket/testruns")
	}
	if testrunaggregatorlib.IsGCSLocation(f.Location) {
		if _, _, ok := testrunaggregatorlib.ParseGCSLocation(f.Location); !ok {
			return fmt.Errorf("invalid location %q, expected gs://bucket/prefix", f.Location)
		}
	}
	if f.Tolerance < 1 {
		return fmt.Errorf("--tolerance must be at least 1, got %d", f.Tolerance)
	}
	if len(f.MainlineBranch) == 0 {
		return fmt.Errorf("missing --mainline-branch: like %s", testrunaggregatorapi.DefaultMainlineBranch)
	}
	if f.MaxFailureRatio <= 0 || f.MaxFailureRatio > 1 {
		return fmt.Errorf("--max-failure-ratio must be greater than 0 and at most 1, got %v", f.MaxFailureRatio)
	}
	if f.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", f.Concurrency)
	}
	if len(f.OutputFile) > 0 {
		if extension := strings.ToLower(filepath.Ext(f.OutputFile)); !outputFileExtensions.Has(extension) {
			return fmt.Errorf("unsupported --output-file extension %q, valid values are: %+q", extension, sets.List(outputFileExtensions))
		}
	}
	if err := f.Logging.Validate(); err != nil {
		return err
	}

	return nil
}

// ToOptions goes from the user input to the runtime values need to run the command.
// Expect to see unit tests on the options, but not on the flags which are simply value mappings.
func (f *TestRunsAnalyzerFlags) ToOptions(ctx context.Context) (*TestRunAggregatorAnalyzerOptions, error) {
	f.Logging.Apply()

	fs := afero.NewOsFs()
	source, err := f.Authentication.NewResultSource(ctx, fs, f.Location)
	if err != nil {
		return nil, err
	}

	return &TestRunAggregatorAnalyzerOptions{
		source: source,
		health: runnerhealth.Options{
			MainlineBranch:  f.MainlineBranch,
			MaxFailureRatio: f.MaxFailureRatio,
		},
		tolerance:     f.Tolerance,
		concurrency:   f.Concurrency,
		skipMalformed: f.SkipMalformed,
		fs:            fs,
		outputFile:    f.OutputFile,
		metricsFile:   f.MetricsFile,
		out:           os.Stdout,
	}, nil
}
