package testrunnormalizer

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorlib"
)

type NormalizeFlags struct {
	Authentication *testrunaggregatorlib.GoogleAuthenticationFlags
	Logging        *testrunaggregatorlib.LoggingFlags

	Location string
}

func NewNormalizeFlags() *NormalizeFlags {
	return &NormalizeFlags{
		Authentication: testrunaggregatorlib.NewGoogleAuthenticationFlags(),
		Logging:        testrunaggregatorlib.NewLoggingFlags(),
	}
}

func (f *NormalizeFlags) BindFlags(fs *pflag.FlagSet) {
	f.Authentication.BindFlags(fs)
	f.Logging.BindFlags(fs)
}

func NewNormalizeCommand() *cobra.Command {
	f := NewNormalizeFlags()

	cmd := &cobra.Command{
		Use:          "normalize <file|gs://bucket/object>",
		Short:        "Print the test records extracted from a single runner result file.",
		Long:         `Decode and validate a single runner result file and print the flattened test records as YAML. Useful to debug files rejected by analyze.`,
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

func (f *NormalizeFlags) Validate() error {
	if _, name := splitLocation(f.Location); len(name) == 0 {
		return fmt.Errorf("location %q does not name a file", f.Location)
	}
	return f.Logging.Validate()
}

func (f *NormalizeFlags) ToOptions(ctx context.Context) (*NormalizeOptions, error) {
	f.Logging.Apply()

	dir, name := splitLocation(f.Location)
	source, err := f.Authentication.NewResultSource(ctx, afero.NewOsFs(), dir)
	if err != nil {
		return nil, err
	}
	return &NormalizeOptions{
		source: source,
		name:   name,
		out:    os.Stdout,
	}, nil
}
