package testrunaggregatorlib

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"google.golang.org/api/option"

	"github.com/openshift/testrun-aggregator/pkg/results"
)

type GoogleAuthenticationFlags struct {
	// location of a credential file described by https://cloud.google.com/docs/authentication/production
	// When empty, Application Default Credentials are used.
	GoogleServiceAccountCredentialFile string
}

func NewGoogleAuthenticationFlags() *GoogleAuthenticationFlags {
	return &GoogleAuthenticationFlags{}
}

func (f *GoogleAuthenticationFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.GoogleServiceAccountCredentialFile, "google-service-account-credential-file", f.GoogleServiceAccountCredentialFile, "location of a credential file described by https://cloud.google.com/docs/authentication/production, only used for gs:// sources")
}

func (f *GoogleAuthenticationFlags) NewGCSClient(ctx context.Context) (*storage.Client, error) {
	if len(f.GoogleServiceAccountCredentialFile) > 0 {
		return storage.NewClient(ctx,
			option.WithCredentialsFile(f.GoogleServiceAccountCredentialFile),
		)
	}
	return storage.NewClient(ctx)
}

// NewResultSource builds the source for location: a gs://bucket/prefix URL
// or a directory on fs.
func (f *GoogleAuthenticationFlags) NewResultSource(ctx context.Context, fs afero.Fs, location string) (ResultSource, error) {
	if !IsGCSLocation(location) {
		return NewLocalSource(fs, location), nil
	}
	bucket, prefix, ok := ParseGCSLocation(location)
	if !ok {
		return nil, fmt.Errorf("invalid GCS location %q, expected gs://bucket/prefix", location)
	}
	gcsClient, err := f.NewGCSClient(ctx)
	if err != nil {
		return nil, results.ForReason(results.ReasonLoadingSource).WithError(err).Errorf("failed to create GCS client")
	}
	return NewGCSSource(gcsClient, bucket, prefix), nil
}
