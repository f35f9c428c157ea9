package testrunaggregatorlib

import (
	"context"
	"path"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ResultSource is where runner files are read from. The backing store can be a
// local directory or a GCS bucket prefix.
type ResultSource interface {
	// List returns the names of the runner files in the source, sorted.
	// Names are relative to the source and can be passed to Read.
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	String() string
}

const gcsScheme = "gs://"

var runnerFileExtensions = sets.New[string](".json", ".yaml", ".yml")

// IsRunnerFile reports whether name looks like a runner result file: a
// non-hidden file with a JSON or YAML extension.
func IsRunnerFile(name string) bool {
	base := path.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return runnerFileExtensions.Has(strings.ToLower(path.Ext(base)))
}

// IsGCSLocation reports whether location points into a GCS bucket.
func IsGCSLocation(location string) bool {
	return strings.HasPrefix(location, gcsScheme)
}

// ParseGCSLocation splits gs://bucket/some/prefix into its bucket and prefix.
// The prefix is returned with a trailing slash unless it is empty.
func ParseGCSLocation(location string) (bucket, prefix string, ok bool) {
	if !IsGCSLocation(location) {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(strings.TrimPrefix(location, gcsScheme), "/")
	if len(bucket) == 0 {
		return "", "", false
	}
	prefix = strings.Trim(prefix, "/")
	if len(prefix) > 0 {
		prefix += "/"
	}
	return bucket, prefix, true
}
