package testrunnormalizer

import (
	"context"
	"io"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorlib"
)

// NormalizeOptions reads one runner file and prints its normalized report.
type NormalizeOptions struct {
	source testrunaggregatorlib.ResultSource
	name   string
	out    io.Writer
}

func (o *NormalizeOptions) Run(ctx context.Context) error {
	data, err := o.source.Read(ctx, o.name)
	if err != nil {
		return results.ForReason(results.ReasonLoadingSource).WithError(err).Errorf("failed to read runner file %s", o.name)
	}
	report, err := testrunaggregatorlib.NormalizeRunnerResult(o.name, data)
	if err != nil {
		return err
	}
	serialized, err := yaml.Marshal(report)
	if err != nil {
		return results.ForReason(results.ReasonWritingOutput).WithError(err).Errorf("failed to serialize report of %s", o.name)
	}
	_, err = o.out.Write(serialized)
	return results.ForReason(results.ReasonWritingOutput).ForError(err)
}

// splitLocation splits the location of a single file into the location of its
// directory and its name. gs:// locations keep their bucket in the directory.
func splitLocation(location string) (dir, name string) {
	idx := strings.LastIndex(location, "/")
	switch {
	case idx < 0:
		return ".", location
	case idx == 0:
		return "/", location[1:]
	}
	dir, name = location[:idx], location[idx+1:]
	if dir+"/" == "gs://" {
		return location, ""
	}
	return dir, name
}
