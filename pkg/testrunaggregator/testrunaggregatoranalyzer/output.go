package testrunaggregatoranalyzer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/yaml"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
)

var (
	jsonExtensions = sets.New[string](".json")
	yamlExtensions = sets.New[string](".yaml", ".yml")

	outputFileExtensions = jsonExtensions.Union(yamlExtensions)
)

// marshalResult serializes result as JSON or YAML, depending on the extension of path.
func marshalResult(path string, result *testrunaggregatorapi.ClassificationResult) ([]byte, error) {
	extension := strings.ToLower(filepath.Ext(path))
	switch {
	case jsonExtensions.Has(extension):
		return json.MarshalIndent(result, "", "  ")
	case yamlExtensions.Has(extension):
		return yaml.Marshal(result)
	default:
		return nil, fmt.Errorf("unsupported output file extension %q, expected one of %v", extension, sets.List(outputFileExtensions))
	}
}

func writeResultFile(fs afero.Fs, path string, result *testrunaggregatorapi.ClassificationResult) error {
	data, err := marshalResult(path, result)
	if err != nil {
		return results.ForReason(results.ReasonWritingOutput).WithError(err).Errorf("failed to serialize the classification result")
	}
	return writeFile(fs, path, data)
}

// writeFile writes data to path on fs, creating the parent directories.
func writeFile(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return results.ForReason(results.ReasonWritingOutput).WithError(err).Errorf("failed to create directory %s", dir)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return results.ForReason(results.ReasonWritingOutput).WithError(err).Errorf("failed to write %s", path)
	}
	return nil
}
