package testrunaggregatorapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RunnerResultFile is the on-disk shape of one runner's results, as written by
// the fleet:
//
//	{ "name": "runner-1", "runs": [ { "commit_id": ..., "branch": ..., "started_at": ..., "tests": [ {"name": ..., "success": ...} ] } ] }
//
// Every field is a pointer so that a missing field can be told apart from its
// zero value during normalization.
type RunnerResultFile struct {
	Name *string     `json:"name" yaml:"name"`
	Runs *[]RunEntry `json:"runs" yaml:"runs"`
}

// RunEntry is one execution batch of a runner: a set of tests run against a
// single commit of a single branch.
type RunEntry struct {
	CommitID  *CommitID    `json:"commit_id" yaml:"commit_id"`
	Branch    *string      `json:"branch" yaml:"branch"`
	StartedAt *Timestamp   `json:"started_at" yaml:"started_at"`
	Tests     *[]TestEntry `json:"tests" yaml:"tests"`
}

// TestEntry is one test observation inside a RunEntry.
type TestEntry struct {
	Name    *string `json:"name" yaml:"name"`
	Success *bool   `json:"success" yaml:"success"`
	// Duration in seconds. Optional and informational only.
	Duration *float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// CommitID is an opaque commit identifier. Runners report it either as a
// string or as a number; a number keeps the exact digits it was written with.
type CommitID string

func (c *CommitID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CommitID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("commit id must be a string or a number, got %s", string(data))
	}
	*c = CommitID(n.String())
	return nil
}

// UnmarshalYAML takes the scalar as written, so 0123456 or 1234e56 are not
// reinterpreted as octal or floating point numbers.
func (c *CommitID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: commit id must be a string or a number", node.Line)
	}
	if node.ShortTag() == "!!null" {
		return nil
	}
	*c = CommitID(node.Value)
	return nil
}

func (c CommitID) String() string {
	return string(c)
}

// Timestamp is a point in time reported either as an RFC3339 string or as a
// number of seconds since the Unix epoch.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.parseRFC3339(s)
	}
	return t.parseUnixSeconds(string(data))
}

func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: timestamp must be an RFC3339 string or unix seconds", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!int", "!!float":
		return t.parseUnixSeconds(node.Value)
	default:
		return t.parseRFC3339(node.Value)
	}
}

func (t *Timestamp) parseRFC3339(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp %q is not RFC3339: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t *Timestamp) parseUnixSeconds(s string) error {
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("timestamp must be an RFC3339 string or unix seconds, got %s", s)
	}
	whole, frac := math.Modf(seconds)
	t.Time = time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
	return nil
}
