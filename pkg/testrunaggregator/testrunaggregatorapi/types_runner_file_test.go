package testrunaggregatorapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// decode picks the decoder the runner file parser uses for the content.
func decode(in string, into interface{}) error {
	if json.Valid([]byte(in)) {
		return json.Unmarshal([]byte(in), into)
	}
	return yaml.Unmarshal([]byte(in), into)
}

func TestCommitIDUnmarshal(t *testing.T) {
	testCases := []struct {
		name        string
		in          string
		expected    CommitID
		expectedErr bool
	}{
		{
			name:     "string",
			in:       `{"commit_id": "abc123"}`,
			expected: "abc123",
		},
		{
			name:     "integer",
			in:       `{"commit_id": 42}`,
			expected: "42",
		},
		{
			name:     "integer beyond float64 precision",
			in:       `{"commit_id": 123456789012345678901}`,
			expected: "123456789012345678901",
		},
		{
			name:     "yaml integer",
			in:       "commit_id: 7\n",
			expected: "7",
		},
		{
			name:     "yaml leading zero is not octal",
			in:       "commit_id: 0123456\n",
			expected: "0123456",
		},
		{
			name:     "yaml exponent is not a float",
			in:       "commit_id: 1234e56\n",
			expected: "1234e56",
		},
		{
			name:     "yaml quoted",
			in:       "commit_id: \"0123456\"\n",
			expected: "0123456",
		},
		{
			name:        "object",
			in:          `{"commit_id": {"sha": "abc"}}`,
			expectedErr: true,
		},
		{
			name:        "yaml sequence",
			in:          "commit_id: [a, b]\n",
			expectedErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entry := RunEntry{}
			err := decode(tc.in, &entry)
			if tc.expectedErr {
				if err == nil {
					t.Fatalf("expected an error, got commit %v", entry.CommitID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if entry.CommitID == nil {
				t.Fatal("expected commit id to be set")
			}
			if diff := cmp.Diff(tc.expected, *entry.CommitID); diff != "" {
				t.Errorf("unexpected commit id (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTimestampUnmarshal(t *testing.T) {
	testCases := []struct {
		name        string
		in          string
		expected    time.Time
		expectedErr bool
	}{
		{
			name:     "rfc3339",
			in:       `{"started_at": "2021-03-04T05:06:07Z"}`,
			expected: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		},
		{
			name:     "rfc3339 with offset",
			in:       `{"started_at": "2021-03-04T07:06:07+02:00"}`,
			expected: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		},
		{
			name:     "unix seconds",
			in:       `{"started_at": 1614834367}`,
			expected: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		},
		{
			name:     "fractional unix seconds",
			in:       `{"started_at": 1614834367.5}`,
			expected: time.Date(2021, 3, 4, 5, 6, 7, int(500*time.Millisecond), time.UTC),
		},
		{
			name:     "yaml timestamp",
			in:       "started_at: 2021-03-04T05:06:07Z\n",
			expected: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		},
		{
			name:     "yaml unix seconds",
			in:       "started_at: 1614834367\n",
			expected: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		},
		{
			name:        "not a date",
			in:          `{"started_at": "yesterday"}`,
			expectedErr: true,
		},
		{
			name:        "yaml not a date",
			in:          "started_at: yesterday\n",
			expectedErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entry := RunEntry{}
			err := decode(tc.in, &entry)
			if tc.expectedErr {
				if err == nil {
					t.Fatalf("expected an error, got %v", entry.StartedAt)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !entry.StartedAt.Time.Equal(tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, entry.StartedAt.Time)
			}
		})
	}
}

func TestMasterBrokenByTest(t *testing.T) {
	result := ClassificationResult{
		MasterBroken: []BrokenTest{
			{TestName: "t1", CommitID: "1"},
			{TestName: "t2", CommitID: "5"},
		},
	}
	expected := map[string]CommitID{"t1": "1", "t2": "5"}
	if diff := cmp.Diff(expected, result.MasterBrokenByTest()); diff != "" {
		t.Errorf("unexpected mapping (-want +got):\n%s", diff)
	}
	if result.IsClean() {
		t.Error("expected a result with broken tests not to be clean")
	}
	if empty := (ClassificationResult{}); !empty.IsClean() {
		t.Error("expected an empty result to be clean")
	}
}
