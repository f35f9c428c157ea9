package testrunaggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTestRunAggregatorCommand(t *testing.T) {
	cmd := NewTestRunAggregatorCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"analyze", "normalize"}, names)

	analyze, _, err := cmd.Find([]string{"analyze"})
	if err != nil {
		t.Fatalf("analyze is not reachable: %v", err)
	}
	for _, flag := range []string{"tolerance", "mainline-branch", "max-failure-ratio", "metrics-file", "log-level"} {
		assert.NotNil(t, analyze.Flags().Lookup(flag), "analyze is missing --%s", flag)
	}
	assert.False(t, cmd.PersistentFlags().HasFlags(), "the root command takes no flags of its own")
}
