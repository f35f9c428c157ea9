package testrunaggregatorlib

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoggingFlags(t *testing.T) {
	f := NewLoggingFlags()
	assert.NoError(t, f.Validate())

	f.LogLevel = "loud"
	assert.Error(t, f.Validate())

	previous := logrus.GetLevel()
	defer logrus.SetLevel(previous)
	f.LogLevel = "debug"
	assert.NoError(t, f.Validate())
	f.Apply()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
