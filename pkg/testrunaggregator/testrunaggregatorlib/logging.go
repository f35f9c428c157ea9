package testrunaggregatorlib

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type LoggingFlags struct {
	LogLevel string
}

func NewLoggingFlags() *LoggingFlags {
	return &LoggingFlags{
		LogLevel: logrus.InfoLevel.String(),
	}
}

func (f *LoggingFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Level at which to log output, one of panic, fatal, error, warn, info, debug or trace.")
}

func (f *LoggingFlags) Validate() error {
	if _, err := logrus.ParseLevel(f.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	return nil
}

// Apply sets the global logrus level. Validate must have passed.
func (f *LoggingFlags) Apply() {
	level, err := logrus.ParseLevel(f.LogLevel)
	if err != nil {
		return
	}
	logrus.SetLevel(level)
}
