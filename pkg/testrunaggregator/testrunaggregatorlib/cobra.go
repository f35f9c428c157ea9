package testrunaggregatorlib

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExactlyOneLocation requires a single, non-empty positional argument.
func ExactlyOneLocation(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || len(args[0]) == 0 {
		return fmt.Errorf("%q takes exactly one location argument, got %q", cmd.CommandPath(), args)
	}
	return nil
}
