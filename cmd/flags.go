package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// mustFlag reads a registered flag through get. A missing flag or a type
// mismatch is a programming error in the command definition, so it panics.
func mustFlag[T any](cmd *cobra.Command, name string, get func(string) (T, error)) T {
	val, err := get(name)
	if err != nil {
		panic(fmt.Sprintf("%s: flag error for --%s: %v", cmd.Name(), name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	return mustFlag(cmd, name, cmd.Flags().GetBool)
}

func mustGetInt(cmd *cobra.Command, name string) int {
	return mustFlag(cmd, name, cmd.Flags().GetInt)
}

func mustGetString(cmd *cobra.Command, name string) string {
	return mustFlag(cmd, name, cmd.Flags().GetString)
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	return mustFlag(cmd, name, cmd.Flags().GetFloat64)
}
