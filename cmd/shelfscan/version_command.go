package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the shelfscan version",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			version := releaseVersion
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shelfscan %s\n", version)
			return nil
		},
	}
}
