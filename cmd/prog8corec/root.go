package main

import (
	"github.com/spf13/cobra"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "prog8corec",
		Short:         "semantic analysis and optimization core CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "compiler options JSON file (see internal/config.Options)")
	root.AddCommand(newCheckCommand())
	root.AddCommand(newCompileCommand())
	root.AddCommand(newEmitIRCommand())
	return root
}
