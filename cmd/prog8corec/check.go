package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <program.json>",
		Short: "run name resolution, optimization, and semantic checking, reporting diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			mod, heap, err := loadProgramFile(args[0])
			if err != nil {
				return err
			}

			_, reporter := runThroughCheck(mod, heap, opts)
			fmt.Fprint(os.Stdout, reporter.Format())
			if reporter.HasErrors() {
				return fmt.Errorf("check failed")
			}
			return nil
		},
	}
}
