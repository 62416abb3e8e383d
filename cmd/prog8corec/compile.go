package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prog8core/internal/irtext"
)

func newCompileCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "compile <program.json>",
		Short: "run the full pipeline (check, lower, peephole, zero-page allocation)",
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

			table, reporter := runThroughCheck(mod, heap, opts)
			if reporter.HasErrors() {
				fmt.Fprint(os.Stderr, reporter.Format())
				return fmt.Errorf("compilation failed")
			}

			prog, err := lowerToIR(mod, heap, table, reporter, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stderr, reporter.Format())

			if !opts.EmitIRText {
				return nil
			}
			text := irtext.Print(prog)
			if outPath == "" {
				fmt.Fprint(os.Stdout, text)
				return nil
			}
			return os.WriteFile(outPath, []byte(text), 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the textual IR here instead of stdout")
	return cmd
}
