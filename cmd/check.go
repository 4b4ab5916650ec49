// Copyright 2022 Molecula Corp. All rights reserved.
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/sqltypecheck/ctl"
	"github.com/spf13/cobra"
)

func newCheckCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	checker := ctl.NewCheckCommand(stdin, stdout, stderr)
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the operand types of the calls in a call file.",
		Long: `
Validates every call in a TOML call file against the built-in operators
and prints one line per call. Exits non-zero if any call is rejected.

	[[call]]
	operator = "ARRAY_CONTAINS"
	operands = ["ARRAY<INTEGER>", "CAST(NULL AS INTEGER)"]
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checker.Run(context.Background())
		},
	}

	flags := checkCmd.Flags()
	flags.StringVarP(&checker.CallsPath, "calls", "f", "", "TOML call file to check, or - for stdin")
	flags.StringVar(&checker.Format, "format", ctl.FormatText, "Output format: text or json")
	flags.BoolVarP(&checker.Verbose, "verbose", "v", false, "Log operator resolution to stderr")
	flags.BoolVar(&checker.TypeCoercion, "type-coercion", false, "Accept NULL operands where a type family is expected")
	return checkCmd
}
