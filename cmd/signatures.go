// Copyright 2022 Molecula Corp. All rights reserved.
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/sqltypecheck/ctl"
	"github.com/spf13/cobra"
)

func newSignaturesCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	sigs := ctl.NewSignaturesCommand(stdin, stdout, stderr)
	return &cobra.Command{
		Use:   "signatures",
		Short: "Print the allowed signatures of the built-in operators.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sigs.Run(context.Background())
		},
	}
}
