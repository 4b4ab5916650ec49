// Copyright 2022 Molecula Corp. All rights reserved.
package ctl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/featurebasedb/sqltypecheck/sql3/planner"
)

// SignaturesCommand represents a command for printing the allowed signatures
// of the built-in operators.
type SignaturesCommand struct {
	*CmdIO
}

// NewSignaturesCommand returns a new instance of SignaturesCommand.
func NewSignaturesCommand(stdin io.Reader, stdout, stderr io.Writer) *SignaturesCommand {
	return &SignaturesCommand{
		CmdIO: NewCmdIO(stdin, stdout, stderr),
	}
}

// Run prints one block per overload: the operator name and operand count,
// then each allowed signature indented.
func (cmd *SignaturesCommand) Run(_ context.Context) error {
	for _, op := range planner.BuiltinOperators().Operators() {
		fmt.Fprintf(cmd.Stdout, "%s [%s] %s\n", op.Name, op.Checker.OperandCountRange(), op.Description)
		for _, sig := range strings.Split(op.Checker.AllowedSignatures(op.Name), "\n") {
			fmt.Fprintf(cmd.Stdout, "    %s\n", sig)
		}
	}
	return nil
}
