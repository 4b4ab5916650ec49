// Copyright 2022 Molecula Corp. All rights reserved.
package ctl

import (
	"io"

	"github.com/featurebasedb/sqltypecheck/logger"
)

// CmdIO holds standard unix inputs and outputs.
type CmdIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	logger logger.Logger
}

// NewCmdIO returns a new instance of CmdIO with inputs and outputs set to the
// arguments.
func NewCmdIO(stdin io.Reader, stdout, stderr io.Writer) *CmdIO {
	return &CmdIO{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		logger: logger.NewStandardLogger(stderr),
	}
}

func (c *CmdIO) Logger() logger.Logger {
	return c.logger
}

// SetVerbose switches the logger to one that includes debug output.
func (c *CmdIO) SetVerbose(verbose bool) {
	if verbose {
		c.logger = logger.NewVerboseLogger(c.Stderr)
	} else {
		c.logger = logger.NewStandardLogger(c.Stderr)
	}
}
