// Copyright 2022 Molecula Corp. All rights reserved.
package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/featurebasedb/sqltypecheck/errors"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
	"github.com/featurebasedb/sqltypecheck/sql3/planner"
)

const ErrCallsFailed errors.Code = "ErrCallsFailed"

const (
	FormatText = "text"
	FormatJSON = "json"
)

// CheckCommand represents a command for validating the operand types of the
// calls in a call file.
type CheckCommand struct {
	// Path of the TOML call file. "-" reads standard input.
	CallsPath string

	// Output format, "text" or "json".
	Format string

	// Log operator resolution to standard error.
	Verbose bool

	// Accept bare NULLs for family checked operands.
	TypeCoercion bool

	// Standard input/output
	*CmdIO
}

// NewCheckCommand returns a new instance of CheckCommand.
func NewCheckCommand(stdin io.Reader, stdout, stderr io.Writer) *CheckCommand {
	return &CheckCommand{
		Format: FormatText,
		CmdIO:  NewCmdIO(stdin, stdout, stderr),
	}
}

// checkResult is one line of json output.
type checkResult struct {
	Call      string          `json:"call"`
	Signature string          `json:"signature,omitempty"`
	OK        bool            `json:"ok"`
	Operands  []operandResult `json:"operands,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// operandResult describes the type of one operand of a json result.
type operandResult struct {
	Type string                 `json:"type"`
	Info map[string]interface{} `json:"info,omitempty"`
}

func operandResults(call *parser.Call) []operandResult {
	if call == nil {
		return nil
	}
	results := make([]operandResult, 0, len(call.Args))
	for _, arg := range call.Args {
		dt := arg.DataType()
		if dt == nil {
			results = append(results, operandResult{})
			continue
		}
		results = append(results, operandResult{
			Type: parser.FullTypeDescription(dt),
			Info: dt.TypeInfo(),
		})
	}
	return results
}

// Run executes the check command. It returns ErrCallsFailed if any call was
// rejected, after reporting on every call.
func (cmd *CheckCommand) Run(_ context.Context) error {
	if cmd.Format != FormatText && cmd.Format != FormatJSON {
		return errors.Errorf("invalid format '%s', expected %s or %s", cmd.Format, FormatText, FormatJSON)
	}
	cmd.SetVerbose(cmd.Verbose)

	calls, err := cmd.readCallFile()
	if err != nil {
		return err
	}

	v, err := planner.NewValidator(
		planner.OptValidatorLogger(cmd.Logger()),
		planner.OptValidatorTypeCoercion(cmd.TypeCoercion),
	)
	if err != nil {
		return errors.Wrap(err, "creating validator")
	}

	failed := 0
	for i, def := range calls.Calls {
		line := i + 1
		var op *planner.Operator
		call, err := def.Call(line)
		if err == nil {
			op, err = v.ValidateCall(call)
		}
		if err != nil {
			failed++
		}
		if err := cmd.report(line, def, call, op, err); err != nil {
			return errors.Wrap(err, "writing result")
		}
	}

	cmd.Logger().Debugf("checked %d calls, %d failed", len(calls.Calls), failed)
	if failed > 0 {
		return errors.New(ErrCallsFailed, fmt.Sprintf("%d of %d calls failed", failed, len(calls.Calls)))
	}
	return nil
}

func (cmd *CheckCommand) readCallFile() (*CallFile, error) {
	if cmd.CallsPath == "" {
		return nil, errors.Errorf("a call file is required")
	}
	if cmd.CallsPath == "-" {
		return LoadCallFile(cmd.Stdin)
	}

	f, err := os.Open(cmd.CallsPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening call file")
	}
	defer f.Close()
	return LoadCallFile(f)
}

func (cmd *CheckCommand) report(line int, def CallDefinition, call *parser.Call, op *planner.Operator, err error) error {
	if cmd.Format == FormatJSON {
		res := checkResult{
			Call:     def.String(),
			OK:       err == nil,
			Operands: operandResults(call),
		}
		if op != nil {
			res.Signature = op.Checker.AllowedSignatures(op.Name)
		}
		if err != nil {
			res.Error = json.RawMessage(errors.MarshalJSON(err))
		}
		buf, jerr := json.Marshal(res)
		if jerr != nil {
			return jerr
		}
		_, werr := fmt.Fprintln(cmd.Stdout, string(buf))
		return werr
	}

	status := "ok"
	if err != nil {
		status = err.Error()
	}
	_, werr := fmt.Fprintf(cmd.Stdout, "%d: %s: %s\n", line, def.String(), status)
	return werr
}
