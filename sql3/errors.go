// Package sql3 contains the operand type checking errors for SQL calls.
package sql3

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/featurebasedb/sqltypecheck/errors"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
)

const (
	ErrInternal errors.Code = "ErrInternal"

	// operand errors
	ErrNullIllegal           errors.Code = "ErrNullIllegal"
	ErrTypesNotComparable    errors.Code = "ErrTypesNotComparable"
	ErrCallSignatureMismatch errors.Code = "ErrCallSignatureMismatch"

	// call errors
	ErrCallUnknownFunction        errors.Code = "ErrCallUnknownFunction"
	ErrCallParameterCountMismatch errors.Code = "ErrCallParameterCountMismatch"
)

func NewErrInternalf(format string, a ...interface{}) error {
	preamble := "internal error"
	_, filename, line, ok := runtime.Caller(1)
	if ok {
		preamble = fmt.Sprintf("internal error (%s:%d)", filename, line)
	}
	errorMessage := fmt.Sprintf(format, a...)
	errorMessage = fmt.Sprintf("%s %s", preamble, errorMessage)
	return errors.New(
		ErrInternal,
		errorMessage,
	)
}

// operand errors

func NewErrNullIllegal(line, col int) error {
	return errors.New(
		ErrNullIllegal,
		fmt.Sprintf("[%d:%d] illegal use of NULL", line, col),
	)
}

func NewErrTypesNotComparable(line, col int, type1, type2 string) error {
	return errors.New(
		ErrTypesNotComparable,
		fmt.Sprintf("[%d:%d] types '%s' and '%s' are not comparable", line, col, type1, type2),
	)
}

// NewErrCallSignatureMismatch reports that no form of an operator accepts the
// argument types. signature is the operator's allowed signatures text.
func NewErrCallSignatureMismatch(line, col int, opName string, argTypes []parser.ExprDataType, signature string) error {
	types := make([]string, len(argTypes))
	for i, t := range argTypes {
		types[i] = "<" + t.TypeDescription() + ">"
	}
	return errors.New(
		ErrCallSignatureMismatch,
		fmt.Sprintf("[%d:%d] cannot apply '%s' to arguments of type '%s(%s)'. supported form(s): '%s'",
			line, col, opName, opName, strings.Join(types, ", "), signature),
	)
}

// call errors

func NewErrCallUnknownFunction(line, col int, functionName string) error {
	return errors.New(
		ErrCallUnknownFunction,
		fmt.Sprintf("[%d:%d] unknown function '%s'", line, col, functionName),
	)
}

func NewErrCallParameterCountMismatch(line, col int, functionName string, formalCount, actualCount int) error {
	return errors.New(
		ErrCallParameterCountMismatch,
		fmt.Sprintf("[%d:%d] '%s': count of formal parameters (%d) does not match count of actual parameters (%d)", line, col, functionName, formalCount, actualCount),
	)
}

func NewErrCallParameterCountRangeMismatch(line, col int, functionName string, minCount, maxCount, actualCount int) error {
	if maxCount < 0 {
		return errors.New(
			ErrCallParameterCountMismatch,
			fmt.Sprintf("[%d:%d] '%s': expected at least %d parameters, found %d", line, col, functionName, minCount, actualCount),
		)
	}
	return errors.New(
		ErrCallParameterCountMismatch,
		fmt.Sprintf("[%d:%d] '%s': expected between %d and %d parameters, found %d", line, col, functionName, minCount, maxCount, actualCount),
	)
}
