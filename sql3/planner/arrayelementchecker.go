// Copyright 2022 Molecula Corp. All rights reserved.

package planner

import (
	"github.com/featurebasedb/sqltypecheck/sql3"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
)

// ArrayElementOperandTypeChecker checks calls of the form OP(array, element):
// operand 0 must be an array and operand 1 must have a common type with the
// array's element type. The zero value accepts NULL operands.
type ArrayElementOperandTypeChecker struct {
	// rejectNullOperands fails any call with a NULL literal operand before
	// types are looked at.
	rejectNullOperands bool
	// allowCastNulls makes CAST(NULL AS ...) count as a NULL literal.
	allowCastNulls bool
}

var _ OperandTypeChecker = (*ArrayElementOperandTypeChecker)(nil)

func NewArrayElementOperandTypeChecker(rejectNullOperands, allowCastNulls bool) *ArrayElementOperandTypeChecker {
	return &ArrayElementOperandTypeChecker{
		rejectNullOperands: rejectNullOperands,
		allowCastNulls:     allowCastNulls,
	}
}

func (c *ArrayElementOperandTypeChecker) checkOperandTypes(b *CallBinding, failFast bool) (bool, error) {
	if c.rejectNullOperands {
		// every operand, not just the two we compare
		for _, node := range b.Operands() {
			if parser.IsNullLiteral(node, c.allowCastNulls) {
				if failFast {
					return false, sql3.NewErrNullIllegal(node.Pos().Line, node.Pos().Column)
				}
				return false, nil
			}
		}
	}

	// a NULL first operand is never an array, even with coercion enabled
	op0 := b.Operand(0)
	if ok, err := ArrayOperand.CheckSingleOperandType(b.WithTypeCoercion(false), op0, 0, failFast); !ok {
		return false, err
	}

	arrayType, err := b.DeriveType(op0)
	if err != nil {
		return false, failFastErr(err, failFast)
	}
	elementType := mustComponentType(arrayType)

	op1 := b.Operand(1)
	operandType, err := b.DeriveType(op1)
	if err != nil {
		return false, failFastErr(err, failFast)
	}

	// only the existence of a common type matters; no coercion is applied
	if b.LeastRestrictive([]parser.ExprDataType{elementType, operandType}) == nil {
		if failFast {
			pos := b.Call.Pos()
			return false, sql3.NewErrTypesNotComparable(pos.Line, pos.Column, elementType.TypeDescription(), operandType.TypeDescription())
		}
		return false, nil
	}
	return true, nil
}

// Matches reports whether the call's operands are acceptable.
func (c *ArrayElementOperandTypeChecker) Matches(b *CallBinding) bool {
	return operandTypeCheck(c.checkOperandTypes).matches(b)
}

// Check returns ErrNullIllegal, the array operand's signature error or
// ErrTypesNotComparable, in that order of precedence, or nil.
func (c *ArrayElementOperandTypeChecker) Check(b *CallBinding) error {
	return operandTypeCheck(c.checkOperandTypes).check(b)
}

func (c *ArrayElementOperandTypeChecker) OperandCountRange() OperandCountRange {
	return OperandCountOf(2)
}

func (c *ArrayElementOperandTypeChecker) AllowedSignatures(opName string) string {
	return "<ARRAY> " + opName + " <ARRAY>"
}

// mustComponentType returns the element type of an array type. The array
// operand check has already passed when this is called, so anything else is
// a bug in this package, not bad input.
func mustComponentType(dt parser.ExprDataType) parser.ExprDataType {
	elementType, ok := parser.ComponentType(dt)
	if !ok {
		panic(sql3.NewErrInternalf("type '%s' has no component type", dt.TypeDescription()))
	}
	return elementType
}

func failFastErr(err error, failFast bool) error {
	if failFast {
		return err
	}
	return nil
}
