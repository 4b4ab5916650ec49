// Copyright 2022 Molecula Corp. All rights reserved.

package planner

import (
	"github.com/featurebasedb/sqltypecheck/sql3"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
)

// TypeDeriver returns the static type of an operand expression. It fails only
// for malformed expression trees.
type TypeDeriver interface {
	DeriveType(expr parser.Expr) (parser.ExprDataType, error)
}

// TypeUnifier returns the least restrictive common type of types, or nil if
// they have none.
type TypeUnifier interface {
	LeastRestrictive(types []parser.ExprDataType) parser.ExprDataType
}

// AnalyzedTypeDeriver derives the type an expression was given when it was
// analyzed.
type AnalyzedTypeDeriver struct{}

func (AnalyzedTypeDeriver) DeriveType(expr parser.Expr) (parser.ExprDataType, error) {
	if expr == nil {
		return nil, sql3.NewErrInternalf("cannot derive the type of a nil expression")
	}
	dt := expr.DataType()
	if dt == nil {
		return nil, sql3.NewErrInternalf("expression '%s' has not been analyzed", expr.String())
	}
	return dt, nil
}

// CallBinding binds an operator to one call of it for the duration of a
// validation pass. Checkers read from it and never modify the call.
type CallBinding struct {
	Call     *parser.Call
	Operator *Operator

	deriver      TypeDeriver
	unifier      TypeUnifier
	typeCoercion bool
}

// NewCallBinding returns a binding of op to call. op may be nil when the
// binding is used outside of operator resolution.
func NewCallBinding(call *parser.Call, op *Operator, deriver TypeDeriver, unifier TypeUnifier) *CallBinding {
	return &CallBinding{
		Call:     call,
		Operator: op,
		deriver:  deriver,
		unifier:  unifier,
	}
}

// WithTypeCoercion returns a copy of b with implicit type coercion enabled or
// disabled. With coercion enabled, family checkers accept bare NULL operands.
func (b *CallBinding) WithTypeCoercion(enabled bool) *CallBinding {
	c := *b
	c.typeCoercion = enabled
	return &c
}

// TypeCoercionEnabled reports whether implicit type coercion is enabled.
func (b *CallBinding) TypeCoercionEnabled() bool {
	return b.typeCoercion
}

// OperatorName returns the name the operator was called by.
func (b *CallBinding) OperatorName() string {
	if b.Operator != nil {
		return b.Operator.Name
	}
	return parser.IdentName(b.Call.Name)
}

func (b *CallBinding) OperandCount() int {
	return len(b.Call.Args)
}

func (b *CallBinding) Operand(i int) parser.Expr {
	return b.Call.Args[i]
}

func (b *CallBinding) Operands() []parser.Expr {
	return b.Call.Args
}

func (b *CallBinding) DeriveType(expr parser.Expr) (parser.ExprDataType, error) {
	return b.deriver.DeriveType(expr)
}

func (b *CallBinding) LeastRestrictive(types []parser.ExprDataType) parser.ExprDataType {
	return b.unifier.LeastRestrictive(types)
}

// NewSignatureError returns an error saying the operator cannot be applied to
// the call's operand types, listing the operator's allowed signatures.
func (b *CallBinding) NewSignatureError() error {
	argTypes := make([]parser.ExprDataType, len(b.Call.Args))
	for i, arg := range b.Call.Args {
		dt, err := b.DeriveType(arg)
		if err != nil {
			dt = parser.NewDataTypeAny()
		}
		argTypes[i] = dt
	}

	signature := ""
	if b.Operator != nil && b.Operator.Checker != nil {
		signature = b.Operator.Checker.AllowedSignatures(b.OperatorName())
	}
	pos := b.Call.Pos()
	return sql3.NewErrCallSignatureMismatch(pos.Line, pos.Column, b.OperatorName(), argTypes, signature)
}
