// Copyright 2022 Molecula Corp. All rights reserved.

package planner_test

import (
	"strings"

	"github.com/featurebasedb/sqltypecheck/sql3/parser"
	"github.com/featurebasedb/sqltypecheck/sql3/planner"
)

// Test expressions are laid out on line 1; the call name starts in column 1
// and each operand in the column given to its constructor.

func pos(col int) parser.Pos {
	return parser.Pos{Offset: col - 1, Line: 1, Column: col}
}

func column(name, typeName string, col int) *parser.ColumnRef {
	return &parser.ColumnRef{
		Column:         &parser.Ident{NamePos: pos(col), Name: name},
		ColumnDataType: parser.MustParseDataType(typeName),
	}
}

func null(col int) *parser.NullLit {
	return &parser.NullLit{Null: pos(col)}
}

func cast(x parser.Expr, typeName string, col int) *parser.CastExpr {
	return &parser.CastExpr{
		Cast: pos(col),
		X:    x,
		Type: parser.MustParseDataType(typeName),
	}
}

func call(name string, args ...parser.Expr) *parser.Call {
	return &parser.Call{
		Name: &parser.Ident{NamePos: pos(1), Name: name},
		Args: args,
	}
}

// bind binds checker to c as the only overload of the called operator.
func bind(c *parser.Call, checker planner.OperandTypeChecker) *planner.CallBinding {
	op := &planner.Operator{Name: strings.ToUpper(c.Name.Name), Checker: checker}
	return planner.NewCallBinding(c, op, planner.AnalyzedTypeDeriver{}, planner.NewTypeFactory())
}

// countingChecker wraps a checker and counts how often it is asked to check
// operands.
type countingChecker struct {
	planner.OperandTypeChecker
	matches int
	checks  int
}

func (c *countingChecker) Matches(b *planner.CallBinding) bool {
	c.matches++
	return c.OperandTypeChecker.Matches(b)
}

func (c *countingChecker) Check(b *planner.CallBinding) error {
	c.checks++
	return c.OperandTypeChecker.Check(b)
}
