// Copyright 2022 Molecula Corp. All rights reserved.
package parser

import (
	"fmt"
	"strings"
)

// Pos specifies the line and character position of a node in the source text.
type Pos struct {
	Offset int // offset, starting at 0
	Line   int // line number, starting at 1
	Column int // column number, starting at 1 (byte count)
}

// String returns a string representation of the position.
func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid returns true if p is non-zero.
func (p Pos) IsValid() bool {
	return p != Pos{}
}

// Node is any node of an operand expression tree.
type Node interface {
	node()
	fmt.Stringer
}

// Expr is an operand expression. Its DataType() is the type assigned to it
// by the analyzer; nil means the expression has not been analyzed.
type Expr interface {
	Node
	expr()

	Pos() Pos
	DataType() ExprDataType
	IsLiteral() bool
}

func (*NullLit) node()    {}
func (*IntegerLit) node() {}
func (*FloatLit) node()   {}
func (*StringLit) node()  {}
func (*BoolLit) node()    {}
func (*CastExpr) node()   {}
func (*ParenExpr) node()  {}
func (*ColumnRef) node()  {}
func (*Call) node()       {}
func (*Ident) node()      {}

func (*NullLit) expr()    {}
func (*IntegerLit) expr() {}
func (*FloatLit) expr()   {}
func (*StringLit) expr()  {}
func (*BoolLit) expr()    {}
func (*CastExpr) expr()   {}
func (*ParenExpr) expr()  {}
func (*ColumnRef) expr()  {}
func (*Call) expr()       {}

// ExprString returns the string representation of expr, or the empty string
// if expr is nil.
func ExprString(expr Expr) string {
	if expr == nil {
		return ""
	}
	return expr.String()
}

type Ident struct {
	NamePos Pos
	Name    string
}

func (i *Ident) String() string {
	return `"` + strings.ReplaceAll(i.Name, `"`, `""`) + `"`
}

// IdentName returns the name of ident, or the empty string if ident is nil.
func IdentName(ident *Ident) string {
	if ident == nil {
		return ""
	}
	return ident.Name
}

type NullLit struct {
	Null Pos
}

func (lit *NullLit) String() string         { return "NULL" }
func (lit *NullLit) Pos() Pos               { return lit.Null }
func (lit *NullLit) DataType() ExprDataType { return NewDataTypeVoid() }
func (lit *NullLit) IsLiteral() bool        { return true }

type IntegerLit struct {
	ValuePos Pos
	Value    string
}

func (lit *IntegerLit) String() string         { return lit.Value }
func (lit *IntegerLit) Pos() Pos               { return lit.ValuePos }
func (lit *IntegerLit) DataType() ExprDataType { return NewDataTypeInt() }
func (lit *IntegerLit) IsLiteral() bool        { return true }

type FloatLit struct {
	ValuePos Pos
	Value    string
}

func (lit *FloatLit) String() string { return lit.Value }
func (lit *FloatLit) Pos() Pos       { return lit.ValuePos }

// DataType of a float literal is an exact decimal wide enough for its digits.
func (lit *FloatLit) DataType() ExprDataType {
	scale := NumDecimalPlaces(lit.Value)
	digits := len(strings.TrimLeft(strings.Replace(lit.Value, ".", "", 1), "-+0"))
	if digits < scale {
		digits = scale
	}
	if digits == 0 {
		digits = 1
	}
	return NewDataTypeDecimal(int64(digits), int64(scale))
}
func (lit *FloatLit) IsLiteral() bool { return true }

type StringLit struct {
	ValuePos Pos
	Value    string
}

func (lit *StringLit) String() string {
	return `'` + strings.ReplaceAll(lit.Value, `'`, `''`) + `'`
}
func (lit *StringLit) Pos() Pos { return lit.ValuePos }

// DataType of a string literal is CHAR of the literal's length.
func (lit *StringLit) DataType() ExprDataType {
	return NewDataTypeChar(int64(len(lit.Value)))
}
func (lit *StringLit) IsLiteral() bool { return true }

type BoolLit struct {
	ValuePos Pos
	Value    bool
}

func (lit *BoolLit) String() string {
	if lit.Value {
		return "TRUE"
	}
	return "FALSE"
}
func (lit *BoolLit) Pos() Pos               { return lit.ValuePos }
func (lit *BoolLit) DataType() ExprDataType { return NewDataTypeBool() }
func (lit *BoolLit) IsLiteral() bool        { return true }

// CastExpr is CAST(X AS Type). The result takes Type, nullable when X is.
type CastExpr struct {
	Cast   Pos
	Lparen Pos
	X      Expr
	As     Pos
	Type   ExprDataType
	Rparen Pos
}

func (expr *CastExpr) String() string {
	return fmt.Sprintf("CAST(%s AS %s)", ExprString(expr.X), expr.Type.TypeDescription())
}
func (expr *CastExpr) Pos() Pos { return expr.Cast }

func (expr *CastExpr) DataType() ExprDataType {
	if expr.Type == nil {
		return nil
	}
	if expr.X != nil && expr.X.DataType() != nil && expr.X.DataType().IsNullable() {
		return WithNullable(expr.Type, true)
	}
	return expr.Type
}
func (expr *CastExpr) IsLiteral() bool { return false }

type ParenExpr struct {
	Lparen Pos
	X      Expr
	Rparen Pos
}

func (expr *ParenExpr) String() string { return fmt.Sprintf("(%s)", ExprString(expr.X)) }
func (expr *ParenExpr) Pos() Pos       { return expr.Lparen }
func (expr *ParenExpr) DataType() ExprDataType {
	if expr.X == nil {
		return nil
	}
	return expr.X.DataType()
}
func (expr *ParenExpr) IsLiteral() bool { return expr.X != nil && expr.X.IsLiteral() }

// ColumnRef is a reference to a column (or parameter) whose type has already
// been resolved.
type ColumnRef struct {
	Table          *Ident
	Column         *Ident
	ColumnDataType ExprDataType
}

func (r *ColumnRef) String() string {
	if r.Table != nil {
		return fmt.Sprintf("%s.%s", r.Table.String(), r.Column.String())
	}
	return r.Column.String()
}

func (r *ColumnRef) Pos() Pos {
	if r.Table != nil {
		return r.Table.NamePos
	}
	if r.Column != nil {
		return r.Column.NamePos
	}
	return Pos{}
}
func (r *ColumnRef) DataType() ExprDataType { return r.ColumnDataType }
func (r *ColumnRef) IsLiteral() bool        { return false }

// Call is an operator or function invocation.
type Call struct {
	Name   *Ident
	Lparen Pos
	Args   []Expr
	Rparen Pos

	ResultDataType ExprDataType
}

func (c *Call) String() string {
	var buf strings.Builder
	buf.WriteString(IdentName(c.Name))
	buf.WriteString("(")
	for i, arg := range c.Args {
		if i != 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(ExprString(arg))
	}
	buf.WriteString(")")
	return buf.String()
}

func (c *Call) Pos() Pos {
	if c.Name != nil {
		return c.Name.NamePos
	}
	return c.Lparen
}
func (c *Call) DataType() ExprDataType { return c.ResultDataType }
func (c *Call) IsLiteral() bool        { return false }

// IsNullLiteral returns true if expr is the NULL literal. If allowCast is
// true, CAST(NULL AS <type>) also counts, but only one level deep: a cast of
// a cast of NULL does not.
func IsNullLiteral(expr Expr, allowCast bool) bool {
	switch e := expr.(type) {
	case *NullLit:
		return true
	case *ParenExpr:
		return IsNullLiteral(e.X, allowCast)
	case *CastExpr:
		if allowCast {
			return IsNullLiteral(e.X, false)
		}
	}
	return false
}
