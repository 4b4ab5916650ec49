// Copyright 2022 Molecula Corp. All rights reserved.
package ctl

import (
	"fmt"
	"io"
	"strings"

	"github.com/featurebasedb/sqltypecheck/errors"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
	toml "github.com/pelletier/go-toml"
)

const ErrInvalidCallFile errors.Code = "ErrInvalidCallFile"

// CallFile is a list of calls to validate, read from TOML:
//
//	[[call]]
//	operator = "ARRAY_CONTAINS"
//	operands = ["ARRAY<INTEGER>", "CAST(NULL AS INTEGER)"]
type CallFile struct {
	Calls []CallDefinition `toml:"call"`
}

// CallDefinition describes one call. Each operand is a type name, which
// stands for a column of that type, NULL, CAST(<operand> AS <type>) or a
// parenthesized operand.
type CallDefinition struct {
	Operator string   `toml:"operator"`
	Operands []string `toml:"operands"`
}

// LoadCallFile decodes a CallFile from r.
func LoadCallFile(r io.Reader) (*CallFile, error) {
	var f CallFile
	if err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.New(ErrInvalidCallFile, fmt.Sprintf("decoding call file: %v", err))
	}
	for i, c := range f.Calls {
		if strings.TrimSpace(c.Operator) == "" {
			return nil, errors.New(ErrInvalidCallFile, fmt.Sprintf("call %d: operator is required", i+1))
		}
	}
	return &f, nil
}

// String renders the call the way its positions are counted.
func (c CallDefinition) String() string {
	operands := make([]string, len(c.Operands))
	for i, op := range c.Operands {
		operands[i] = strings.TrimSpace(op)
	}
	return fmt.Sprintf("%s(%s)", strings.TrimSpace(c.Operator), strings.Join(operands, ", "))
}

// Call builds the expression for the call as if String() were the text on
// the given line.
func (c CallDefinition) Call(line int) (*parser.Call, error) {
	name := strings.TrimSpace(c.Operator)
	call := &parser.Call{
		Name:   &parser.Ident{NamePos: linePos(line, 1), Name: name},
		Lparen: linePos(line, len(name)+1),
	}

	col := len(name) + 2
	for i, s := range c.Operands {
		s = strings.TrimSpace(s)
		arg, err := parseOperand(s, line, col, i)
		if err != nil {
			return nil, errors.Wrapf(err, "call %d operand %d", line, i+1)
		}
		call.Args = append(call.Args, arg)
		col += len(s) + len(", ")
	}
	call.Rparen = linePos(line, col)
	return call, nil
}

func linePos(line, col int) parser.Pos {
	return parser.Pos{Offset: col - 1, Line: line, Column: col}
}

func parseOperand(s string, line, col, index int) (parser.Expr, error) {
	switch {
	case strings.EqualFold(s, "NULL"):
		return &parser.NullLit{Null: linePos(line, col)}, nil

	case hasPrefixFold(s, "CAST(") && strings.HasSuffix(s, ")"):
		inner := s[len("CAST(") : len(s)-1]
		// the last AS belongs to this cast; earlier ones to nested casts
		i := lastIndexFold(inner, " AS ")
		if i < 0 {
			return nil, errors.New(ErrInvalidCallFile, fmt.Sprintf("expected CAST(<operand> AS <type>), found '%s'", s))
		}
		operand := strings.TrimSpace(inner[:i])
		x, err := parseOperand(operand, line, col+len("CAST(")+strings.Index(inner, operand), index)
		if err != nil {
			return nil, err
		}
		dt, err := parser.ParseDataType(inner[i+len(" AS "):])
		if err != nil {
			return nil, err
		}
		return &parser.CastExpr{
			Cast:   linePos(line, col),
			Lparen: linePos(line, col+len("CAST")),
			X:      x,
			As:     linePos(line, col+len("CAST(")+i+1),
			Type:   dt,
			Rparen: linePos(line, col+len(s)-1),
		}, nil

	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		inner := s[1 : len(s)-1]
		operand := strings.TrimSpace(inner)
		x, err := parseOperand(operand, line, col+1+strings.Index(inner, operand), index)
		if err != nil {
			return nil, err
		}
		return &parser.ParenExpr{
			Lparen: linePos(line, col),
			X:      x,
			Rparen: linePos(line, col+len(s)-1),
		}, nil

	default:
		dt, err := parser.ParseDataType(s)
		if err != nil {
			return nil, err
		}
		return &parser.ColumnRef{
			Column:         &parser.Ident{NamePos: linePos(line, col), Name: fmt.Sprintf("$%d", index+1)},
			ColumnDataType: dt,
		}, nil
	}
}

// hasPrefixFold is strings.HasPrefix ignoring case. Offsets stay valid in s,
// unlike matching against strings.ToUpper(s), which may change byte lengths.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// lastIndexFold is strings.LastIndex ignoring case.
func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
