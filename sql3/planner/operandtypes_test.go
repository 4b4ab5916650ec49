// Copyright 2022 Molecula Corp. All rights reserved.

package planner_test

import (
	"testing"

	"github.com/featurebasedb/sqltypecheck/errors"
	"github.com/featurebasedb/sqltypecheck/sql3"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
	"github.com/featurebasedb/sqltypecheck/sql3/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperandCountRange(t *testing.T) {
	tests := []struct {
		r     planner.OperandCountRange
		str   string
		valid []int
		bad   []int
	}{
		{r: planner.OperandCountOf(2), str: "2", valid: []int{2}, bad: []int{0, 1, 3}},
		{r: planner.OperandCountBetween(1, 3), str: "1..3", valid: []int{1, 2, 3}, bad: []int{0, 4}},
		{r: planner.OperandCountBetween(1, -1), str: "1..", valid: []int{1, 2, 100}, bad: []int{0}},
	}
	for _, test := range tests {
		t.Run(test.str, func(t *testing.T) {
			assert.Equal(t, test.str, test.r.String())
			for _, n := range test.valid {
				assert.True(t, test.r.IsValidCount(n), "%d", n)
			}
			for _, n := range test.bad {
				assert.False(t, test.r.IsValidCount(n), "%d", n)
			}
		})
	}
}

func TestFamilyOperandTypeChecker(t *testing.T) {
	t.Run("Families", func(t *testing.T) {
		tests := []struct {
			name    string
			checker *planner.FamilyOperandTypeChecker
			operand parser.Expr
			ok      bool
		}{
			{name: "IntegerIsNumeric", checker: planner.Numeric, operand: column("a", "INTEGER", 5), ok: true},
			{name: "DecimalIsNumeric", checker: planner.Numeric, operand: column("a", "DECIMAL(5,2)", 5), ok: true},
			{name: "IDIsNumeric", checker: planner.Numeric, operand: column("a", "ID", 5), ok: true},
			{name: "VarcharIsNotNumeric", checker: planner.Numeric, operand: column("a", "VARCHAR", 5)},
			{name: "CharIsCharacter", checker: planner.Character, operand: column("a", "CHAR(2)", 5), ok: true},
			{name: "BooleanIsBoolean", checker: planner.Boolean, operand: column("a", "BOOL", 5), ok: true},
			{name: "ArrayIsArray", checker: planner.ArrayOperand, operand: column("a", "ARRAY<VARCHAR>", 5), ok: true},
			{name: "MapIsNotArray", checker: planner.ArrayOperand, operand: column("a", "MAP<INTEGER, INTEGER>", 5)},
			{name: "AnyIsNumeric", checker: planner.Numeric, operand: column("a", "ANY", 5), ok: true},
			{name: "AnyIsNotArray", checker: planner.ArrayOperand, operand: column("a", "ANY", 5)},
			{name: "NullTypedColumnIsNotNumeric", checker: planner.Numeric, operand: column("a", "NULL", 5)},
			{name: "CastNullIsNumeric", checker: planner.Numeric, operand: cast(null(10), "INTEGER", 5), ok: true},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				b := bind(call("f", test.operand), test.checker)
				assert.Equal(t, test.ok, test.checker.Matches(b))
				err := test.checker.Check(b)
				if test.ok {
					assert.NoError(t, err)
				} else {
					assert.True(t, errors.Is(err, sql3.ErrCallSignatureMismatch), "unexpected error: %v", err)
				}
			})
		}
	})

	t.Run("NullLiteral", func(t *testing.T) {
		b := bind(call("abs", null(5)), planner.Numeric)
		assert.False(t, planner.Numeric.Matches(b))
		err := planner.Numeric.Check(b)
		require.Error(t, err)
		assert.True(t, errors.Is(err, sql3.ErrNullIllegal))
		assert.Equal(t, "[1:5] illegal use of NULL", err.Error())
	})

	t.Run("NullLiteralWithTypeCoercion", func(t *testing.T) {
		b := bind(call("abs", null(5)), planner.Numeric).WithTypeCoercion(true)
		assert.True(t, planner.Numeric.Matches(b))
		assert.NoError(t, planner.Numeric.Check(b))
	})

	t.Run("AnyFamily", func(t *testing.T) {
		checker := planner.NewFamilyOperandTypeChecker(parser.FamilyAny, parser.FamilyNumeric)
		b := bind(call("f", null(3), column("b", "INTEGER", 9)), checker)
		assert.True(t, checker.Matches(b))
	})

	t.Run("SignatureError", func(t *testing.T) {
		b := bind(call("nvl", column("a", "INTEGER", 5), column("b", "VARCHAR(3)", 8)), planner.NumericNumeric)
		err := planner.NumericNumeric.Check(b)
		require.Error(t, err)
		assert.Equal(t, "[1:1] cannot apply 'NVL' to arguments of type 'NVL(<INTEGER>, <VARCHAR(3)>)'. supported form(s): 'NVL(<NUMERIC>, <NUMERIC>)'", err.Error())
	})

	t.Run("WrongCount", func(t *testing.T) {
		b := bind(call("abs", column("a", "INTEGER", 5), column("b", "INTEGER", 8)), planner.Numeric)
		assert.False(t, planner.Numeric.Matches(b))
		assert.True(t, errors.Is(planner.Numeric.Check(b), sql3.ErrCallSignatureMismatch))
	})

	t.Run("AllowedSignatures", func(t *testing.T) {
		assert.Equal(t, "F(<ARRAY>)", planner.ArrayOperand.AllowedSignatures("F"))
		assert.Equal(t, "F(<CHARACTER>, <CHARACTER>)", planner.CharacterCharacter.AllowedSignatures("F"))
		assert.Equal(t, planner.OperandCountOf(2), planner.CharacterCharacter.OperandCountRange())
	})
}

func TestCompositeOperandTypeChecker(t *testing.T) {
	numericOrString := planner.Or(planner.NumericNumeric, planner.CharacterCharacter)

	t.Run("Or", func(t *testing.T) {
		tests := []struct {
			name string
			call *parser.Call
			ok   bool
		}{
			{name: "FirstRule", call: call("nvl", column("a", "INTEGER", 5), column("b", "DOUBLE", 8)), ok: true},
			{name: "SecondRule", call: call("nvl", column("a", "VARCHAR", 5), column("b", "CHAR(2)", 8)), ok: true},
			{name: "Neither", call: call("nvl", column("a", "INTEGER", 5), column("b", "VARCHAR", 8))},
			{name: "NullNeither", call: call("nvl", null(5), column("b", "INTEGER", 11))},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				b := bind(test.call, numericOrString)
				assert.Equal(t, test.ok, numericOrString.Matches(b))
				err := numericOrString.Check(b)
				if test.ok {
					assert.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.True(t, errors.Is(err, sql3.ErrCallSignatureMismatch), "unexpected error: %v", err)
				assert.Contains(t, err.Error(), "'NVL(<NUMERIC>, <NUMERIC>)\nNVL(<CHARACTER>, <CHARACTER>)'")
			})
		}
	})

	t.Run("And", func(t *testing.T) {
		// an array whose element the second operand can be compared with,
		// where the second operand must also be numeric
		checker := planner.And(planner.ArrayElement, planner.NewFamilyOperandTypeChecker(parser.FamilyAny, parser.FamilyNumeric))
		assert.Equal(t, planner.OperandCountOf(2), checker.OperandCountRange())
		assert.Equal(t, "<ARRAY> F <ARRAY>", checker.AllowedSignatures("F"))

		ok := bind(call("f", column("a", "ARRAY<INTEGER>", 3), column("b", "BIGINT", 6)), checker)
		assert.True(t, checker.Matches(ok))
		assert.NoError(t, checker.Check(ok))

		// the first failing rule's error is returned
		notComparable := bind(call("f", column("a", "ARRAY<INTEGER>", 3), column("b", "VARCHAR", 6)), checker)
		assert.False(t, checker.Matches(notComparable))
		assert.True(t, errors.Is(checker.Check(notComparable), sql3.ErrTypesNotComparable))

		notNumeric := bind(call("f", column("a", "ARRAY<VARCHAR>", 3), column("b", "VARCHAR", 6)), checker)
		assert.False(t, checker.Matches(notNumeric))
		assert.True(t, errors.Is(checker.Check(notNumeric), sql3.ErrCallSignatureMismatch))
	})

	t.Run("OperandCountRange", func(t *testing.T) {
		unary := planner.Numeric
		binary := planner.NumericNumeric
		unbounded := unboundedChecker{}

		assert.Equal(t, planner.OperandCountBetween(1, 2), planner.Or(unary, binary).OperandCountRange())
		assert.Equal(t, planner.OperandCountBetween(0, -1), planner.Or(unary, unbounded).OperandCountRange())
		assert.Equal(t, planner.OperandCountOf(2), planner.And(unbounded, binary).OperandCountRange())
	})
}

// unboundedChecker accepts any number of operands of any type.
type unboundedChecker struct{}

func (unboundedChecker) Matches(b *planner.CallBinding) bool { return true }
func (unboundedChecker) Check(b *planner.CallBinding) error  { return nil }
func (unboundedChecker) OperandCountRange() planner.OperandCountRange {
	return planner.OperandCountBetween(0, -1)
}
func (unboundedChecker) AllowedSignatures(opName string) string { return opName + "(...)" }
