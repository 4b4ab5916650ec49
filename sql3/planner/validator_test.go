// Copyright 2022 Molecula Corp. All rights reserved.

package planner_test

import (
	"testing"

	"github.com/featurebasedb/sqltypecheck/errors"
	"github.com/featurebasedb/sqltypecheck/logger"
	"github.com/featurebasedb/sqltypecheck/sql3"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
	"github.com/featurebasedb/sqltypecheck/sql3/planner"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T, opts ...planner.ValidatorOption) *planner.Validator {
	t.Helper()
	opts = append([]planner.ValidatorOption{planner.OptValidatorLogger(logger.NewLogfLogger(t))}, opts...)
	v, err := planner.NewValidator(opts...)
	require.NoError(t, err)
	return v
}

func TestValidator_ValidateCall(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name    string
		call    *parser.Call
		expCode errors.Code
		expErr  string
		expOp   string // checker signature of the resolved overload
	}{
		{
			name:  "ArrayContains",
			call:  call("array_contains", column("a", "ARRAY<INTEGER>", 16), column("b", "DECIMAL(5,2)", 20)),
			expOp: "<ARRAY> ARRAY_CONTAINS <ARRAY>",
		},
		{
			name:  "ArrayContainsNull",
			call:  call("ARRAY_CONTAINS", column("a", "ARRAY<INTEGER>", 16), null(20)),
			expOp: "<ARRAY> ARRAY_CONTAINS <ARRAY>",
		},
		{
			name:    "ArrayAppendNull",
			call:    call("array_append", column("a", "ARRAY<INTEGER>", 14), null(18)),
			expCode: sql3.ErrNullIllegal,
			expErr:  "[1:18] illegal use of NULL",
		},
		{
			name:    "ArrayPrependCastNull",
			call:    call("array_prepend", column("a", "ARRAY<INTEGER>", 15), cast(null(24), "INTEGER", 19)),
			expCode: sql3.ErrNullIllegal,
			expErr:  "[1:19] illegal use of NULL",
		},
		{
			name:    "ArrayRemoveNotComparable",
			call:    call("array_remove", column("a", "ARRAY<INTEGER>", 14), column("b", "VARCHAR", 18)),
			expCode: sql3.ErrTypesNotComparable,
			expErr:  "[1:1] types 'INTEGER' and 'VARCHAR' are not comparable",
		},
		{
			name:    "ArrayPositionNotArray",
			call:    call("array_position", column("a", "VARCHAR", 16), column("b", "VARCHAR", 20)),
			expCode: sql3.ErrCallSignatureMismatch,
			expErr:  "[1:1] cannot apply 'ARRAY_POSITION' to arguments of type 'ARRAY_POSITION(<VARCHAR>, <VARCHAR>)'. supported form(s): '<ARRAY> ARRAY_POSITION <ARRAY>'",
		},
		{
			name:  "ContainsString",
			call:  call("contains", column("a", "VARCHAR", 10), column("b", "CHAR(1)", 14)),
			expOp: "CONTAINS(<CHARACTER>, <CHARACTER>)",
		},
		{
			name:  "ContainsArray",
			call:  call("contains", column("a", "ARRAY<VARCHAR>", 10), column("b", "CHAR(1)", 14)),
			expOp: "<ARRAY> CONTAINS <ARRAY>",
		},
		{
			name:  "ContainsCastNull",
			call:  call("contains", column("a", "ARRAY<VARCHAR>", 10), cast(null(19), "VARCHAR", 14)),
			expOp: "<ARRAY> CONTAINS <ARRAY>",
		},
		{
			// the last overload reports the failure
			name:    "ContainsNull",
			call:    call("contains", column("a", "ARRAY<VARCHAR>", 10), null(14)),
			expCode: sql3.ErrNullIllegal,
			expErr:  "[1:14] illegal use of NULL",
		},
		{
			name:    "ContainsNotComparable",
			call:    call("contains", column("a", "ARRAY<DATE>", 10), column("b", "VARCHAR", 14)),
			expCode: sql3.ErrTypesNotComparable,
		},
		{
			name:  "Nvl",
			call:  call("nvl", column("a", "VARCHAR", 5), column("b", "VARCHAR(3)", 8)),
			expOp: "NVL(<NUMERIC>, <NUMERIC>)\nNVL(<CHARACTER>, <CHARACTER>)",
		},
		{
			name:    "AbsString",
			call:    call("abs", column("a", "VARCHAR", 5)),
			expCode: sql3.ErrCallSignatureMismatch,
			expErr:  "[1:1] cannot apply 'ABS' to arguments of type 'ABS(<VARCHAR>)'. supported form(s): 'ABS(<NUMERIC>)'",
		},
		{
			name:    "NotNull",
			call:    call("not", null(5)),
			expCode: sql3.ErrNullIllegal,
		},
		{
			name:    "UnknownFunction",
			call:    call("array_sum", column("a", "ARRAY<INTEGER>", 11)),
			expCode: sql3.ErrCallUnknownFunction,
			expErr:  "[1:1] unknown function 'ARRAY_SUM'",
		},
		{
			name:    "TooManyOperands",
			call:    call("array_contains", column("a", "ARRAY<INTEGER>", 16), column("b", "INTEGER", 20), column("c", "INTEGER", 23)),
			expCode: sql3.ErrCallParameterCountMismatch,
			expErr:  "[1:1] 'ARRAY_CONTAINS': count of formal parameters (2) does not match count of actual parameters (3)",
		},
		{
			name:    "TooFewOperands",
			call:    call("array_length"),
			expCode: sql3.ErrCallParameterCountMismatch,
			expErr:  "[1:1] 'ARRAY_LENGTH': count of formal parameters (1) does not match count of actual parameters (0)",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			op, err := v.ValidateCall(test.call)
			if test.expCode == "" {
				require.NoError(t, err)
				require.NotNil(t, op)
				assert.Equal(t, test.expOp, op.Checker.AllowedSignatures(op.Name))
				return
			}
			require.Error(t, err)
			assert.Nil(t, op)
			assert.True(t, errors.Is(err, test.expCode), "unexpected error: %v", err)
			if test.expErr != "" {
				assert.Equal(t, test.expErr, err.Error())
			}
		})
	}
}

func TestValidator_ArityCheckedFirst(t *testing.T) {
	counting := &countingChecker{OperandTypeChecker: planner.ArrayElementNonNull}
	v := newTestValidator(t, planner.OptValidatorOperatorTable(planner.NewOperatorTable(
		&planner.Operator{Name: "ARRAY_APPEND", Checker: counting},
	)))

	// NULL operands would fail the checker; the count error must win
	_, err := v.ValidateCall(call("array_append", null(14), null(20), null(26)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql3.ErrCallParameterCountMismatch))
	assert.Equal(t, 0, counting.matches)
	assert.Equal(t, 0, counting.checks)

	_, err = v.ValidateCall(call("array_append", column("a", "ARRAY<INTEGER>", 14), null(18)))
	assert.True(t, errors.Is(err, sql3.ErrNullIllegal))
	assert.Equal(t, 1, counting.matches)
	assert.Equal(t, 1, counting.checks)
}

func TestValidator_ArityRange(t *testing.T) {
	v := newTestValidator(t, planner.OptValidatorOperatorTable(planner.NewOperatorTable(
		&planner.Operator{Name: "F", Checker: planner.Numeric},
		&planner.Operator{Name: "F", Checker: planner.NumericNumeric},
		&planner.Operator{Name: "G", Checker: unboundedChecker{}},
		&planner.Operator{Name: "V", Checker: atLeastChecker{min: 2}},
		&planner.Operator{Name: "H", Checker: planner.Or(planner.NumericNumeric, planner.NewFamilyOperandTypeChecker(
			parser.FamilyNumeric, parser.FamilyNumeric, parser.FamilyNumeric, parser.FamilyNumeric))},
	)))

	_, err := v.ValidateCall(call("f"))
	require.Error(t, err)
	assert.Equal(t, "[1:1] 'F': expected between 1 and 2 parameters, found 0", err.Error())

	op, err := v.ValidateCall(call("f", column("a", "INTEGER", 3), column("b", "INTEGER", 6)))
	require.NoError(t, err)
	assert.Same(t, planner.NumericNumeric, op.Checker)

	_, err = v.ValidateCall(call("g"))
	assert.NoError(t, err)

	_, err = v.ValidateCall(call("v", column("a", "INTEGER", 3)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql3.ErrCallParameterCountMismatch))
	assert.Equal(t, "[1:1] 'V': expected at least 2 parameters, found 1", err.Error())

	_, err = v.ValidateCall(call("v", column("a", "INTEGER", 3), column("b", "INTEGER", 6), column("c", "INTEGER", 9)))
	assert.NoError(t, err)

	_, err = v.ValidateCall(call("h", column("a", "INTEGER", 3)))
	require.Error(t, err)
	assert.Equal(t, "[1:1] 'H': expected between 2 and 4 parameters, found 1", err.Error())

	// within the composite's range but matching no rule's count
	_, err = v.ValidateCall(call("h", column("a", "INTEGER", 3), column("b", "INTEGER", 6), column("c", "INTEGER", 9)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql3.ErrCallSignatureMismatch))
}

// atLeastChecker accepts min or more operands of any type.
type atLeastChecker struct {
	unboundedChecker
	min int
}

func (c atLeastChecker) OperandCountRange() planner.OperandCountRange {
	return planner.OperandCountBetween(c.min, -1)
}

func TestValidator_TypeCoercion(t *testing.T) {
	abs := call("abs", null(5))

	_, err := newTestValidator(t).ValidateCall(abs)
	assert.True(t, errors.Is(err, sql3.ErrNullIllegal))

	_, err = newTestValidator(t, planner.OptValidatorTypeCoercion(true)).ValidateCall(abs)
	assert.NoError(t, err)

	// coercion never turns NULL into an array
	_, err = newTestValidator(t, planner.OptValidatorTypeCoercion(true)).ValidateCall(
		call("array_contains", null(16), column("b", "INTEGER", 22)))
	assert.True(t, errors.Is(err, sql3.ErrNullIllegal))
}

func TestValidator_ValidateExpr(t *testing.T) {
	v := newTestValidator(t)

	inner := call("array_remove", column("a", "ARRAY<INTEGER>", 28), column("b", "VARCHAR", 31))
	inner.Name.NamePos = pos(15)
	inner.ResultDataType = parser.MustParseDataType("ARRAY<INTEGER>")
	outer := call("array_contains", inner, column("c", "INTEGER", 35))

	err := v.ValidateExpr(outer)
	require.Error(t, err)
	assert.Equal(t, "[1:15] types 'INTEGER' and 'VARCHAR' are not comparable", err.Error())

	inner.Args[1] = column("b", "BIGINT", 31)
	assert.NoError(t, v.ValidateExpr(outer))
}

func TestValidator_Options(t *testing.T) {
	_, err := planner.NewValidator(planner.OptValidatorOperatorTable(nil))
	assert.Error(t, err)

	lr := &countingUnifier{TypeUnifier: planner.NewTypeFactory()}
	v := newTestValidator(t, planner.OptValidatorTypeUnifier(lr), planner.OptValidatorTypeDeriver(planner.AnalyzedTypeDeriver{}))
	_, err = v.ValidateCall(call("array_contains", column("a", "ARRAY<INTEGER>", 16), column("b", "INTEGER", 20)))
	require.NoError(t, err)
	assert.Equal(t, 1, lr.calls)
}

func TestValidator_Logging(t *testing.T) {
	buf := logger.NewBufferLogger()
	v := newTestValidator(t, planner.OptValidatorLogger(buf))

	_, err := v.ValidateCall(call("contains", column("a", "ARRAY<VARCHAR>", 10), column("b", "CHAR(1)", 14)))
	require.NoError(t, err)
	_, err = v.ValidateCall(call("abs", column("a", "VARCHAR", 5)))
	require.Error(t, err)

	out, err := buf.ReadAll()
	require.NoError(t, err)
	assert.Contains(t, string(out), `DEBUG: resolved contains("a", "b") to overload 2 of 2`)
	assert.Contains(t, string(out), `DEBUG: no overload of ABS accepts abs("a")`)
}

func TestValidator_Metrics(t *testing.T) {
	v := newTestValidator(t)
	ok := planner.CounterCallValidations.WithLabelValues("ARRAY_CONTAINS", "ok")
	notComparable := planner.CounterCallValidations.WithLabelValues("ARRAY_CONTAINS", string(sql3.ErrTypesNotComparable))
	probes := planner.CounterOperandChecks.WithLabelValues("array_element", "nomatch")

	okBefore := testutil.ToFloat64(ok)
	ncBefore := testutil.ToFloat64(notComparable)
	probesBefore := testutil.ToFloat64(probes)

	_, err := v.ValidateCall(call("array_contains", column("a", "ARRAY<INTEGER>", 16), column("b", "INTEGER", 20)))
	require.NoError(t, err)
	_, err = v.ValidateCall(call("array_contains", column("a", "ARRAY<INTEGER>", 16), column("b", "VARCHAR", 20)))
	require.Error(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, ncBefore+1, testutil.ToFloat64(notComparable))
	assert.Equal(t, probesBefore+1, testutil.ToFloat64(probes))

	t.Run("UnknownOperator", func(t *testing.T) {
		unknown := planner.CounterCallValidations.WithLabelValues("unknown", string(sql3.ErrCallUnknownFunction))
		before := testutil.ToFloat64(unknown)
		series := testutil.CollectAndCount(planner.CounterCallValidations)

		for _, name := range []string{"no_such_fn_1", "no_such_fn_2", "NO_SUCH_FN_3"} {
			_, err := v.ValidateCall(call(name, column("a", "INTEGER", len(name)+2)))
			require.True(t, errors.Is(err, sql3.ErrCallUnknownFunction))
		}

		assert.Equal(t, before+3, testutil.ToFloat64(unknown))
		// no series per unknown name
		assert.Equal(t, series, testutil.CollectAndCount(planner.CounterCallValidations))
	})
}

func TestOperatorTable(t *testing.T) {
	table := planner.BuiltinOperators()

	assert.Len(t, table.Lookup("contains"), 2)
	assert.Len(t, table.Lookup("Array_Contains"), 1)
	assert.Empty(t, table.Lookup("nope"))

	ops := table.Operators()
	require.NotEmpty(t, ops)
	for i := 1; i < len(ops); i++ {
		assert.LessOrEqual(t, ops[i-1].Name, ops[i].Name)
	}
	assert.Same(t, planner.ArrayElement, table.Lookup("ARRAY_CONTAINS")[0].Checker)
	assert.Same(t, planner.ArrayElement, table.Lookup("ARRAY_POSITION")[0].Checker)
	assert.Same(t, planner.ArrayElement, table.Lookup("ARRAY_REMOVE")[0].Checker)
	assert.Same(t, planner.ArrayElementNonNull, table.Lookup("ARRAY_APPEND")[0].Checker)
}

type countingUnifier struct {
	planner.TypeUnifier
	calls int
}

func (u *countingUnifier) LeastRestrictive(types []parser.ExprDataType) parser.ExprDataType {
	u.calls++
	return u.TypeUnifier.LeastRestrictive(types)
}
