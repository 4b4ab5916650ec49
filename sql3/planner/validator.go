// Copyright 2022 Molecula Corp. All rights reserved.

package planner

import (
	"sort"
	"strings"

	"github.com/featurebasedb/sqltypecheck/errors"
	"github.com/featurebasedb/sqltypecheck/logger"
	"github.com/featurebasedb/sqltypecheck/sql3"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
)

// Operator is one overload of a named operator or function.
type Operator struct {
	Name        string
	Checker     OperandTypeChecker
	Description string
}

// OperatorTable holds operator overloads keyed by upper-case name, in
// registration order.
type OperatorTable struct {
	operators map[string][]*Operator
}

func NewOperatorTable(ops ...*Operator) *OperatorTable {
	t := &OperatorTable{
		operators: make(map[string][]*Operator),
	}
	for _, op := range ops {
		t.Register(op)
	}
	return t
}

// Register adds an overload. Overloads of the same name are tried in the
// order they were registered.
func (t *OperatorTable) Register(op *Operator) {
	key := strings.ToUpper(op.Name)
	t.operators[key] = append(t.operators[key], op)
}

// Lookup returns the overloads of name, matched case-insensitively.
func (t *OperatorTable) Lookup(name string) []*Operator {
	return t.operators[strings.ToUpper(name)]
}

// Operators returns every overload ordered by name, then registration order.
func (t *OperatorTable) Operators() []*Operator {
	names := make([]string, 0, len(t.operators))
	for name := range t.operators {
		names = append(names, name)
	}
	sort.Strings(names)

	ops := make([]*Operator, 0, len(names))
	for _, name := range names {
		ops = append(ops, t.operators[name]...)
	}
	return ops
}

// BuiltinOperators returns a table of the built-in operators.
func BuiltinOperators() *OperatorTable {
	return NewOperatorTable(
		&Operator{Name: "ARRAY_CONTAINS", Checker: ArrayElement, Description: "returns true if the array contains the element"},
		&Operator{Name: "ARRAY_POSITION", Checker: ArrayElement, Description: "returns the 1-based position of the element in the array"},
		&Operator{Name: "ARRAY_REMOVE", Checker: ArrayElement, Description: "removes every occurrence of the element from the array"},
		&Operator{Name: "ARRAY_APPEND", Checker: ArrayElementNonNull, Description: "appends the element to the array"},
		&Operator{Name: "ARRAY_PREPEND", Checker: ArrayElementNonNull, Description: "prepends the element to the array"},
		&Operator{Name: "CONTAINS", Checker: CharacterCharacter, Description: "returns true if the string contains the substring"},
		&Operator{Name: "CONTAINS", Checker: ArrayElementNonNullLiteral, Description: "returns true if the array contains the element"},
		&Operator{Name: "ARRAY_LENGTH", Checker: ArrayOperand, Description: "returns the number of elements in the array"},
		&Operator{Name: "ABS", Checker: Numeric, Description: "returns the absolute value"},
		&Operator{Name: "UPPER", Checker: Character, Description: "converts the string to upper case"},
		&Operator{Name: "NOT", Checker: Boolean, Description: "negates the boolean"},
		&Operator{Name: "NVL", Checker: Or(NumericNumeric, CharacterCharacter), Description: "returns the first argument unless it is NULL, else the second"},
	)
}

// ValidatorOption is a functional option type for Validator.
type ValidatorOption func(v *Validator) error

func OptValidatorLogger(l logger.Logger) ValidatorOption {
	return func(v *Validator) error {
		v.logger = l
		return nil
	}
}

func OptValidatorTypeDeriver(d TypeDeriver) ValidatorOption {
	return func(v *Validator) error {
		v.deriver = d
		return nil
	}
}

func OptValidatorTypeUnifier(u TypeUnifier) ValidatorOption {
	return func(v *Validator) error {
		v.unifier = u
		return nil
	}
}

// OptValidatorTypeCoercion enables implicit type coercion, which lets family
// checked operands be bare NULLs.
func OptValidatorTypeCoercion(enabled bool) ValidatorOption {
	return func(v *Validator) error {
		v.typeCoercion = enabled
		return nil
	}
}

func OptValidatorOperatorTable(t *OperatorTable) ValidatorOption {
	return func(v *Validator) error {
		if t == nil {
			return errors.Errorf("operator table must not be nil")
		}
		v.operators = t
		return nil
	}
}

// Validator resolves calls against an operator table and checks their operand
// types. It is safe for concurrent use once constructed.
type Validator struct {
	logger       logger.Logger
	deriver      TypeDeriver
	unifier      TypeUnifier
	typeCoercion bool
	operators    *OperatorTable
}

// NewValidator returns a Validator over the built-in operators unless
// OptValidatorOperatorTable says otherwise.
func NewValidator(opts ...ValidatorOption) (*Validator, error) {
	v := &Validator{
		logger:    logger.NopLogger,
		deriver:   AnalyzedTypeDeriver{},
		unifier:   NewTypeFactory(),
		operators: BuiltinOperators(),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}
	return v, nil
}

func (v *Validator) Operators() *OperatorTable {
	return v.operators
}

// Bind returns a binding of op to call using the validator's type deriver,
// unifier and coercion setting.
func (v *Validator) Bind(call *parser.Call, op *Operator) *CallBinding {
	return NewCallBinding(call, op, v.deriver, v.unifier).WithTypeCoercion(v.typeCoercion)
}

// ValidateCall returns the overload of the called operator that accepts the
// call's operands. Overloads whose operand count range excludes the call are
// never checked. The remaining ones are probed in order; if none matches,
// the last one is checked again to produce the error.
func (v *Validator) ValidateCall(call *parser.Call) (*Operator, error) {
	name := strings.ToUpper(parser.IdentName(call.Name))
	op, err := v.validateCall(name, call)

	result := "ok"
	if err != nil {
		result = string(errors.CodeOf(err))
	}
	label := name
	if errors.Is(err, sql3.ErrCallUnknownFunction) {
		// keep label cardinality bounded by the operator table
		label = unknownOperatorLabel
	}
	CounterCallValidations.WithLabelValues(label, result).Inc()
	return op, err
}

func (v *Validator) validateCall(name string, call *parser.Call) (*Operator, error) {
	pos := call.Pos()
	overloads := v.operators.Lookup(name)
	if len(overloads) == 0 {
		return nil, sql3.NewErrCallUnknownFunction(pos.Line, pos.Column, name)
	}

	n := len(call.Args)
	candidates := make([]*Operator, 0, len(overloads))
	for _, op := range overloads {
		if op.Checker.OperandCountRange().IsValidCount(n) {
			candidates = append(candidates, op)
		}
	}
	if len(candidates) == 0 {
		r := operandCountUnion(overloads)
		if r.Min == r.Max {
			return nil, sql3.NewErrCallParameterCountMismatch(pos.Line, pos.Column, name, r.Min, n)
		}
		return nil, sql3.NewErrCallParameterCountRangeMismatch(pos.Line, pos.Column, name, r.Min, r.Max, n)
	}

	for i, op := range candidates {
		ok := op.Checker.Matches(v.Bind(call, op))
		CounterOperandChecks.WithLabelValues(checkerKind(op.Checker), matchResult(ok)).Inc()
		if ok {
			v.logger.Debugf("resolved %s to overload %d of %d (%s)", call.String(), i+1, len(candidates), op.Checker.AllowedSignatures(name))
			return op, nil
		}
	}

	last := candidates[len(candidates)-1]
	v.logger.Debugf("no overload of %s accepts %s", name, call.String())
	if err := last.Checker.Check(v.Bind(call, last)); err != nil {
		return nil, err
	}
	return nil, sql3.NewErrInternalf("overload of '%s' rejected %s when probed but accepted it when checked", name, call.String())
}

// ValidateExpr validates every call in expr, innermost first, and returns the
// first error.
func (v *Validator) ValidateExpr(expr parser.Expr) error {
	_, err := parser.Walk(parser.VisitEndFunc(func(node parser.Node) (parser.Node, error) {
		if call, ok := node.(*parser.Call); ok {
			if _, err := v.ValidateCall(call); err != nil {
				return node, err
			}
		}
		return node, nil
	}), expr)
	return err
}

// operandCountUnion returns the smallest range covering every overload.
func operandCountUnion(ops []*Operator) OperandCountRange {
	r := ops[0].Checker.OperandCountRange()
	for _, op := range ops[1:] {
		rr := op.Checker.OperandCountRange()
		if rr.Min < r.Min {
			r.Min = rr.Min
		}
		if r.Max >= 0 && (rr.Max < 0 || rr.Max > r.Max) {
			r.Max = rr.Max
		}
	}
	return r
}

func matchResult(ok bool) string {
	if ok {
		return "match"
	}
	return "nomatch"
}
