// Copyright 2022 Molecula Corp. All rights reserved.

package planner

import (
	"fmt"
	"strings"

	"github.com/featurebasedb/sqltypecheck/sql3"
	"github.com/featurebasedb/sqltypecheck/sql3/parser"
)

// OperandTypeChecker checks the operand types of a call to an operator. The
// validator invokes it once per candidate overload without knowing which kind
// of checker it is.
//
// Matches and Check apply the same rules in the same order; they differ only
// in how a failure is reported. Matches is for speculative probing across
// overloads and never constructs an error. Check returns the error describing
// the first failure.
type OperandTypeChecker interface {
	Matches(b *CallBinding) bool
	Check(b *CallBinding) error

	// OperandCountRange is consulted before Matches or Check; they are only
	// called with an operand count inside the range.
	OperandCountRange() OperandCountRange

	// AllowedSignatures describes the accepted call shapes for error
	// messages. It has no effect on checking.
	AllowedSignatures(opName string) string
}

// operandTypeCheck is the shared body of Matches and Check. With failFast
// false it must return a nil error.
type operandTypeCheck func(b *CallBinding, failFast bool) (bool, error)

func (fn operandTypeCheck) matches(b *CallBinding) bool {
	ok, _ := fn(b, false)
	return ok
}

func (fn operandTypeCheck) check(b *CallBinding) error {
	ok, err := fn(b, true)
	if !ok && err == nil {
		return b.NewSignatureError()
	}
	return err
}

// OperandCountRange is the inclusive range of operand counts an operator
// accepts. A Max of -1 means unbounded.
type OperandCountRange struct {
	Min int
	Max int
}

// OperandCountOf returns a range accepting exactly n operands.
func OperandCountOf(n int) OperandCountRange {
	return OperandCountRange{Min: n, Max: n}
}

// OperandCountBetween returns a range accepting min to max operands.
func OperandCountBetween(min, max int) OperandCountRange {
	return OperandCountRange{Min: min, Max: max}
}

// IsValidCount returns true if n operands are accepted.
func (r OperandCountRange) IsValidCount(n int) bool {
	return n >= r.Min && (r.Max < 0 || n <= r.Max)
}

func (r OperandCountRange) String() string {
	switch {
	case r.Min == r.Max:
		return fmt.Sprintf("%d", r.Min)
	case r.Max < 0:
		return fmt.Sprintf("%d..", r.Min)
	default:
		return fmt.Sprintf("%d..%d", r.Min, r.Max)
	}
}

// Shared checkers. They are immutable and may be used by any number of
// operators concurrently.
var (
	ArrayOperand       = NewFamilyOperandTypeChecker(parser.FamilyArray)
	Numeric            = NewFamilyOperandTypeChecker(parser.FamilyNumeric)
	NumericNumeric     = NewFamilyOperandTypeChecker(parser.FamilyNumeric, parser.FamilyNumeric)
	Character          = NewFamilyOperandTypeChecker(parser.FamilyCharacter)
	CharacterCharacter = NewFamilyOperandTypeChecker(parser.FamilyCharacter, parser.FamilyCharacter)
	Boolean            = NewFamilyOperandTypeChecker(parser.FamilyBoolean)

	// ArrayElement accepts NULL operands.
	ArrayElement = NewArrayElementOperandTypeChecker(false, false)

	// ArrayElementNonNull rejects NULL and CAST(NULL AS ...) operands.
	ArrayElementNonNull = NewArrayElementOperandTypeChecker(true, true)

	// ArrayElementNonNullLiteral rejects bare NULL operands only.
	ArrayElementNonNullLiteral = NewArrayElementOperandTypeChecker(true, false)
)

// FamilyOperandTypeChecker requires operand i to belong to family i.
type FamilyOperandTypeChecker struct {
	families []parser.TypeFamily
}

var _ OperandTypeChecker = (*FamilyOperandTypeChecker)(nil)

func NewFamilyOperandTypeChecker(families ...parser.TypeFamily) *FamilyOperandTypeChecker {
	return &FamilyOperandTypeChecker{
		families: families,
	}
}

// CheckSingleOperandType checks that node, operand i of the call, belongs to
// family i. A bare NULL fails with ErrNullIllegal unless the binding has type
// coercion enabled. An ANY typed operand belongs to every family except the
// structural ones (ARRAY, MAP and ROW), because callers of those go on to
// take the operand's type apart.
func (c *FamilyOperandTypeChecker) CheckSingleOperandType(b *CallBinding, node parser.Expr, i int, failFast bool) (bool, error) {
	family := c.families[i]
	if family == parser.FamilyAny {
		return true, nil
	}

	if parser.IsNullLiteral(node, false) {
		if b.TypeCoercionEnabled() {
			return true, nil
		}
		if failFast {
			return false, sql3.NewErrNullIllegal(node.Pos().Line, node.Pos().Column)
		}
		return false, nil
	}

	dt, err := b.DeriveType(node)
	if err != nil {
		if failFast {
			return false, err
		}
		return false, nil
	}

	actual := parser.Family(dt)
	if actual == family || (actual == parser.FamilyAny && !isStructuralFamily(family)) {
		return true, nil
	}
	if failFast {
		return false, b.NewSignatureError()
	}
	return false, nil
}

func isStructuralFamily(f parser.TypeFamily) bool {
	switch f {
	case parser.FamilyArray, parser.FamilyMap, parser.FamilyRow:
		return true
	default:
		return false
	}
}

func (c *FamilyOperandTypeChecker) checkOperandTypes(b *CallBinding, failFast bool) (bool, error) {
	if b.OperandCount() != len(c.families) {
		// an inapplicable rule of a composite; not an error
		return false, nil
	}
	for i, node := range b.Operands() {
		if ok, err := c.CheckSingleOperandType(b, node, i, failFast); !ok {
			return false, err
		}
	}
	return true, nil
}

func (c *FamilyOperandTypeChecker) Matches(b *CallBinding) bool {
	return operandTypeCheck(c.checkOperandTypes).matches(b)
}

func (c *FamilyOperandTypeChecker) Check(b *CallBinding) error {
	return operandTypeCheck(c.checkOperandTypes).check(b)
}

func (c *FamilyOperandTypeChecker) OperandCountRange() OperandCountRange {
	return OperandCountOf(len(c.families))
}

func (c *FamilyOperandTypeChecker) AllowedSignatures(opName string) string {
	args := make([]string, len(c.families))
	for i, f := range c.families {
		args[i] = "<" + f.String() + ">"
	}
	return fmt.Sprintf("%s(%s)", opName, strings.Join(args, ", "))
}

// CompositionKind is how a CompositeOperandTypeChecker combines its rules.
type CompositionKind int

const (
	CompositionAnd CompositionKind = iota
	CompositionOr
)

// CompositeOperandTypeChecker combines rules with AND or OR.
type CompositeOperandTypeChecker struct {
	kind  CompositionKind
	rules []OperandTypeChecker
}

var _ OperandTypeChecker = (*CompositeOperandTypeChecker)(nil)

// And returns a checker passing when all rules pass.
func And(rules ...OperandTypeChecker) *CompositeOperandTypeChecker {
	return &CompositeOperandTypeChecker{kind: CompositionAnd, rules: rules}
}

// Or returns a checker passing when any rule passes.
func Or(rules ...OperandTypeChecker) *CompositeOperandTypeChecker {
	return &CompositeOperandTypeChecker{kind: CompositionOr, rules: rules}
}

func (c *CompositeOperandTypeChecker) checkOperandTypes(b *CallBinding, failFast bool) (bool, error) {
	n := b.OperandCount()
	switch c.kind {
	case CompositionAnd:
		for _, rule := range c.rules {
			if !rule.OperandCountRange().IsValidCount(n) {
				if failFast {
					return false, b.NewSignatureError()
				}
				return false, nil
			}
			if failFast {
				if err := rule.Check(b); err != nil {
					return false, err
				}
			} else if !rule.Matches(b) {
				return false, nil
			}
		}
		return true, nil

	default:
		for _, rule := range c.rules {
			if rule.OperandCountRange().IsValidCount(n) && rule.Matches(b) {
				return true, nil
			}
		}
		if failFast {
			return false, b.NewSignatureError()
		}
		return false, nil
	}
}

func (c *CompositeOperandTypeChecker) Matches(b *CallBinding) bool {
	return operandTypeCheck(c.checkOperandTypes).matches(b)
}

func (c *CompositeOperandTypeChecker) Check(b *CallBinding) error {
	return operandTypeCheck(c.checkOperandTypes).check(b)
}

// OperandCountRange is the intersection of the rules' ranges for AND and
// their union for OR.
func (c *CompositeOperandTypeChecker) OperandCountRange() OperandCountRange {
	if len(c.rules) == 0 {
		return OperandCountOf(0)
	}
	r := c.rules[0].OperandCountRange()
	for _, rule := range c.rules[1:] {
		rr := rule.OperandCountRange()
		switch c.kind {
		case CompositionAnd:
			r.Min = maxInt(r.Min, rr.Min)
			if r.Max < 0 || (rr.Max >= 0 && rr.Max < r.Max) {
				r.Max = rr.Max
			}
		default:
			if rr.Min < r.Min {
				r.Min = rr.Min
			}
			if r.Max >= 0 && (rr.Max < 0 || rr.Max > r.Max) {
				r.Max = rr.Max
			}
		}
	}
	return r
}

// AllowedSignatures lists each rule's signatures on its own line for OR. For
// AND the first rule describes the shape.
func (c *CompositeOperandTypeChecker) AllowedSignatures(opName string) string {
	sigs := make([]string, 0, len(c.rules))
	for _, rule := range c.rules {
		sigs = append(sigs, rule.AllowedSignatures(opName))
		if c.kind == CompositionAnd {
			break
		}
	}
	return strings.Join(sigs, "\n")
}
