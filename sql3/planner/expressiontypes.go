// Copyright 2022 Molecula Corp. All rights reserved.

package planner

import (
	"strings"

	"github.com/featurebasedb/sqltypecheck/sql3/parser"
)

// idPrecision is the number of decimal digits of an unsigned 64 bit ID.
const idPrecision = 20

// TypeFactory computes common types over the type lattice. It holds no state
// and is safe for concurrent use.
type TypeFactory struct{}

// NewTypeFactory returns a new TypeFactory.
func NewTypeFactory() *TypeFactory {
	return &TypeFactory{}
}

// LeastRestrictive returns the narrowest type all of types can be implicitly
// converted to, or nil if there is none. The result is nullable if any input
// is. NULL converts to anything; ANY absorbs everything.
func (f *TypeFactory) LeastRestrictive(types []parser.ExprDataType) parser.ExprDataType {
	if len(types) == 0 {
		return nil
	}

	var result parser.ExprDataType
	nullable := false
	anyType := false
	for _, t := range types {
		if t == nil {
			return nil
		}
		if t.IsNullable() {
			nullable = true
		}
		switch t.(type) {
		case *parser.DataTypeVoid:
			continue
		case *parser.DataTypeAny:
			anyType = true
			continue
		}
		if result == nil {
			result = t
			continue
		}
		result = f.leastRestrictivePair(result, t)
		if result == nil {
			return nil
		}
	}

	switch {
	case anyType:
		return parser.WithNullable(parser.NewDataTypeAny(), nullable)
	case result == nil:
		// all NULL
		return parser.NewDataTypeVoid()
	default:
		return parser.WithNullable(result, nullable)
	}
}

// leastRestrictivePair unifies two types neither of which is NULL or ANY.
// Nullability of the result is ignored; the caller sets it.
func (f *TypeFactory) leastRestrictivePair(testTypeL parser.ExprDataType, testTypeR parser.ExprDataType) parser.ExprDataType {
	switch lhs := testTypeL.(type) {
	case *parser.DataTypeInt, *parser.DataTypeID, *parser.DataTypeDecimal, *parser.DataTypeFloat:
		if !typeIsNumeric(testTypeR) {
			return nil
		}
		return leastRestrictiveNumeric(testTypeL, testTypeR)

	case *parser.DataTypeBool:
		switch testTypeR.(type) {
		case *parser.DataTypeBool:
			return lhs
		}

	case *parser.DataTypeString:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeString:
			return leastRestrictiveString(lhs, rhs)
		}

	case *parser.DataTypeBinary:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeBinary:
			if lhs.Fixed && rhs.Fixed {
				return parser.NewDataTypeBinary(maxInt64(lhs.Length, rhs.Length))
			}
			if isUnbounded(lhs.Fixed, lhs.Length) || isUnbounded(rhs.Fixed, rhs.Length) {
				return parser.NewDataTypeVarbinary(0)
			}
			return parser.NewDataTypeVarbinary(maxInt64(lhs.Length, rhs.Length))
		}

	case *parser.DataTypeDate:
		switch testTypeR.(type) {
		case *parser.DataTypeDate:
			return lhs
		}

	case *parser.DataTypeTimestamp:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeTimestamp:
			return &parser.DataTypeTimestamp{Precision: maxInt64(lhs.Precision, rhs.Precision)}
		}

	case *parser.DataTypeArray:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeArray:
			elem := f.LeastRestrictive([]parser.ExprDataType{lhs.ElementType, rhs.ElementType})
			if elem == nil {
				return nil
			}
			return parser.NewDataTypeArray(elem)
		}

	case *parser.DataTypeMap:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeMap:
			key := f.LeastRestrictive([]parser.ExprDataType{lhs.KeyType, rhs.KeyType})
			value := f.LeastRestrictive([]parser.ExprDataType{lhs.ValueType, rhs.ValueType})
			if key == nil || value == nil {
				return nil
			}
			return parser.NewDataTypeMap(key, value)
		}

	case *parser.DataTypeTuple:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeTuple:
			members := f.leastRestrictiveMembers(lhs.Members, rhs.Members)
			if members == nil {
				return nil
			}
			return parser.NewDataTypeTuple(members)
		}

	case *parser.DataTypeStructured:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeStructured:
			// user-defined types only unify with themselves
			if !strings.EqualFold(lhs.Name, rhs.Name) {
				return nil
			}
			members := f.leastRestrictiveMembers(lhs.Members, rhs.Members)
			if members == nil {
				return nil
			}
			return parser.NewDataTypeStructured(lhs.Name, members)
		}
	}
	return nil
}

// leastRestrictiveMembers unifies two member lists position by position.
func (f *TypeFactory) leastRestrictiveMembers(l, r []parser.ExprDataType) []parser.ExprDataType {
	if len(l) != len(r) {
		return nil
	}
	members := make([]parser.ExprDataType, len(l))
	for i := range l {
		members[i] = f.LeastRestrictive([]parser.ExprDataType{l[i], r[i]})
		if members[i] == nil {
			return nil
		}
	}
	return members
}

// returns the common type of two numeric types
func leastRestrictiveNumeric(testTypeL parser.ExprDataType, testTypeR parser.ExprDataType) parser.ExprDataType {
	lf, lIsFloat := testTypeL.(*parser.DataTypeFloat)
	rf, rIsFloat := testTypeR.(*parser.DataTypeFloat)
	switch {
	case lIsFloat && rIsFloat:
		return &parser.DataTypeFloat{Bits: maxInt(lf.Bits, rf.Bits)}
	case lIsFloat || rIsFloat:
		return parser.NewDataTypeDouble()
	}

	switch lhs := testTypeL.(type) {
	case *parser.DataTypeID:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeID:
			return parser.NewDataTypeID()
		case *parser.DataTypeInt:
			return parser.NewDataTypeIntBits(64)
		case *parser.DataTypeDecimal:
			return leastRestrictiveDecimal(idPrecision, 0, rhs.Precision, rhs.Scale)
		}

	case *parser.DataTypeInt:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeInt:
			return parser.NewDataTypeIntBits(maxInt(lhs.Bits, rhs.Bits))
		case *parser.DataTypeID:
			return parser.NewDataTypeIntBits(64)
		case *parser.DataTypeDecimal:
			return leastRestrictiveDecimal(lhs.Precision(), 0, rhs.Precision, rhs.Scale)
		}

	case *parser.DataTypeDecimal:
		switch rhs := testTypeR.(type) {
		case *parser.DataTypeDecimal:
			return leastRestrictiveDecimal(lhs.Precision, lhs.Scale, rhs.Precision, rhs.Scale)
		case *parser.DataTypeInt:
			return leastRestrictiveDecimal(lhs.Precision, lhs.Scale, rhs.Precision(), 0)
		case *parser.DataTypeID:
			return leastRestrictiveDecimal(lhs.Precision, lhs.Scale, idPrecision, 0)
		}
	}
	return nil
}

// leastRestrictiveDecimal keeps the larger scale and the larger number of
// integer digits. When that exceeds MaxDecimalPrecision, scale is given up
// before integer digits.
func leastRestrictiveDecimal(p1, s1, p2, s2 int64) *parser.DataTypeDecimal {
	scale := maxInt64(s1, s2)
	intDigits := maxInt64(p1-s1, p2-s2)
	precision := intDigits + scale
	if precision > parser.MaxDecimalPrecision {
		scale -= precision - parser.MaxDecimalPrecision
		if scale < 0 {
			scale = 0
		}
		precision = parser.MaxDecimalPrecision
	}
	return parser.NewDataTypeDecimal(precision, scale)
}

// returns the common type of two character types. Strings in different
// character sets have no common type; collation does not matter for
// comparability and the first explicit one is kept.
func leastRestrictiveString(lhs, rhs *parser.DataTypeString) parser.ExprDataType {
	if lhs.CharsetName() != rhs.CharsetName() {
		return nil
	}

	result := &parser.DataTypeString{
		Charset:   lhs.Charset,
		Collation: lhs.Collation,
	}
	if result.Collation == "" {
		result.Collation = rhs.Collation
	}

	switch {
	case lhs.Fixed && rhs.Fixed:
		result.Fixed = true
		result.Length = maxInt64(lhs.Length, rhs.Length)
	case isUnbounded(lhs.Fixed, lhs.Length) || isUnbounded(rhs.Fixed, rhs.Length):
		result.Length = 0
	default:
		result.Length = maxInt64(lhs.Length, rhs.Length)
	}
	return result
}

func isUnbounded(fixed bool, length int64) bool {
	return !fixed && length == 0
}

// returns true if the type is numeric
func typeIsNumeric(testType parser.ExprDataType) bool {
	switch testType.(type) {
	case *parser.DataTypeInt, *parser.DataTypeID, *parser.DataTypeDecimal, *parser.DataTypeFloat:
		return true
	default:
		return false
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
