package parser

import (
	"fmt"
	"strings"
)

// base type names
const (
	BaseTypeAny        = "ANY"
	BaseTypeNull       = "NULL"
	BaseTypeBool       = "BOOLEAN"
	BaseTypeTinyInt    = "TINYINT"
	BaseTypeSmallInt   = "SMALLINT"
	BaseTypeInt        = "INTEGER"
	BaseTypeBigInt     = "BIGINT"
	BaseTypeID         = "ID"
	BaseTypeDecimal    = "DECIMAL"
	BaseTypeReal       = "REAL"
	BaseTypeDouble     = "DOUBLE"
	BaseTypeChar       = "CHAR"
	BaseTypeVarchar    = "VARCHAR"
	BaseTypeBinary     = "BINARY"
	BaseTypeVarbinary  = "VARBINARY"
	BaseTypeDate       = "DATE"
	BaseTypeTimestamp  = "TIMESTAMP"
	BaseTypeArray      = "ARRAY"
	BaseTypeMap        = "MAP"
	BaseTypeRow        = "ROW"
	BaseTypeStructured = "STRUCT"
)

const (
	// MaxDecimalPrecision is the largest precision a DECIMAL can have.
	MaxDecimalPrecision = 38

	// DefaultCharset is the character set of strings that don't declare one.
	DefaultCharset = "UTF-8"
)

// ExprDataType is the interface for all language layer types
type ExprDataType interface {
	exprDataType()
	// the base type name e.g. INTEGER or DECIMAL
	BaseTypeName() string
	// additional type information - intended to be used outside the language
	// layer (marshalled over json, or otherwise serialized so that consumers
	// have access to complete type information)
	TypeInfo() map[string]interface{}
	// the full type specification as a string - intended to be human readable.
	// It does not include nullability.
	TypeDescription() string
	// whether values of the type may be NULL
	IsNullable() bool
}

func (*DataTypeVoid) exprDataType()       {}
func (*DataTypeAny) exprDataType()        {}
func (*DataTypeBool) exprDataType()       {}
func (*DataTypeInt) exprDataType()        {}
func (*DataTypeID) exprDataType()         {}
func (*DataTypeDecimal) exprDataType()    {}
func (*DataTypeFloat) exprDataType()      {}
func (*DataTypeString) exprDataType()     {}
func (*DataTypeBinary) exprDataType()     {}
func (*DataTypeDate) exprDataType()       {}
func (*DataTypeTimestamp) exprDataType()  {}
func (*DataTypeArray) exprDataType()      {}
func (*DataTypeMap) exprDataType()        {}
func (*DataTypeTuple) exprDataType()      {}
func (*DataTypeStructured) exprDataType() {}

// Nullability is embedded in every type except DataTypeVoid, which is always
// nullable.
type Nullability struct {
	Nullable bool
}

func (n Nullability) IsNullable() bool {
	return n.Nullable
}

// DataTypeVoid is the type of the NULL literal.
type DataTypeVoid struct {
}

func NewDataTypeVoid() *DataTypeVoid {
	return &DataTypeVoid{}
}

func (*DataTypeVoid) BaseTypeName() string {
	return BaseTypeNull
}

func (dt *DataTypeVoid) TypeDescription() string {
	return dt.BaseTypeName()
}

func (*DataTypeVoid) TypeInfo() map[string]interface{} {
	return nil
}

func (*DataTypeVoid) IsNullable() bool {
	return true
}

type DataTypeAny struct {
	Nullability
}

func NewDataTypeAny() *DataTypeAny {
	return &DataTypeAny{}
}

func (*DataTypeAny) BaseTypeName() string {
	return BaseTypeAny
}

func (dt *DataTypeAny) TypeDescription() string {
	return dt.BaseTypeName()
}

func (*DataTypeAny) TypeInfo() map[string]interface{} {
	return nil
}

type DataTypeBool struct {
	Nullability
}

func NewDataTypeBool() *DataTypeBool {
	return &DataTypeBool{}
}

func (*DataTypeBool) BaseTypeName() string {
	return BaseTypeBool
}

func (dt *DataTypeBool) TypeDescription() string {
	return dt.BaseTypeName()
}

func (*DataTypeBool) TypeInfo() map[string]interface{} {
	return nil
}

// DataTypeInt is a signed binary integer of Bits width (8, 16, 32 or 64).
type DataTypeInt struct {
	Nullability
	Bits int
}

// NewDataTypeInt returns INTEGER.
func NewDataTypeInt() *DataTypeInt {
	return &DataTypeInt{Bits: 32}
}

func NewDataTypeIntBits(bits int) *DataTypeInt {
	return &DataTypeInt{Bits: bits}
}

func (dt *DataTypeInt) BaseTypeName() string {
	switch dt.Bits {
	case 8:
		return BaseTypeTinyInt
	case 16:
		return BaseTypeSmallInt
	case 64:
		return BaseTypeBigInt
	default:
		return BaseTypeInt
	}
}

func (dt *DataTypeInt) TypeDescription() string {
	return dt.BaseTypeName()
}

func (dt *DataTypeInt) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"precision": dt.Precision(),
	}
}

// Precision is the number of decimal digits the integer can hold.
func (dt *DataTypeInt) Precision() int64 {
	switch dt.Bits {
	case 8:
		return 3
	case 16:
		return 5
	case 64:
		return 19
	default:
		return 10
	}
}

// DataTypeID is an unsigned record identifier.
type DataTypeID struct {
	Nullability
}

func NewDataTypeID() *DataTypeID {
	return &DataTypeID{}
}

func (*DataTypeID) BaseTypeName() string {
	return BaseTypeID
}

func (dt *DataTypeID) TypeDescription() string {
	return dt.BaseTypeName()
}

func (*DataTypeID) TypeInfo() map[string]interface{} {
	return nil
}

type DataTypeDecimal struct {
	Nullability
	Precision int64
	Scale     int64
}

func NewDataTypeDecimal(precision, scale int64) *DataTypeDecimal {
	return &DataTypeDecimal{
		Precision: precision,
		Scale:     scale,
	}
}

func (d *DataTypeDecimal) BaseTypeName() string {
	return BaseTypeDecimal
}

func (d *DataTypeDecimal) TypeDescription() string {
	return fmt.Sprintf("%s(%d, %d)", BaseTypeDecimal, d.Precision, d.Scale)
}

func (d *DataTypeDecimal) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"precision": d.Precision,
		"scale":     d.Scale,
	}
}

// DataTypeFloat is an approximate numeric, REAL (32 bits) or DOUBLE (64).
type DataTypeFloat struct {
	Nullability
	Bits int
}

func NewDataTypeReal() *DataTypeFloat {
	return &DataTypeFloat{Bits: 32}
}

func NewDataTypeDouble() *DataTypeFloat {
	return &DataTypeFloat{Bits: 64}
}

func (dt *DataTypeFloat) BaseTypeName() string {
	if dt.Bits == 32 {
		return BaseTypeReal
	}
	return BaseTypeDouble
}

func (dt *DataTypeFloat) TypeDescription() string {
	return dt.BaseTypeName()
}

func (*DataTypeFloat) TypeInfo() map[string]interface{} {
	return nil
}

// DataTypeString is CHAR(n) when Fixed, VARCHAR(n) otherwise. A Length of 0
// on a VARCHAR means unbounded. An empty Charset is DefaultCharset.
type DataTypeString struct {
	Nullability
	Fixed     bool
	Length    int64
	Charset   string
	Collation string
}

// NewDataTypeString returns an unbounded VARCHAR.
func NewDataTypeString() *DataTypeString {
	return &DataTypeString{}
}

func NewDataTypeVarchar(length int64) *DataTypeString {
	return &DataTypeString{Length: length}
}

func NewDataTypeChar(length int64) *DataTypeString {
	return &DataTypeString{Fixed: true, Length: length}
}

func (dt *DataTypeString) BaseTypeName() string {
	if dt.Fixed {
		return BaseTypeChar
	}
	return BaseTypeVarchar
}

// CharsetName returns the character set, defaulted.
func (dt *DataTypeString) CharsetName() string {
	if dt.Charset == "" {
		return DefaultCharset
	}
	return dt.Charset
}

func (dt *DataTypeString) TypeDescription() string {
	s := dt.BaseTypeName()
	if dt.Fixed || dt.Length > 0 {
		s = fmt.Sprintf("%s(%d)", s, dt.Length)
	}
	if dt.CharsetName() != DefaultCharset {
		s += " CHARACTER SET " + dt.CharsetName()
	}
	return s
}

func (dt *DataTypeString) TypeInfo() map[string]interface{} {
	info := map[string]interface{}{
		"length":  dt.Length,
		"charset": dt.CharsetName(),
	}
	if dt.Collation != "" {
		info["collation"] = dt.Collation
	}
	return info
}

// DataTypeBinary is BINARY(n) when Fixed, VARBINARY(n) otherwise.
type DataTypeBinary struct {
	Nullability
	Fixed  bool
	Length int64
}

func NewDataTypeBinary(length int64) *DataTypeBinary {
	return &DataTypeBinary{Fixed: true, Length: length}
}

func NewDataTypeVarbinary(length int64) *DataTypeBinary {
	return &DataTypeBinary{Length: length}
}

func (dt *DataTypeBinary) BaseTypeName() string {
	if dt.Fixed {
		return BaseTypeBinary
	}
	return BaseTypeVarbinary
}

func (dt *DataTypeBinary) TypeDescription() string {
	if dt.Fixed || dt.Length > 0 {
		return fmt.Sprintf("%s(%d)", dt.BaseTypeName(), dt.Length)
	}
	return dt.BaseTypeName()
}

func (dt *DataTypeBinary) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"length": dt.Length,
	}
}

type DataTypeDate struct {
	Nullability
}

func NewDataTypeDate() *DataTypeDate {
	return &DataTypeDate{}
}

func (*DataTypeDate) BaseTypeName() string {
	return BaseTypeDate
}

func (dt *DataTypeDate) TypeDescription() string {
	return dt.BaseTypeName()
}

func (*DataTypeDate) TypeInfo() map[string]interface{} {
	return nil
}

// DataTypeTimestamp has Precision fractional second digits.
type DataTypeTimestamp struct {
	Nullability
	Precision int64
}

func NewDataTypeTimestamp() *DataTypeTimestamp {
	return &DataTypeTimestamp{}
}

func (*DataTypeTimestamp) BaseTypeName() string {
	return BaseTypeTimestamp
}

func (dt *DataTypeTimestamp) TypeDescription() string {
	if dt.Precision > 0 {
		return fmt.Sprintf("%s(%d)", BaseTypeTimestamp, dt.Precision)
	}
	return dt.BaseTypeName()
}

func (dt *DataTypeTimestamp) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"precision": dt.Precision,
	}
}

type DataTypeArray struct {
	Nullability
	ElementType ExprDataType
}

func NewDataTypeArray(elementType ExprDataType) *DataTypeArray {
	return &DataTypeArray{
		ElementType: elementType,
	}
}

func (*DataTypeArray) BaseTypeName() string {
	return BaseTypeArray
}

func (dt *DataTypeArray) TypeDescription() string {
	return fmt.Sprintf("%s<%s>", BaseTypeArray, dt.ElementType.TypeDescription())
}

func (dt *DataTypeArray) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"elementType": FullTypeDescription(dt.ElementType),
	}
}

type DataTypeMap struct {
	Nullability
	KeyType   ExprDataType
	ValueType ExprDataType
}

func NewDataTypeMap(keyType, valueType ExprDataType) *DataTypeMap {
	return &DataTypeMap{
		KeyType:   keyType,
		ValueType: valueType,
	}
}

func (*DataTypeMap) BaseTypeName() string {
	return BaseTypeMap
}

func (dt *DataTypeMap) TypeDescription() string {
	return fmt.Sprintf("%s<%s, %s>", BaseTypeMap, dt.KeyType.TypeDescription(), dt.ValueType.TypeDescription())
}

func (dt *DataTypeMap) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"keyType":   FullTypeDescription(dt.KeyType),
		"valueType": FullTypeDescription(dt.ValueType),
	}
}

// DataTypeTuple is an anonymous ROW type.
type DataTypeTuple struct {
	Nullability
	Members []ExprDataType
}

func NewDataTypeTuple(members []ExprDataType) *DataTypeTuple {
	return &DataTypeTuple{
		Members: members,
	}
}

func (dt *DataTypeTuple) BaseTypeName() string {
	return BaseTypeRow
}

func (dt *DataTypeTuple) TypeDescription() string {
	return fmt.Sprintf("%s(%s)", BaseTypeRow, memberList(dt.Members))
}

func (dt *DataTypeTuple) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"members": memberList(dt.Members),
	}
}

// DataTypeStructured is a named user-defined type.
type DataTypeStructured struct {
	Nullability
	Name    string
	Members []ExprDataType
}

func NewDataTypeStructured(name string, members []ExprDataType) *DataTypeStructured {
	return &DataTypeStructured{
		Name:    name,
		Members: members,
	}
}

func (*DataTypeStructured) BaseTypeName() string {
	return BaseTypeStructured
}

func (dt *DataTypeStructured) TypeDescription() string {
	return strings.ToUpper(dt.Name)
}

func (dt *DataTypeStructured) TypeInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":    dt.Name,
		"members": memberList(dt.Members),
	}
}

func memberList(members []ExprDataType) string {
	ms := ""
	for idx, m := range members {
		ms = ms + m.TypeDescription()
		if idx+1 < len(members) {
			ms = ms + ", "
		}
	}
	return ms
}

// FullTypeDescription is TypeDescription with a NOT NULL suffix for
// non-nullable types.
func FullTypeDescription(dt ExprDataType) string {
	if dt.IsNullable() {
		return dt.TypeDescription()
	}
	return dt.TypeDescription() + " NOT NULL"
}

// WithNullable returns a copy of dt with the given nullability. dt is
// returned as is when it already has that nullability. NULL stays NULL.
func WithNullable(dt ExprDataType, nullable bool) ExprDataType {
	if dt.IsNullable() == nullable {
		return dt
	}
	n := Nullability{Nullable: nullable}
	switch t := dt.(type) {
	case *DataTypeAny:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeBool:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeInt:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeID:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeDecimal:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeFloat:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeString:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeBinary:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeDate:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeTimestamp:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeArray:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeMap:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeTuple:
		c := *t
		c.Nullability = n
		return &c
	case *DataTypeStructured:
		c := *t
		c.Nullability = n
		return &c
	default:
		return dt
	}
}

// TypeFamily groups types that share operators.
type TypeFamily int

const (
	FamilyAny TypeFamily = iota
	FamilyNull
	FamilyBoolean
	FamilyNumeric
	FamilyCharacter
	FamilyBinary
	FamilyDatetime
	FamilyArray
	FamilyMap
	FamilyRow
	FamilyStructured
)

func (f TypeFamily) String() string {
	return [...]string{"ANY", "NULL", "BOOLEAN", "NUMERIC", "CHARACTER", "BINARY", "DATETIME", "ARRAY", "MAP", "ROW", "STRUCTURED"}[f]
}

// Family returns the family dt belongs to.
func Family(dt ExprDataType) TypeFamily {
	switch dt.(type) {
	case *DataTypeVoid:
		return FamilyNull
	case *DataTypeBool:
		return FamilyBoolean
	case *DataTypeInt, *DataTypeID, *DataTypeDecimal, *DataTypeFloat:
		return FamilyNumeric
	case *DataTypeString:
		return FamilyCharacter
	case *DataTypeBinary:
		return FamilyBinary
	case *DataTypeDate, *DataTypeTimestamp:
		return FamilyDatetime
	case *DataTypeArray:
		return FamilyArray
	case *DataTypeMap:
		return FamilyMap
	case *DataTypeTuple:
		return FamilyRow
	case *DataTypeStructured:
		return FamilyStructured
	default:
		return FamilyAny
	}
}

// ComponentType returns the element type of an array, or false if dt is not
// an array.
func ComponentType(dt ExprDataType) (ExprDataType, bool) {
	if a, ok := dt.(*DataTypeArray); ok && a.ElementType != nil {
		return a.ElementType, true
	}
	return nil, false
}

func NumDecimalPlaces(v string) int {
	i := strings.IndexByte(v, '.')
	if i > -1 {
		return len(v) - i - 1
	}
	return 0
}
