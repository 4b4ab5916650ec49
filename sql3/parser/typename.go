// Copyright 2022 Molecula Corp. All rights reserved.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/featurebasedb/sqltypecheck/errors"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	ErrInvalidTypeName errors.Code = "ErrInvalidTypeName"
	ErrUnknownCharset  errors.Code = "ErrUnknownCharset"
)

// CanonicalCharset returns the preferred IANA name of the character set called name,
// e.g. "ISO-8859-1" for "latin1".
func CanonicalCharset(name string) (string, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return "", errors.New(ErrUnknownCharset, fmt.Sprintf("unknown character set '%s'", name))
	}
	// prefer the MIME name, e.g. ISO-8859-1 over ISO_8859-1:1987
	if canonical, err := ianaindex.MIME.Name(enc); err == nil && canonical != "" {
		return canonical, nil
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "", errors.New(ErrUnknownCharset, fmt.Sprintf("unknown character set '%s'", name))
	}
	return canonical, nil
}

// ParseDataType parses a type name such as
//
//	ARRAY<DECIMAL(5, 2) NOT NULL>
//	VARCHAR(10) CHARACTER SET latin1 COLLATE en_US NOT NULL
//	ROW(INTEGER, VARCHAR)
//	STRUCT point(DOUBLE, DOUBLE)
//
// Types are nullable unless followed by NOT NULL.
func ParseDataType(s string) (ExprDataType, error) {
	p := &typeNameParser{}
	p.sc.Init(strings.NewReader(s))
	p.sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
	p.sc.Error = func(_ *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = p.errorf("%s", msg)
		}
	}
	p.next()

	dt, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, p.errorf("unexpected '%s' after type", p.lit)
	}
	return dt, p.err
}

// MustParseDataType is like ParseDataType but panics on error.
func MustParseDataType(s string) ExprDataType {
	dt, err := ParseDataType(s)
	if err != nil {
		panic(err)
	}
	return dt
}

type typeNameParser struct {
	sc  scanner.Scanner
	tok rune
	lit string
	pos scanner.Position
	err error
}

func (p *typeNameParser) next() {
	p.tok = p.sc.Scan()
	p.lit = p.sc.TokenText()
	p.pos = p.sc.Position
}

func (p *typeNameParser) errorf(format string, a ...interface{}) error {
	return errors.New(
		ErrInvalidTypeName,
		fmt.Sprintf("[%d:%d] %s", p.pos.Line, p.pos.Column, fmt.Sprintf(format, a...)),
	)
}

func (p *typeNameParser) keyword() string {
	if p.tok != scanner.Ident {
		return ""
	}
	return strings.ToUpper(p.lit)
}

func (p *typeNameParser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected '%c', found '%s'", tok, p.lit)
	}
	p.next()
	return nil
}

func (p *typeNameParser) expectKeyword(kw string) error {
	if p.keyword() != kw {
		return p.errorf("expected %s, found '%s'", kw, p.lit)
	}
	p.next()
	return nil
}

func (p *typeNameParser) parseType() (ExprDataType, error) {
	dt, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	if _, ok := dt.(*DataTypeVoid); ok {
		return dt, nil
	}

	nullable := true
	switch p.keyword() {
	case "NOT":
		p.next()
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		nullable = false
	case "NULL":
		p.next()
	}
	return WithNullable(dt, nullable), nil
}

func (p *typeNameParser) parseBaseType() (ExprDataType, error) {
	kw := p.keyword()
	if kw == "" {
		return nil, p.errorf("expected type name, found '%s'", p.lit)
	}
	p.next()

	switch kw {
	case "NULL":
		return NewDataTypeVoid(), nil
	case "ANY":
		return NewDataTypeAny(), nil
	case "BOOLEAN", "BOOL":
		return NewDataTypeBool(), nil
	case "TINYINT":
		return NewDataTypeIntBits(8), nil
	case "SMALLINT":
		return NewDataTypeIntBits(16), nil
	case "INT", "INTEGER":
		return NewDataTypeInt(), nil
	case "BIGINT":
		return NewDataTypeIntBits(64), nil
	case "ID":
		return NewDataTypeID(), nil
	case "REAL", "FLOAT":
		return NewDataTypeReal(), nil
	case "DOUBLE":
		return NewDataTypeDouble(), nil
	case "DATE":
		return NewDataTypeDate(), nil

	case "DECIMAL", "NUMERIC":
		dt := NewDataTypeDecimal(MaxDecimalPrecision, 0)
		args, err := p.parseIntArgs(2)
		if err != nil {
			return nil, err
		}
		if len(args) > 0 {
			dt.Precision = args[0]
		}
		if len(args) > 1 {
			dt.Scale = args[1]
		}
		if dt.Precision < 1 || dt.Precision > MaxDecimalPrecision || dt.Scale < 0 || dt.Scale > dt.Precision {
			return nil, p.errorf("invalid decimal precision and scale (%d, %d)", dt.Precision, dt.Scale)
		}
		return dt, nil

	case "TIMESTAMP":
		dt := NewDataTypeTimestamp()
		args, err := p.parseIntArgs(1)
		if err != nil {
			return nil, err
		}
		if len(args) > 0 {
			dt.Precision = args[0]
		}
		return dt, nil

	case "CHAR", "VARCHAR", "STRING":
		dt := &DataTypeString{Fixed: kw == "CHAR"}
		if kw == "CHAR" {
			dt.Length = 1
		}
		args, err := p.parseIntArgs(1)
		if err != nil {
			return nil, err
		}
		if len(args) > 0 {
			dt.Length = args[0]
		}
		if err := p.parseCharsetAndCollation(dt); err != nil {
			return nil, err
		}
		return dt, nil

	case "BINARY", "VARBINARY":
		dt := &DataTypeBinary{Fixed: kw == "BINARY"}
		if kw == "BINARY" {
			dt.Length = 1
		}
		args, err := p.parseIntArgs(1)
		if err != nil {
			return nil, err
		}
		if len(args) > 0 {
			dt.Length = args[0]
		}
		return dt, nil

	case "ARRAY":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return NewDataTypeArray(elem), nil

	case "MAP":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return NewDataTypeMap(key, value), nil

	case "ROW":
		members, err := p.parseMemberList()
		if err != nil {
			return nil, err
		}
		return NewDataTypeTuple(members), nil

	case "STRUCT":
		name := p.keyword()
		if name == "" {
			return nil, p.errorf("expected structured type name, found '%s'", p.lit)
		}
		p.next()
		members, err := p.parseMemberList()
		if err != nil {
			return nil, err
		}
		return NewDataTypeStructured(name, members), nil

	default:
		return nil, p.errorf("unknown type '%s'", kw)
	}
}

// parseIntArgs parses an optional parenthesized list of at most max integers.
func (p *typeNameParser) parseIntArgs(max int) ([]int64, error) {
	if p.tok != '(' {
		return nil, nil
	}
	p.next()

	var args []int64
	for {
		if p.tok != scanner.Int {
			return nil, p.errorf("expected integer, found '%s'", p.lit)
		}
		v, err := strconv.ParseInt(p.lit, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer '%s'", p.lit)
		}
		args = append(args, v)
		p.next()
		if p.tok != ',' {
			break
		}
		p.next()
	}
	if len(args) > max {
		return nil, p.errorf("expected at most %d arguments, found %d", max, len(args))
	}
	return args, p.expect(')')
}

func (p *typeNameParser) parseMemberList() ([]ExprDataType, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var members []ExprDataType
	for {
		m, err := p.parseType()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
		if p.tok != ',' {
			break
		}
		p.next()
	}
	return members, p.expect(')')
}

func (p *typeNameParser) parseCharsetAndCollation(dt *DataTypeString) error {
	if p.keyword() == "CHARACTER" {
		p.next()
		if err := p.expectKeyword("SET"); err != nil {
			return err
		}
		name := p.parseName()
		if name == "" {
			return p.errorf("expected character set name, found '%s'", p.lit)
		}
		cs, err := CanonicalCharset(name)
		if err != nil {
			return err
		}
		dt.Charset = cs
	}
	if p.keyword() == "COLLATE" {
		p.next()
		name := p.parseName()
		if name == "" {
			return p.errorf("expected collation name, found '%s'", p.lit)
		}
		dt.Collation = name
	}
	return nil
}

// parseName reads a name which may be quoted or contain dashes, like UTF-8.
func (p *typeNameParser) parseName() string {
	if p.tok == scanner.String {
		name, err := strconv.Unquote(p.lit)
		if err != nil {
			return ""
		}
		p.next()
		return name
	}
	var sb strings.Builder
	for p.tok == scanner.Ident || p.tok == scanner.Int || p.tok == '-' {
		kw := p.keyword()
		if sb.Len() > 0 && (kw == "COLLATE" || kw == "NOT" || kw == "NULL") {
			break
		}
		sb.WriteString(p.lit)
		p.next()
	}
	return sb.String()
}
