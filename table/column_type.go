package table

import (
	"fmt"
	"strings"
)

type (
	// Kind is the native semantic kind of a column.
	Kind uint8

	// ColumnType identifies a column's kind. Elem is only set for KindList.
	ColumnType struct {
		Kind Kind
		Elem *ColumnType
	}
)

const (
	KindInvalid Kind = iota
	KindBoolean
	KindInteger
	KindLong
	KindDouble
	KindString
	KindList
)

var kindNames = map[Kind]string{
	KindBoolean: "boolean",
	KindInteger: "int",
	KindLong:    "long",
	KindDouble:  "double",
	KindString:  "string",
	KindList:    "list",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

var (
	BooleanType = ColumnType{Kind: KindBoolean}
	IntegerType = ColumnType{Kind: KindInteger}
	LongType    = ColumnType{Kind: KindLong}
	DoubleType  = ColumnType{Kind: KindDouble}
	StringType  = ColumnType{Kind: KindString}
)

func ListOf(elem ColumnType) ColumnType {
	return ColumnType{Kind: KindList, Elem: &elem}
}

func (ct ColumnType) String() string {
	if ct.Kind == KindList && ct.Elem != nil {
		return fmt.Sprintf("list(%s)", ct.Elem.String())
	}
	return ct.Kind.String()
}

func (ct ColumnType) Equal(o ColumnType) bool {
	if ct.Kind != o.Kind {
		return false
	}
	if ct.Kind != KindList {
		return true
	}
	if ct.Elem == nil || o.Elem == nil {
		return ct.Elem == o.Elem
	}
	return ct.Elem.Equal(*o.Elem)
}

// widening lists which kinds a column of a given kind can be read as without
// losing information.
var widening = map[Kind][]Kind{
	KindBoolean: {KindBoolean, KindInteger, KindLong, KindDouble},
	KindInteger: {KindInteger, KindLong, KindDouble},
	KindLong:    {KindLong, KindDouble},
	KindDouble:  {KindDouble},
	KindString:  {KindString},
	KindList:    {KindList},
}

// ConvertibleTo reports whether values of ct can be read as target.
// Lists convert element-wise.
func (ct ColumnType) ConvertibleTo(target ColumnType) bool {
	if !ct.ConvertibleToKind(target.Kind) {
		return false
	}
	if ct.Kind == KindList {
		if ct.Elem == nil || target.Elem == nil {
			return true
		}
		return ct.Elem.ConvertibleTo(*target.Elem)
	}
	return true
}

// ConvertibleToKind ignores list element types.
func (ct ColumnType) ConvertibleToKind(target Kind) bool {
	for _, k := range widening[ct.Kind] {
		if k == target {
			return true
		}
	}
	return false
}

// ParseColumnType parses the names produced by ColumnType.String.
func ParseColumnType(s string) (ColumnType, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "list(") && strings.HasSuffix(s, ")") {
		elem, err := ParseColumnType(s[len("list(") : len(s)-1])
		if err != nil {
			return ColumnType{}, err
		}
		return ListOf(elem), nil
	}
	for k, n := range kindNames {
		if n == s && k != KindList {
			return ColumnType{Kind: k}, nil
		}
	}
	return ColumnType{}, fmt.Errorf("%w: %q", ErrUnknownColumnType, s)
}
