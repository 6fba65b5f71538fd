package header

import "strings"

// Structural characters and keyword literals of the header subset hbind understands.
const (
	lineBreak       = "\n"
	endStmt         = ";"
	whiteSpace      = " "
	definitionOpen  = "{"
	definitionClose = "}"

	kwInclude       = "#include"
	kwDefine        = "#define"
	kwIfndef        = "#ifndef"
	kwEndif         = "#endif"
	kwEnum          = "enum"
	kwStruct        = "struct"
	kwTypedef       = "typedef"
	kwExtern        = "extern"
	kwTypedefStruct = kwTypedef + whiteSpace + kwStruct
	kwTypedefEnum   = kwTypedef + whiteSpace + kwEnum
)

// Type is a C type a struct member, a parameter, or a return value may have. Besides the scalar types,
// a Type may name an enum, which only happens for enum-typed struct members and parameters.
// Values other than the predefined ones cannot be constructed outside this package.
type Type struct {
	name string
	enum bool
}

var (
	TypeInt      = Type{name: "int"}
	TypeFloat    = Type{name: "float"}
	TypeLong     = Type{name: "long"}
	TypeLongLong = Type{name: "long long"}
	TypeVoid     = Type{name: "void"}
	TypeChar     = Type{name: "char"}
)

var scalarTypes = []Type{
	TypeInt,
	TypeFloat,
	TypeLong,
	TypeLongLong,
	TypeVoid,
	TypeChar,
}

// LookupType returns the scalar type spelled s. Runs of whitespace inside s are treated as one space,
// so both "long long" and "long  long" name TypeLongLong.
func LookupType(s string) (Type, bool) {
	s = strings.Join(strings.Fields(s), whiteSpace)
	for _, t := range scalarTypes {
		if t.name == s {
			return t, true
		}
	}
	return Type{}, false
}

func enumType(name string) Type {
	return Type{
		name: name,
		enum: true,
	}
}

func (t Type) String() string {
	return t.name
}

// IsEnum reports whether t names an enum rather than a scalar type.
func (t Type) IsEnum() bool {
	return t.enum
}

// IsZero reports whether t is the zero Type, which is not a valid type.
func (t Type) IsZero() bool {
	return t.name == ""
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
