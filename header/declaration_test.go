package header

import (
	"encoding/json"
	"testing"
)

func TestDeclaration_Render(t *testing.T) {
	arg := func(name string, typ Type) *Argument {
		a, err := NewArgument(name, typ)
		if err != nil {
			t.Fatal(err)
		}
		return a
	}

	point, err := NewStruct("Point", []*Argument{arg("x", TypeInt), arg("y", TypeInt)})
	if err != nil {
		t.Fatal(err)
	}
	color, err := NewCEnum("Color", []string{"RED", "GREEN = 2"})
	if err != nil {
		t.Fatal(err)
	}
	proto, err := NewPrototype("area", TypeFloat, []*Argument{arg("w", TypeFloat), arg("h", TypeLongLong)})
	if err != nil {
		t.Fatal(err)
	}
	empty, err := NewStruct("Empty", nil)
	if err != nil {
		t.Fatal(err)
	}
	stdio, err := NewHeader("stdio.h", HeaderKindStandard)
	if err != nil {
		t.Fatal(err)
	}
	guard, err := NewMacro("UTILS_H", MacroKindIncludeGuard)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		caption string
		decl    Declaration
		format  Format
		depth   int
		want    string
	}{
		{
			caption: "an argument",
			decl:    arg("pid", TypeLong),
			format:  DefaultFormat,
			want:    "long pid",
		},
		{
			caption: "an enum-typed argument",
			decl:    arg("mode", enumType("MODE")),
			format:  DefaultFormat,
			depth:   1,
			want:    "    MODE mode",
		},
		{
			caption: "a prototype renders its arguments at depth 0",
			decl:    proto,
			format:  DefaultFormat,
			depth:   1,
			want:    "    float area(float w, long long h)",
		},
		{
			caption: "a struct",
			decl:    point,
			format:  DefaultFormat,
			want:    "cdef struct Point:\n    int x\n    int y",
		},
		{
			caption: "a nested struct is indented one level deeper",
			decl:    point,
			format:  DefaultFormat,
			depth:   1,
			want:    "    cdef struct Point:\n        int x\n        int y",
		},
		{
			caption: "an enum",
			decl:    color,
			format:  DefaultFormat,
			want:    "cdef enum Color:\n    RED\n    GREEN = 2",
		},
		{
			caption: "an empty keyword is omitted with its separator",
			decl:    color,
			format:  Format{Indent: "\t", Comment: "#"},
			depth:   1,
			want:    "\tenum Color:\n\t\tRED\n\t\tGREEN = 2",
		},
		{
			caption: "a different keyword",
			decl:    point,
			format:  Format{Keyword: "ctypedef", Indent: "  ", Comment: "#"},
			want:    "ctypedef struct Point:\n  int x\n  int y",
		},
		{
			caption: "a header renders as a comment",
			decl:    stdio,
			format:  DefaultFormat,
			want:    "# include <stdio.h>",
		},
		{
			caption: "a header without a comment marker has no leading space",
			decl:    stdio,
			format:  Format{Indent: "  "},
			depth:   1,
			want:    "  include <stdio.h>",
		},
		{
			caption: "a macro without a comment marker has no leading space",
			decl:    guard,
			format:  Format{Keyword: "cdef", Indent: "  "},
			want:    "ifndef UTILS_H",
		},
		{
			caption: "an empty struct renders pass",
			decl:    empty,
			format:  DefaultFormat,
			want:    "cdef struct Empty:\n    pass",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			if got := tt.decl.Render(tt.format, tt.depth); got != tt.want {
				t.Fatalf("unexpected rendering; want: %q, got: %q", tt.want, got)
			}
		})
	}
}

func TestIndentation(t *testing.T) {
	if got := Indentation(DefaultFormat, 0); got != "" {
		t.Fatalf("depth 0 must have no indentation; got: %q", got)
	}
	if got := Indentation(DefaultFormat, -1); got != "" {
		t.Fatalf("a negative depth must have no indentation; got: %q", got)
	}
	if got := Indentation(DefaultFormat, 2); got != "        " {
		t.Fatalf("unexpected indentation: %q", got)
	}
}

func TestNewDeclaration_Validation(t *testing.T) {
	if _, err := NewArgument("x", Type{}); err == nil {
		t.Error("an argument without a type must be rejected")
	}
	if _, err := NewArgument("1x", TypeInt); err == nil {
		t.Error("an argument name must be an identifier")
	}
	if _, err := NewCEnum("E", []string{"A", ""}); err == nil {
		t.Error("an empty enum member must be rejected")
	}
	if _, err := NewStruct("", nil); err == nil {
		t.Error("a struct needs a name")
	}
	if _, err := NewHeader("", HeaderKindCustom); err == nil {
		t.Error("a header needs a name")
	}
	if _, err := NewMacro("X", MacroKind("undef")); err == nil {
		t.Error("an unknown macro kind must be rejected")
	}
}

func TestDeclaration_Immutable(t *testing.T) {
	attrs := []string{"A", "B"}
	e, err := NewCEnum("E", attrs)
	if err != nil {
		t.Fatal(err)
	}
	attrs[0] = "Z"
	e.Attributes()[1] = "Z"
	if got := e.Attributes(); got[0] != "A" || got[1] != "B" {
		t.Fatalf("an enum must not share its attributes; got: %v", got)
	}
}

func TestLookupType(t *testing.T) {
	for _, s := range []string{"int", "float", "long", "long long", "long  long", "void", "char"} {
		if _, ok := LookupType(s); !ok {
			t.Errorf("%q must be a type", s)
		}
	}
	for _, s := range []string{"", "unsigned", "size_t", "int*", "MODE"} {
		if _, ok := LookupType(s); ok {
			t.Errorf("%q must not be a type", s)
		}
	}
}

func TestDeclaration_MarshalJSON(t *testing.T) {
	a, err := NewArgument("mode", enumType("MODE"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStruct("Arguments", []*Argument{a})
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"struct","name":"Arguments","attributes":[{"name":"mode","type":"MODE","enum":true}]}`
	if string(b) != want {
		t.Fatalf("unexpected JSON; want: %v, got: %v", want, string(b))
	}
}
