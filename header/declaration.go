package header

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies the variant of a Declaration. Kind and name together identify a declaration across headers.
type Kind string

const (
	KindHeader    = Kind("header")
	KindMacro     = Kind("macro")
	KindEnum      = Kind("enum")
	KindStruct    = Kind("struct")
	KindPrototype = Kind("prototype")
	KindArgument  = Kind("argument")
)

// Format controls how declarations are rendered into binding syntax.
type Format struct {
	// Keyword is the declaration keyword of the target binding language, e.g. `cdef` for Cython.
	// An empty keyword is omitted together with its separator.
	Keyword string

	// Indent is the string repeated once per indentation level.
	Indent string

	// Comment starts a comment line. Header and Macro declarations are rendered as comments.
	Comment string
}

// DefaultFormat renders Cython declarations.
var DefaultFormat = Format{
	Keyword: "cdef",
	Indent:  "    ",
	Comment: "#",
}

func (f Format) keyword() string {
	if f.Keyword == "" {
		return ""
	}
	return f.Keyword + whiteSpace
}

func (f Format) comment() string {
	if f.Comment == "" {
		return ""
	}
	return f.Comment + whiteSpace
}

// Indentation returns the prefix of a line at depth.
func Indentation(f Format, depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(f.Indent, depth)
}

// Declaration is one top-level construct of a header. Declarations never change after construction.
type Declaration interface {
	Kind() Kind
	Name() string
	Render(f Format, depth int) string
}

type HeaderKind string

const (
	// HeaderKindCustom is a quoted include, `#include "foo.h"`.
	HeaderKindCustom = HeaderKind("custom")
	// HeaderKindStandard is an angle-bracket include, `#include <foo.h>`.
	HeaderKindStandard = HeaderKind("standard")
)

type Header struct {
	name string
	kind HeaderKind
}

func NewHeader(name string, kind HeaderKind) (*Header, error) {
	if name == "" {
		return nil, fmt.Errorf("a header needs a name")
	}
	if kind != HeaderKindCustom && kind != HeaderKindStandard {
		return nil, fmt.Errorf("unknown header kind: %v", kind)
	}
	return &Header{
		name: name,
		kind: kind,
	}, nil
}

func (h *Header) Kind() Kind {
	return KindHeader
}

func (h *Header) Name() string {
	return h.name
}

func (h *Header) HeaderKind() HeaderKind {
	return h.kind
}

func (h *Header) Render(f Format, depth int) string {
	if h.kind == HeaderKindStandard {
		return fmt.Sprintf("%v%vinclude <%v>", Indentation(f, depth), f.comment(), h.name)
	}
	return fmt.Sprintf("%v%vinclude \"%v\"", Indentation(f, depth), f.comment(), h.name)
}

func (h *Header) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       Kind       `json:"kind"`
		Name       string     `json:"name"`
		HeaderKind HeaderKind `json:"header_kind"`
	}{
		Kind:       KindHeader,
		Name:       h.name,
		HeaderKind: h.kind,
	})
}

type MacroKind string

const (
	MacroKindDefine       = MacroKind("define")
	MacroKindIncludeGuard = MacroKind("includeGuard")
)

// Macro is a `#define` or an `#ifndef` include guard. Macro values are not modelled.
type Macro struct {
	name string
	kind MacroKind
}

func NewMacro(name string, kind MacroKind) (*Macro, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("a macro name must be an identifier: %q", name)
	}
	if kind != MacroKindDefine && kind != MacroKindIncludeGuard {
		return nil, fmt.Errorf("unknown macro kind: %v", kind)
	}
	return &Macro{
		name: name,
		kind: kind,
	}, nil
}

func (m *Macro) Kind() Kind {
	return KindMacro
}

func (m *Macro) Name() string {
	return m.name
}

func (m *Macro) MacroKind() MacroKind {
	return m.kind
}

func (m *Macro) Render(f Format, depth int) string {
	kw := "define"
	if m.kind == MacroKindIncludeGuard {
		kw = "ifndef"
	}
	return fmt.Sprintf("%v%v%v %v", Indentation(f, depth), f.comment(), kw, m.name)
}

func (m *Macro) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      Kind      `json:"kind"`
		Name      string    `json:"name"`
		MacroKind MacroKind `json:"macro_kind"`
	}{
		Kind:      KindMacro,
		Name:      m.name,
		MacroKind: m.kind,
	})
}

// Argument is a struct member or a function parameter.
type Argument struct {
	name string
	typ  Type
}

func NewArgument(name string, typ Type) (*Argument, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("an argument name must be an identifier: %q", name)
	}
	if typ.IsZero() {
		return nil, fmt.Errorf("argument %v has no type", name)
	}
	return &Argument{
		name: name,
		typ:  typ,
	}, nil
}

func (a *Argument) Kind() Kind {
	return KindArgument
}

func (a *Argument) Name() string {
	return a.name
}

func (a *Argument) Type() Type {
	return a.typ
}

func (a *Argument) Render(f Format, depth int) string {
	return fmt.Sprintf("%v%v %v", Indentation(f, depth), a.typ, a.name)
}

func (a *Argument) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string `json:"name"`
		Type Type   `json:"type"`
		Enum bool   `json:"enum,omitempty"`
	}{
		Name: a.name,
		Type: a.typ,
		Enum: a.typ.IsEnum(),
	})
}

// Prototype is a function declaration. Arguments are kept in call-signature order.
type Prototype struct {
	name       string
	returnType Type
	args       []*Argument
}

func NewPrototype(name string, returnType Type, args []*Argument) (*Prototype, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("a function name must be an identifier: %q", name)
	}
	if returnType.IsZero() {
		return nil, fmt.Errorf("function %v has no return type", name)
	}
	return &Prototype{
		name:       name,
		returnType: returnType,
		args:       append([]*Argument(nil), args...),
	}, nil
}

func (p *Prototype) Kind() Kind {
	return KindPrototype
}

func (p *Prototype) Name() string {
	return p.name
}

func (p *Prototype) ReturnType() Type {
	return p.returnType
}

func (p *Prototype) Arguments() []*Argument {
	return append([]*Argument(nil), p.args...)
}

func (p *Prototype) Render(f Format, depth int) string {
	args := make([]string, len(p.args))
	for i, a := range p.args {
		args[i] = a.Render(f, 0)
	}
	return fmt.Sprintf("%v%v %v(%v)", Indentation(f, depth), p.returnType, p.name, strings.Join(args, ", "))
}

func (p *Prototype) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       Kind        `json:"kind"`
		Name       string      `json:"name"`
		ReturnType Type        `json:"return_type"`
		Arguments  []*Argument `json:"arguments"`
	}{
		Kind:       KindPrototype,
		Name:       p.name,
		ReturnType: p.returnType,
		Arguments:  p.args,
	})
}

// CEnum is an enum declaration. Attributes are the raw member texts in declaration order; explicit values
// stay part of the text (`A = 1`).
type CEnum struct {
	name  string
	attrs []string
}

func NewCEnum(name string, attrs []string) (*CEnum, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("an enum name must be an identifier: %q", name)
	}
	for _, a := range attrs {
		if a == "" {
			return nil, fmt.Errorf("enum %v has an empty member", name)
		}
	}
	return &CEnum{
		name:  name,
		attrs: append([]string(nil), attrs...),
	}, nil
}

func (e *CEnum) Kind() Kind {
	return KindEnum
}

func (e *CEnum) Name() string {
	return e.name
}

func (e *CEnum) Attributes() []string {
	return append([]string(nil), e.attrs...)
}

func (e *CEnum) Render(f Format, depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v%venum %v:", Indentation(f, depth), f.keyword(), e.name)
	for _, a := range e.attrs {
		fmt.Fprintf(&b, lineBreak+"%v%v", Indentation(f, depth+1), a)
	}
	if len(e.attrs) == 0 {
		fmt.Fprintf(&b, lineBreak+"%vpass", Indentation(f, depth+1))
	}
	return b.String()
}

func (e *CEnum) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       Kind     `json:"kind"`
		Name       string   `json:"name"`
		Attributes []string `json:"attributes"`
	}{
		Kind:       KindEnum,
		Name:       e.name,
		Attributes: e.attrs,
	})
}

// Struct is a struct declaration. The order of attributes is the native memory layout and never changes.
type Struct struct {
	name  string
	attrs []*Argument
}

func NewStruct(name string, attrs []*Argument) (*Struct, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("a struct name must be an identifier: %q", name)
	}
	return &Struct{
		name:  name,
		attrs: append([]*Argument(nil), attrs...),
	}, nil
}

func (s *Struct) Kind() Kind {
	return KindStruct
}

func (s *Struct) Name() string {
	return s.name
}

func (s *Struct) Attributes() []*Argument {
	return append([]*Argument(nil), s.attrs...)
}

func (s *Struct) Render(f Format, depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v%vstruct %v:", Indentation(f, depth), f.keyword(), s.name)
	for _, a := range s.attrs {
		fmt.Fprintf(&b, lineBreak+"%v", a.Render(f, depth+1))
	}
	if len(s.attrs) == 0 {
		fmt.Fprintf(&b, lineBreak+"%vpass", Indentation(f, depth+1))
	}
	return b.String()
}

func (s *Struct) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       Kind        `json:"kind"`
		Name       string      `json:"name"`
		Attributes []*Argument `json:"attributes"`
	}{
		Kind:       KindStruct,
		Name:       s.name,
		Attributes: s.attrs,
	})
}
