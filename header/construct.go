package header

import (
	"strings"

	verr "github.com/nihei9/hbind/error"
)

// ParseEnum parses one enum from the `enum` keyword through the closing brace. A trailing `;` is optional.
func ParseEnum(src string, opts ...ParserOption) (*CEnum, error) {
	decl, err := parseConstruct(src, opts, func(p *Parser) Declaration {
		start := p.peekSkippingNewlines()
		if start.kind != tokenKindKWEnum {
			raiseSyntaxError(synErrUnsupportedDecl, start.pos, start.text)
		}
		p.rawNext()
		name, attrs := p.parseEnum(start)
		p.expectEOF()
		return newEnum(name, attrs)
	})
	if err != nil {
		return nil, err
	}
	return decl.(*CEnum), nil
}

// ParseStruct builds a struct named name from the member declarations in body. The body may be enclosed in
// braces or not.
func ParseStruct(name, body string, opts ...ParserOption) (*Struct, error) {
	if !isIdentifier(name) {
		return nil, &verr.HeaderError{
			Cause:  synErrNoStructName,
			Detail: name,
		}
	}

	construct := kwStruct + whiteSpace + name
	decl, err := parseConstruct(body, opts, func(p *Parser) Declaration {
		start := p.peekSkippingNewlines()
		closer := tokenKindEOF
		if start.kind == tokenKindLBrace {
			p.rawNext()
			closer = tokenKindRBrace
		}
		attrs := p.parseMembers(start, synErrUnclosedStruct, construct, closer)
		p.expectEOF()
		return newStruct(name, attrs)
	})
	if err != nil {
		return nil, err
	}
	return decl.(*Struct), nil
}

// ParsePrototype parses one function prototype such as `int add(int a, int b);`. A trailing `;` is optional.
func ParsePrototype(src string, opts ...ParserOption) (*Prototype, error) {
	decl, err := parseConstruct(src, opts, func(p *Parser) Declaration {
		first := p.peekSkippingNewlines()
		if !first.kind.isScalarType() {
			raiseSyntaxError(synErrUnsupportedDecl, first.pos, first.text)
		}
		p.rawNext()
		proto := p.parsePrototype(first)
		if p.peekSkippingNewlines().kind == tokenKindLBrace {
			p.expectPrototypeEnd(first, proto)
		}
		p.expectEOF()
		return proto
	})
	if err != nil {
		return nil, err
	}
	return decl.(*Prototype), nil
}

func parseConstruct(src string, opts []ParserOption, parse func(p *Parser) Declaration) (decl Declaration, retErr error) {
	p, err := NewParser(strings.NewReader(src), opts...)
	if err != nil {
		return nil, err
	}

	defer func() {
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				panic(v)
			}
			retErr = err
		}
	}()

	return parse(p), nil
}
