package header

import (
	"errors"
	"fmt"
	"io"
	"strings"

	verr "github.com/nihei9/hbind/error"
)

// Parse reads a whole header and returns its top-level declarations in source order. The parse aborts at the
// first error; use NewParser with CollectErrors to continue past broken declarations.
func Parse(src io.Reader, opts ...ParserOption) ([]Declaration, error) {
	p, err := NewParser(src, opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

type Parser struct {
	lex    *lexer
	config *parserConfig
	peeked *token
	depth  int

	// linkage counts the `extern "..." {` blocks being scanned in collect mode.
	linkage int

	decls []Declaration
	diags verr.HeaderErrors
}

func NewParser(src io.Reader, opts ...ParserOption) (*Parser, error) {
	config := &parserConfig{}
	for _, opt := range opts {
		opt(config)
	}

	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}

	return &Parser{
		lex:    lex,
		config: config,
	}, nil
}

// Diagnostics returns the errors recorded by a parser created with CollectErrors.
func (p *Parser) Diagnostics() verr.HeaderErrors {
	return p.diags
}

// Parse scans the header once from beginning to end. When the parser collects errors, the declarations
// returned are the ones that could be parsed, and Diagnostics reports the rest. An unterminated construct
// always stops the scan and is returned along with the declarations found before it.
func (p *Parser) Parse() (decls []Declaration, retErr error) {
	defer func() {
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				panic(v)
			}
			retErr = err
		}
		decls = p.decls
	}()

	for {
		p.depth = 0
		tok := p.peek()
		switch tok.kind {
		case tokenKindEOF:
			return p.decls, nil
		case tokenKindNewline, tokenKindSemicolon:
			p.rawNext()
			continue
		case tokenKindRBrace:
			if p.linkage > 0 {
				p.rawNext()
				p.linkage--
				continue
			}
		}

		decl, err := p.parseDeclaration()
		if next := p.rawPeek(); next.kind != tokenKindEOF && next.pos.Offset <= tok.pos.Offset {
			panic(fmt.Errorf("the scanner doesn't advance at %v:%v; this is a bug", tok.pos.Row, tok.pos.Col))
		}
		if err != nil {
			var herr *verr.HeaderError
			if !errors.As(err, &herr) || !p.config.collectErrors || errors.Is(herr, ErrUnterminatedConstruct) {
				return p.decls, err
			}
			p.diags = append(p.diags, herr)
			if p.needsSkip(tok, herr) {
				p.skipToTerminator()
			}
			continue
		}
		if decl != nil {
			p.decls = append(p.decls, decl)
		}
	}
}

func (p *Parser) parseDeclaration() (decl Declaration, retErr error) {
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

	tok := p.next()
	switch {
	case tok.kind.isDirective():
		return p.parseDirective(tok), nil
	case tok.kind == tokenKindKWEnum:
		name, attrs := p.parseEnum(tok)
		p.expectDeclarationEnd(tok, synErrUnclosedEnum, kwEnum+whiteSpace+name)
		return newEnum(name, attrs), nil
	case tok.kind == tokenKindKWStruct:
		return p.parseStruct(tok), nil
	case tok.kind == tokenKindKWTypedef:
		return p.parseTypedef(tok), nil
	case tok.kind.isScalarType():
		proto := p.parsePrototype(tok)
		p.expectPrototypeEnd(tok, proto)
		return proto, nil
	case tok.kind == tokenKindInvalid:
		raiseSyntaxError(synErrInvalidToken, tok.pos, tok.text)
	case tok.kind == tokenKindRBrace:
		raiseSyntaxError(synErrStrayBrace, tok.pos, tok.text)
	case tok.kind == tokenKindID && tok.text == kwExtern:
		p.parseLinkage(tok)
	}
	raiseSyntaxError(synErrUnsupportedDecl, tok.pos, tok.text)
	return nil, nil
}

// parseLinkage consumes `extern "..." {` so that a collecting parser resumes inside the block. Any other use of
// extern is left for skipToTerminator.
func (p *Parser) parseLinkage(start *token) {
	if p.peek().kind != tokenKindStringLiteral {
		raiseSyntaxError(synErrUnsupportedDecl, start.pos, start.text)
	}
	lang := p.next()
	if p.peekSkippingNewlines().kind != tokenKindLBrace {
		raiseSyntaxError(synErrUnsupportedDecl, start.pos, start.text)
	}
	p.next()
	p.linkage++
	raiseSyntaxError(synErrLinkageBlock, start.pos, start.text+whiteSpace+lang.text)
}

// needsSkip reports whether a failed declaration left tokens behind. Directives consume their whole line, and
// a stray brace or a linkage block opening is complete by itself.
func (p *Parser) needsSkip(start *token, err error) bool {
	if start.kind.isDirective() || start.kind == tokenKindRBrace {
		return false
	}
	return !errors.Is(err, synErrLinkageBlock)
}

// skipToTerminator discards the rest of a broken declaration: everything up to a `;` outside braces, or up to
// a closing brace that isn't followed by a typedef name or a `;`.
func (p *Parser) skipToTerminator() {
	for {
		tok := p.rawPeek()
		if tok.kind == tokenKindEOF {
			return
		}
		// The brace closes an enclosing linkage block.
		if tok.kind == tokenKindRBrace && p.depth == 0 && p.linkage > 0 {
			return
		}
		p.rawNext()
		if p.depth > 0 {
			continue
		}
		switch tok.kind {
		case tokenKindSemicolon:
			return
		case tokenKindRBrace:
			next := p.peekSkippingNewlines()
			if next.kind != tokenKindSemicolon && next.kind != tokenKindID {
				return
			}
		}
	}
}

func (p *Parser) parseDirective(start *token) Declaration {
	var b strings.Builder
	b.WriteString(start.text)
	for {
		tok := p.rawPeek()
		if tok.kind == tokenKindEOF || tok.kind == tokenKindNewline || tok.kind == tokenKindSemicolon {
			break
		}
		b.WriteString(p.rawNext().text)
	}

	decl, err := ParseStatement(b.String())
	if err != nil {
		var herr *verr.HeaderError
		if errors.As(err, &herr) {
			herr.Offset = start.pos.Offset
			herr.Row = start.pos.Row
			herr.Col = start.pos.Col
		}
		panic(err)
	}
	return decl
}

// parseEnum parses an enum from its name through the closing brace. The keyword has already been consumed.
func (p *Parser) parseEnum(start *token) (string, []string) {
	tok := p.peek()
	switch tok.kind {
	case tokenKindID:
		p.next()
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedEnum, start.pos, kwEnum)
	default:
		raiseSyntaxError(synErrNoEnumName, tok.pos, tok.text)
	}
	name := tok.text
	return name, p.parseEnumBody(start, synErrUnclosedEnum, kwEnum+whiteSpace+name)
}

func (p *Parser) parseEnumBody(start *token, unclosed *SyntaxError, construct string) []string {
	open := p.peekSkippingNewlines()
	switch open.kind {
	case tokenKindLBrace:
		p.rawNext()
	case tokenKindEOF:
		raiseSyntaxError(unclosed, start.pos, construct)
	default:
		raiseSyntaxError(synErrNoBody, open.pos, construct)
	}

	var attrs []string
	var b strings.Builder
	multiline := false
	for {
		tok := p.rawNext()
		switch tok.kind {
		case tokenKindEOF:
			raiseSyntaxError(unclosed, start.pos, construct)
		case tokenKindComment:
		case tokenKindNewline:
			multiline = true
		case tokenKindComma:
			attr := strings.TrimSpace(b.String())
			if attr == "" {
				raiseSyntaxError(synErrEmptyEnumerator, tok.pos, construct)
			}
			attrs = append(attrs, attr)
			b.Reset()
		case tokenKindRBrace:
			// A trailing comma leaves an empty last piece, which C allows.
			if attr := strings.TrimSpace(b.String()); attr != "" {
				attrs = append(attrs, attr)
			}
			if multiline && !p.config.multilineEnum {
				raiseSyntaxError(synErrMultilineEnum, start.pos, construct)
			}
			return attrs
		case tokenKindLBrace, tokenKindSemicolon, tokenKindInvalid:
			raiseSyntaxError(synErrInvalidEnumItem, tok.pos, tok.text)
		default:
			b.WriteString(tok.text)
		}
	}
}

func (p *Parser) parseStruct(start *token) Declaration {
	tok := p.peek()
	switch tok.kind {
	case tokenKindID:
		p.next()
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedStruct, start.pos, kwStruct)
	default:
		raiseSyntaxError(synErrNoStructName, tok.pos, tok.text)
	}
	name := tok.text
	construct := kwStruct + whiteSpace + name
	attrs := p.parseStructBody(start, synErrUnclosedStruct, construct)
	p.expectDeclarationEnd(start, synErrUnclosedStruct, construct)
	return newStruct(name, attrs)
}

func (p *Parser) parseStructBody(start *token, unclosed *SyntaxError, construct string) []*Argument {
	open := p.peekSkippingNewlines()
	switch open.kind {
	case tokenKindLBrace:
		p.rawNext()
	case tokenKindEOF:
		raiseSyntaxError(unclosed, start.pos, construct)
	default:
		raiseSyntaxError(synErrNoBody, open.pos, construct)
	}
	return p.parseMembers(start, unclosed, construct, tokenKindRBrace)
}

// parseMembers parses `type name;` members until closer. closer is either a closing brace or EOF; the
// latter is for struct bodies given without braces.
func (p *Parser) parseMembers(start *token, unclosed *SyntaxError, construct string, closer tokenKind) []*Argument {
	var attrs []*Argument
	for {
		tok := p.peekSkippingNewlines()
		switch {
		case tok.kind == closer:
			p.rawNext()
			return attrs
		case tok.kind == tokenKindEOF:
			raiseSyntaxError(unclosed, start.pos, construct)
		case tok.kind == tokenKindSemicolon:
			p.rawNext()
			continue
		}
		attrs = append(attrs, p.parseMember(start, unclosed, construct, closer))
	}
}

func (p *Parser) parseMember(start *token, unclosed *SyntaxError, construct string, closer tokenKind) *Argument {
	var toks []*token
	for {
		tok := p.peekSkippingNewlines()
		switch tok.kind {
		case tokenKindSemicolon:
			p.rawNext()
			return p.buildArgument(toks, synErrMalformedMember)
		case tokenKindEOF:
			if closer == tokenKindEOF {
				raiseSyntaxError(synErrNoMemberEnd, tok.pos, joinTokens(toks))
			}
			raiseSyntaxError(unclosed, start.pos, construct)
		case tokenKindRBrace:
			raiseSyntaxError(synErrNoMemberEnd, tok.pos, joinTokens(toks))
		case tokenKindLBrace:
			raiseSyntaxError(synErrMalformedMember, tok.pos, joinTokens(append(toks, tok)))
		}
		toks = append(toks, p.rawNext())
	}
}

// buildArgument turns the tokens of one member or parameter into an Argument. toks must not be empty.
// The accepted shapes are `type name`, `long long name`, and `enum Name name`.
func (p *Parser) buildArgument(toks []*token, malformed *SyntaxError) *Argument {
	detail := joinTokens(toks)
	for _, tok := range toks {
		switch tok.kind {
		case tokenKindStar, tokenKindLBracket, tokenKindRBracket:
			raiseSyntaxError(synErrPointerMember, tok.pos, detail)
		}
	}

	if toks[0].kind == tokenKindKWEnum {
		if p.config.disableInlineEnum {
			raiseSyntaxError(synErrInlineEnumField, toks[0].pos, detail)
		}
		if len(toks) != 3 || toks[1].kind != tokenKindID || toks[2].kind != tokenKindID {
			raiseSyntaxError(malformed, toks[0].pos, detail)
		}
		return newArgument(toks[2].text, enumType(toks[1].text))
	}

	var typ Type
	var rest []*token
	switch {
	case len(toks) >= 2 && toks[0].kind == tokenKindKWLong && toks[1].kind == tokenKindKWLong:
		typ = TypeLongLong
		rest = toks[2:]
	case toks[0].kind.isScalarType():
		typ, _ = LookupType(toks[0].text)
		rest = toks[1:]
	case toks[0].kind == tokenKindID:
		raiseSyntaxError(synErrUnknownType, toks[0].pos, toks[0].text)
	default:
		raiseSyntaxError(malformed, toks[0].pos, detail)
	}
	if len(rest) != 1 || rest[0].kind != tokenKindID {
		raiseSyntaxError(malformed, toks[0].pos, detail)
	}
	return newArgument(rest[0].text, typ)
}

func (p *Parser) parseTypedef(start *token) Declaration {
	tok := p.peek()
	switch tok.kind {
	case tokenKindKWStruct:
		p.next()
		tag := p.parseTag()
		construct := kwTypedefStruct
		if tag != "" {
			construct += whiteSpace + tag
		}
		attrs := p.parseStructBody(start, synErrUnclosedTypedef, construct)
		return newStruct(p.parseTypedefName(start, tag, synErrNoStructName, construct), attrs)
	case tokenKindKWEnum:
		p.next()
		tag := p.parseTag()
		construct := kwTypedefEnum
		if tag != "" {
			construct += whiteSpace + tag
		}
		attrs := p.parseEnumBody(start, synErrUnclosedTypedef, construct)
		return newEnum(p.parseTypedefName(start, tag, synErrNoEnumName, construct), attrs)
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedTypedef, start.pos, kwTypedef)
	}
	raiseSyntaxError(synErrUnsupportedTypdef, tok.pos, tok.text)
	return nil
}

func (p *Parser) parseTag() string {
	tok := p.peek()
	if tok.kind != tokenKindID {
		return ""
	}
	p.next()
	return tok.text
}

// parseTypedefName reads the `Name;` after the closing brace of a typedef. The declaration takes the typedef
// name, falling back to the tag when the name is omitted.
func (p *Parser) parseTypedefName(start *token, tag string, noName *SyntaxError, construct string) string {
	name := tag
	tok := p.peekSkippingNewlines()
	switch tok.kind {
	case tokenKindID:
		p.rawNext()
		name = tok.text
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedTypedef, start.pos, construct)
	}
	if name == "" {
		raiseSyntaxError(noName, tok.pos, construct)
	}

	end := p.peekSkippingNewlines()
	switch end.kind {
	case tokenKindSemicolon:
		p.rawNext()
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedTypedef, start.pos, construct)
	default:
		raiseSyntaxError(synErrTrailingDeclr, end.pos, end.text)
	}
	return name
}

// parsePrototype parses `type name(params)` starting at the scalar type keyword first. The terminator is left
// to the caller.
func (p *Parser) parsePrototype(first *token) *Prototype {
	typ, _ := LookupType(first.text)
	if first.kind == tokenKindKWLong && p.peek().kind == tokenKindKWLong {
		p.next()
		typ = TypeLongLong
	}

	tok := p.peek()
	switch tok.kind {
	case tokenKindID:
		p.next()
	case tokenKindStar:
		raiseSyntaxError(synErrPointerReturn, tok.pos, typ.String())
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedPrototype, first.pos, typ.String())
	default:
		raiseSyntaxError(synErrNoFunctionName, tok.pos, tok.text)
	}
	name := tok.text
	construct := typ.String() + whiteSpace + name

	open := p.peek()
	switch open.kind {
	case tokenKindLParen:
		p.next()
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedPrototype, first.pos, construct)
	default:
		raiseSyntaxError(synErrScalarVariable, first.pos, construct)
	}

	return newPrototype(name, typ, p.parseParams(first, construct))
}

func (p *Parser) parseParams(first *token, construct string) []*Argument {
	var toks []*token
	tok := p.peekSkippingNewlines()
	switch tok.kind {
	case tokenKindRParen:
		p.rawNext()
		return nil
	case tokenKindKWVoid:
		p.rawNext()
		if p.peekSkippingNewlines().kind == tokenKindRParen {
			p.rawNext()
			return nil
		}
		toks = append(toks, tok)
	}

	var args []*Argument
	for {
		tok := p.peekSkippingNewlines()
		switch tok.kind {
		case tokenKindEOF:
			raiseSyntaxError(synErrUnclosedPrototype, first.pos, construct)
		case tokenKindComma, tokenKindRParen:
			p.rawNext()
			if len(toks) == 0 {
				raiseSyntaxError(synErrNoParamName, tok.pos, construct)
			}
			args = append(args, p.buildArgument(toks, synErrNoParamName))
			toks = nil
			if tok.kind == tokenKindRParen {
				return args
			}
			continue
		case tokenKindLParen, tokenKindLBrace, tokenKindRBrace, tokenKindSemicolon:
			raiseSyntaxError(synErrMalformedMember, tok.pos, joinTokens(append(toks, tok)))
		}
		toks = append(toks, p.rawNext())
	}
}

func (p *Parser) expectPrototypeEnd(first *token, proto *Prototype) {
	construct := proto.returnType.String() + whiteSpace + proto.name
	tok := p.peekSkippingNewlines()
	switch tok.kind {
	case tokenKindSemicolon:
		p.rawNext()
	case tokenKindLBrace:
		raiseSyntaxError(synErrFunctionBody, tok.pos, construct)
	case tokenKindEOF:
		raiseSyntaxError(synErrUnclosedPrototype, first.pos, construct)
	default:
		raiseSyntaxError(synErrUnsupportedDecl, tok.pos, tok.text)
	}
}

func (p *Parser) expectDeclarationEnd(start *token, unclosed *SyntaxError, construct string) {
	tok := p.peekSkippingNewlines()
	switch tok.kind {
	case tokenKindSemicolon:
		p.rawNext()
	case tokenKindEOF:
		raiseSyntaxError(unclosed, start.pos, construct)
	default:
		raiseSyntaxError(synErrTrailingDeclr, tok.pos, tok.text)
	}
}

// expectEOF accepts an optional `;` and then requires the end of the input.
func (p *Parser) expectEOF() {
	tok := p.peekSkippingNewlines()
	if tok.kind == tokenKindSemicolon {
		p.rawNext()
		tok = p.peekSkippingNewlines()
	}
	if tok.kind != tokenKindEOF {
		raiseSyntaxError(synErrTrailingDeclr, tok.pos, tok.text)
	}
}

func (p *Parser) rawPeek() *token {
	if p.peeked == nil {
		tok, err := p.lex.next()
		if err != nil {
			panic(err)
		}
		p.peeked = tok
	}
	return p.peeked
}

func (p *Parser) rawNext() *token {
	tok := p.rawPeek()
	if tok.kind == tokenKindEOF {
		return tok
	}
	p.peeked = nil
	switch tok.kind {
	case tokenKindLBrace:
		p.depth++
	case tokenKindRBrace:
		if p.depth > 0 {
			p.depth--
		}
	}
	return tok
}

// peek returns the next token that isn't a white space or a comment. Newlines are returned.
func (p *Parser) peek() *token {
	for p.rawPeek().kind.isLayout() {
		p.rawNext()
	}
	return p.rawPeek()
}

func (p *Parser) next() *token {
	p.peek()
	return p.rawNext()
}

func (p *Parser) peekSkippingNewlines() *token {
	for {
		tok := p.peek()
		if tok.kind != tokenKindNewline {
			return tok
		}
		p.rawNext()
	}
}

func raiseSyntaxError(synErr *SyntaxError, pos Position, detail string) {
	panic(&verr.HeaderError{
		Cause:  synErr,
		Detail: detail,
		Offset: pos.Offset,
		Row:    pos.Row,
		Col:    pos.Col,
	})
}

func joinTokens(toks []*token) string {
	texts := make([]string, len(toks))
	for i, tok := range toks {
		texts[i] = tok.text
	}
	return strings.Join(texts, whiteSpace)
}

func newArgument(name string, typ Type) *Argument {
	a, err := NewArgument(name, typ)
	if err != nil {
		panic(err)
	}
	return a
}

func newPrototype(name string, typ Type, args []*Argument) *Prototype {
	proto, err := NewPrototype(name, typ, args)
	if err != nil {
		panic(err)
	}
	return proto
}

func newEnum(name string, attrs []string) *CEnum {
	e, err := NewCEnum(name, attrs)
	if err != nil {
		panic(err)
	}
	return e
}

func newStruct(name string, attrs []*Argument) *Struct {
	s, err := NewStruct(name, attrs)
	if err != nil {
		panic(err)
	}
	return s
}
