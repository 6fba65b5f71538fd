package header

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindWhiteSpace      = tokenKind("white space")
	tokenKindNewline         = tokenKind("newline")
	tokenKindComment         = tokenKind("comment")
	tokenKindKWInclude       = tokenKind(kwInclude)
	tokenKindKWDefine        = tokenKind(kwDefine)
	tokenKindKWIfndef        = tokenKind(kwIfndef)
	tokenKindKWEndif         = tokenKind(kwEndif)
	tokenKindDirectiveMarker = tokenKind("#")
	tokenKindKWEnum          = tokenKind(kwEnum)
	tokenKindKWStruct        = tokenKind(kwStruct)
	tokenKindKWTypedef       = tokenKind(kwTypedef)
	tokenKindKWInt           = tokenKind("int")
	tokenKindKWFloat         = tokenKind("float")
	tokenKindKWLong          = tokenKind("long")
	tokenKindKWVoid          = tokenKind("void")
	tokenKindKWChar          = tokenKind("char")
	tokenKindID              = tokenKind("id")
	tokenKindNumber          = tokenKind("number")
	tokenKindStringLiteral   = tokenKind("string")
	tokenKindCharLiteral     = tokenKind("character")
	tokenKindLBrace          = tokenKind(definitionOpen)
	tokenKindRBrace          = tokenKind(definitionClose)
	tokenKindLParen          = tokenKind("(")
	tokenKindRParen          = tokenKind(")")
	tokenKindLBracket        = tokenKind("[")
	tokenKindRBracket        = tokenKind("]")
	tokenKindSemicolon       = tokenKind(endStmt)
	tokenKindComma           = tokenKind(",")
	tokenKindStar            = tokenKind("*")
	tokenKindOperator        = tokenKind("operator")
	tokenKindEOF             = tokenKind("eof")
	tokenKindInvalid         = tokenKind("invalid")
)

func (k tokenKind) isScalarType() bool {
	switch k {
	case tokenKindKWInt, tokenKindKWFloat, tokenKindKWLong, tokenKindKWVoid, tokenKindKWChar:
		return true
	}
	return false
}

func (k tokenKind) isLayout() bool {
	return k == tokenKindWhiteSpace || k == tokenKindComment
}

func (k tokenKind) isDirective() bool {
	switch k {
	case tokenKindKWInclude, tokenKindKWDefine, tokenKindKWIfndef, tokenKindKWEndif, tokenKindDirectiveMarker:
		return true
	}
	return false
}

type Position struct {
	Offset int
	Row    int
	Col    int
}

func newPosition(offset, row, col int) Position {
	return Position{
		Offset: offset,
		Row:    row,
		Col:    col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newToken(kind tokenKind, text string, pos Position) *token {
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

type lexEntry struct {
	name    string
	pattern string
	kind    tokenKind
}

const operatorChars = "+-/%&|^~!<>=?:."

func operatorPattern() string {
	alts := make([]string, 0, len(operatorChars))
	for _, c := range operatorChars {
		alts = append(alts, mlspec.EscapePattern(string(c)))
	}
	return strings.Join(alts, "|")
}

// Keywords precede the identifier entry. The lexer adopts the longest match and, among matches of the same
// length, the entry defined first, so `enum` is a keyword while `enumerate` is an identifier.
var lexEntries = []lexEntry{
	{name: "white_space", pattern: `[\u{0009}\u{000B}\u{000C}\u{0020}]+`, kind: tokenKindWhiteSpace},
	{name: "newline", pattern: `\u{000A}|\u{000D}\u{000A}|\u{000D}`, kind: tokenKindNewline},
	{name: "line_comment", pattern: `//[^\u{000A}\u{000D}]*`, kind: tokenKindComment},
	{name: "block_comment", pattern: `/\*([^*]|\*+[^*/])*\*+/`, kind: tokenKindComment},
	{name: "kw_include", pattern: mlspec.EscapePattern(kwInclude), kind: tokenKindKWInclude},
	{name: "kw_define", pattern: mlspec.EscapePattern(kwDefine), kind: tokenKindKWDefine},
	{name: "kw_ifndef", pattern: mlspec.EscapePattern(kwIfndef), kind: tokenKindKWIfndef},
	{name: "kw_endif", pattern: mlspec.EscapePattern(kwEndif), kind: tokenKindKWEndif},
	{name: "directive_marker", pattern: `#`, kind: tokenKindDirectiveMarker},
	{name: "kw_enum", pattern: kwEnum, kind: tokenKindKWEnum},
	{name: "kw_struct", pattern: kwStruct, kind: tokenKindKWStruct},
	{name: "kw_typedef", pattern: kwTypedef, kind: tokenKindKWTypedef},
	{name: "kw_int", pattern: TypeInt.name, kind: tokenKindKWInt},
	{name: "kw_float", pattern: TypeFloat.name, kind: tokenKindKWFloat},
	{name: "kw_long", pattern: TypeLong.name, kind: tokenKindKWLong},
	{name: "kw_void", pattern: TypeVoid.name, kind: tokenKindKWVoid},
	{name: "kw_char", pattern: TypeChar.name, kind: tokenKindKWChar},
	{name: "identifier", pattern: `[A-Za-z_][0-9A-Za-z_]*`, kind: tokenKindID},
	{name: "number", pattern: `[0-9]([0-9A-Za-z_]|\.)*`, kind: tokenKindNumber},
	{name: "string_literal", pattern: `"([^"\\\u{000A}]|\\[^\u{000A}])*"`, kind: tokenKindStringLiteral},
	{name: "char_literal", pattern: `'([^'\\\u{000A}]|\\[^\u{000A}])*'`, kind: tokenKindCharLiteral},
	{name: "l_brace", pattern: definitionOpen, kind: tokenKindLBrace},
	{name: "r_brace", pattern: definitionClose, kind: tokenKindRBrace},
	{name: "l_paren", pattern: `\(`, kind: tokenKindLParen},
	{name: "r_paren", pattern: `\)`, kind: tokenKindRParen},
	{name: "l_bracket", pattern: `\[`, kind: tokenKindLBracket},
	{name: "r_bracket", pattern: `]`, kind: tokenKindRBracket},
	{name: "semicolon", pattern: endStmt, kind: tokenKindSemicolon},
	{name: "comma", pattern: `,`, kind: tokenKindComma},
	{name: "star", pattern: `\*`, kind: tokenKindStar},
	{name: "operator", pattern: operatorPattern(), kind: tokenKindOperator},
}

type compiledLexSpec struct {
	spec  *mlspec.CompiledLexSpec
	kinds []tokenKind
}

var (
	lexSpecOnce sync.Once
	lexSpec     *compiledLexSpec
	lexSpecErr  error
)

// loadLexSpec compiles the lexical specification on first use. The compiled specification is read-only,
// so every lexer shares it.
func loadLexSpec() (*compiledLexSpec, error) {
	lexSpecOnce.Do(func() {
		lexSpec, lexSpecErr = compileLexSpec(lexEntries)
	})
	return lexSpec, lexSpecErr
}

func compileLexSpec(entries []lexEntry) (*compiledLexSpec, error) {
	kindByName := map[string]tokenKind{}
	mlEntries := make([]*mlspec.LexEntry, len(entries))
	for i, e := range entries {
		mlEntries[i] = &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(e.name),
			Pattern: mlspec.LexPattern(e.pattern),
		}
		kindByName[e.name] = e.kind
	}

	s, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    "c_header",
		Entries: mlEntries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			for i, cerr := range cErrs {
				if i > 0 {
					fmt.Fprintf(&b, "\n")
				}
				fmt.Fprintf(&b, "%v: %v", cerr.Kind, cerr.Cause)
				if cerr.Detail != "" {
					fmt.Fprintf(&b, ": %v", cerr.Detail)
				}
			}
			return nil, fmt.Errorf("Cannot compile the lexical specification: %v", b.String())
		}
		return nil, err
	}

	kinds := make([]tokenKind, len(s.KindNames))
	for i, k := range s.KindNames {
		if k == mlspec.LexKindNameNil {
			kinds[i] = tokenKindInvalid
			continue
		}
		kind, ok := kindByName[k.String()]
		if !ok {
			return nil, fmt.Errorf("kind '%v' was not found in the lexical specification", k)
		}
		kinds[i] = kind
	}

	return &compiledLexSpec{
		spec:  s,
		kinds: kinds,
	}, nil
}

type lexer struct {
	s      *compiledLexSpec
	d      *mldriver.Lexer
	offset int
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := loadLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s.spec), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

// next returns every token including white spaces, comments, and newlines. Tokens are contiguous, so
// joining their texts reproduces the source.
func (l *lexer) next() (*token, error) {
	tok, err := l.d.Next()
	if err != nil {
		return nil, err
	}
	pos := newPosition(l.offset, tok.Row+1, tok.Col+1)
	if tok.EOF {
		return newEOFToken(pos), nil
	}
	l.offset += len(tok.Lexeme)
	if tok.Invalid {
		return newToken(tokenKindInvalid, string(tok.Lexeme), pos), nil
	}
	return newToken(l.s.kinds[tok.KindID], string(tok.Lexeme), pos), nil
}
