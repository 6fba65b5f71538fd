package header

import (
	"errors"
	"fmt"
)

// Error categories. Every error the parser reports wraps exactly one of them, so callers can classify
// errors with errors.Is.
var (
	// ErrRecognition means a directive matches no known pattern.
	ErrRecognition = errors.New("recognition error")

	// ErrUnterminatedConstruct means the input ended before a construct was closed. It always aborts the
	// whole parse.
	ErrUnterminatedConstruct = errors.New("unterminated construct")

	// ErrMalformedMember means a struct member, an enumerator, or a parameter doesn't have the expected shape.
	ErrMalformedMember = errors.New("malformed member")

	// ErrUnsupportedConstruct means a construct is valid C but cannot be turned into a declaration.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
)

type SyntaxError struct {
	category error
	message  string
}

func newSyntaxError(category error, message string) *SyntaxError {
	return &SyntaxError{
		category: category,
		message:  message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %v", e.category, e.message)
}

func (e *SyntaxError) Unwrap() error {
	return e.category
}

var (
	// recognition errors
	synErrInvalidDirective = newSyntaxError(ErrRecognition, "not a valid directive")
	synErrInvalidInclude   = newSyntaxError(ErrRecognition, "an include target must be enclosed in \"\" or <>")
	synErrNoMacroName      = newSyntaxError(ErrRecognition, "a macro directive needs a name")
	synErrInvalidToken     = newSyntaxError(ErrRecognition, "invalid token")

	// unterminated constructs
	synErrUnclosedEnum      = newSyntaxError(ErrUnterminatedConstruct, "unclosed enum")
	synErrUnclosedStruct    = newSyntaxError(ErrUnterminatedConstruct, "unclosed struct")
	synErrUnclosedTypedef   = newSyntaxError(ErrUnterminatedConstruct, "unclosed typedef")
	synErrUnclosedPrototype = newSyntaxError(ErrUnterminatedConstruct, "unclosed function prototype")

	// malformed members
	synErrMalformedMember = newSyntaxError(ErrMalformedMember, "a member must consist of a type and a name")
	synErrUnknownType     = newSyntaxError(ErrMalformedMember, "unknown type")
	synErrPointerMember   = newSyntaxError(ErrMalformedMember, "pointer and array declarators are not supported")
	synErrNoMemberEnd     = newSyntaxError(ErrMalformedMember, "a member must be terminated by ;")
	synErrEmptyEnumerator = newSyntaxError(ErrMalformedMember, "an enumerator must not be empty")
	synErrInvalidEnumItem = newSyntaxError(ErrMalformedMember, "an enumerator cannot contain the token")
	synErrNoParamName     = newSyntaxError(ErrMalformedMember, "a parameter needs a type and a name")
	synErrNoEnumName      = newSyntaxError(ErrMalformedMember, "an enum needs a name")
	synErrNoStructName    = newSyntaxError(ErrMalformedMember, "a struct needs a name")
	synErrNoFunctionName  = newSyntaxError(ErrMalformedMember, "a function prototype needs a name")

	// unsupported constructs
	synErrMultilineEnum     = newSyntaxError(ErrUnsupportedConstruct, "multi-line enum member lists are not supported")
	synErrInlineEnumField   = newSyntaxError(ErrUnsupportedConstruct, "enum-typed members are disabled")
	synErrScalarVariable    = newSyntaxError(ErrUnsupportedConstruct, "scalar variable declarations are not supported")
	synErrNoBody            = newSyntaxError(ErrUnsupportedConstruct, "a declaration without a body is not supported")
	synErrTrailingDeclr     = newSyntaxError(ErrUnsupportedConstruct, "declaring variables along with a type is not supported")
	synErrPointerReturn     = newSyntaxError(ErrUnsupportedConstruct, "pointer return types are not supported")
	synErrFunctionBody      = newSyntaxError(ErrUnsupportedConstruct, "function definitions are not supported")
	synErrUnsupportedTypdef = newSyntaxError(ErrUnsupportedConstruct, "only struct and enum typedefs are supported")
	synErrUnsupportedDecl   = newSyntaxError(ErrUnsupportedConstruct, "unsupported top-level declaration")
	synErrLinkageBlock      = newSyntaxError(ErrUnsupportedConstruct, "linkage blocks are not supported")
	synErrStrayBrace        = newSyntaxError(ErrUnsupportedConstruct, "unexpected closing brace")
)
