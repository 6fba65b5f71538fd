package header

type parserConfig struct {
	collectErrors     bool
	multilineEnum     bool
	disableInlineEnum bool
}

type ParserOption func(config *parserConfig)

// CollectErrors makes the parser skip a broken top-level declaration, record a diagnostic, and continue with
// the next declaration instead of aborting. Unterminated constructs still abort the parse.
func CollectErrors() ParserOption {
	return func(config *parserConfig) {
		config.collectErrors = true
	}
}

// EnableMultilineEnum allows enum member lists to span several lines.
func EnableMultilineEnum() ParserOption {
	return func(config *parserConfig) {
		config.multilineEnum = true
	}
}

// DisableInlineEnumFields rejects enum-typed members such as `enum MODE mode;`.
func DisableInlineEnumFields() ParserOption {
	return func(config *parserConfig) {
		config.disableInlineEnum = true
	}
}
