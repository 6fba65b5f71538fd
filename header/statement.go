package header

import (
	"regexp"
	"strings"

	verr "github.com/nihei9/hbind/error"
)

var (
	includeRe        = regexp.MustCompile(`^#\s*include\b`)
	customHeaderRe   = regexp.MustCompile(`^#\s*include\s*"([^"]+)"`)
	standardHeaderRe = regexp.MustCompile(`^#\s*include\s*<([^>]+)>`)
	ifndefRe         = regexp.MustCompile(`^#\s*ifndef\b`)
	defineRe         = regexp.MustCompile(`^#\s*define\b`)
	endifRe          = regexp.MustCompile(`^#\s*endif\b`)
	macroNameRe      = regexp.MustCompile(`^#\s*\w+\s+([A-Za-z_][0-9A-Za-z_]*)`)
)

// ParseStatement converts one directive, from `#` up to but excluding the line break or `;`, into a Header
// or a Macro. Any other directive is a recognition error, with one exception: `#endif` is accepted but
// yields no declaration, so ParseStatement returns a nil Declaration and a nil error for it. Callers must
// check the Declaration for nil.
func ParseStatement(stmt string) (Declaration, error) {
	stmt = strings.TrimSpace(stmt)

	if includeRe.MatchString(stmt) {
		var name string
		var kind HeaderKind
		if m := customHeaderRe.FindStringSubmatch(stmt); m != nil {
			name, kind = m[1], HeaderKindCustom
		} else if m := standardHeaderRe.FindStringSubmatch(stmt); m != nil {
			name, kind = m[1], HeaderKindStandard
		} else {
			return nil, &verr.HeaderError{
				Cause:  synErrInvalidInclude,
				Detail: stmt,
			}
		}
		return NewHeader(name, kind)
	}

	var kind MacroKind
	switch {
	case ifndefRe.MatchString(stmt):
		kind = MacroKindIncludeGuard
	case defineRe.MatchString(stmt):
		kind = MacroKindDefine
	case endifRe.MatchString(stmt):
		return nil, nil
	default:
		return nil, &verr.HeaderError{
			Cause:  synErrInvalidDirective,
			Detail: stmt,
		}
	}

	m := macroNameRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil, &verr.HeaderError{
			Cause:  synErrNoMacroName,
			Detail: stmt,
		}
	}
	return NewMacro(m[1], kind)
}
