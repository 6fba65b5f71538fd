package binding

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/nihei9/hbind/header"
)

// externKeyword opens a Cython block of declarations taken from a C header.
const externKeyword = "cdef"

type rendererConfig struct {
	format         header.Format
	keywordSet     bool
	externFrom     string
	omitDirectives bool
	banner         string
}

type RendererOption func(config *rendererConfig)

// Keyword sets the declaration keyword of the target binding language. An empty keyword is allowed.
func Keyword(kw string) RendererOption {
	return func(config *rendererConfig) {
		config.format.Keyword = kw
		config.keywordSet = true
	}
}

func Indent(indent string) RendererOption {
	return func(config *rendererConfig) {
		config.format.Indent = indent
	}
}

// ExternFrom wraps the declarations in a `cdef extern from "<header>":` block. Declarations inside the block
// have no keyword unless Keyword is also given.
func ExternFrom(headerName string) RendererOption {
	return func(config *rendererConfig) {
		config.externFrom = headerName
	}
}

// OmitDirectives drops includes and macros, which are otherwise rendered as comments.
func OmitDirectives() RendererOption {
	return func(config *rendererConfig) {
		config.omitDirectives = true
	}
}

// Banner puts text at the top of the output as comment lines.
func Banner(text string) RendererOption {
	return func(config *rendererConfig) {
		config.banner = text
	}
}

const moduleTemplate = `{{ range .Banner }}{{ comment . }}
{{ end }}{{ if .ExternFrom }}{{ .ExternKeyword }} extern from "{{ .ExternFrom }}":
{{ range .Lines }}{{ . }}
{{ else }}{{ indent 1 }}pass
{{ end }}{{ else }}{{ range .Lines }}{{ . }}
{{ end }}{{ end }}`

type Renderer struct {
	config *rendererConfig
	tmpl   *template.Template
}

func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	config := &rendererConfig{
		format: header.DefaultFormat,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.externFrom != "" && !config.keywordSet {
		config.format.Keyword = ""
	}

	fns := template.FuncMap{
		"comment": func(line string) string {
			if line == "" {
				return config.format.Comment
			}
			return config.format.Comment + " " + line
		},
		"indent": func(depth int) string {
			return header.Indentation(config.format, depth)
		},
	}
	tmpl, err := template.New("module").Funcs(fns).Parse(moduleTemplate)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		config: config,
		tmpl:   tmpl,
	}, nil
}

// Render writes decls as one binding module in their original order, one declaration per line.
func (r *Renderer) Render(w io.Writer, decls []header.Declaration) error {
	depth := 0
	if r.config.externFrom != "" {
		depth = 1
	}

	var lines []string
	for _, d := range decls {
		if r.config.omitDirectives && (d.Kind() == header.KindHeader || d.Kind() == header.KindMacro) {
			continue
		}
		lines = append(lines, d.Render(r.config.format, depth))
	}

	var banner []string
	if r.config.banner != "" {
		banner = strings.Split(strings.TrimRight(r.config.banner, "\n"), "\n")
	}

	err := r.tmpl.Execute(w, struct {
		Banner        []string
		ExternKeyword string
		ExternFrom    string
		Lines         []string
	}{
		Banner:        banner,
		ExternKeyword: externKeyword,
		ExternFrom:    r.config.externFrom,
		Lines:         lines,
	})
	if err != nil {
		return fmt.Errorf("Cannot render the binding module: %w", err)
	}
	return nil
}

func (r *Renderer) RenderString(decls []header.Declaration) (string, error) {
	var b strings.Builder
	err := r.Render(&b, decls)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
