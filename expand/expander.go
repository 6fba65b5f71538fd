package expand

import (
	"os"
	"path/filepath"

	verr "github.com/nihei9/hbind/error"
	"github.com/nihei9/hbind/header"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"k8s.io/klog/v2"
)

// ErrHeaderNotFound means a quoted include could be found neither next to the including file nor in any
// search path.
var ErrHeaderNotFound = errors.New("header not found")

type Result struct {
	// Declarations are the declarations of the root header with the declarations of every included custom
	// header spliced in right after the include. Each (kind, name) pair appears once.
	Declarations []header.Declaration

	// Diagnostics are the errors recorded in collect mode.
	Diagnostics verr.HeaderErrors

	// Files are the resolved absolute paths of the parsed headers in the order they were expanded.
	Files []string
}

// Expander parses a header together with the custom headers it includes, transitively. An Expander holds
// no per-call state, so one Expander can serve concurrent Expand calls.
type Expander struct {
	// SearchPaths are tried in order after the directory of the including file.
	SearchPaths []string

	Options []header.ParserOption

	// CollectErrors makes broken declarations and unresolvable includes diagnostics instead of errors.
	CollectErrors bool

	// Cache is optional. A cache must not be shared between Expanders with different Options.
	Cache *Cache
}

func (e *Expander) Expand(path string) (*Result, error) {
	abs, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	x := &expansion{
		e:       e,
		visited: map[string]struct{}{},
		seen:    orderedmap.New[declKey, header.Declaration](),
		result:  &Result{},
	}
	err = x.expandFile(abs)
	if err != nil {
		return nil, err
	}

	for pair := x.seen.Oldest(); pair != nil; pair = pair.Next() {
		x.result.Declarations = append(x.result.Declarations, pair.Value)
	}
	return x.result, nil
}

// declKey identifies a declaration across headers. Include guards and defines are told apart so that the
// `#ifndef X` / `#define X` pair of a header survives.
type declKey struct {
	kind  header.Kind
	macro header.MacroKind
	name  string
}

func keyOf(d header.Declaration) declKey {
	k := declKey{
		kind: d.Kind(),
		name: d.Name(),
	}
	if m, ok := d.(*header.Macro); ok {
		k.macro = m.MacroKind()
	}
	return k
}

// expansion is the state of one Expand call. It is never shared.
type expansion struct {
	e       *Expander
	visited map[string]struct{}
	seen    *orderedmap.OrderedMap[declKey, header.Declaration]
	result  *Result
}

func (x *expansion) expandFile(path string) error {
	x.visited[path] = struct{}{}
	x.result.Files = append(x.result.Files, path)
	klog.V(1).Infof("expanding %v", path)

	decls, diags, err := x.e.parseFile(path)
	if err != nil {
		return err
	}
	x.result.Diagnostics = append(x.result.Diagnostics, diags...)

	for _, d := range decls {
		x.add(d)

		h, ok := d.(*header.Header)
		if !ok || h.HeaderKind() != header.HeaderKindCustom {
			continue
		}
		resolved, err := x.e.resolve(h.Name(), filepath.Dir(path))
		if err != nil {
			if !x.e.CollectErrors || !errors.Is(err, ErrHeaderNotFound) {
				return errors.Wrapf(err, "cannot expand %v", path)
			}
			x.result.Diagnostics = append(x.result.Diagnostics, &verr.HeaderError{
				Cause:      ErrHeaderNotFound,
				Detail:     h.Name(),
				FilePath:   path,
				SourceName: path,
			})
			continue
		}
		if _, ok := x.visited[resolved]; ok {
			klog.V(2).Infof("%v was already expanded; included from %v", resolved, path)
			continue
		}
		err = x.expandFile(resolved)
		if err != nil {
			return err
		}
	}

	return nil
}

func (x *expansion) add(d header.Declaration) {
	key := keyOf(d)
	if _, ok := x.seen.Get(key); ok {
		klog.V(2).Infof("suppressed a duplicate declaration: %v %v", key.kind, key.name)
		return
	}
	x.seen.Set(key, d)
}

func (e *Expander) resolve(name, dir string) (string, error) {
	candidates := make([]string, 0, len(e.SearchPaths)+1)
	candidates = append(candidates, filepath.Join(dir, name))
	for _, p := range e.SearchPaths {
		candidates = append(candidates, filepath.Join(p, name))
	}

	for _, c := range candidates {
		klog.V(2).Infof("looking up %v at %v", name, c)
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		return resolvePath(c)
	}

	return "", errors.Wrapf(ErrHeaderNotFound, "%v", name)
}

// resolvePath returns the absolute path of a file with symbolic links evaluated, so that a header is
// identified by one path however it is reached.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve %v", path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve %v", path)
	}
	return resolved, nil
}

func (e *Expander) parseFile(path string) ([]header.Declaration, verr.HeaderErrors, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot read %v", path)
	}
	if decls, diags, ok := e.Cache.get(path, info); ok {
		klog.V(2).Infof("cache hit: %v", path)
		return decls, diags, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot open %v", path)
	}
	defer f.Close()

	opts := e.Options
	if e.CollectErrors {
		opts = append(append([]header.ParserOption(nil), opts...), header.CollectErrors())
	}
	p, err := header.NewParser(f, opts...)
	if err != nil {
		return nil, nil, err
	}
	decls, err := p.Parse()
	if err != nil {
		var herr *verr.HeaderError
		if errors.As(err, &herr) {
			verr.HeaderErrors{herr}.SetSource(path, path)
			return nil, nil, herr
		}
		return nil, nil, errors.Wrapf(err, "cannot parse %v", path)
	}
	diags := p.Diagnostics()
	diags.SetSource(path, path)

	e.Cache.add(path, info, decls, diags)

	return decls, diags, nil
}
