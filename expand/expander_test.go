package expand

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nihei9/hbind/header"
	"github.com/pkg/errors"
)

func writeHeaders(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for name, src := range files {
		path := filepath.Join(dir, name)
		err = os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(path, []byte(src), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type declName struct {
	Kind header.Kind
	Name string
}

func names(decls []header.Declaration) []declName {
	var out []declName
	for _, d := range decls {
		out = append(out, declName{Kind: d.Kind(), Name: d.Name()})
	}
	return out
}

func TestExpander_Expand(t *testing.T) {
	tests := []struct {
		caption   string
		files     map[string]string
		root      string
		search    []string
		want      []declName
		fileCount int
	}{
		{
			caption: "mutually including headers terminate and each declaration appears once",
			files: map[string]string{
				"a.h": "#include \"b.h\"\nstruct A { int x; };\n",
				"b.h": "#include \"a.h\"\nstruct B { int y; };\n",
			},
			root: "a.h",
			want: []declName{
				{Kind: header.KindHeader, Name: "b.h"},
				{Kind: header.KindHeader, Name: "a.h"},
				{Kind: header.KindStruct, Name: "B"},
				{Kind: header.KindStruct, Name: "A"},
			},
			fileCount: 2,
		},
		{
			caption: "a header including itself is parsed once",
			files: map[string]string{
				"self.h": "#include \"self.h\"\nint f(int x);\n",
			},
			root: "self.h",
			want: []declName{
				{Kind: header.KindHeader, Name: "self.h"},
				{Kind: header.KindPrototype, Name: "f"},
			},
			fileCount: 1,
		},
		{
			caption: "a diamond include declares the shared header once",
			files: map[string]string{
				"top.h":    "#include \"left.h\"\n#include \"right.h\"\n",
				"left.h":   "#include \"common.h\"\nenum Left { L };\n",
				"right.h":  "#include \"common.h\"\nenum Right { R };\n",
				"common.h": "#ifndef COMMON_H\n#define COMMON_H\nstruct Common { int c; };\n#endif\n",
			},
			root: "top.h",
			want: []declName{
				{Kind: header.KindHeader, Name: "left.h"},
				{Kind: header.KindHeader, Name: "common.h"},
				{Kind: header.KindMacro, Name: "COMMON_H"},
				{Kind: header.KindMacro, Name: "COMMON_H"},
				{Kind: header.KindStruct, Name: "Common"},
				{Kind: header.KindEnum, Name: "Left"},
				{Kind: header.KindHeader, Name: "right.h"},
				{Kind: header.KindEnum, Name: "Right"},
			},
			fileCount: 4,
		},
		{
			caption: "standard headers are not expanded",
			files: map[string]string{
				"main.h": "#include <stdio.h>\nvoid run(void);\n",
			},
			root: "main.h",
			want: []declName{
				{Kind: header.KindHeader, Name: "stdio.h"},
				{Kind: header.KindPrototype, Name: "run"},
			},
			fileCount: 1,
		},
		{
			caption: "a header is looked up in the search paths",
			files: map[string]string{
				"src/main.h":     "#include \"dep.h\"\nvoid run(void);\n",
				"include/dep.h":  "struct Dep { int d; };\n",
				"include2/dep.h": "struct Shadowed { int d; };\n",
			},
			root:   "src/main.h",
			search: []string{"include", "include2"},
			want: []declName{
				{Kind: header.KindHeader, Name: "dep.h"},
				{Kind: header.KindStruct, Name: "Dep"},
				{Kind: header.KindPrototype, Name: "run"},
			},
			fileCount: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			dir := writeHeaders(t, tt.files)
			var search []string
			for _, p := range tt.search {
				search = append(search, filepath.Join(dir, p))
			}
			e := &Expander{
				SearchPaths: search,
			}
			res, err := e.Expand(filepath.Join(dir, tt.root))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, names(res.Declarations)); diff != "" {
				t.Fatalf("unexpected declarations (-want +got):\n%v", diff)
			}
			if len(res.Files) != tt.fileCount {
				t.Fatalf("unexpected files; want: %v files, got: %v", tt.fileCount, res.Files)
			}
		})
	}
}

func TestExpander_Symlink(t *testing.T) {
	dir := writeHeaders(t, map[string]string{
		"a.h":     "#include \"sub/b.h\"\nstruct A { int x; };\n",
		"sub/b.h": "#include \"link.h\"\nstruct B { int y; };\n",
	})
	err := os.Symlink(filepath.Join(dir, "a.h"), filepath.Join(dir, "sub", "link.h"))
	if err != nil {
		t.Skipf("cannot create a symbolic link: %v", err)
	}

	e := &Expander{}
	res, err := e.Expand(filepath.Join(dir, "a.h"))
	if err != nil {
		t.Fatal(err)
	}
	wantFiles := []string{
		filepath.Join(dir, "a.h"),
		filepath.Join(dir, "sub", "b.h"),
	}
	if diff := cmp.Diff(wantFiles, res.Files); diff != "" {
		t.Fatalf("unexpected files (-want +got):\n%v", diff)
	}
	want := []declName{
		{Kind: header.KindHeader, Name: "sub/b.h"},
		{Kind: header.KindHeader, Name: "link.h"},
		{Kind: header.KindStruct, Name: "B"},
		{Kind: header.KindStruct, Name: "A"},
	}
	if diff := cmp.Diff(want, names(res.Declarations)); diff != "" {
		t.Fatalf("unexpected declarations (-want +got):\n%v", diff)
	}
}

func TestExpander_HeaderNotFound(t *testing.T) {
	dir := writeHeaders(t, map[string]string{
		"main.h": "#include \"missing.h\"\nstruct S { int* p; };\nvoid run(void);\n",
	})
	root := filepath.Join(dir, "main.h")

	e := &Expander{}
	_, err := e.Expand(root)
	if err == nil {
		t.Fatal("an error must be returned")
	}

	e = &Expander{
		CollectErrors: true,
	}
	res, err := e.Expand(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []declName{
		{Kind: header.KindHeader, Name: "missing.h"},
		{Kind: header.KindPrototype, Name: "run"},
	}
	if diff := cmp.Diff(want, names(res.Declarations)); diff != "" {
		t.Fatalf("unexpected declarations (-want +got):\n%v", diff)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if !errors.Is(res.Diagnostics[0], header.ErrMalformedMember) {
		t.Errorf("unexpected diagnostic: %v", res.Diagnostics[0])
	}
	if !errors.Is(res.Diagnostics[1], ErrHeaderNotFound) {
		t.Errorf("unexpected diagnostic: %v", res.Diagnostics[1])
	}
	if res.Diagnostics[0].FilePath != root {
		t.Errorf("a diagnostic must carry its file path; got: %v", res.Diagnostics[0].FilePath)
	}
}

func TestExpander_ParseErrorCarriesFilePath(t *testing.T) {
	dir := writeHeaders(t, map[string]string{
		"main.h":   "#include \"broken.h\"\n",
		"broken.h": "struct S { int x;\n",
	})
	e := &Expander{}
	_, err := e.Expand(filepath.Join(dir, "main.h"))
	if !errors.Is(err, header.ErrUnterminatedConstruct) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCache(t *testing.T) {
	dir := writeHeaders(t, map[string]string{
		"a.h": "#include \"b.h\"\nstruct A { int x; };\n",
		"b.h": "struct B { int y; };\n",
	})
	c, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	e := &Expander{
		Cache: c,
	}

	for i := 0; i < 2; i++ {
		res, err := e.Expand(filepath.Join(dir, "a.h"))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Declarations) != 3 {
			t.Fatalf("unexpected declarations: %v", names(res.Declarations))
		}
	}
	if c.Len() != 2 {
		t.Fatalf("unexpected cache size; want: 2, got: %v", c.Len())
	}

	err = os.WriteFile(filepath.Join(dir, "b.h"), []byte("struct B { int y; };\nstruct C { int z; };\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Expand(filepath.Join(dir, "a.h"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Declarations) != 4 {
		t.Fatalf("a modified header must be parsed again; got: %v", names(res.Declarations))
	}
}

func TestExpander_FDWatcherHeaders(t *testing.T) {
	root := filepath.Join("..", "testdata", "fd_watcher", "api.h")

	_, err := (&Expander{}).Expand(root)
	if !errors.Is(err, header.ErrUnsupportedConstruct) {
		t.Fatalf("unexpected error: %v", err)
	}

	e := &Expander{
		CollectErrors: true,
	}
	res, err := e.Expand(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []declName{
		{Kind: header.KindMacro, Name: "API_H"},
		{Kind: header.KindMacro, Name: "API_H"},
		{Kind: header.KindHeader, Name: "utils.h"},
		{Kind: header.KindMacro, Name: "UTILS_H"},
		{Kind: header.KindMacro, Name: "UTILS_H"},
		{Kind: header.KindHeader, Name: "stddef.h"},
		{Kind: header.KindEnum, Name: "MODE"},
		{Kind: header.KindPrototype, Name: "process_exists"},
		{Kind: header.KindHeader, Name: "monitor.h"},
		{Kind: header.KindMacro, Name: "MONITOR_H"},
		{Kind: header.KindMacro, Name: "MONITOR_H"},
	}
	if diff := cmp.Diff(want, names(res.Declarations)); diff != "" {
		t.Fatalf("unexpected declarations (-want +got):\n%v", diff)
	}
	if len(res.Files) != 3 {
		t.Fatalf("unexpected files: %v", res.Files)
	}
	if len(res.Diagnostics) != 13 {
		t.Fatalf("unexpected diagnostics; want: 13 entries, got:\n%v", res.Diagnostics)
	}
}
