package main

import (
	"fmt"
	"os"
	"path/filepath"

	verr "github.com/nihei9/hbind/error"
	"github.com/nihei9/hbind/expand"
	"github.com/nihei9/hbind/header"
	"github.com/spf13/cobra"
)

// includePathEnv holds default include search paths separated by the OS path list separator.
const includePathEnv = "HBIND_INCLUDE_PATH"

// headerFlags are the flags of the commands reading headers.
type headerFlags struct {
	includes           *[]string
	collect            *bool
	multilineEnum      *bool
	noInlineEnumFields *bool
	expand             *bool
}

func registerHeaderFlags(cmd *cobra.Command) *headerFlags {
	return &headerFlags{
		includes:           cmd.Flags().StringArrayP("include", "I", nil, fmt.Sprintf("include search path; can be repeated (default $%v)", includePathEnv)),
		collect:            cmd.Flags().Bool("collect", false, "skip broken declarations and report them as warnings instead of failing"),
		multilineEnum:      cmd.Flags().Bool("multiline-enum", false, "accept enum member lists spanning several lines"),
		noInlineEnumFields: cmd.Flags().Bool("no-inline-enum-fields", false, "reject enum-typed struct members"),
		expand:             cmd.Flags().Bool("expand", false, "expand quoted includes recursively"),
	}
}

func (f *headerFlags) parserOptions() []header.ParserOption {
	var opts []header.ParserOption
	if *f.multilineEnum {
		opts = append(opts, header.EnableMultilineEnum())
	}
	if *f.noInlineEnumFields {
		opts = append(opts, header.DisableInlineEnumFields())
	}
	return opts
}

func (f *headerFlags) searchPaths() []string {
	if len(*f.includes) > 0 {
		return *f.includes
	}
	return filepath.SplitList(os.Getenv(includePathEnv))
}

// load reads one header, and the headers it includes when expansion is enabled.
func (f *headerFlags) load(path string, cache *expand.Cache) (*expand.Result, error) {
	if *f.expand {
		e := &expand.Expander{
			SearchPaths:   f.searchPaths(),
			Options:       f.parserOptions(),
			CollectErrors: *f.collect,
			Cache:         cache,
		}
		res, err := e.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("Cannot expand %v: %w", path, err)
		}
		return res, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the header %v: %w", path, err)
	}
	defer src.Close()

	opts := f.parserOptions()
	if *f.collect {
		opts = append(opts, header.CollectErrors())
	}
	p, err := header.NewParser(src, opts...)
	if err != nil {
		return nil, err
	}
	decls, err := p.Parse()
	if err != nil {
		if herr, ok := err.(*verr.HeaderError); ok {
			verr.HeaderErrors{herr}.SetSource(path, path)
		}
		return nil, err
	}
	diags := p.Diagnostics()
	diags.SetSource(path, path)

	return &expand.Result{
		Declarations: decls,
		Diagnostics:  diags,
		Files:        []string{path},
	}, nil
}

func printDiagnostics(diags verr.HeaderErrors) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %v\n", d)
	}
}
