package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nihei9/hbind/binding"
	"github.com/nihei9/hbind/expand"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

const bindingFileExt = ".pxd"

var generateFlags = struct {
	header       *headerFlags
	output       *string
	keyword      *string
	indent       *string
	extern       *bool
	noDirectives *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "generate <header file path>...",
		Short: "Generate binding declarations from headers",
		Example: `  hbind generate monitor.h
  hbind generate --extern --expand -I include -o bindings src/*.h`,
		Args: cobra.MinimumNArgs(1),
		RunE: runGenerate,
	}
	generateFlags.header = registerHeaderFlags(cmd)
	generateFlags.output = cmd.Flags().StringP("output", "o", "", "output directory (default stdout for a single header, otherwise next to each header)")
	generateFlags.keyword = cmd.Flags().StringP("keyword", "k", "cdef", "declaration keyword of the binding language")
	generateFlags.indent = cmd.Flags().String("indent", "    ", "indentation unit")
	generateFlags.extern = cmd.Flags().Bool("extern", false, "wrap the declarations in a `cdef extern from` block")
	generateFlags.noDirectives = cmd.Flags().Bool("no-directives", false, "drop includes and macros from the output")
	rootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cache, err := expand.NewCache(256)
	if err != nil {
		return err
	}

	outputs := make([][]byte, len(args))
	var g errgroup.Group
	g.SetLimit(max(runtime.GOMAXPROCS(0)-1, 1))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			out, err := generate(cmd, path, cache)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		return err
	}

	if *generateFlags.output == "" && len(args) == 1 {
		_, err := os.Stdout.Write(outputs[0])
		return err
	}

	for i, path := range args {
		dir := *generateFlags.output
		if dir == "" {
			dir = filepath.Dir(path)
		}
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("Cannot create the output directory %v: %w", dir, err)
		}
		outPath := filepath.Join(dir, bindingFileName(path))
		err = os.WriteFile(outPath, outputs[i], 0644)
		if err != nil {
			return fmt.Errorf("Cannot write a binding file %v: %w", outPath, err)
		}
		klog.V(1).Infof("wrote %v", outPath)
	}

	return nil
}

func generate(cmd *cobra.Command, path string, cache *expand.Cache) ([]byte, error) {
	res, err := generateFlags.header.load(path, cache)
	if err != nil {
		return nil, err
	}
	printDiagnostics(res.Diagnostics)

	opts := []binding.RendererOption{
		binding.Indent(*generateFlags.indent),
		binding.Banner(fmt.Sprintf("Generated by hbind from %v. DO NOT EDIT.", filepath.Base(path))),
	}
	if cmd.Flags().Changed("keyword") || !*generateFlags.extern {
		opts = append(opts, binding.Keyword(*generateFlags.keyword))
	}
	if *generateFlags.extern {
		opts = append(opts, binding.ExternFrom(filepath.Base(path)))
	}
	if *generateFlags.noDirectives {
		opts = append(opts, binding.OmitDirectives())
	}
	r, err := binding.NewRenderer(opts...)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	err = r.Render(&b, res.Declarations)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func bindingFileName(headerPath string) string {
	base := filepath.Base(headerPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + bindingFileExt
}
