package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/nihei9/hbind/header"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	header *headerFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <header file path>",
		Short:   "Print the declarations of a header in JSON",
		Example: `  hbind parse monitor.h`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.header = registerHeaderFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				err = fmt.Errorf("an unexpected error occurred: %v", v)
			}
			fmt.Fprintf(os.Stderr, "%v:\n%v", err, string(debug.Stack()))
			retErr = err
		}
	}()

	res, err := parseFlags.header.load(args[0], nil)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)

	decls := res.Declarations
	if decls == nil {
		decls = []header.Declaration{}
	}
	b, err := json.MarshalIndent(decls, "", "  ")
	if err != nil {
		return fmt.Errorf("Cannot encode the declarations: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(b))

	return nil
}
