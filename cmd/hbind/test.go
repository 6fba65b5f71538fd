package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/hbind/binding"
	"github.com/nihei9/hbind/header"
	"github.com/nihei9/hbind/tester"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	multilineEnum *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <test file path>|<test directory path>",
		Short:   "Run golden test cases",
		Example: `  hbind test testdata/cases`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTest,
	}
	testFlags.multilineEnum = cmd.Flags().Bool("multiline-enum", false, "accept enum member lists spanning several lines")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[0])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(os.Stderr, "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	var opts []header.ParserOption
	if *testFlags.multilineEnum {
		opts = append(opts, header.EnableMultilineEnum())
	}
	t := &tester.Tester{
		ParserOptions:   opts,
		RendererOptions: []binding.RendererOption{},
		Cases:           cs,
	}
	rs := t.Run()
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
