package main

import (
	"fmt"
	"os"

	"github.com/nihei9/hbind/header"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listFlags = struct {
	header *headerFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "list <header file path>",
		Short:   "List the declarations of a header",
		Example: `  hbind list --expand monitor.h`,
		Args:    cobra.ExactArgs(1),
		RunE:    runList,
	}
	listFlags.header = registerHeaderFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) error {
	res, err := listFlags.header.load(args[0], nil)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)

	var data [][]string
	for _, d := range res.Declarations {
		data = append(data, []string{string(d.Kind()), d.Name(), describe(d)})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"KIND", "NAME", "DETAIL"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func describe(d header.Declaration) string {
	switch d := d.(type) {
	case *header.Header:
		return string(d.HeaderKind())
	case *header.Macro:
		return string(d.MacroKind())
	case *header.CEnum:
		return countMembers(len(d.Attributes()))
	case *header.Struct:
		return countMembers(len(d.Attributes()))
	case *header.Prototype:
		return d.Render(header.DefaultFormat, 0)
	}
	return ""
}

func countMembers(n int) string {
	if n == 1 {
		return "1 member"
	}
	return fmt.Sprintf("%v members", n)
}
