package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var rootCmd = &cobra.Command{
	Use:   "hbind",
	Short: "Generate binding declarations from C headers",
	Long: `hbind reads C headers and generates binding declarations for them.
- Includes, macros, enums, structs, and function prototypes are recognized.
- Quoted includes can be expanded recursively.
  The output is Cython declarations by default.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine. Variables already set in the environment take precedence.
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	fs := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(fs)
	rootCmd.PersistentFlags().AddGoFlagSet(fs)
}

func Execute() error {
	defer klog.Flush()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
