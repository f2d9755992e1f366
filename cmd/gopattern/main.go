package main

import (
	"flag"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

var (
	gSchemaPath  string
	gCatalogPath string
	gASCII       bool
	gMaxVertices int32
)

var rootCmd = &cobra.Command{
	Use:           "gopattern",
	Short:         "Canonical encoding and cataloguing of graph query patterns",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flags := rootCmd.PersistentFlags()
	flags.AddGoFlagSet(fset)
	flags.StringVarP(&gSchemaPath, "schema", "s", "", "schema document (YAML or JSON)")
	flags.StringVarP(&gCatalogPath, "catalog", "c", "", "catalog db directory (in-memory if omitted)")
	flags.BoolVar(&gASCII, "ascii", false, "use 7-bit codes instead of hex")
	flags.Int32Var(&gMaxVertices, "max-vertices", 0, "largest pattern (in vertices) a catalog holds")

	rootCmd.AddCommand(
		encodeCmd,
		decodeCmd,
		stepsCmd,
		growCmd,
		listCmd,
		runCmd,
	)

	err := rootCmd.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
