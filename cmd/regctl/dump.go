package main

import (
	"os"

	"github.com/joshuapare/regkit/regmap/config"
	"github.com/joshuapare/regkit/regmap/pipeline"
	"github.com/joshuapare/regkit/regmap/printer"
	"github.com/spf13/cobra"
)

var (
	dumpRTLDir     string
	dumpOverlayDir string
	dumpNoDocs     bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVar(&dumpRTLDir, "rtl", "", "RTL source tree containing base register descriptions (required)")
	cmd.Flags().StringVar(&dumpOverlayDir, "overlay", "", "Directory of overlay description files")
	cmd.Flags().BoolVar(&dumpNoDocs, "no-docs", false, "Omit documentation strings")
	_ = cmd.MarkFlagRequired("rtl")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump --rtl <dir> [--overlay <dir>]",
		Short: "Print the merged address-space model",
		Long: `The dump command builds and merges the model, then prints the
resulting address map with resolved absolute addresses. Use --json for
machine-readable output.

Example:
  regctl dump --rtl hw/rtl --overlay hw/overlays
  regctl dump --rtl hw/rtl --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump()
		},
	}
}

func runDump() error {
	res, err := pipeline.Run(pipeline.Options{
		RTLDir:     dumpRTLDir,
		OverlayDir: dumpOverlayDir,
		Config:     config.Default(),
		DryRun:     true,
		Logger:     runLogger(),
	})
	if err != nil {
		return err
	}
	if res.Report.HasErrors() || res.Space == nil {
		if werr := res.Report.WriteText(os.Stderr); werr != nil {
			return werr
		}
		os.Exit(1)
	}

	opts := printer.DefaultOptions()
	opts.ShowDocs = !dumpNoDocs
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(os.Stdout, opts).Print(res.Space)
}
