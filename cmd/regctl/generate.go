package main

import (
	"fmt"
	"os"

	"github.com/joshuapare/regkit/regmap/config"
	"github.com/joshuapare/regkit/regmap/pipeline"
	"github.com/spf13/cobra"
)

var (
	genRTLDir     string
	genOverlayDir string
	genOutDir     string
	genConfigPath string
)

func init() {
	cmd := newGenerateCmd()
	cmd.Flags().StringVar(&genRTLDir, "rtl", "", "RTL source tree containing base register descriptions (required)")
	cmd.Flags().StringVar(&genOverlayDir, "overlay", "", "Directory of overlay description files")
	cmd.Flags().StringVar(&genOutDir, "out", "", "Destination directory for generated source (required)")
	cmd.Flags().StringVar(&genConfigPath, "config", "", "YAML generation config file")
	_ = cmd.MarkFlagRequired("rtl")
	_ = cmd.MarkFlagRequired("out")
	rootCmd.AddCommand(cmd)
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate --rtl <dir> --out <dir> [--overlay <dir>]",
		Short: "Generate register access code from descriptions",
		Long: `The generate command runs the full pipeline: it loads register
descriptions from the RTL tree, applies overlay extensions and
overrides, validates the merged address map, and writes generated
source artifacts under the output directory, organized by peripheral.

Regenerating from unchanged inputs produces byte-identical output; the
destination is safe to delete and regenerate at any time.

Example:
  regctl generate --rtl hw/rtl --overlay hw/overlays --out generated
  regctl generate --rtl hw/rtl --out generated --config regen.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(false)
		},
	}
}

// runGenerate drives a pipeline run and reports its outcome. dryRun
// stops after validation (the validate command).
func runGenerate(dryRun bool) error {
	cfg := config.Default()
	if genConfigPath != "" {
		loaded, err := config.Load(genConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	res, err := pipeline.Run(pipeline.Options{
		RTLDir:     genRTLDir,
		OverlayDir: genOverlayDir,
		OutDir:     genOutDir,
		Config:     cfg,
		DryRun:     dryRun,
		Logger:     runLogger(),
	})
	if err != nil {
		return err
	}

	if len(res.Report.Issues) > 0 {
		if werr := res.Report.WriteText(os.Stderr); werr != nil {
			return werr
		}
	}
	if res.Report.HasErrors() {
		if len(res.Written) > 0 {
			printError("generation failed; %d artifact(s) were written before the failure\n", len(res.Written))
		}
		os.Exit(1)
	}

	if dryRun {
		printInfo("validation passed\n")
		return nil
	}
	printInfo("wrote %d artifact(s) under %s\n", len(res.Written), genOutDir)
	if verbose {
		for _, p := range res.Written {
			fmt.Fprintf(os.Stdout, "  %s\n", p)
		}
	}
	return nil
}
