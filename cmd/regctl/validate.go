package main

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := newValidateCmd()
	cmd.Flags().StringVar(&genRTLDir, "rtl", "", "RTL source tree containing base register descriptions (required)")
	cmd.Flags().StringVar(&genOverlayDir, "overlay", "", "Directory of overlay description files")
	cmd.Flags().StringVar(&genConfigPath, "config", "", "YAML generation config file")
	_ = cmd.MarkFlagRequired("rtl")
	rootCmd.AddCommand(cmd)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate --rtl <dir> [--overlay <dir>]",
		Short: "Parse, merge, and validate without emitting code",
		Long: `The validate command runs the pipeline up to and including
validation, reporting every syntax error, merge conflict, and
structural issue across all input files in one pass. Nothing is
written.

Example:
  regctl validate --rtl hw/rtl --overlay hw/overlays`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(true)
		},
	}
}
