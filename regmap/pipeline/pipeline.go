// Package pipeline orchestrates a full generation run: load, parse,
// build, merge overlays, validate, emit, write.
//
// A run is one batch computation. Every stage contributes its
// diagnostics to a single Report; the run's outcome is judged by
// whether any error-severity issue was collected anywhere. Partial
// output on failure is permitted (the Result says what was written),
// but a failed run always carries the complete issue set.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/regkit/regmap"
	"github.com/joshuapare/regkit/regmap/builder"
	"github.com/joshuapare/regkit/regmap/config"
	"github.com/joshuapare/regkit/regmap/emit"
	"github.com/joshuapare/regkit/regmap/loader"
	"github.com/joshuapare/regkit/regmap/output"
	"github.com/joshuapare/regkit/regmap/overlay"
	"github.com/joshuapare/regkit/regmap/parser"
	"github.com/joshuapare/regkit/regmap/validate"
)

// Options configures one generation run.
type Options struct {
	// RTLDir is the base register-description tree (required).
	RTLDir string
	// OverlayDir is the overlay tree; empty means no overlays.
	OverlayDir string
	// OutDir receives generated artifacts (required unless DryRun).
	OutDir string

	// Config controls emission targets and parallelism.
	Config config.Config

	// DryRun stops after validation: no artifacts are emitted or
	// written. Used by regctl validate.
	DryRun bool

	// Logger receives informational events (overlay supersession,
	// stage traces). Defaults to a discarding logger.
	Logger *slog.Logger
}

// Result is what a run produced.
type Result struct {
	// Report holds every issue collected across all stages.
	Report *regmap.Report
	// Space is the merged model, when building got that far.
	Space *regmap.AddressSpace
	// Written lists artifact paths written before any failure.
	Written []string
}

// Run executes the pipeline. The returned error reports infrastructure
// failures (unwritable output, emitter bugs); description defects
// never come back as an error, they are collected in Result.Report.
// Callers decide success with Result.Report.HasErrors().
func Run(opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	res := &Result{Report: &regmap.Report{}}

	// Load. Every unreadable or undecodable file is reported; any
	// failure stops the run after reporting them all.
	units, lerrs := loader.Load(opts.RTLDir, opts.OverlayDir)
	for _, lerr := range lerrs {
		res.Report.Add(loadIssue(lerr))
	}
	if len(lerrs) > 0 {
		return res, nil
	}
	log.Info("loaded description units", "count", len(units))

	// Parse, in parallel. All syntax errors across all units are
	// collected; any failure stops the run after reporting them all.
	files, perrs := parser.ParseUnits(units, opts.Config.Workers)
	for _, perr := range perrs {
		res.Report.Add(parseIssue(perr))
	}
	if len(perrs) > 0 {
		return res, nil
	}

	// Build the base model. Build errors mean the model cannot be
	// safely merged further, so the run stops after reporting them.
	space, issues := builder.Build(files)
	res.Space = space
	res.Report.Add(issues...)
	if res.Report.HasErrors() {
		return res, nil
	}

	// Merge overlays in file-then-declaration order.
	res.Report.Add(overlay.Apply(space, files, overlay.Options{Logger: log})...)
	if res.Report.HasErrors() {
		return res, nil
	}

	// Validate the merged model. The full issue set is always
	// collected; errors abort emission, warnings do not.
	res.Report.Add(validate.Run(space, validate.Options{
		WarnGaps: opts.Config.GapWarnings(),
	})...)
	if res.Report.HasErrors() || opts.DryRun {
		return res, nil
	}

	targets, err := emit.Targets(opts.Config)
	if err != nil {
		return res, err
	}
	artifacts, err := emit.EmitAll(space, targets, opts.Config.Workers)
	if err != nil {
		return res, err
	}
	log.Info("emitted artifacts", "count", len(artifacts))

	wres, werr := output.Write(opts.OutDir, artifacts, opts.Config.Workers)
	res.Written = wres.Written
	if werr != nil {
		res.Report.Add(regmap.Issue{
			Severity: regmap.SeverityError,
			Code:     regmap.CodeIO,
			Msg:      werr.Error(),
		})
		return res, nil
	}
	return res, nil
}

func loadIssue(err error) regmap.Issue {
	var encErr *loader.EncodingError
	if errors.As(err, &encErr) {
		return regmap.Issue{
			Severity: regmap.SeverityError,
			Code:     regmap.CodeEncoding,
			Unit:     encErr.Unit,
			Msg:      err.Error(),
		}
	}
	return regmap.Issue{
		Severity: regmap.SeverityError,
		Code:     regmap.CodeIO,
		Msg:      err.Error(),
	}
}

func parseIssue(err error) regmap.Issue {
	var synErr *parser.SyntaxError
	if errors.As(err, &synErr) {
		return regmap.Issue{
			Severity: regmap.SeverityError,
			Code:     regmap.CodeSyntax,
			Unit:     synErr.Unit,
			Line:     synErr.Pos.Line,
			Col:      synErr.Pos.Col,
			Msg:      fmt.Sprintf("expected %s, found %s", synErr.Expected, synErr.Found),
		}
	}
	return regmap.Issue{
		Severity: regmap.SeverityError,
		Code:     regmap.CodeSyntax,
		Msg:      err.Error(),
	}
}
