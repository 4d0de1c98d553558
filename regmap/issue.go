package regmap

import (
	"fmt"
	"io"
	"sort"
)

// Severity classifies a validation or pipeline issue. Errors abort
// emission; warnings are reported and generation continues.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the report spelling of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// IssueCode identifies the category of an issue.
type IssueCode string

const (
	CodeIO               IssueCode = "io-error"
	CodeEncoding         IssueCode = "encoding-error"
	CodeSyntax           IssueCode = "syntax-error"
	CodeDuplicate        IssueCode = "duplicate-definition"
	CodeUnresolved       IssueCode = "unresolved-reference"
	CodeInvalidAttribute IssueCode = "invalid-attribute"
	CodeInvalidExtend    IssueCode = "invalid-extend-target"
	CodeTargetNotFound   IssueCode = "target-not-found"
	CodeInvalidOverride  IssueCode = "invalid-override"
	CodeAddressCollision IssueCode = "address-collision"
	CodeFieldOverlap     IssueCode = "field-overlap"
	CodeFieldOutOfRange  IssueCode = "field-out-of-range"
	CodeResetTooWide     IssueCode = "reset-out-of-range"
	CodeAddressGap       IssueCode = "address-gap"
)

// Issue is one diagnostic produced anywhere in the pipeline. Issues are
// always batch-collected: a run reports every issue it found, never
// just the first.
type Issue struct {
	Severity Severity
	Code     IssueCode
	// Path is the qualified model path the issue refers to, when one
	// exists (validation issues always carry one).
	Path string
	// Unit is the source unit (relative file path) the issue
	// originates from, when known.
	Unit string
	Line int
	Col  int
	Msg  string
}

// Error makes an Issue usable as an error value.
func (i Issue) Error() string { return i.String() }

// String renders the issue in the report format:
//
//	unit:line:col: error[code]: message (path)
func (i Issue) String() string {
	s := ""
	if i.Unit != "" {
		s = i.Unit
		if i.Line > 0 {
			s += fmt.Sprintf(":%d:%d", i.Line, i.Col)
		}
		s += ": "
	}
	s += fmt.Sprintf("%s[%s]: %s", i.Severity, i.Code, i.Msg)
	if i.Path != "" {
		s += fmt.Sprintf(" (%s)", i.Path)
	}
	return s
}

// Report accumulates issues across the whole pipeline and renders the
// single terminal report the user sees.
type Report struct {
	Issues []Issue
}

// Add appends issues to the report.
func (r *Report) Add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// HasErrors reports whether any error-severity issue was collected.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of errors and warnings collected.
func (r *Report) Counts() (errors, warnings int) {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// Sort orders issues by source location (unit, line, column), then by
// model path, so the report reads in file order. The sort is stable so
// issues from the same location keep their collection order.
func (r *Report) Sort() {
	sort.SliceStable(r.Issues, func(a, b int) bool {
		ia, ib := r.Issues[a], r.Issues[b]
		if ia.Unit != ib.Unit {
			return ia.Unit < ib.Unit
		}
		if ia.Line != ib.Line {
			return ia.Line < ib.Line
		}
		if ia.Col != ib.Col {
			return ia.Col < ib.Col
		}
		return ia.Path < ib.Path
	})
}

// WriteText renders the sorted report to w, one issue per line,
// followed by a summary line.
func (r *Report) WriteText(w io.Writer) error {
	r.Sort()
	for _, i := range r.Issues {
		if _, err := fmt.Fprintln(w, i.String()); err != nil {
			return err
		}
	}
	errs, warns := r.Counts()
	_, err := fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
	return err
}
