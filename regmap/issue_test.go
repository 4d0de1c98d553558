package regmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue_String(t *testing.T) {
	i := Issue{
		Severity: SeverityError,
		Code:     CodeSyntax,
		Unit:     "uart.rd",
		Line:     3,
		Col:      7,
		Msg:      "expected '{', found '='",
	}
	assert.Equal(t, "uart.rd:3:7: error[syntax-error]: expected '{', found '='", i.String())

	// Model-level issues have no unit but carry the qualified path.
	v := Issue{
		Severity: SeverityError,
		Code:     CodeFieldOverlap,
		Path:     "UART.CTRL.MODE",
		Msg:      "field bits [3:1] overlap UART.CTRL.ENABLE bits [1:0]",
	}
	assert.Equal(t,
		"error[field-overlap]: field bits [3:1] overlap UART.CTRL.ENABLE bits [1:0] (UART.CTRL.MODE)",
		v.String())
}

func TestReport_HasErrorsAndCounts(t *testing.T) {
	var r Report
	assert.False(t, r.HasErrors())

	r.Add(Issue{Severity: SeverityWarning, Code: CodeAddressGap, Msg: "gap"})
	assert.False(t, r.HasErrors())

	r.Add(Issue{Severity: SeverityError, Code: CodeFieldOverlap, Msg: "overlap"})
	assert.True(t, r.HasErrors())

	errs, warns := r.Counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)
}

// TestReport_SortBySourceLocation verifies the terminal report is
// ordered by unit, then line, then column, so the user can fix issues
// in file order.
func TestReport_SortBySourceLocation(t *testing.T) {
	var r Report
	r.Add(
		Issue{Unit: "b.rd", Line: 5, Col: 1, Msg: "third"},
		Issue{Unit: "a.rd", Line: 9, Col: 2, Msg: "second"},
		Issue{Unit: "a.rd", Line: 2, Col: 4, Msg: "first"},
	)
	r.Sort()
	assert.Equal(t, "first", r.Issues[0].Msg)
	assert.Equal(t, "second", r.Issues[1].Msg)
	assert.Equal(t, "third", r.Issues[2].Msg)
}

func TestReport_WriteText(t *testing.T) {
	var r Report
	r.Add(
		Issue{Severity: SeverityError, Code: CodeSyntax, Unit: "a.rd", Line: 1, Col: 1, Msg: "bad"},
		Issue{Severity: SeverityWarning, Code: CodeAddressGap, Path: "UART.STAT", Msg: "gap"},
	)
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "a.rd:1:1: error[syntax-error]: bad")
	assert.Contains(t, out, "warning[address-gap]: gap (UART.STAT)")
	assert.Contains(t, out, "1 error(s), 1 warning(s)")
}
