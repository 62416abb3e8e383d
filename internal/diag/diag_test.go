package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prog8core/internal/value"
)

func TestReporterSuppressesDuplicates(t *testing.T) {
	r := NewReporter("prog")
	d := NewError(KindName, ErrUndefinedName, "undefined name 'x'", value.Position{Line: 1, Column: 1}).Build()
	r.Add(d)
	r.Add(d)
	assert.Len(t, r.Diagnostics(), 1)
}

func TestHasErrorsIgnoresWarnings(t *testing.T) {
	r := NewReporter("prog")
	r.Add(NewWarning(WarnEmptyForBody, "empty for body", value.Position{}).Build())
	assert.False(t, r.HasErrors())
	r.Add(NewError(KindSyntax, ErrModuleStructure, "missing main block", value.Position{}).Build())
	assert.True(t, r.HasErrors())
	assert.Len(t, r.Errors(), 1)
}

func TestFormatIncludesSummaryLine(t *testing.T) {
	r := NewReporter("prog")
	r.Add(NewError(KindName, ErrUndefinedName, "undefined name 'x'", value.Position{Line: 2, Column: 3}).Build())
	out := r.Format()
	assert.Contains(t, out, "E0001")
	assert.Contains(t, out, "There are 1 errors in module")
}
