package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prog8core/internal/diag"
	"prog8core/internal/value"
	"prog8core/internal/zp"
)

func TestAllocateZeropagePlacesFlaggedVariable(t *testing.T) {
	blk := NewProgramBlock("main")
	blk.Variables["x"] = &Variable{Name: "x", Type: value.UBYTE, ZeroPage: true}
	blk.Variables["y"] = &Variable{Name: "y", Type: value.UBYTE, ZeroPage: false}
	prog := &Program{Blocks: []*ProgramBlock{blk}}

	pool := zp.NewPool("full", nil)
	reporter := diag.NewReporter("test")
	AllocateZeropage(prog, pool, reporter)

	require.NotNil(t, blk.Variables["x"].Address)
	_, placed := blk.AllocatedZeropageVariables["x"]
	assert.True(t, placed)

	assert.Nil(t, blk.Variables["y"].Address)
	_, placedY := blk.AllocatedZeropageVariables["y"]
	assert.False(t, placedY)
	assert.False(t, reporter.HasErrors())
}

func TestAllocateZeropageWarnsOnDepletion(t *testing.T) {
	blk := NewProgramBlock("main")
	blk.Variables["a"] = &Variable{Name: "a", Type: value.UWORD, ZeroPage: true}
	blk.Variables["b"] = &Variable{Name: "b", Type: value.UWORD, ZeroPage: true}
	prog := &Program{Blocks: []*ProgramBlock{blk}}

	// A single 2-byte range only fits one word-wide variable.
	pool := zp.NewPool("full", []zp.Range{{Low: 0x02, High: 0xFF}})
	reporter := diag.NewReporter("test")
	AllocateZeropage(prog, pool, reporter)

	placedCount := len(blk.AllocatedZeropageVariables)
	assert.Equal(t, 1, placedCount)

	diags := reporter.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.WarnZeropageDepleted, diags[0].Code)
	assert.Equal(t, diag.SeverityWarning, diags[0].Severity)
}

func TestPoolReservedRangeExcluded(t *testing.T) {
	pool := zp.NewPool("full", []zp.Range{{Low: 0x00, High: 0xFE}})
	addr, err := pool.Allocate("only", value.UBYTE, nil)
	require.NoError(t, err)
	assert.Equal(t, 0xFF, addr)
}

func TestPoolDepletionReturnsErrDepleted(t *testing.T) {
	pool := zp.NewPool("full", []zp.Range{{Low: 0x01, High: 0xFF}})
	_, err := pool.Allocate("a", value.UBYTE, nil)
	require.NoError(t, err)
	_, err = pool.Allocate("b", value.UBYTE, nil)
	assert.ErrorIs(t, err, zp.ErrDepleted)
}
