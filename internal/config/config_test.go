package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValidProfile(t *testing.T) {
	d := Default()
	assert.Equal(t, "basicsafe", d.ZeroPageProfile)
	assert.True(t, d.RunOptimizer)
	assert.True(t, d.RunPeephole)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.json")

	want := Default()
	want.TargetDialect = "cx16"
	want.ZeroPageProfile = "floatsafe"
	want.RunPeephole = false

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"target_dialect": "c128"}`), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "c128", got.TargetDialect)
	assert.Equal(t, "basicsafe", got.ZeroPageProfile) // untouched field keeps its default
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"zeropage_profile": "not-a-profile"}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
