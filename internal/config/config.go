// Package config holds the compiler options threaded through a pipeline
// run: target dialect, zero-page allocation profile, and which optional
// passes the driver runs. Spec.md §9 names these explicitly ("pass the
// namespace, heap, compiler options, and error accumulator explicitly to
// every pass"); in-source `%option` directives (e.g. `enable_floats`) remain
// the checker's own concern (internal/check reads them off the AST
// directly) — this package covers the driver-level options that exist
// before any AST is even loaded.
//
// No example repo in the pack carries a config-file library (no koanf, no
// viper); loading is deliberately kept on stdlib encoding/json, matching the
// teacher's own preference for small, explicit structs over a framework
// wherever the concern is this narrow.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"prog8core/internal/zp"
)

// Options is the full set of driver-level compiler options.
type Options struct {
	// TargetDialect names the platform the IR is ultimately destined for
	// (e.g. "c64", "c128", "cx16"). This core does not branch on it today,
	// but carries it through so a downstream code generator can.
	TargetDialect string `json:"target_dialect"`

	// ZeroPageProfile selects one of zp.Profile's named ranges.
	ZeroPageProfile string `json:"zeropage_profile"`

	// ZpReserved lists additional zero-page ranges to exclude, on top of
	// whatever the source's own `%zpreserved` directives name.
	ZpReserved []zp.Range `json:"zp_reserved,omitempty"`

	// RunOptimizer toggles the expression/statement optimizer fixed-point
	// loop (internal/optimize.Pipeline). Disabling it is useful for
	// inspecting the checker's view of the unoptimized tree.
	RunOptimizer bool `json:"run_optimizer"`

	// RunPeephole toggles the IR peephole pass after lowering.
	RunPeephole bool `json:"run_peephole"`

	// EmitIRText selects whether the driver prints the textual IR form
	// (internal/irtext) in addition to running the pipeline.
	EmitIRText bool `json:"emit_ir_text"`
}

// Default returns the options a bare invocation should use.
func Default() Options {
	return Options{
		TargetDialect:   "c64",
		ZeroPageProfile: "basicsafe",
		RunOptimizer:    true,
		RunPeephole:     true,
		EmitIRText:      true,
	}
}

// Load reads Options from a JSON file at path, filling in Default() for any
// field the file omits by unmarshaling onto a pre-populated struct.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: invalid options file %s: %w", path, err)
	}
	if _, ok := zp.Profile[opts.ZeroPageProfile]; !ok {
		return Options{}, fmt.Errorf("config: unknown zeropage_profile %q", opts.ZeroPageProfile)
	}
	return opts, nil
}

// Save writes opts to path as indented JSON.
func Save(path string, opts Options) error {
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
