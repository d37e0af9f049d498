package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/cfrsolver/sdk/cfr"
)

// RunConfig is the file-based overlay for a solving run: every field mirrors
// a CLI flag, and flags always win when both are set. This lets a shared
// run definition (game, variant, iteration budget) live in version control
// while still allowing ad-hoc overrides from the command line.
type RunConfig struct {
	Game       string  `hcl:"game,optional"`
	Variant    string  `hcl:"variant,optional"`
	Method     string  `hcl:"method,optional"`
	Sampling   string  `hcl:"sampling,optional"`
	Iterations int     `hcl:"iterations,optional"`
	Workers    int     `hcl:"workers,optional"`
	Seed       int     `hcl:"seed,optional"`
	DCFRAlpha  float64 `hcl:"dcfr_alpha,optional"`
	DCFRBeta   float64 `hcl:"dcfr_beta,optional"`
	DCFRGamma  float64 `hcl:"dcfr_gamma,optional"`
}

// LoadRunConfig reads an HCL run definition from path. A missing file is not
// an error: callers fall back to CLI flags and built-in defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &RunConfig{}, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	var cfg RunConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", path, diags.Error())
	}
	return &cfg, nil
}

func parseVariant(s string) (cfr.Variant, error) {
	switch s {
	case "", "vanilla":
		return cfr.Vanilla, nil
	case "linear":
		return cfr.Linear, nil
	case "cfr+":
		return cfr.CFRPlus, nil
	case "dcfr":
		return cfr.DCFR, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", s)
	}
}

func parseMethod(s string) (cfr.Method, error) {
	switch s {
	case "", "full":
		return cfr.FullTraversal, nil
	case "montecarlo":
		return cfr.MonteCarlo, nil
	default:
		return 0, fmt.Errorf("unknown method %q", s)
	}
}

func parseSampling(s string) (cfr.Sampling, error) {
	switch s {
	case "", "external":
		return cfr.External, nil
	case "outcome":
		return cfr.Outcome, nil
	case "chance":
		return cfr.Chance, nil
	default:
		return 0, fmt.Errorf("unknown sampling mode %q", s)
	}
}
