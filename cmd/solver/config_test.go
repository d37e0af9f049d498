package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/cfrsolver/sdk/cfr"
)

func TestLoadRunConfigMissingFileReturnsEmptyConfigNotError(t *testing.T) {
	cfg, err := LoadRunConfig(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	if err != nil {
		t.Fatalf("LoadRunConfig() error = %v, want nil", err)
	}
	if cfg.Game != "" || cfg.Iterations != 0 {
		t.Errorf("LoadRunConfig() on missing file = %+v, want zero value", cfg)
	}
}

func TestLoadRunConfigParsesWellFormedHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.hcl")
	writeFile(t, path, `
game       = "leduc"
variant    = "dcfr"
method     = "montecarlo"
sampling   = "outcome"
iterations = 50000
workers    = 4
seed       = 7
dcfr_alpha = 1.5
dcfr_beta  = 0
dcfr_gamma = 2
`)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig() error = %v", err)
	}
	if cfg.Game != "leduc" {
		t.Errorf("Game = %q, want leduc", cfg.Game)
	}
	if cfg.Iterations != 50000 {
		t.Errorf("Iterations = %d, want 50000", cfg.Iterations)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
}

func TestLoadRunConfigRejectsMalformedHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.hcl")
	writeFile(t, path, `this is not valid hcl {{{`)

	if _, err := LoadRunConfig(path); err == nil {
		t.Error("LoadRunConfig() on malformed file: want error, got nil")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    cfr.Variant
		wantErr bool
	}{
		{"", cfr.Vanilla, false},
		{"vanilla", cfr.Vanilla, false},
		{"linear", cfr.Linear, false},
		{"cfr+", cfr.CFRPlus, false},
		{"dcfr", cfr.DCFR, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := parseVariant(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVariant(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseVariant(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    cfr.Method
		wantErr bool
	}{
		{"", cfr.FullTraversal, false},
		{"full", cfr.FullTraversal, false},
		{"montecarlo", cfr.MonteCarlo, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSampling(t *testing.T) {
	tests := []struct {
		in      string
		want    cfr.Sampling
		wantErr bool
	}{
		{"", cfr.External, false},
		{"external", cfr.External, false},
		{"outcome", cfr.Outcome, false},
		{"chance", cfr.Chance, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSampling(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSampling(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseSampling(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolvedStringPrefersCLIThenFileThenFallback(t *testing.T) {
	if got := resolvedString("cli", "file", "fallback"); got != "cli" {
		t.Errorf("resolvedString = %q, want cli", got)
	}
	if got := resolvedString("", "file", "fallback"); got != "file" {
		t.Errorf("resolvedString = %q, want file", got)
	}
	if got := resolvedString("", "", "fallback"); got != "fallback" {
		t.Errorf("resolvedString = %q, want fallback", got)
	}
}

func TestResolvedIntAndFloatPrecedence(t *testing.T) {
	if got := resolvedInt(5, 10, 15); got != 5 {
		t.Errorf("resolvedInt = %d, want 5", got)
	}
	if got := resolvedInt(0, 10, 15); got != 10 {
		t.Errorf("resolvedInt = %d, want 10", got)
	}
	if got := resolvedInt(0, 0, 15); got != 15 {
		t.Errorf("resolvedInt = %d, want 15", got)
	}
	if got := resolvedFloat(0, 0, 1.5); got != 1.5 {
		t.Errorf("resolvedFloat = %v, want 1.5", got)
	}
}
