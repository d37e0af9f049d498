package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolver/games/kuhn"
	"github.com/lox/cfrsolver/games/leduc"
	"github.com/lox/cfrsolver/games/rps"
	"github.com/lox/cfrsolver/sdk/cfr"
)

var cli struct {
	Debug  bool   `help:"enable debug logging"`
	Config string `help:"path to an HCL run config; CLI flags override it" default:"solver.hcl"`

	Game          string  `help:"game to solve (rps|kuhn|leduc)"`
	Variant       string  `help:"CFR variant (vanilla|linear|cfr+|dcfr)"`
	Method        string  `help:"full|montecarlo"`
	Sampling      string  `help:"external|outcome|chance; only used when method=montecarlo"`
	Iterations    int     `help:"number of iterations"`
	Workers       int     `help:"number of concurrent workers"`
	Seed          int     `help:"PRNG seed"`
	ProgressEvery int     `help:"log progress every N iterations (0 disables)" default:"-1"`
	DCFRAlpha     float64 `help:"DCFR alpha exponent"`
	DCFRBeta      float64 `help:"DCFR beta exponent"`
	DCFRGamma     float64 `help:"DCFR gamma exponent"`
}

var games = map[string]func() cfr.StateGame{
	"rps":   func() cfr.StateGame { return rps.New() },
	"kuhn":  func() cfr.StateGame { return kuhn.New() },
	"leduc": func() cfr.StateGame { return leduc.New() },
}

func main() {
	kong.Parse(&cli,
		kong.Name("solver"),
		kong.Description("CFR/MCCFR solver for small extensive-form games"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	if err := run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

// resolved layers a field from three sources, in priority order: an explicit
// CLI flag, the HCL run config, then a hardcoded fallback. "Unset" for a CLI
// flag or a file field is its zero value, so an explicit zero on the command
// line cannot override a non-zero value from the file.
func resolvedString(cliVal, fileVal, fallback string) string {
	if cliVal != "" {
		return cliVal
	}
	if fileVal != "" {
		return fileVal
	}
	return fallback
}

func resolvedInt(cliVal, fileVal, fallback int) int {
	if cliVal != 0 {
		return cliVal
	}
	if fileVal != 0 {
		return fileVal
	}
	return fallback
}

func resolvedFloat(cliVal, fileVal, fallback float64) float64 {
	if cliVal != 0 {
		return cliVal
	}
	if fileVal != 0 {
		return fileVal
	}
	return fallback
}

func run(ctx context.Context) error {
	fileCfg, err := LoadRunConfig(cli.Config)
	if err != nil {
		return err
	}

	gameName := resolvedString(cli.Game, fileCfg.Game, "kuhn")
	variantName := resolvedString(cli.Variant, fileCfg.Variant, "vanilla")
	methodName := resolvedString(cli.Method, fileCfg.Method, "full")
	samplingName := resolvedString(cli.Sampling, fileCfg.Sampling, "external")
	iterations := resolvedInt(cli.Iterations, fileCfg.Iterations, 10000)
	workers := resolvedInt(cli.Workers, fileCfg.Workers, 1)
	seed := resolvedInt(cli.Seed, fileCfg.Seed, 1)
	progressEvery := cli.ProgressEvery
	if progressEvery < 0 {
		progressEvery = iterations / 10
	}
	alpha := resolvedFloat(cli.DCFRAlpha, fileCfg.DCFRAlpha, 1.5)
	beta := resolvedFloat(cli.DCFRBeta, fileCfg.DCFRBeta, 0)
	gamma := resolvedFloat(cli.DCFRGamma, fileCfg.DCFRGamma, 2)

	factory, ok := games[gameName]
	if !ok {
		return fmt.Errorf("unknown game %q (want rps, kuhn, or leduc)", gameName)
	}
	game := factory()

	variant, err := parseVariant(variantName)
	if err != nil {
		return err
	}
	method, err := parseMethod(methodName)
	if err != nil {
		return err
	}
	sampling, err := parseSampling(samplingName)
	if err != nil {
		return err
	}

	log.Info().Str("game", gameName).Str("variant", variant.String()).Str("method", method.String()).Int("iterations", iterations).Msg("building tree")

	tree := cfr.Build(game)

	cfg := cfr.SolverConfig{
		Variant:       variant,
		DCFR:          cfr.DCFRParams{Alpha: alpha, Beta: beta, Gamma: gamma},
		Method:        method,
		Sampling:      sampling,
		Iterations:    iterations,
		Workers:       workers,
		Seed:          uint64(seed),
		PruneEpsilon:  1e-6,
		ProgressEvery: progressEvery,
	}

	sv, err := cfr.NewSolver(tree, cfg)
	if err != nil {
		return fmt.Errorf("build solver: %w", err)
	}

	monitor := func(p cfr.Progress) {
		log.Info().
			Int("iteration", p.Iteration).
			Int("target", p.Target).
			Int("infosets", p.InfoSets).
			Dur("elapsed", p.Elapsed).
			Msg("progress")
	}

	if err := sv.Run(ctx, monitor); err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	strategy := cfr.BuildStrategy(tree, sv.Table(), uint64(seed))
	expl := cfr.Exploitability(tree, game, strategy)

	log.Info().
		Int("infosets", strategy.Size()).
		Float64("exploitability", expl).
		Msg("solve complete")
	return nil
}
