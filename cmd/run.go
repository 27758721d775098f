package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipet-dev/pipet/internal/build"
	"github.com/pipet-dev/pipet/internal/cache"
	"github.com/pipet-dev/pipet/internal/codegen"
	"github.com/pipet-dev/pipet/internal/compiler"
	"github.com/pipet-dev/pipet/internal/config"
	"github.com/pipet-dev/pipet/internal/logging"
	"github.com/pipet-dev/pipet/internal/runner"
	"github.com/pipet-dev/pipet/internal/toolchain"
)

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("requires exactly one expression argument")
	}

	cfg, err := config.NewLoader().LoadForRun(cmd)
	if err != nil {
		return err
	}

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := codegen.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	expr := codegen.Expression{Text: args[0], Mode: mode}

	if showSource, _ := cmd.Flags().GetBool("source"); showSource {
		return printSource(expr)
	}

	log := logging.NewDefault(cfg.Verbose)

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return err
	}

	builder := &build.Builder{
		Cache: store,
		Resolve: func(ctx context.Context) (*toolchain.Descriptor, error) {
			return toolchain.Resolve(ctx, cfg.Toolchain, cfg.CacheDir, log)
		},
		Compile: compiler.New(cfg.CacheDir).Compile,
		Log:     log,
		NoCache: cfg.NoCache,
	}

	buildStart := time.Now()
	outcome, err := builder.Build(cmd.Context(), expr)
	if err != nil {
		return err
	}
	buildTime := time.Since(buildStart)

	log.Debug().Str("artifact", outcome.ArtifactPath).Bool("cache_hit", outcome.CacheHit).Msg("executing")

	execStart := time.Now()
	code, err := runner.Run(cmd.Context(), outcome.ArtifactPath, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	execTime := time.Since(execStart)

	if cfg.Stats {
		printStats(outcome, buildTime, execTime)
	}

	if code != 0 {
		os.Exit(code)
	}

	return nil
}

func printSource(expr codegen.Expression) error {
	src, err := codegen.Generate(expr)
	if err != nil {
		return err
	}

	fmt.Print(src.Text)
	return nil
}

func printStats(outcome *build.Outcome, buildTime, execTime time.Duration) {
	cacheState := "miss (compiled)"
	if outcome.CacheHit {
		cacheState = "hit (binary reused)"
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Statistics:")
	fmt.Fprintf(os.Stderr, "  Build time:     %v\n", buildTime)
	fmt.Fprintf(os.Stderr, "  Execution time: %v\n", execTime)
	fmt.Fprintf(os.Stderr, "  Cache:          %s\n", cacheState)
}
