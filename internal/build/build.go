// Package build orchestrates the generate → key → lookup → compile → store
// pipeline.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pipet-dev/pipet/internal/cache"
	"github.com/pipet-dev/pipet/internal/codegen"
	"github.com/pipet-dev/pipet/internal/compiler"
	"github.com/pipet-dev/pipet/internal/toolchain"
)

// CompileFunc compiles generated source with a resolved toolchain into
// workDir. It is a field rather than a hard call so tests can count and
// fake compiler invocations.
type CompileFunc func(ctx context.Context, src codegen.Source, tc *toolchain.Descriptor, workDir string) (*compiler.Result, error)

// ResolveFunc produces the toolchain descriptor for this invocation
type ResolveFunc func(ctx context.Context) (*toolchain.Descriptor, error)

// Builder wires the cache, toolchain and compiler into one build pipeline.
type Builder struct {
	Cache   *cache.Cache
	Resolve ResolveFunc
	Compile CompileFunc
	Log     zerolog.Logger

	// NoCache bypasses lookup; successful builds are still stored
	NoCache bool

	// resolved memoizes the toolchain for the life of the invocation
	resolved *toolchain.Descriptor
}

// Outcome describes a completed build.
type Outcome struct {
	Key          string
	ArtifactPath string
	Source       codegen.Source
	CacheHit     bool
	CompileTime  time.Duration
}

// Build produces a runnable artifact for the expression, compiling only on
// a cache miss. Cache write failures are recovered by rebuilding exactly
// once; compiler rejections surface as *compiler.CompileError and are
// never retried.
func (b *Builder) Build(ctx context.Context, expr codegen.Expression) (*Outcome, error) {
	src, err := codegen.Generate(expr)
	if err != nil {
		return nil, fmt.Errorf("internal error: source generation failed: %w", err)
	}

	tc, err := b.toolchain(ctx)
	if err != nil {
		return nil, err
	}

	key := cache.Key([]byte(src.Text), tc.Fingerprint, compiler.Profile)

	if !b.NoCache {
		if path, ok := b.Cache.Lookup(key); ok {
			b.Log.Debug().Str("key", key[:12]).Msg("cache hit")
			return &Outcome{Key: key, ArtifactPath: path, Source: src, CacheHit: true}, nil
		}
	}

	b.Log.Debug().Str("key", key[:12]).Str("toolchain", string(tc.Origin)).Msg("cache miss, compiling")

	var storeErr error
	for attempt := 0; attempt < 2; attempt++ {
		outcome, err := b.compileAndStore(ctx, expr, src, tc, key)
		if err == nil {
			return outcome, nil
		}

		var cacheErr *cache.Error
		if !errors.As(err, &cacheErr) {
			return nil, err
		}

		storeErr = err
		b.Log.Warn().Err(err).Msg("cache write failed, rebuilding once")
	}

	return nil, fmt.Errorf("cache failed twice for key %s: %w", key[:12], storeErr)
}

func (b *Builder) compileAndStore(ctx context.Context, expr codegen.Expression, src codegen.Source, tc *toolchain.Descriptor, key string) (*Outcome, error) {
	workDir, err := os.MkdirTemp("", "pipet-build-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create build directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	result, err := b.Compile(ctx, src, tc, workDir)
	if err != nil {
		return nil, err
	}

	if !result.OK() {
		return nil, &compiler.CompileError{Expression: expr.Text, Diagnostics: result.Diagnostics}
	}

	meta := cache.Entry{
		Expression:  expr.Text,
		Mode:        expr.Mode.String(),
		Fingerprint: tc.Fingerprint,
		Profile:     compiler.Profile,
		CompileTime: result.Duration,
	}

	if err := b.Cache.Store(key, result.ArtifactPath, src.Text, meta); err != nil {
		return nil, err
	}

	path, ok := b.Cache.Lookup(key)
	if !ok {
		return nil, &cache.Error{Op: "verify", Err: fmt.Errorf("stored artifact failed validation")}
	}

	b.Log.Debug().Dur("compile_time", result.Duration).Msg("compiled and cached")

	return &Outcome{
		Key:          key,
		ArtifactPath: path,
		Source:       src,
		CompileTime:  result.Duration,
	}, nil
}

func (b *Builder) toolchain(ctx context.Context) (*toolchain.Descriptor, error) {
	if b.resolved != nil {
		return b.resolved, nil
	}

	tc, err := b.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	b.resolved = tc
	return tc, nil
}
