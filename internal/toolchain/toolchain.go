// Package toolchain locates or extracts the Go compiler used to build
// pipeline binaries.
//
// Resolution policy: an embedded toolchain archive, when bundled, is
// extracted once into the cache root and reused; otherwise the system Go
// installation on PATH is used. Resolution happens once per invocation and
// the resulting descriptor is immutable.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pipet-dev/pipet/internal/config"
)

// Origin records where the resolved toolchain came from
type Origin string

const (
	OriginEmbedded Origin = "embedded"
	OriginSystem   Origin = "system"
)

// Descriptor describes a resolved, usable toolchain. Fingerprint feeds the
// build key so artifacts built by one toolchain are never served to
// another.
type Descriptor struct {
	// GoBin is the path to the go executable
	GoBin string

	// Root is the GOROOT for extracted toolchains, empty for system installs
	Root string

	// Fingerprint uniquely identifies this toolchain version
	Fingerprint string

	// Origin is embedded or system
	Origin Origin
}

// Error indicates no usable compiler could be produced. This is fatal and
// never retried.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("toolchain: %s: %v", e.Reason, e.Err)
	}

	return "toolchain: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolve produces a toolchain descriptor according to the configured mode.
// In auto mode the embedded archive is preferred and the system compiler is
// the fallback; forcing either mode makes its failure fatal.
func Resolve(ctx context.Context, mode, cacheRoot string, log zerolog.Logger) (*Descriptor, error) {
	switch mode {
	case config.ToolchainEmbedded:
		return resolveEmbedded(cacheRoot, log)

	case config.ToolchainSystem:
		return resolveSystem(ctx)

	default:
		if embeddedAvailable() {
			desc, err := resolveEmbedded(cacheRoot, log)
			if err == nil {
				return desc, nil
			}

			log.Debug().Err(err).Msg("embedded toolchain unusable, falling back to system go")
		}

		return resolveSystem(ctx)
	}
}

// resolveSystem locates a Go installation on PATH and verifies it runs.
// The `go version` output doubles as the toolchain fingerprint.
func resolveSystem(ctx context.Context) (*Descriptor, error) {
	goBin, err := exec.LookPath("go")
	if err != nil {
		return nil, &Error{
			Reason: "no go compiler found on PATH; install Go from https://go.dev/dl/ or use an embedded-toolchain build of pipet",
			Err:    err,
		}
	}

	out, err := exec.CommandContext(ctx, goBin, "version").Output()
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("%s is not a working go compiler", goBin), Err: err}
	}

	return &Descriptor{
		GoBin:       goBin,
		Fingerprint: strings.TrimSpace(string(out)),
		Origin:      OriginSystem,
	}, nil
}
