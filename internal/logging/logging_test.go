package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_VerboseEmitsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true)

	log.Debug().Msg("resolving toolchain")

	assert.Contains(t, buf.String(), "resolving toolchain")
}

func TestNew_QuietSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Debug().Msg("hidden")
	log.Info().Msg("also hidden")

	assert.Empty(t, buf.String())
}

func TestNew_WarningsAlwaysEmitted(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Warn().Msg("cache write failed")

	assert.Contains(t, buf.String(), "cache write failed")
}

func TestNop_EmitsNothing(t *testing.T) {
	log := Nop()

	// Must not panic and must stay silent at every level
	log.Debug().Msg("x")
	log.Error().Msg("x")
}
