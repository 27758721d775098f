package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key computes the build key for a generated program.
//
// The digest covers the full source bytes, the resolved toolchain
// fingerprint and the optimization profile. Folding the toolchain and
// profile into the key means a compiler upgrade or flag change can never
// serve a stale, incompatible binary: the key simply misses.
func Key(source []byte, fingerprint, profile string) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(profile))

	return hex.EncodeToString(h.Sum(nil))
}
