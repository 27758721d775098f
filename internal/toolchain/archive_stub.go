//go:build !pipet_embedded

package toolchain

// embeddedArchive is empty in builds without a bundled toolchain; the
// pipet_embedded build tag swaps in the real archive.
var embeddedArchive []byte
