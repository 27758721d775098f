//go:build pipet_embedded

package toolchain

import _ "embed"

// toolchain.zip is produced by the release packaging and contains a full
// Go distribution plus a checksums.txt manifest.
//
//go:embed toolchain.zip
var embeddedArchive []byte
