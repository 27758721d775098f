package cache

import "time"

// Entry is the metadata record kept alongside a cached artifact.
// The filesystem remains the source of truth for the artifact itself;
// entries exist for inspection (cache stats --verbose) and debugging.
type Entry struct {
	// Key is the build key this entry belongs to
	Key string `json:"key"`

	// Expression is the pipeline expression that produced the artifact
	Expression string `json:"expression"`

	// Mode is the input mode the expression was generated with
	Mode string `json:"mode"`

	// Fingerprint identifies the toolchain that compiled the artifact
	Fingerprint string `json:"fingerprint"`

	// Profile is the optimization profile used
	Profile string `json:"profile"`

	// Size is the artifact size in bytes
	Size int64 `json:"size"`

	// CompileTime is how long the compile took
	CompileTime time.Duration `json:"compile_time"`

	// CreatedAt is when the entry was stored
	CreatedAt time.Time `json:"created_at"`
}
