package toolchain

import (
	"archive/zip"
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pipet-dev/pipet/internal/fsutil"
)

// manifestName is the checksum manifest the archive must carry. Each line
// is "<sha256-hex>  <relative path>"; at minimum bin/go must be listed.
const manifestName = "checksums.txt"

// embeddedAvailable reports whether this build carries a toolchain archive
func embeddedAvailable() bool {
	return len(embeddedArchive) > 0
}

// resolveEmbedded extracts the embedded archive into the cache root if it
// is not already extracted, verifying integrity, and returns a descriptor
// pointing at the extracted compiler. Extraction is keyed by the archive's
// own checksum so upgraded builds extract beside older ones instead of
// corrupting them.
func resolveEmbedded(cacheRoot string, log zerolog.Logger) (*Descriptor, error) {
	if !embeddedAvailable() {
		return nil, &Error{Reason: "this build of pipet does not bundle a toolchain"}
	}

	digest := sha256.Sum256(embeddedArchive)
	hexDigest := hex.EncodeToString(digest[:])

	parent := filepath.Join(cacheRoot, "toolchain")
	dest := filepath.Join(parent, hexDigest[:12])

	if _, err := os.Stat(dest); os.IsNotExist(err) {
		log.Info().Msg("first run: extracting embedded toolchain")

		if err := extract(parent, dest); err != nil {
			return nil, err
		}

		log.Info().Str("dir", dest).Msg("toolchain ready")
	}

	goBin := filepath.Join(dest, "bin", "go")
	info, err := os.Stat(goBin)
	if err != nil || info.Mode().Perm()&0o111 == 0 {
		return nil, &Error{Reason: "extracted toolchain has no usable go binary", Err: err}
	}

	return &Descriptor{
		GoBin:       goBin,
		Root:        dest,
		Fingerprint: "embedded:" + hexDigest,
		Origin:      OriginEmbedded,
	}, nil
}

// extract unpacks the archive into a staging directory and atomically
// renames it to dest, so a concurrent extraction cannot corrupt the result.
func extract(parent, dest string) error {
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return &Error{Reason: "failed to create toolchain directory", Err: err}
	}

	staging, err := os.MkdirTemp(parent, ".extract-*")
	if err != nil {
		return &Error{Reason: "failed to create staging directory", Err: err}
	}
	defer os.RemoveAll(staging)

	reader, err := zip.NewReader(bytes.NewReader(embeddedArchive), int64(len(embeddedArchive)))
	if err != nil {
		return &Error{Reason: "embedded toolchain archive is corrupt", Err: err}
	}

	for _, file := range reader.File {
		if err := extractFile(file, staging); err != nil {
			return &Error{Reason: "failed to extract " + file.Name, Err: err}
		}
	}

	if err := verifyExtracted(staging); err != nil {
		return err
	}

	goBin := filepath.Join(staging, "bin", "go")
	if err := os.Chmod(goBin, 0o755); err != nil {
		return &Error{Reason: "failed to mark go binary executable", Err: err}
	}

	if err := fsutil.PublishDir(staging, dest); err != nil {
		return &Error{Reason: "failed to publish toolchain", Err: err}
	}

	return nil
}

func extractFile(file *zip.File, dest string) error {
	// Reject entries that would escape the destination
	path := filepath.Join(dest, file.Name)
	if !strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal path in archive: %s", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// verifyExtracted checks the extracted tree against the archive's checksum
// manifest. The go binary itself must be listed and match.
func verifyExtracted(dir string) error {
	manifest, err := os.Open(filepath.Join(dir, manifestName))
	if err != nil {
		return &Error{Reason: "embedded toolchain has no checksum manifest", Err: err}
	}
	defer manifest.Close()

	verifiedGo := false

	scanner := bufio.NewScanner(manifest)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		want, name, ok := strings.Cut(line, "  ")
		if !ok {
			return &Error{Reason: "malformed checksum manifest line: " + line}
		}

		got, err := hashFile(filepath.Join(dir, name))
		if err != nil {
			return &Error{Reason: "failed to verify " + name, Err: err}
		}

		if got != want {
			return &Error{Reason: "checksum mismatch for " + name}
		}

		if name == filepath.Join("bin", "go") || name == "bin/go" {
			verifiedGo = true
		}
	}
	if err := scanner.Err(); err != nil {
		return &Error{Reason: "failed to read checksum manifest", Err: err}
	}

	if !verifiedGo {
		return &Error{Reason: "checksum manifest does not cover bin/go"}
	}

	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
