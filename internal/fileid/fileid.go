// Package fileid derives stable document IDs and processed-text file names from source paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const prefix = "pdf:"

func sum(path string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return hex.EncodeToString(hash[:])
}

// DocID returns a stable document ID for the given absolute path.
// Re-ingesting the same path replaces the same document.
func DocID(absolutePath string) string {
	return prefix + sum(absolutePath)
}

// ProcessedFileName returns the file name used for the processed text of
// absolutePath: the source stem plus a short path hash, so equally named
// files in different directories do not collide.
func ProcessedFileName(absolutePath string) string {
	base := filepath.Base(filepath.Clean(absolutePath))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "-" + sum(absolutePath)[:12] + ".txt"
}
