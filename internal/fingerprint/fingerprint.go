// Package fingerprint computes content and file fingerprints used for
// change detection and embedding-cache keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/kettleby/autoctx/pkg/types"
)

// Content returns the hex SHA-256 of b. Identical bytes always produce
// identical output across process restarts; the embedding cache and the
// change-detection logic rely on this.
func Content(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// File reads path and returns its content along with a file-level
// fingerprint. The fingerprint hash is content based, so edits within mtime
// granularity are still detected.
func File(path string) ([]byte, types.Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, types.Fingerprint{}, fmt.Errorf("stat file: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Fingerprint{}, fmt.Errorf("read file: %w", err)
	}

	fp := types.Fingerprint{
		Hash:    Content(content),
		ModTime: info.ModTime(),
		Size:    int64(len(content)),
	}
	return content, fp, nil
}
