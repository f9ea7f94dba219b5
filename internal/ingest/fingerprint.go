package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint digests a raw payload for change detection. Byte-identical
// content always produces the same fingerprint, so re-served publications
// short-circuit before any parse or load work.
func Fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
