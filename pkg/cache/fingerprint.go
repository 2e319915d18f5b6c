package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/pario-ai/advisor/pkg/models"
)

// Fingerprint is the cache key of a request.
type Fingerprint string

// FingerprintOf hashes the request category and its normalized fields.
// Field order, surrounding whitespace, repeated inner whitespace and letter
// case do not affect the result.
func FingerprintOf(req models.Request) Fingerprint {
	fields := req.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(req.Category()))
	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write([]byte(normalize(fields[name])))
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

func normalize(v string) string {
	return strings.ToLower(strings.Join(strings.Fields(v), " "))
}
