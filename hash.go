package docbase

import (
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashContent computes the dedup hash for document content.
// Whitespace runs are collapsed first so that insignificant formatting
// changes between re-scrapes do not defeat deduplication.
func HashContent(content string) string {
	h := xxhash.Sum64String(normalizeForHash(content))
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

func normalizeForHash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
