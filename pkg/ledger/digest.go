package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Digest computes the SHA-256 integrity fingerprint over the canonical
// serialization of the entities: names joined by "|", then every history
// slot entity-major/date-minor joined by ",", the halves joined by ":".
// Present scores render with exactly one decimal, absent slots as "null".
// The same string is rebuilt by external verifiers of the published JSON,
// so the format is frozen.
func Digest(models []*Entity) string {
	var names []string
	var scores []string
	for _, m := range models {
		names = append(names, m.Name)
		for _, s := range m.Scores {
			if s == nil {
				scores = append(scores, "null")
			} else {
				scores = append(scores, strconv.FormatFloat(*s, 'f', 1, 64))
			}
		}
	}

	canonical := strings.Join(names, "|") + ":" + strings.Join(scores, ",")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
