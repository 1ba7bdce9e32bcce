package utils

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULIDFromTimestamp builds a lexicographically sortable record ID whose
// leading bits encode the supplied timestamp.
func NewULIDFromTimestamp(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
