package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Store is a TTL-keyed persisted key/value store.
//
// Get returns absent for missing or expired entries; expired entries are
// only removed by EvictOlderThan. Implementations must be safe for
// concurrent Get/Put, with last writer winning per key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	EvictOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// Key derives a deterministic cache key from an operation name and its
// ordered arguments.
func Key(op string, args ...string) string {
	var b strings.Builder
	b.WriteString(op)
	for _, a := range args {
		b.WriteByte('|')
		b.WriteString(a)
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// KeyWith derives a key from an operation, ordered arguments, and
// keyword-style arguments. Keyword arguments are hashed in sorted key
// order so call-site ordering never changes the key.
func KeyWith(op string, args []string, kwargs map[string]string) string {
	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(args)+len(names))
	parts = append(parts, args...)
	for _, name := range names {
		parts = append(parts, name+"="+kwargs[name])
	}
	return Key(op, parts...)
}
