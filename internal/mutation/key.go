package mutation

import (
	"bytes"
	"fmt"
	"hash/fnv"
)

// Key is a decorated partition key: the raw key bytes plus the partitioner
// token derived from them. Keys order by token first, raw bytes second, which
// is the ring order every reader in this module emits partitions in.
type Key struct {
	token uint64
	raw   []byte
}

// NewKey decorates raw partition key bytes with their token.
func NewKey(raw []byte) Key {
	h := fnv.New64a()
	h.Write(raw)
	return Key{token: h.Sum64(), raw: raw}
}

func (k Key) Token() uint64 { return k.token }
func (k Key) Raw() []byte   { return k.raw }

// Compare orders keys in ring order: token, then raw bytes as a tiebreak.
func (k Key) Compare(other Key) int {
	switch {
	case k.token < other.token:
		return -1
	case k.token > other.token:
		return 1
	}
	return bytes.Compare(k.raw, other.raw)
}

// Equal reports whether both keys decorate the same raw bytes.
func (k Key) Equal(other Key) bool {
	return k.token == other.token && bytes.Equal(k.raw, other.raw)
}

func (k Key) String() string {
	return fmt.Sprintf("%q@%d", k.raw, k.token)
}
