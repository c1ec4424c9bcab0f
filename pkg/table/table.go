package table

const (
	// TableSize is the number of slots of the marker array, one per
	// possible value of the 16-bit rolling prefix hash.
	TableSize = 1 << 16
)

const (
	none = iota
	// prefixMarker marks a slot reached by a proper prefix of some key.
	prefixMarker
	// keyMarker marks a slot reached by a complete key.
	keyMarker
)

// PrefixTable maps byte keys to values and answers the question
// "which stored keys are prefixes of this buffer?" in a single pass
// over the buffer.
//
// Every prefix of every inserted key is hashed into a fixed marker array.
// A walk over a buffer stops at the first prefix whose slot is empty, so
// buffers that share no leading bytes with any key are rejected after
// looking at a single byte. Hash collisions can only cause extra map
// lookups, never wrong answers, because matches are confirmed against
// the exact keys.
type PrefixTable[T any] struct {
	markers [TableSize]byte
	elems   map[string]T
	maxLen  int
}

// New returns an empty PrefixTable.
func New[T any]() *PrefixTable[T] {
	return &PrefixTable[T]{
		elems: make(map[string]T),
	}
}

func nextHash(h uint16, b byte) uint16 {
	return (h << 2) + uint16(b)
}

// Insert stores v under key, replacing any previous value.
// Empty keys are ignored.
func (t *PrefixTable[T]) Insert(key []byte, v T) {
	if len(key) == 0 {
		return
	}

	var h uint16
	for _, b := range key {
		h = nextHash(h, b)
		t.markers[h] = max(t.markers[h], prefixMarker)
	}
	t.markers[h] = keyMarker
	t.elems[string(key)] = v
	t.maxLen = max(t.maxLen, len(key))
}

// Get returns the value stored under key.
func (t *PrefixTable[T]) Get(key []byte) (T, bool) {
	v, found := t.elems[string(key)]
	return v, found
}

// Walk calls onMatch, shortest first, for every stored key that is a
// prefix of buf. Returning true from onMatch stops the walk.
func (t *PrefixTable[T]) Walk(buf []byte, onMatch func(key []byte, v T) bool) {
	if len(buf) > t.maxLen {
		buf = buf[:t.maxLen]
	}

	var h uint16
	for i, b := range buf {
		h = nextHash(h, b)

		switch t.markers[h] {
		case none:
			return
		case keyMarker:
			if v, ok := t.elems[string(buf[:i+1])]; ok && onMatch(buf[:i+1], v) {
				return
			}
		}
	}
}

// Longest returns the value of the longest stored key that is a prefix
// of buf, together with the length of that key.
func (t *PrefixTable[T]) Longest(buf []byte) (T, int, bool) {
	var (
		best  T
		n     int
		found bool
	)
	t.Walk(buf, func(key []byte, v T) bool {
		best, n, found = v, len(key), true
		return false
	})
	return best, n, found
}

// Size returns the number of stored keys.
func (t *PrefixTable[T]) Size() int {
	return len(t.elems)
}

// MaxKeyLen returns the length of the longest stored key.
func (t *PrefixTable[T]) MaxKeyLen() int {
	return t.maxLen
}
