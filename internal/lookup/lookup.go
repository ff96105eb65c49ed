// Package lookup provides two read-only keyed tables with different miss
// policies. Total always yields a value; Partial reports misses to the caller.
package lookup

// Total is a keyed table that answers every query. Misses yield the fallback.
type Total[K comparable, V any] struct {
	index    map[K]V
	keys     []K
	fallback V
}

// NewTotal builds a Total table from entries in order. Later duplicates
// overwrite earlier values but keep the first position.
func NewTotal[K comparable, V any](entries []V, key func(V) K, fallback V) *Total[K, V] {
	t := &Total[K, V]{index: make(map[K]V, len(entries)), fallback: fallback}
	for _, e := range entries {
		k := key(e)
		if _, seen := t.index[k]; !seen {
			t.keys = append(t.keys, k)
		}
		t.index[k] = e
	}
	return t
}

// Get returns the value for k, or the fallback, and whether k was present.
func (t *Total[K, V]) Get(k K) (V, bool) {
	if v, ok := t.index[k]; ok {
		return v, true
	}
	return t.fallback, false
}

func (t *Total[K, V]) Fallback() V { return t.fallback }

func (t *Total[K, V]) Keys() []K { return append([]K(nil), t.keys...) }

func (t *Total[K, V]) Len() int { return len(t.keys) }

// Partial is a keyed table with no fallback.
type Partial[K comparable, V any] struct {
	index map[K]V
	keys  []K
}

func NewPartial[K comparable, V any](entries []V, key func(V) K) *Partial[K, V] {
	p := &Partial[K, V]{index: make(map[K]V, len(entries))}
	for _, e := range entries {
		k := key(e)
		if _, seen := p.index[k]; !seen {
			p.keys = append(p.keys, k)
		}
		p.index[k] = e
	}
	return p
}

func (p *Partial[K, V]) Get(k K) (V, bool) {
	v, ok := p.index[k]
	return v, ok
}

func (p *Partial[K, V]) Keys() []K { return append([]K(nil), p.keys...) }

func (p *Partial[K, V]) Len() int { return len(p.keys) }
