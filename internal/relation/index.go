package relation

// Index groups tuples of type T by a key of type K, built lazily by the
// iteration engine's join combinators. It is a plain secondary projection,
// never persisted on the Relation itself, since the same relation is keyed
// differently by different rules.
type Index[T any, K comparable] struct {
	buckets map[K][]T
}

// BuildIndex groups tuples by keyOf(tuple).
func BuildIndex[T any, K comparable](tuples []T, keyOf func(T) K) *Index[T, K] {
	idx := &Index[T, K]{buckets: make(map[K][]T)}
	for _, t := range tuples {
		k := keyOf(t)
		idx.buckets[k] = append(idx.buckets[k], t)
	}
	return idx
}

// Get returns every tuple indexed under k, or nil if there are none.
func (idx *Index[T, K]) Get(k K) []T { return idx.buckets[k] }
