package iteration

// FromMap appends f(t) to dst for every tuple t in src's most recent round.
func FromMap[S comparable, T comparable](dst *Variable[T], src *Variable[S], f func(S) T) {
	for _, s := range src.Recent() {
		dst.stage(f(s))
	}
}

// FromJoin computes the inner join of a and b on their shared key, appending
// f(key, va, vb) for every matching pair. It considers
// (a.recent ⋈ b.stable) ∪ (a.stable ⋈ b.recent) ∪ (a.recent ⋈ b.recent) so
// that every new pairing is produced exactly once across rounds, whether a
// and b are distinct variables or the same variable joined with itself.
func FromJoin[K comparable, VA comparable, VB comparable, T comparable](
	dst *Variable[T],
	a *Variable[KV[K, VA]],
	b *Variable[KV[K, VB]],
	f func(k K, va VA, vb VB) T,
) {
	bStable := indexKV(b.Stable())
	bRecent := indexKV(b.Recent())
	aStable := indexKV(a.Stable())

	for _, av := range a.Recent() {
		for _, vb := range bStable.Get(av.Key) {
			dst.stage(f(av.Key, av.Val, vb))
		}
		for _, vb := range bRecent.Get(av.Key) {
			dst.stage(f(av.Key, av.Val, vb))
		}
	}
	for _, bv := range b.Recent() {
		for _, va := range aStable.Get(bv.Key) {
			dst.stage(f(bv.Key, va, bv.Val))
		}
	}
}

// FromAntijoin appends f(key, val) for every (key, val) in a's most recent
// round whose key is absent from the static relation keys.
func FromAntijoin[K comparable, V comparable, T comparable](
	dst *Variable[T],
	a *Variable[KV[K, V]],
	keys Keyset[K],
	f func(k K, v V) T,
) {
	for _, av := range a.Recent() {
		if !keys.Has(av.Key) {
			dst.stage(f(av.Key, av.Val))
		}
	}
}

// Keyset is a static set of keys an antijoin tests membership against. It
// is satisfied by relation.Relation[K] (via its Contains method, adapted by
// RelationKeyset in relation_adapter.go) and by a plain map for ad hoc
// exclusion sets.
type Keyset[K comparable] interface {
	Has(K) bool
}

// MapKeyset adapts a Go map to Keyset.
type MapKeyset[K comparable] map[K]struct{}

// Has reports whether k is a member.
func (m MapKeyset[K]) Has(k K) bool { _, ok := m[k]; return ok }

func indexKV[K comparable, V comparable](tuples []KV[K, V]) *kvIndex[K, V] {
	idx := &kvIndex[K, V]{buckets: make(map[K][]V)}
	for _, t := range tuples {
		idx.buckets[t.Key] = append(idx.buckets[t.Key], t.Val)
	}
	return idx
}

type kvIndex[K comparable, V comparable] struct {
	buckets map[K][]V
}

func (idx *kvIndex[K, V]) Get(k K) []V { return idx.buckets[k] }
