package iteration

import "github.com/polonius-rs/polonius-go/internal/relation"

// RelationKeyset adapts a static relation.Relation[K] to the Keyset
// interface FromAntijoin needs, via binary search against its canonical
// order.
func RelationKeyset[K comparable](rel *relation.Relation[K], less func(a, b K) bool) Keyset[K] {
	return relationKeyset[K]{rel: rel, less: less}
}

type relationKeyset[K comparable] struct {
	rel  *relation.Relation[K]
	less func(a, b K) bool
}

func (r relationKeyset[K]) Has(k K) bool { return r.rel.Contains(k, r.less) }
