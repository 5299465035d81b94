package iteration

// Leaper is one term of a leapjoin: either a candidate-value source
// (extend_with/extend_anti) or a pure filter over a (source tuple,
// candidate value) pair (filter_with/filter_anti/value_filter). See
// FromLeapjoin for how the five kinds described by the fact engine's
// design map onto this single type.
type Leaper[S comparable, V comparable] struct {
	isExtend bool
	extend   func(S) []V
	filter   func(S, V) bool
}

// ExtendWith requires at least one matching tuple in a static relation keyed
// by extend(s), yielding every such value as a join candidate.
func ExtendWith[S comparable, V comparable](extend func(S) []V) Leaper[S, V] {
	return Leaper[S, V]{isExtend: true, extend: extend}
}

// ExtendAnti vetoes a candidate v if the same relation an ExtendWith would
// have drawn candidates from already contains (extend(s), v): it shares
// extend's candidate-producing closure, but uses it to rule a value out
// instead of proposing it.
func ExtendAnti[S comparable, V comparable](extend func(S) []V) Leaper[S, V] {
	return Leaper[S, V]{filter: func(s S, v V) bool { return !containsValue(extend(s), v) }}
}

// FilterWith requires the exact (s, v) pair to be present, as tested by present.
func FilterWith[S comparable, V comparable](present func(S, V) bool) Leaper[S, V] {
	return Leaper[S, V]{filter: present}
}

// FilterAnti requires the exact (s, v) pair to be absent, as tested by present.
func FilterAnti[S comparable, V comparable](present func(S, V) bool) Leaper[S, V] {
	return Leaper[S, V]{filter: func(s S, v V) bool { return !present(s, v) }}
}

// ValueFilter drops (s, v) pairs failing a pure predicate.
func ValueFilter[S comparable, V comparable](pred func(S, V) bool) Leaper[S, V] {
	return Leaper[S, V]{filter: pred}
}

// FromLeapjoin is a multi-way join of src against several static leapers.
// Among the extend_with leapers, the one yielding the fewest candidates for
// a given source tuple drives the inner loop (the selectivity heuristic the
// design calls out as load-bearing for cost, not just correctness); the
// other extend_with leapers are applied as membership filters over the
// chosen candidates, alongside every extend_anti/filter_with/filter_anti/
// value_filter leaper. f is invoked once per surviving (s, v) pair.
func FromLeapjoin[S comparable, V comparable, T comparable](
	dst *Variable[T],
	src *Variable[S],
	leapers []Leaper[S, V],
	f func(s S, v V) T,
) {
	var extenders []Leaper[S, V]
	var filters []Leaper[S, V]
	for _, l := range leapers {
		if l.isExtend {
			extenders = append(extenders, l)
		} else {
			filters = append(filters, l)
		}
	}
	if len(extenders) == 0 {
		return
	}

	for _, s := range src.Recent() {
		driverIdx := 0
		candidates := extenders[0].extend(s)
		for i := 1; i < len(extenders); i++ {
			c := extenders[i].extend(s)
			if len(c) < len(candidates) {
				candidates = c
				driverIdx = i
			}
		}
		for _, v := range candidates {
			if !surviveLeapjoin(s, v, extenders, driverIdx, filters) {
				continue
			}
			dst.stage(f(s, v))
		}
	}
}

func surviveLeapjoin[S comparable, V comparable](s S, v V, extenders []Leaper[S, V], driverIdx int, filters []Leaper[S, V]) bool {
	for i, e := range extenders {
		if i == driverIdx {
			continue
		}
		if !containsValue(e.extend(s), v) {
			return false
		}
	}
	for _, flt := range filters {
		if !flt.filter(s, v) {
			return false
		}
	}
	return true
}

func containsValue[V comparable](vs []V, v V) bool {
	for _, c := range vs {
		if c == v {
			return true
		}
	}
	return false
}
