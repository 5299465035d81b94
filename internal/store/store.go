package store

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/polonius-rs/polonius-go/internal/relation"
)

// FactStore holds every relation a pipeline run touches, keyed by its
// canonical name. Relations are written once per run: a unit that computes
// a relation another unit (or an earlier stage of the same Compare run)
// already wrote must reproduce the exact same tuples, or Store reports a
// conflict rather than silently overwriting. This is what lets the Compare
// pipeline run Naive and DatafrogOpt into the same store and trust that any
// shared input relation really was shared, not quietly re-derived twice.
//
// A FactStore is mutated by exactly one pipeline at a time; the mutex here
// guards against misuse, not concurrent units, mirroring the defensive
// locking the kernel and doc-store types in this codebase's ancestry use for
// state that is conceptually single-writer.
type FactStore struct {
	mu          sync.Mutex
	relations   map[string]any
	writtenBy   map[string]string
	currentUnit string
}

// New returns an empty FactStore.
func New() *FactStore {
	return &FactStore{
		relations: make(map[string]any),
		writtenBy: make(map[string]string),
	}
}

// SetCurrentUnit records the name of the unit about to run, attributed in
// conflict errors raised by a later Store call.
func (s *FactStore) SetCurrentUnit(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUnit = name
}

// CurrentUnit returns the name set by the most recent SetCurrentUnit call.
func (s *FactStore) CurrentUnit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUnit
}

// Has reports whether a relation has been written under name, regardless of
// its tuple type.
func (s *FactStore) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.relations[name]
	return ok
}

// Names returns every relation name currently populated, for diagnostic
// enumeration by dump sinks that don't know the schema in advance.
func (s *FactStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.relations))
	for n := range s.relations {
		names = append(names, n)
	}
	return names
}

// Load retrieves the relation stored under name as a T-shaped relation. The
// second return is false if nothing was ever stored there; callers that
// want a zero-tuple default for an absent input should use MustLoad instead.
func Load[T comparable](s *FactStore, name string) (*relation.Relation[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.relations[name]
	if !ok {
		return nil, false
	}
	rel, ok := v.(*relation.Relation[T])
	return rel, ok
}

// MustLoad retrieves the relation stored under name, or an empty relation if
// the store never received a write for it. Several optional inputs (for
// instance a program with no placeholders contributing zero placeholder
// facts) are legitimately absent rather than erroneous, so this is the
// normal way units read their inputs.
func MustLoad[T comparable](s *FactStore, name string) *relation.Relation[T] {
	rel, ok := Load[T](s, name)
	if !ok {
		return relation.Empty[T]()
	}
	return rel
}

// Store writes rel under name. A first write always succeeds. A later write
// under the same name must produce a relation.Equal result or Store returns
// an error naming both the unit that wrote the relation originally and the
// unit attempting to rewrite it.
func Store[T comparable](s *FactStore, name string, rel *relation.Relation[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.relations[name]
	if !ok {
		s.relations[name] = rel
		s.writtenBy[name] = s.currentUnit
		return nil
	}

	prev, ok := existing.(*relation.Relation[T])
	if !ok {
		return fmt.Errorf("store: relation %q previously written with a different tuple shape (first by unit %q, now by %q)", name, s.writtenBy[name], s.currentUnit)
	}
	if !relation.Equal(prev, rel) {
		diff := cmp.Diff(prev.All(), rel.All())
		return fmt.Errorf("store: relation %q already populated by unit %q with a different value; unit %q computed a conflicting result (-want +got):\n%s", name, s.writtenBy[name], s.currentUnit, diff)
	}
	return nil
}

// Overwrite replaces whatever is stored under name unconditionally,
// bypassing the write-once-or-equal check. It exists for the Hybrid
// pipeline's one legitimate supersession: an optimized-pass result
// replacing a location-insensitive approximation of the same relation once
// the cheaper pass's result is confirmed insufficient. Nothing else in this
// codebase should reach for it; prefer Store everywhere a conflict would
// actually indicate a bug.
func Overwrite[T comparable](s *FactStore, name string, rel *relation.Relation[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[name] = rel
	s.writtenBy[name] = s.currentUnit
}

// Rows renders the relation stored under name as a header row (the tuple
// struct's field names) plus one string row per tuple, in canonical order.
// It exists for dump sinks, which receive relations by name at the end of a
// run and have no compile-time knowledge of each one's tuple type; Rows
// uses reflection once, here, so nothing else in the codebase needs to.
func (s *FactStore) Rows(name string) (header []string, rows [][]string, ok bool) {
	s.mu.Lock()
	rel, found := s.relations[name]
	s.mu.Unlock()
	if !found {
		return nil, nil, false
	}

	all := reflect.ValueOf(rel).MethodByName("All").Call(nil)[0]
	elemType := all.Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return nil, nil, false
	}

	header = make([]string, elemType.NumField())
	for i := range header {
		header[i] = elemType.Field(i).Name
	}

	rows = make([][]string, 0, all.Len())
	for i := 0; i < all.Len(); i++ {
		tuple := all.Index(i)
		row := make([]string, tuple.NumField())
		for f := 0; f < tuple.NumField(); f++ {
			row[f] = fmt.Sprintf("%v", tuple.Field(f).Interface())
		}
		rows = append(rows, row)
	}
	return header, rows, true
}
