// Package dump implements the diagnostic sinks a pipeline run can be handed
// once it finishes. A sink only ever sees the fact store's final,
// fully-converged relations: nothing in this package has access to a unit's
// inner fixed-point loop, so enabling or disabling a sink can never change
// what a pipeline computes, only whether anything gets printed about it.
package dump

import "github.com/polonius-rs/polonius-go/internal/store"

// Sink receives the finished fact store at the end of a run. Render must
// not mutate s.
type Sink interface {
	Render(s *store.FactStore) error
}

// Nop discards everything; it is the default when no dump sink is
// configured, and exists so callers can pass a real Sink value instead of a
// nil check sprinkled through pkg/engine.
type Nop struct{}

func (Nop) Render(*store.FactStore) error { return nil }

// relationNames lists every relation a dump sink will attempt to render, in
// a fixed, readable order: base facts, then derived outputs, then the
// debug-only relations the spec's dump mode calls out by name.
var relationNames = []string{
	store.RelLoanIssuedAt,
	store.RelUniversalRegion,
	store.RelCfgEdge,
	store.RelLoanKilledAt,
	store.RelSubsetBase,
	store.RelLoanInvalidatedAt,
	store.RelVarUsedAt,
	store.RelVarDefinedAt,
	store.RelVarDroppedAt,
	store.RelUseOfVarDerefsOrigin,
	store.RelDropOfVarDerefsOrigin,
	store.RelChildPath,
	store.RelPathIsVar,
	store.RelPathAssignedAtBase,
	store.RelPathMovedAtBase,
	store.RelPathAccessedAtBase,
	store.RelKnownPlaceholderSubsetBase,
	store.RelPlaceholder,

	store.RelCfgNode,
	store.RelPathAssignedAt,
	store.RelPathMovedAt,
	store.RelPathAccessedAt,
	store.RelPathBeginsWithVar,
	store.RelPathMaybeInitializedOnExit,
	store.RelPathMaybeUninitializedOnExit,
	store.RelVarMaybePartlyInitOnExit,
	store.RelVarDroppedWhileInitAt,
	store.RelOriginLiveOnEntry,
	store.RelVarLiveOnEntry,
	store.RelVarDropLiveOnEntry,
	store.RelKnownPlaceholderSubset,
	store.RelKnownPlaceholderRequires,
	store.RelMoveErrors,
	store.RelErrors,
	store.RelSubsetErrors,
	store.RelPotentialErrors,
	store.RelPotentialSubsetErrors,

	store.RelOriginContainsLoanAt,
	store.RelOriginContainsLoanAnywhere,
	store.RelSubsetAt,
	store.RelSubsetAnywhere,
	store.RelLoanLiveAt,
	store.RelSymmetryRemoved,
}
