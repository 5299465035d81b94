// Package store implements the fact store: a heterogeneous collection of
// named, optionally-populated relations, each with a known tuple schema.
// The canonical relation names and tuple shapes below mirror the fact
// engine's data model one for one (loan_issued_at, cfg_edge, ...); every
// unit in internal/units reads and writes exactly these shapes by name.
package store

import "github.com/polonius-rs/polonius-go/internal/atom"

// Canonical relation names, used both as FactStore keys and as the
// diagnostic names attached to dump output.
const (
	RelLoanIssuedAt               = "loan_issued_at"
	RelUniversalRegion            = "universal_region"
	RelCfgEdge                    = "cfg_edge"
	RelLoanKilledAt               = "loan_killed_at"
	RelSubsetBase                 = "subset_base"
	RelLoanInvalidatedAt          = "loan_invalidated_at"
	RelVarUsedAt                  = "var_used_at"
	RelVarDefinedAt               = "var_defined_at"
	RelVarDroppedAt               = "var_dropped_at"
	RelUseOfVarDerefsOrigin       = "use_of_var_derefs_origin"
	RelDropOfVarDerefsOrigin      = "drop_of_var_derefs_origin"
	RelChildPath                  = "child_path"
	RelPathIsVar                  = "path_is_var"
	RelPathAssignedAtBase         = "path_assigned_at_base"
	RelPathMovedAtBase            = "path_moved_at_base"
	RelPathAccessedAtBase         = "path_accessed_at_base"
	RelKnownPlaceholderSubsetBase = "known_placeholder_subset_base"
	RelPlaceholder                = "placeholder"

	RelCfgNode                      = "cfg_node"
	RelPathAssignedAt               = "path_assigned_at"
	RelPathMovedAt                  = "path_moved_at"
	RelPathAccessedAt               = "path_accessed_at"
	RelPathBeginsWithVar            = "path_begins_with_var"
	RelPathMaybeInitializedOnExit   = "path_maybe_initialized_on_exit"
	RelPathMaybeUninitializedOnExit = "path_maybe_uninitialized_on_exit"
	RelVarMaybePartlyInitOnExit     = "var_maybe_partly_initialized_on_exit"
	RelVarDroppedWhileInitAt        = "var_dropped_while_init_at"
	RelOriginLiveOnEntry            = "origin_live_on_entry"
	RelVarLiveOnEntry               = "var_live_on_entry"
	RelVarDropLiveOnEntry           = "var_drop_live_on_entry"
	RelKnownPlaceholderSubset       = "known_placeholder_subset"
	RelKnownPlaceholderRequires     = "known_placeholder_requires"
	RelMoveErrors                   = "move_errors"
	RelErrors                       = "errors"
	RelSubsetErrors                 = "subset_errors"
	RelPotentialErrors              = "potential_errors"
	RelPotentialSubsetErrors        = "potential_subset_errors"

	// Debug relations, written by BorrowckOptimized on every run whether or
	// not a dump sink is configured.
	RelOriginContainsLoanAt       = "origin_contains_loan_at"
	RelOriginContainsLoanAnywhere = "origin_contains_loan_anywhere"
	RelSubsetAt                   = "subset"
	RelSubsetAnywhere             = "subset_anywhere"
	RelLoanLiveAt                 = "loan_live_at"
	RelSymmetryRemoved            = "debug_symmetry_removed"
)

// Tuple shapes. Each mirrors one canonical relation's arity and atom kinds.

type LoanIssuedAt struct {
	Origin atom.Origin
	Loan   atom.Loan
	Point  atom.Point
}

type UniversalRegion struct {
	Origin atom.Origin
}

type CfgEdge struct {
	From atom.Point
	To   atom.Point
}

type LoanKilledAt struct {
	Loan  atom.Loan
	Point atom.Point
}

type SubsetBase struct {
	Origin1 atom.Origin
	Origin2 atom.Origin
	Point   atom.Point
}

type LoanInvalidatedAt struct {
	Loan  atom.Loan
	Point atom.Point
}

type VarUsedAt struct {
	Var   atom.Variable
	Point atom.Point
}

type VarDefinedAt struct {
	Var   atom.Variable
	Point atom.Point
}

type VarDroppedAt struct {
	Var   atom.Variable
	Point atom.Point
}

type UseOfVarDerefsOrigin struct {
	Var    atom.Variable
	Origin atom.Origin
}

type DropOfVarDerefsOrigin struct {
	Var    atom.Variable
	Origin atom.Origin
}

type ChildPath struct {
	Child  atom.Path
	Parent atom.Path
}

type PathIsVar struct {
	Path atom.Path
	Var  atom.Variable
}

type PathAssignedAtBase struct {
	Path  atom.Path
	Point atom.Point
}

type PathMovedAtBase struct {
	Path  atom.Path
	Point atom.Point
}

type PathAccessedAtBase struct {
	Path  atom.Path
	Point atom.Point
}

type KnownPlaceholderSubsetBase struct {
	Origin1 atom.Origin
	Origin2 atom.Origin
}

type Placeholder struct {
	Origin atom.Origin
	Loan   atom.Loan
}

type CfgNode struct {
	Point atom.Point
}

type PathAssignedAt struct {
	Path  atom.Path
	Point atom.Point
}

type PathMovedAt struct {
	Path  atom.Path
	Point atom.Point
}

type PathAccessedAt struct {
	Path  atom.Path
	Point atom.Point
}

type PathBeginsWithVar struct {
	Path atom.Path
	Var  atom.Variable
}

type PathMaybeInitializedOnExit struct {
	Path  atom.Path
	Point atom.Point
}

type PathMaybeUninitializedOnExit struct {
	Path  atom.Path
	Point atom.Point
}

type VarMaybePartlyInitOnExit struct {
	Var   atom.Variable
	Point atom.Point
}

type VarDroppedWhileInitAt struct {
	Var   atom.Variable
	Point atom.Point
}

type OriginLiveOnEntry struct {
	Origin atom.Origin
	Point  atom.Point
}

type VarLiveOnEntry struct {
	Var   atom.Variable
	Point atom.Point
}

type VarDropLiveOnEntry struct {
	Var   atom.Variable
	Point atom.Point
}

type KnownPlaceholderSubset struct {
	Origin1 atom.Origin
	Origin2 atom.Origin
}

type KnownPlaceholderRequires struct {
	Origin atom.Origin
	Loan   atom.Loan
}

type MoveError struct {
	Path  atom.Path
	Point atom.Point
}

type LoanError struct {
	Loan  atom.Loan
	Point atom.Point
}

type SubsetError struct {
	Origin1 atom.Origin
	Origin2 atom.Origin
	Point   atom.Point
}

type PotentialError struct {
	Loan  atom.Loan
	Point atom.Point
}

type PotentialSubsetError struct {
	Origin1 atom.Origin
	Origin2 atom.Origin
}

// Debug-only tuple shapes.

type OriginContainsLoanAt struct {
	Origin atom.Origin
	Loan   atom.Loan
	Point  atom.Point
}

type OriginContainsLoanAnywhere struct {
	Origin atom.Origin
	Loan   atom.Loan
}

type SubsetAt struct {
	Origin1 atom.Origin
	Origin2 atom.Origin
	Point   atom.Point
}

type SubsetAnywhere struct {
	Origin1 atom.Origin
	Origin2 atom.Origin
}

type LoanLiveAt struct {
	Loan  atom.Loan
	Point atom.Point
}

// SymmetryRemoved is a single-tuple debug relation: how many subset(r, r, _)
// self-edges BorrowckOptimized declined to insert while closing subset,
// "because they explode the working set" per the rule they come from. It
// exists only to make that optimization's effect visible in a dump; it has
// no bearing on any other relation.
type SymmetryRemoved struct {
	Count uint64
}
