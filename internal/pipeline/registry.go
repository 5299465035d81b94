package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
	"github.com/polonius-rs/polonius-go/internal/units"
)

// externalInputs lists every relation the caller is expected to populate in
// the store before any pipeline runs: the base facts every analysis is
// computed from.
var externalInputs = []string{
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
}

// commonUnits is the shared prefix every pipeline variant runs before
// branching into its own borrow-check unit: the CFG, path, initialization,
// placeholder, and liveness analyses that every borrow-check variant reads.
func commonUnits() []Unit {
	return []Unit{
		units.CFGClosure{},
		units.TransitivePaths{},
		units.MaybeInit{},
		units.MaybeUninit{},
		units.DropInitFusion{},
		units.MoveErrors{},
		units.PlaceholderClosure{},
		units.Liveness{},
	}
}

// Naive builds the pipeline running BorrowckNaive, the simple
// reference-quality borrow check.
func Naive() *Pipeline {
	u := append(commonUnits(), units.BorrowckNaive{})
	return New("naive", externalInputs, u...)
}

// DatafrogOpt builds the pipeline running BorrowckOptimized, the
// location-sensitive, dying-edge-aware borrow check.
func DatafrogOpt() *Pipeline {
	u := append(commonUnits(), units.BorrowckOptimized{})
	return New("datafrog_opt", externalInputs, u...)
}

// LocationInsensitive builds the pipeline running the point-erased
// overapproximate borrow check, whose potential_errors/potential_subset_errors
// outputs are promoted to errors/subset_errors via a lossy point=0 adapter.
func LocationInsensitive() *Pipeline {
	u := append(commonUnits(),
		units.BorrowckLocationInsensitive{},
		units.BorrowckLocationInsensitiveAsSensitive{},
	)
	return New("location_insensitive", externalInputs, u...)
}

// CompareResult reports whether Naive and DatafrogOpt agreed on a run.
// Mismatch is empty on success; on disagreement it holds the same go-cmp
// structural diff text that Compare's returned error wraps, so a caller
// inspecting CompareResult directly doesn't need to unwrap the error to see
// what differed.
type CompareResult struct {
	Agreed   bool
	Mismatch string
}

// Compare runs BorrowckNaive and then BorrowckOptimized over the SAME store,
// rather than two independent copies: every relation the two pipelines share
// (the common prefix's CFG, path, and liveness facts, plus any borrow-check
// output of the same name) passes through the store's write-once-or-equal
// check, so a divergence between the naive and optimized borrow checks is
// caught as a fatal store conflict naming the offending relation and the two
// producing units, not reconstructed after the fact from a hand-picked set
// of relations to diff.
func Compare(ctx context.Context, base *store.FactStore, log hclog.Logger) (CompareResult, Report, Report, error) {
	shared, err := CloneExternalInputs(base)
	if err != nil {
		return CompareResult{}, Report{}, Report{}, err
	}

	naiveReport, err := Execute(ctx, Naive(), shared, log)
	if err != nil {
		return CompareResult{}, naiveReport, Report{}, fmt.Errorf("compare: naive pipeline: %w", err)
	}
	optReport, err := Execute(ctx, DatafrogOpt(), shared, log)
	if err != nil {
		// Execute's failure here is, in practice, always the store's
		// write-once-or-equal check rejecting a relation DatafrogOpt
		// computed differently from Naive; its error already carries a
		// go-cmp structural diff (-want +got) of the two conflicting
		// relations. Surface that text on Mismatch too, so a caller
		// inspecting CompareResult directly (not just the returned error)
		// sees the same diff.
		return CompareResult{Agreed: false, Mismatch: err.Error()}, naiveReport, optReport, fmt.Errorf("compare: naive and datafrog_opt disagree: %w", err)
	}

	return CompareResult{Agreed: true}, naiveReport, optReport, nil
}

// CloneExternalInputs builds a fresh FactStore containing only the base
// facts the caller supplied, so that two pipeline runs (Compare's Naive and
// DatafrogOpt passes, or Hybrid's confirmation pass) each compute their own
// derived relations without tripping the store's write-once conflict check
// against each other or against a first pass already run on base.
func CloneExternalInputs(base *store.FactStore) (*store.FactStore, error) {
	out := store.New()
	if err := store.Store(out, store.RelLoanIssuedAt, relation.Build(store.MustLoad[store.LoanIssuedAt](base, store.RelLoanIssuedAt).All(), store.LessLoanIssuedAt)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelUniversalRegion, relation.Build(store.MustLoad[store.UniversalRegion](base, store.RelUniversalRegion).All(), store.LessUniversalRegion)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelCfgEdge, relation.Build(store.MustLoad[store.CfgEdge](base, store.RelCfgEdge).All(), store.LessCfgEdge)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelLoanKilledAt, relation.Build(store.MustLoad[store.LoanKilledAt](base, store.RelLoanKilledAt).All(), store.LessLoanKilledAt)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelSubsetBase, relation.Build(store.MustLoad[store.SubsetBase](base, store.RelSubsetBase).All(), store.LessSubsetBase)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelLoanInvalidatedAt, relation.Build(store.MustLoad[store.LoanInvalidatedAt](base, store.RelLoanInvalidatedAt).All(), store.LessLoanInvalidatedAt)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelVarUsedAt, relation.Build(store.MustLoad[store.VarUsedAt](base, store.RelVarUsedAt).All(), store.LessVarUsedAt)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelVarDefinedAt, relation.Build(store.MustLoad[store.VarDefinedAt](base, store.RelVarDefinedAt).All(), store.LessVarDefinedAt)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelVarDroppedAt, relation.Build(store.MustLoad[store.VarDroppedAt](base, store.RelVarDroppedAt).All(), store.LessVarDroppedAt)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelUseOfVarDerefsOrigin, relation.Build(store.MustLoad[store.UseOfVarDerefsOrigin](base, store.RelUseOfVarDerefsOrigin).All(), store.LessUseOfVarDerefsOrigin)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelDropOfVarDerefsOrigin, relation.Build(store.MustLoad[store.DropOfVarDerefsOrigin](base, store.RelDropOfVarDerefsOrigin).All(), store.LessDropOfVarDerefsOrigin)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelChildPath, relation.Build(store.MustLoad[store.ChildPath](base, store.RelChildPath).All(), store.LessChildPath)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelPathIsVar, relation.Build(store.MustLoad[store.PathIsVar](base, store.RelPathIsVar).All(), store.LessPathIsVar)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelPathAssignedAtBase, relation.Build(store.MustLoad[store.PathAssignedAtBase](base, store.RelPathAssignedAtBase).All(), store.LessPathAssignedAtBase)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelPathMovedAtBase, relation.Build(store.MustLoad[store.PathMovedAtBase](base, store.RelPathMovedAtBase).All(), store.LessPathMovedAtBase)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelPathAccessedAtBase, relation.Build(store.MustLoad[store.PathAccessedAtBase](base, store.RelPathAccessedAtBase).All(), store.LessPathAccessedAtBase)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelKnownPlaceholderSubsetBase, relation.Build(store.MustLoad[store.KnownPlaceholderSubsetBase](base, store.RelKnownPlaceholderSubsetBase).All(), store.LessKnownPlaceholderSubsetBase)); err != nil {
		return nil, err
	}
	if err := store.Store(out, store.RelPlaceholder, relation.Build(store.MustLoad[store.Placeholder](base, store.RelPlaceholder).All(), store.LessPlaceholder)); err != nil {
		return nil, err
	}
	return out, nil
}
