package units

import (
	"context"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/iteration"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// originPair is subset's (R1, R2) payload once reindexed by point alone, the
// shape the cross-edge join needs before a cfg_edge can be applied to it.
type originPair struct{ R1, R2 atom.Origin }

// brPair is requires's (loan, origin) payload once reindexed by point alone,
// the analogous shape for the requires cross-edge join.
type brPair struct {
	B atom.Loan
	R atom.Origin
}

func lessPointOriginPair(a, b iteration.KV[atom.Point, originPair]) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	if a.Val.R1 != b.Val.R1 {
		return a.Val.R1 < b.Val.R1
	}
	return a.Val.R2 < b.Val.R2
}

func lessPointPoint(a, b iteration.KV[atom.Point, atom.Point]) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.Val < b.Val
}

func lessLPOrigin(a, b iteration.KV[lp, atom.Origin]) bool {
	if a.Key != b.Key {
		return lessLP(a.Key, b.Key)
	}
	return a.Val < b.Val
}

func lessPointBR(a, b iteration.KV[atom.Point, brPair]) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	if a.Val.B != b.Val.B {
		return a.Val.B < b.Val.B
	}
	return a.Val.R < b.Val.R
}

// BorrowckNaive is the reference borrow check: subset and containment are
// transitively closed at every point independently and carried across an
// edge only when every origin involved is live at the edge's target, with nothing
// killed off early. It recomputes far more than BorrowckOptimized, but its
// straightforward rules make it the trusted oracle the Compare pipeline
// checks the optimized variant's output against.
type BorrowckNaive struct{}

func (BorrowckNaive) Name() string { return "borrowck_naive" }
func (BorrowckNaive) Inputs() []string {
	return []string{
		store.RelCfgEdge,
		store.RelLoanKilledAt,
		store.RelLoanInvalidatedAt,
		store.RelOriginLiveOnEntry,
		store.RelLoanIssuedAt,
		store.RelSubsetBase,
		store.RelPlaceholder,
		store.RelKnownPlaceholderRequires,
	}
}
func (BorrowckNaive) Outputs() []string {
	return []string{store.RelErrors, store.RelSubsetErrors}
}

func (BorrowckNaive) Run(_ context.Context, s *store.FactStore) error {
	edges := store.MustLoad[store.CfgEdge](s, store.RelCfgEdge)
	killed := store.MustLoad[store.LoanKilledAt](s, store.RelLoanKilledAt)
	invalidated := store.MustLoad[store.LoanInvalidatedAt](s, store.RelLoanInvalidatedAt)
	liveOnEntry := store.MustLoad[store.OriginLiveOnEntry](s, store.RelOriginLiveOnEntry)
	loanIssued := store.MustLoad[store.LoanIssuedAt](s, store.RelLoanIssuedAt)
	subsetBase := store.MustLoad[store.SubsetBase](s, store.RelSubsetBase)
	placeholders := store.MustLoad[store.Placeholder](s, store.RelPlaceholder)
	knownRequires := store.MustLoad[store.KnownPlaceholderRequires](s, store.RelKnownPlaceholderRequires)

	liveByOrigin := make(map[atom.Origin][]atom.Point)
	for _, l := range liveOnEntry.All() {
		liveByOrigin[l.Origin] = append(liveByOrigin[l.Origin], l.Point)
	}

	killedKeys := make(map[lp]struct{}, killed.Len())
	for _, k := range killed.All() {
		killedKeys[lp{L: k.Loan, P: k.Point}] = struct{}{}
	}
	killedKeyset := iteration.MapKeyset[lp](killedKeys)

	it := iteration.New()

	// subset is kept in the (R1, P) -> R2 shape throughout: every rule that
	// needs it keyed some other way (by R2, or by P alone) rederives that
	// view fresh each round instead of the primary relation carrying more
	// than one index.
	subsetR1P := iteration.NewVariable[iteration.KV[rp, atom.Origin]](it, "subset_r1p", lessRPOrigin)
	var subsetSeed []iteration.KV[rp, atom.Origin]
	for _, sb := range subsetBase.All() {
		subsetSeed = append(subsetSeed, iteration.KV[rp, atom.Origin]{Key: rp{R: sb.Origin1, P: sb.Point}, Val: sb.Origin2})
	}
	subsetR1P.Insert(subsetSeed)

	// requires, likewise, is kept in the (R, P) -> Loan shape.
	requiresRP := iteration.NewVariable[iteration.KV[rp, atom.Loan]](it, "requires_rp", lessRPLoan)
	var requiresSeed []iteration.KV[rp, atom.Loan]
	for _, li := range loanIssued.All() {
		requiresSeed = append(requiresSeed, iteration.KV[rp, atom.Loan]{Key: rp{R: li.Origin, P: li.Point}, Val: li.Loan})
	}
	requiresRP.Insert(requiresSeed)

	regionLiveAtVar := iteration.NewVariable[iteration.KV[rp, unit]](it, "region_live_at", lessRPUnit)
	var liveSeed []iteration.KV[rp, unit]
	for o, ps := range liveByOrigin {
		for _, p := range ps {
			liveSeed = append(liveSeed, iteration.KV[rp, unit]{Key: rp{R: o, P: p}})
		}
	}
	regionLiveAtVar.Insert(liveSeed)

	cfgEdgeVar := iteration.NewVariable[iteration.KV[atom.Point, atom.Point]](it, "cfg_edge_p", lessPointPoint)
	var edgeSeed []iteration.KV[atom.Point, atom.Point]
	for _, e := range edges.All() {
		edgeSeed = append(edgeSeed, iteration.KV[atom.Point, atom.Point]{Key: e.From, Val: e.To})
	}
	cfgEdgeVar.Insert(edgeSeed)

	borrowLiveAt := iteration.NewVariable[iteration.KV[lp, unit]](it, "borrow_live_at", lessLPUnit)

	subsetR2P := iteration.NewVariable[iteration.KV[rp, atom.Origin]](it, "subset_r2p", lessRPOrigin)
	subsetP := iteration.NewVariable[iteration.KV[atom.Point, originPair]](it, "subset_p", lessPointOriginPair)
	requiresBP := iteration.NewVariable[iteration.KV[lp, atom.Origin]](it, "requires_bp", lessLPOrigin)
	subset1 := iteration.NewVariable[iteration.KV[rp, atom.Origin]](it, "subset_1", lessRPOrigin)
	subset2 := iteration.NewVariable[iteration.KV[rp, atom.Origin]](it, "subset_2", lessRPOrigin)
	requires1 := iteration.NewVariable[iteration.KV[atom.Point, brPair]](it, "requires_1", lessPointBR)
	requires2 := iteration.NewVariable[iteration.KV[rp, atom.Loan]](it, "requires_2", lessRPLoan)

	for it.Changed() {
		// Remap fields to re-index subset and requires by the keys this
		// round's joins need.
		iteration.FromMap(subsetR2P, subsetR1P, func(kv iteration.KV[rp, atom.Origin]) iteration.KV[rp, atom.Origin] {
			return iteration.KV[rp, atom.Origin]{Key: rp{R: kv.Val, P: kv.Key.P}, Val: kv.Key.R}
		})
		iteration.FromMap(subsetP, subsetR1P, func(kv iteration.KV[rp, atom.Origin]) iteration.KV[atom.Point, originPair] {
			return iteration.KV[atom.Point, originPair]{Key: kv.Key.P, Val: originPair{R1: kv.Key.R, R2: kv.Val}}
		})
		iteration.FromMap(requiresBP, requiresRP, func(kv iteration.KV[rp, atom.Loan]) iteration.KV[lp, atom.Origin] {
			return iteration.KV[lp, atom.Origin]{Key: lp{L: kv.Val, P: kv.Key.P}, Val: kv.Key.R}
		})

		// subset(R1, R3, P) :- subset(R1, R2, P), subset(R2, R3, P).
		iteration.FromJoin(subsetR1P, subsetR2P, subsetR1P, func(k rp, r1 atom.Origin, r3 atom.Origin) iteration.KV[rp, atom.Origin] {
			return iteration.KV[rp, atom.Origin]{Key: rp{R: r1, P: k.P}, Val: r3}
		})

		// subset(R1, R2, Q) :-
		//   subset(R1, R2, P), cfg_edge(P, Q),
		//   region_live_at(R1, Q), region_live_at(R2, Q).
		iteration.FromJoin(subset1, subsetP, cfgEdgeVar, func(_ atom.Point, pair originPair, q atom.Point) iteration.KV[rp, atom.Origin] {
			return iteration.KV[rp, atom.Origin]{Key: rp{R: pair.R1, P: q}, Val: pair.R2}
		})
		iteration.FromJoin(subset2, subset1, regionLiveAtVar, func(k rp, r2 atom.Origin, _ unit) iteration.KV[rp, atom.Origin] {
			return iteration.KV[rp, atom.Origin]{Key: rp{R: r2, P: k.P}, Val: k.R}
		})
		iteration.FromJoin(subsetR1P, subset2, regionLiveAtVar, func(k rp, r1 atom.Origin, _ unit) iteration.KV[rp, atom.Origin] {
			return iteration.KV[rp, atom.Origin]{Key: rp{R: r1, P: k.P}, Val: k.R}
		})

		// requires(R2, B, P) :- requires(R1, B, P), subset(R1, R2, P).
		iteration.FromJoin(requiresRP, requiresRP, subsetR1P, func(k rp, b atom.Loan, r2 atom.Origin) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: rp{R: r2, P: k.P}, Val: b}
		})

		// requires(R, B, Q) :-
		//   requires(R, B, P), !killed(B, P), cfg_edge(P, Q), region_live_at(R, Q).
		iteration.FromAntijoin(requires1, requiresBP, killedKeyset, func(k lp, r atom.Origin) iteration.KV[atom.Point, brPair] {
			return iteration.KV[atom.Point, brPair]{Key: k.P, Val: brPair{B: k.L, R: r}}
		})
		iteration.FromJoin(requires2, requires1, cfgEdgeVar, func(_ atom.Point, br brPair, q atom.Point) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: rp{R: br.R, P: q}, Val: br.B}
		})
		iteration.FromJoin(requiresRP, requires2, regionLiveAtVar, func(k rp, b atom.Loan, _ unit) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: k, Val: b}
		})

		// borrow_live_at(B, P) :- requires(R, B, P), region_live_at(R, P).
		iteration.FromJoin(borrowLiveAt, requiresRP, regionLiveAtVar, func(k rp, b atom.Loan, _ unit) iteration.KV[lp, unit] {
			return iteration.KV[lp, unit]{Key: lp{L: b, P: k.P}}
		})
	}

	liveContainsAt := make(map[atom.Point]map[atom.Loan]struct{})
	for _, kv := range borrowLiveAt.Complete().All() {
		if liveContainsAt[kv.Key.P] == nil {
			liveContainsAt[kv.Key.P] = make(map[atom.Loan]struct{})
		}
		liveContainsAt[kv.Key.P][kv.Key.L] = struct{}{}
	}

	var errs []store.LoanError
	for _, inv := range invalidated.All() {
		if _, ok := liveContainsAt[inv.Point][inv.Loan]; ok {
			errs = append(errs, store.LoanError{Loan: inv.Loan, Point: inv.Point})
		}
	}

	requiresIdx := make(map[atom.Origin]map[atom.Loan]struct{})
	for _, r := range knownRequires.All() {
		if requiresIdx[r.Origin] == nil {
			requiresIdx[r.Origin] = make(map[atom.Loan]struct{})
		}
		requiresIdx[r.Origin][r.Loan] = struct{}{}
	}

	containsAt := make(map[rp]map[atom.Loan]struct{})
	for _, kv := range requiresRP.Complete().All() {
		if containsAt[kv.Key] == nil {
			containsAt[kv.Key] = make(map[atom.Loan]struct{})
		}
		containsAt[kv.Key][kv.Val] = struct{}{}
	}

	placeholderOrigins := make(map[atom.Origin]struct{}, placeholders.Len())
	for _, ph := range placeholders.All() {
		placeholderOrigins[ph.Origin] = struct{}{}
	}

	var subsetErrs []store.SubsetError
	for k, loans := range containsAt {
		if _, ok := placeholderOrigins[k.R]; !ok {
			continue
		}
		for _, ph1 := range placeholders.All() {
			if ph1.Origin == k.R {
				continue
			}
			if _, ok := loans[ph1.Loan]; !ok {
				continue
			}
			if _, ok := requiresIdx[k.R][ph1.Loan]; ok {
				continue
			}
			subsetErrs = append(subsetErrs, store.SubsetError{Origin1: ph1.Origin, Origin2: k.R, Point: k.P})
		}
	}

	if err := store.Store(s, store.RelErrors, relation.Build(errs, store.LessLoanError)); err != nil {
		return err
	}
	return store.Store(s, store.RelSubsetErrors, relation.Build(subsetErrs, store.LessSubsetError))
}
