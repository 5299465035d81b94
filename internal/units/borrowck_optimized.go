package units

import (
	"context"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/iteration"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// rp is the (origin, point) key nearly every relation in this unit is
// indexed by. Which role each field plays (R1 vs R2, P vs Q) depends on the
// rule; the shape is shared because the join machinery only cares about
// the pair, not the names.
type rp struct {
	R atom.Origin
	P atom.Point
}

// rpq extends rp with a second point, the key shape the dying-edge
// machinery transports loans and subset facts through: a fact living at R,
// P that is about to cross the edge P -> Q.
type rpq struct {
	R    atom.Origin
	P, Q atom.Point
}

// lp is the (loan, point) key invalidates, borrow_live_at, and errors are
// keyed by.
type lp struct {
	L atom.Loan
	P atom.Point
}

// unit is the value half of an existence-only relation (region_live_at,
// invalidates, borrow_live_at): the key alone is the fact, and membership
// is all any rule ever asks of it.
type unit struct{}

func lessRP(a, b rp) bool {
	if a.R != b.R {
		return a.R < b.R
	}
	return a.P < b.P
}

func lessRPQ(a, b rpq) bool {
	if a.R != b.R {
		return a.R < b.R
	}
	if a.P != b.P {
		return a.P < b.P
	}
	return a.Q < b.Q
}

func lessLP(a, b lp) bool {
	if a.L != b.L {
		return a.L < b.L
	}
	return a.P < b.P
}

func lessRPOrigin(a, b iteration.KV[rp, atom.Origin]) bool {
	if a.Key != b.Key {
		return lessRP(a.Key, b.Key)
	}
	return a.Val < b.Val
}

func lessRPLoan(a, b iteration.KV[rp, atom.Loan]) bool {
	if a.Key != b.Key {
		return lessRP(a.Key, b.Key)
	}
	return a.Val < b.Val
}

func lessRPPoint(a, b iteration.KV[rp, atom.Point]) bool {
	if a.Key != b.Key {
		return lessRP(a.Key, b.Key)
	}
	return a.Val < b.Val
}

func lessRPUnit(a, b iteration.KV[rp, unit]) bool { return lessRP(a.Key, b.Key) }

func lessRPRP(a, b iteration.KV[rp, rp]) bool {
	if a.Key != b.Key {
		return lessRP(a.Key, b.Key)
	}
	return lessRP(a.Val, b.Val)
}

func lessRPQOrigin(a, b iteration.KV[rpq, atom.Origin]) bool {
	if a.Key != b.Key {
		return lessRPQ(a.Key, b.Key)
	}
	return a.Val < b.Val
}

func lessRPQLoan(a, b iteration.KV[rpq, atom.Loan]) bool {
	if a.Key != b.Key {
		return lessRPQ(a.Key, b.Key)
	}
	return a.Val < b.Val
}

func lessLPUnit(a, b iteration.KV[lp, unit]) bool { return lessLP(a.Key, b.Key) }

func lessLPPlain(a, b lp) bool { return lessLP(a, b) }

// BorrowckOptimized is the location-sensitive borrow check: it maintains
// origin-contains-loan ("requires") and subset per program point, and
// instead of carrying every fact forward across every edge, kills an
// origin's facts where it dies and transports only what a still-live
// origin needs across that edge. This is the canonical, full-precision
// analysis; BorrowckNaive exists to cross-check it, not to replace it.
type BorrowckOptimized struct{}

func (BorrowckOptimized) Name() string { return "borrowck_optimized" }
func (BorrowckOptimized) Inputs() []string {
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
func (BorrowckOptimized) Outputs() []string {
	return []string{
		store.RelErrors,
		store.RelSubsetErrors,
		store.RelLoanLiveAt,
		store.RelSubsetAt,
		store.RelOriginContainsLoanAt,
		store.RelOriginContainsLoanAnywhere,
		store.RelSubsetAnywhere,
		store.RelSymmetryRemoved,
	}
}

func (BorrowckOptimized) Run(_ context.Context, s *store.FactStore) error {
	edges := store.MustLoad[store.CfgEdge](s, store.RelCfgEdge)
	killed := store.MustLoad[store.LoanKilledAt](s, store.RelLoanKilledAt)
	invalidated := store.MustLoad[store.LoanInvalidatedAt](s, store.RelLoanInvalidatedAt)
	liveOnEntry := store.MustLoad[store.OriginLiveOnEntry](s, store.RelOriginLiveOnEntry)
	loanIssued := store.MustLoad[store.LoanIssuedAt](s, store.RelLoanIssuedAt)
	subsetBase := store.MustLoad[store.SubsetBase](s, store.RelSubsetBase)
	placeholders := store.MustLoad[store.Placeholder](s, store.RelPlaceholder)
	knownRequires := store.MustLoad[store.KnownPlaceholderRequires](s, store.RelKnownPlaceholderRequires)

	fwd := forwardEdgeIndex(edges)

	// region_live_at needed in two shapes: as a relation indexed by origin
	// (to drive or filter leapjoin candidates keyed on either R1 or R2) and
	// as a keyset over the full (origin, point) pair (to antijoin against).
	liveByOrigin := make(map[atom.Origin][]atom.Point)
	liveKeys := make(map[rp]struct{}, liveOnEntry.Len())
	for _, l := range liveOnEntry.All() {
		liveByOrigin[l.Origin] = append(liveByOrigin[l.Origin], l.Point)
		liveKeys[rp{R: l.Origin, P: l.Point}] = struct{}{}
	}
	liveKeyset := iteration.MapKeyset[rp](liveKeys)

	killedKeys := make(map[lp]struct{}, killed.Len())
	for _, k := range killed.All() {
		killedKeys[lp{L: k.Loan, P: k.Point}] = struct{}{}
	}
	isKilled := func(loan atom.Loan, p atom.Point) bool {
		_, ok := killedKeys[lp{L: loan, P: p}]
		return ok
	}

	it := iteration.New()

	// region_live_at in variable form, for joins that need it on the
	// right-hand side (as opposed to the static keyset/index above, used
	// by antijoins and leapjoin extenders).
	regionLiveAtVar := iteration.NewVariable[iteration.KV[rp, unit]](it, "region_live_at", lessRPUnit)
	var liveSeed []iteration.KV[rp, unit]
	for k := range liveKeys {
		liveSeed = append(liveSeed, iteration.KV[rp, unit]{Key: k})
	}
	regionLiveAtVar.Insert(liveSeed)

	invalidatesVar := iteration.NewVariable[iteration.KV[lp, unit]](it, "invalidates", lessLPUnit)
	var invalidatesSeed []iteration.KV[lp, unit]
	for _, inv := range invalidated.All() {
		invalidatesSeed = append(invalidatesSeed, iteration.KV[lp, unit]{Key: lp{L: inv.Loan, P: inv.Point}})
	}
	invalidatesVar.Insert(invalidatesSeed)

	borrowRegionRP := iteration.NewVariable[iteration.KV[rp, atom.Loan]](it, "borrow_region_rp", lessRPLoan)
	var borrowRegionSeed []iteration.KV[rp, atom.Loan]
	for _, li := range loanIssued.All() {
		borrowRegionSeed = append(borrowRegionSeed, iteration.KV[rp, atom.Loan]{Key: rp{R: li.Origin, P: li.Point}, Val: li.Loan})
	}
	borrowRegionRP.Insert(borrowRegionSeed)

	// subset(R1, R2, P) :- outlives(R1, R2, P).
	subsetR1P := iteration.NewVariable[iteration.KV[rp, atom.Origin]](it, "subset_r1p", lessRPOrigin)
	var subsetSeed []iteration.KV[rp, atom.Origin]
	for _, sb := range subsetBase.All() {
		subsetSeed = append(subsetSeed, iteration.KV[rp, atom.Origin]{Key: rp{R: sb.Origin1, P: sb.Point}, Val: sb.Origin2})
	}
	subsetR1P.Insert(subsetSeed)

	// requires(R, B, P) :- borrow_region(R, B, P).
	requiresRP := iteration.NewVariable[iteration.KV[rp, atom.Loan]](it, "requires_rp", lessRPLoan)
	requiresRP.Insert(append([]iteration.KV[rp, atom.Loan]{}, borrowRegionSeed...))

	liveToDyingRegions := iteration.NewVariable[iteration.KV[rpq, atom.Origin]](it, "live_to_dying_regions_r2pq", lessRPQOrigin)
	dyingRegionRequires := iteration.NewVariable[iteration.KV[rpq, atom.Loan]](it, "dying_region_requires", lessRPQLoan)
	dyingCanReachOrigins := iteration.NewVariable[iteration.KV[rp, atom.Point]](it, "dying_can_reach_origins", lessRPPoint)
	dyingCanReachR2Q := iteration.NewVariable[iteration.KV[rp, rp]](it, "dying_can_reach", lessRPRP)
	dyingCanReach1 := iteration.NewVariable[iteration.KV[rp, rp]](it, "dying_can_reach_1", lessRPRP)
	dyingCanReachLive := iteration.NewVariable[iteration.KV[rpq, atom.Origin]](it, "dying_can_reach_live", lessRPQOrigin)

	deadBorrowRoot := iteration.NewVariable[iteration.KV[rp, atom.Loan]](it, "dead_borrow_region_can_reach_root", lessRPLoan)
	deadBorrowDead := iteration.NewVariable[iteration.KV[rp, atom.Loan]](it, "dead_borrow_region_can_reach_dead", lessRPLoan)
	deadBorrowDead1 := iteration.NewVariable[iteration.KV[rp, atom.Loan]](it, "dead_borrow_region_can_reach_dead_1", lessRPLoan)

	borrowLiveAt := iteration.NewVariable[iteration.KV[lp, unit]](it, "borrow_live_at", lessLPUnit)
	errors := iteration.NewVariable[lp](it, "errors", lessLPPlain)

	notKilled := iteration.FilterAnti(func(s iteration.KV[rp, atom.Loan], _ atom.Point) bool {
		return isKilled(s.Val, s.Key.P)
	})

	var symmetryRemoved uint64

	for it.Changed() {
		// Cleanup step: subset(R, R, _) never carries anything a real
		// chain wouldn't, so every round's freshly discovered reflexive
		// subset facts are dropped before they can propagate.
		symmetryRemoved += uint64(subsetR1P.RetainRecent(func(kv iteration.KV[rp, atom.Origin]) bool {
			return kv.Key.R != kv.Val
		}))

		// live_to_dying_regions(R1, R2, P, Q) :-
		//   subset(R1, R2, P), cfg_edge(P, Q),
		//   region_live_at(R1, Q), !region_live_at(R2, Q).
		iteration.FromLeapjoin(liveToDyingRegions, subsetR1P, []iteration.Leaper[iteration.KV[rp, atom.Origin], atom.Point]{
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Origin]) []atom.Point { return fwd(s.Key.P) }),
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Origin]) []atom.Point { return liveByOrigin[s.Key.R] }),
			iteration.ExtendAnti(func(s iteration.KV[rp, atom.Origin]) []atom.Point { return liveByOrigin[s.Val] }),
		}, func(s iteration.KV[rp, atom.Origin], q atom.Point) iteration.KV[rpq, atom.Origin] {
			return iteration.KV[rpq, atom.Origin]{Key: rpq{R: s.Val, P: s.Key.P, Q: q}, Val: s.Key.R}
		})

		// dying_region_requires((R, P, Q), B) :-
		//   requires(R, B, P), !killed(B, P), cfg_edge(P, Q), !region_live_at(R, Q).
		iteration.FromLeapjoin(dyingRegionRequires, requiresRP, []iteration.Leaper[iteration.KV[rp, atom.Loan], atom.Point]{
			notKilled,
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Loan]) []atom.Point { return fwd(s.Key.P) }),
			iteration.ExtendAnti(func(s iteration.KV[rp, atom.Loan]) []atom.Point { return liveByOrigin[s.Key.R] }),
		}, func(s iteration.KV[rp, atom.Loan], q atom.Point) iteration.KV[rpq, atom.Loan] {
			return iteration.KV[rpq, atom.Loan]{Key: rpq{R: s.Key.R, P: s.Key.P, Q: q}, Val: s.Val}
		})

		// dying_can_reach_origins(R2, P, Q) :- live_to_dying_regions(_, R2, P, Q).
		iteration.FromMap(dyingCanReachOrigins, liveToDyingRegions, func(s iteration.KV[rpq, atom.Origin]) iteration.KV[rp, atom.Point] {
			return iteration.KV[rp, atom.Point]{Key: rp{R: s.Key.R, P: s.Key.P}, Val: s.Key.Q}
		})
		// dying_can_reach_origins(R, P, Q) :- dying_region_requires(R, P, Q, _B).
		iteration.FromMap(dyingCanReachOrigins, dyingRegionRequires, func(s iteration.KV[rpq, atom.Loan]) iteration.KV[rp, atom.Point] {
			return iteration.KV[rp, atom.Point]{Key: rp{R: s.Key.R, P: s.Key.P}, Val: s.Key.Q}
		})

		// dying_can_reach(R1, R2, P, Q) :-
		//   dying_can_reach_origins(R1, P, Q), subset(R1, R2, P).
		iteration.FromJoin(dyingCanReachR2Q, dyingCanReachOrigins, subsetR1P, func(k rp, q atom.Point, r2 atom.Origin) iteration.KV[rp, rp] {
			return iteration.KV[rp, rp]{Key: rp{R: r2, P: q}, Val: k}
		})

		// dying_can_reach(R1, R3, P, Q) :-
		//   dying_can_reach(R1, R2, P, Q), !region_live_at(R2, Q), subset(R2, R3, P).
		iteration.FromAntijoin(dyingCanReach1, dyingCanReachR2Q, liveKeyset, func(k rp, v rp) iteration.KV[rp, rp] {
			return iteration.KV[rp, rp]{Key: rp{R: k.R, P: v.P}, Val: rp{R: v.R, P: k.P}}
		})
		iteration.FromJoin(dyingCanReachR2Q, dyingCanReach1, subsetR1P, func(k rp, v rp, r3 atom.Origin) iteration.KV[rp, rp] {
			return iteration.KV[rp, rp]{Key: rp{R: r3, P: v.P}, Val: rp{R: v.R, P: k.P}}
		})

		// dying_can_reach_live(R1, R2, P, Q) :-
		//   dying_can_reach(R1, R2, P, Q), region_live_at(R2, Q).
		iteration.FromJoin(dyingCanReachLive, dyingCanReachR2Q, regionLiveAtVar, func(k rp, v rp, _ unit) iteration.KV[rpq, atom.Origin] {
			return iteration.KV[rpq, atom.Origin]{Key: rpq{R: v.R, P: v.P, Q: k.P}, Val: k.R}
		})

		// subset(R1, R2, Q) :-
		//   subset(R1, R2, P), cfg_edge(P, Q), region_live_at(R1, Q), region_live_at(R2, Q).
		iteration.FromLeapjoin(subsetR1P, subsetR1P, []iteration.Leaper[iteration.KV[rp, atom.Origin], atom.Point]{
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Origin]) []atom.Point { return fwd(s.Key.P) }),
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Origin]) []atom.Point { return liveByOrigin[s.Key.R] }),
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Origin]) []atom.Point { return liveByOrigin[s.Val] }),
		}, func(s iteration.KV[rp, atom.Origin], q atom.Point) iteration.KV[rp, atom.Origin] {
			return iteration.KV[rp, atom.Origin]{Key: rp{R: s.Key.R, P: q}, Val: s.Val}
		})

		// subset(R1, R3, Q) :-
		//   live_to_dying_regions(R1, R2, P, Q), dying_can_reach_live(R2, R3, P, Q).
		iteration.FromJoin(subsetR1P, liveToDyingRegions, dyingCanReachLive, func(k rpq, r1 atom.Origin, r3 atom.Origin) iteration.KV[rp, atom.Origin] {
			return iteration.KV[rp, atom.Origin]{Key: rp{R: r1, P: k.Q}, Val: r3}
		})

		// requires(R2, B, Q) :-
		//   dying_region_requires(R1, B, P, Q), dying_can_reach_live(R1, R2, P, Q).
		iteration.FromJoin(requiresRP, dyingRegionRequires, dyingCanReachLive, func(k rpq, b atom.Loan, r2 atom.Origin) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: rp{R: r2, P: k.Q}, Val: b}
		})

		// requires(R, B, Q) :-
		//   requires(R, B, P), !killed(B, P), cfg_edge(P, Q), region_live_at(R, Q).
		iteration.FromLeapjoin(requiresRP, requiresRP, []iteration.Leaper[iteration.KV[rp, atom.Loan], atom.Point]{
			notKilled,
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Loan]) []atom.Point { return fwd(s.Key.P) }),
			iteration.ExtendWith(func(s iteration.KV[rp, atom.Loan]) []atom.Point { return liveByOrigin[s.Key.R] }),
		}, func(s iteration.KV[rp, atom.Loan], q atom.Point) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: rp{R: s.Key.R, P: q}, Val: s.Val}
		})

		// dead_borrow_region_can_reach_root((R, P), B) :-
		//   borrow_region(R, B, P), !region_live_at(R, P).
		iteration.FromAntijoin(deadBorrowRoot, borrowRegionRP, liveKeyset, func(k rp, b atom.Loan) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: k, Val: b}
		})

		// dead_borrow_region_can_reach_dead((R, P), B) :-
		//   dead_borrow_region_can_reach_root((R, P), B).
		iteration.FromMap(deadBorrowDead, deadBorrowRoot, func(s iteration.KV[rp, atom.Loan]) iteration.KV[rp, atom.Loan] { return s })

		// dead_borrow_region_can_reach_dead((R2, P), B) :-
		//   dead_borrow_region_can_reach_dead(R1, B, P), subset(R1, R2, P), !region_live_at(R2, P).
		iteration.FromJoin(deadBorrowDead1, deadBorrowDead, subsetR1P, func(k rp, b atom.Loan, r2 atom.Origin) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: rp{R: r2, P: k.P}, Val: b}
		})
		iteration.FromAntijoin(deadBorrowDead, deadBorrowDead1, liveKeyset, func(k rp, b atom.Loan) iteration.KV[rp, atom.Loan] {
			return iteration.KV[rp, atom.Loan]{Key: k, Val: b}
		})

		// borrow_live_at(B, P) :- requires(R, B, P), region_live_at(R, P).
		iteration.FromJoin(borrowLiveAt, requiresRP, regionLiveAtVar, func(k rp, b atom.Loan, _ unit) iteration.KV[lp, unit] {
			return iteration.KV[lp, unit]{Key: lp{L: b, P: k.P}}
		})
		// borrow_live_at(B, P) :-
		//   dead_borrow_region_can_reach_dead(R1, B, P), subset(R1, R2, P), region_live_at(R2, P).
		iteration.FromJoin(borrowLiveAt, deadBorrowDead1, regionLiveAtVar, func(k rp, b atom.Loan, _ unit) iteration.KV[lp, unit] {
			return iteration.KV[lp, unit]{Key: lp{L: b, P: k.P}}
		})

		// errors(B, P) :- invalidates(B, P), borrow_live_at(B, P).
		iteration.FromJoin(errors, invalidatesVar, borrowLiveAt, func(k lp, _ unit, _ unit) lp { return k })
	}

	var errs []store.LoanError
	for _, e := range errors.Complete().All() {
		errs = append(errs, store.LoanError{Loan: e.L, Point: e.P})
	}

	var loanLiveOut []store.LoanLiveAt
	for _, kv := range borrowLiveAt.Complete().All() {
		loanLiveOut = append(loanLiveOut, store.LoanLiveAt{Loan: kv.Key.L, Point: kv.Key.P})
	}

	subsetFinal := subsetR1P.Complete().All()
	var subsetAtOut []store.SubsetAt
	for _, kv := range subsetFinal {
		subsetAtOut = append(subsetAtOut, store.SubsetAt{Origin1: kv.Key.R, Origin2: kv.Val, Point: kv.Key.P})
	}

	requiresFinal := requiresRP.Complete().All()
	var containsOut []store.OriginContainsLoanAt
	containsAt := make(map[rp]map[atom.Loan]struct{}, len(requiresFinal))
	for _, kv := range requiresFinal {
		containsOut = append(containsOut, store.OriginContainsLoanAt{Origin: kv.Key.R, Loan: kv.Val, Point: kv.Key.P})
		if containsAt[kv.Key] == nil {
			containsAt[kv.Key] = make(map[atom.Loan]struct{})
		}
		containsAt[kv.Key][kv.Val] = struct{}{}
	}

	requiresIdx := make(map[atom.Origin]map[atom.Loan]struct{})
	for _, r := range knownRequires.All() {
		if requiresIdx[r.Origin] == nil {
			requiresIdx[r.Origin] = make(map[atom.Loan]struct{})
		}
		requiresIdx[r.Origin][r.Loan] = struct{}{}
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

	containsRel := relation.Build(containsOut, store.LessOriginContainsLoanAt)
	containsAnywhere := relation.Project(containsRel, store.LessOriginContainsLoanAnywhere, func(c store.OriginContainsLoanAt) store.OriginContainsLoanAnywhere {
		return store.OriginContainsLoanAnywhere{Origin: c.Origin, Loan: c.Loan}
	})

	subsetRel := relation.Build(subsetAtOut, store.LessSubsetAt)
	subsetAnywhere := relation.Project(subsetRel, store.LessSubsetAnywhere, func(sa store.SubsetAt) store.SubsetAnywhere {
		return store.SubsetAnywhere{Origin1: sa.Origin1, Origin2: sa.Origin2}
	})

	if err := store.Store(s, store.RelErrors, relation.Build(errs, store.LessLoanError)); err != nil {
		return err
	}
	if err := store.Store(s, store.RelSubsetErrors, relation.Build(subsetErrs, store.LessSubsetError)); err != nil {
		return err
	}
	if err := store.Store(s, store.RelLoanLiveAt, relation.Build(loanLiveOut, store.LessLoanLiveAt)); err != nil {
		return err
	}
	if err := store.Store(s, store.RelSubsetAt, subsetRel); err != nil {
		return err
	}
	if err := store.Store(s, store.RelOriginContainsLoanAt, containsRel); err != nil {
		return err
	}
	if err := store.Store(s, store.RelOriginContainsLoanAnywhere, containsAnywhere); err != nil {
		return err
	}
	if err := store.Store(s, store.RelSubsetAnywhere, subsetAnywhere); err != nil {
		return err
	}
	return store.Store(s, store.RelSymmetryRemoved, relation.Build([]store.SymmetryRemoved{{Count: symmetryRemoved}}, store.LessSymmetryRemoved))
}
