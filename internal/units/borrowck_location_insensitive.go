package units

import (
	"context"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/iteration"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// BorrowckLocationInsensitive discards point information from everything
// except the final liveness and invalidation checks: an origin's loan
// containment is closed over the (point-erased) subset relation once, and
// every potential error or subset violation is reported regardless of
// where in the function it occurs. This is the cheap, overapproximate
// variant: every real error appears among its "potential" errors, possibly
// alongside false positives, for a more precise pass to confirm or discard;
// BorrowckLocationInsensitiveAsSensitive promotes them all unchanged.
type BorrowckLocationInsensitive struct{}

func (BorrowckLocationInsensitive) Name() string { return "borrowck_location_insensitive" }
func (BorrowckLocationInsensitive) Inputs() []string {
	return []string{
		store.RelLoanIssuedAt,
		store.RelPlaceholder,
		store.RelSubsetBase,
		store.RelOriginLiveOnEntry,
		store.RelLoanInvalidatedAt,
		store.RelKnownPlaceholderRequires,
	}
}
func (BorrowckLocationInsensitive) Outputs() []string {
	return []string{store.RelPotentialErrors, store.RelPotentialSubsetErrors}
}

func (BorrowckLocationInsensitive) Run(_ context.Context, s *store.FactStore) error {
	loanIssued := store.MustLoad[store.LoanIssuedAt](s, store.RelLoanIssuedAt)
	placeholders := store.MustLoad[store.Placeholder](s, store.RelPlaceholder)
	subsetBase := store.MustLoad[store.SubsetBase](s, store.RelSubsetBase)
	originLive := store.MustLoad[store.OriginLiveOnEntry](s, store.RelOriginLiveOnEntry)
	loanInvalidated := store.MustLoad[store.LoanInvalidatedAt](s, store.RelLoanInvalidatedAt)
	knownRequires := store.MustLoad[store.KnownPlaceholderRequires](s, store.RelKnownPlaceholderRequires)

	contains := computeOriginContainsLoan(loanIssued, placeholders, subsetBase)

	containsIdx := make(map[atom.Origin]map[atom.Loan]struct{})
	for _, c := range contains {
		if containsIdx[c.Key] == nil {
			containsIdx[c.Key] = make(map[atom.Loan]struct{})
		}
		containsIdx[c.Key][c.Val] = struct{}{}
	}

	liveAt := make(map[atom.Origin][]atom.Point)
	for _, l := range originLive.All() {
		liveAt[l.Origin] = append(liveAt[l.Origin], l.Point)
	}
	invalidatedAt := make(map[atom.Loan]map[atom.Point]struct{})
	for _, inv := range loanInvalidated.All() {
		if invalidatedAt[inv.Loan] == nil {
			invalidatedAt[inv.Loan] = make(map[atom.Point]struct{})
		}
		invalidatedAt[inv.Loan][inv.Point] = struct{}{}
	}

	seenErr := make(map[store.PotentialError]struct{})
	var potentialErrors []store.PotentialError
	for origin, loans := range containsIdx {
		for loan := range loans {
			for _, p := range liveAt[origin] {
				if _, ok := invalidatedAt[loan][p]; !ok {
					continue
				}
				pe := store.PotentialError{Loan: loan, Point: p}
				if _, dup := seenErr[pe]; dup {
					continue
				}
				seenErr[pe] = struct{}{}
				potentialErrors = append(potentialErrors, pe)
			}
		}
	}

	requiresIdx := make(map[atom.Origin]map[atom.Loan]struct{})
	for _, r := range knownRequires.All() {
		if requiresIdx[r.Origin] == nil {
			requiresIdx[r.Origin] = make(map[atom.Loan]struct{})
		}
		requiresIdx[r.Origin][r.Loan] = struct{}{}
	}

	seenSub := make(map[store.PotentialSubsetError]struct{})
	var potentialSubsetErrors []store.PotentialSubsetError
	for _, ph1 := range placeholders.All() {
		for _, ph2 := range placeholders.All() {
			if ph1.Origin == ph2.Origin {
				continue
			}
			if _, ok := containsIdx[ph2.Origin][ph1.Loan]; !ok {
				continue
			}
			if _, ok := requiresIdx[ph2.Origin][ph1.Loan]; ok {
				continue
			}
			pse := store.PotentialSubsetError{Origin1: ph1.Origin, Origin2: ph2.Origin}
			if _, dup := seenSub[pse]; dup {
				continue
			}
			seenSub[pse] = struct{}{}
			potentialSubsetErrors = append(potentialSubsetErrors, pse)
		}
	}

	if err := store.Store(s, store.RelPotentialErrors, relation.Build(potentialErrors, store.LessPotentialError)); err != nil {
		return err
	}
	return store.Store(s, store.RelPotentialSubsetErrors, relation.Build(potentialSubsetErrors, store.LessPotentialSubsetError))
}

// computeOriginContainsLoan closes origin-loan containment over the
// point-erased subset relation, seeded from loan_issued_at and placeholder:
// if origin1 contains loan and origin1 is a (point-erased) subset of
// origin2, origin2 contains it too. Shared by the location-insensitive pass
// and by anything needing a quick overapproximate containment check.
func computeOriginContainsLoan(
	loanIssued *relation.Relation[store.LoanIssuedAt],
	placeholders *relation.Relation[store.Placeholder],
	subsetBase *relation.Relation[store.SubsetBase],
) []iteration.KV[atom.Origin, atom.Loan] {
	it := iteration.New()
	lessOL := func(a, b iteration.KV[atom.Origin, atom.Loan]) bool {
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Val < b.Val
	}
	lessOO := func(a, b iteration.KV[atom.Origin, atom.Origin]) bool {
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Val < b.Val
	}

	contains := iteration.NewVariable[iteration.KV[atom.Origin, atom.Loan]](it, "contains", lessOL)
	subset := iteration.NewVariable[iteration.KV[atom.Origin, atom.Origin]](it, "subset", lessOO)

	var seed []iteration.KV[atom.Origin, atom.Loan]
	for _, li := range loanIssued.All() {
		seed = append(seed, iteration.KV[atom.Origin, atom.Loan]{Key: li.Origin, Val: li.Loan})
	}
	for _, ph := range placeholders.All() {
		seed = append(seed, iteration.KV[atom.Origin, atom.Loan]{Key: ph.Origin, Val: ph.Loan})
	}
	contains.Insert(seed)

	seenSubset := make(map[iteration.KV[atom.Origin, atom.Origin]]struct{})
	var subsetSeed []iteration.KV[atom.Origin, atom.Origin]
	for _, sb := range subsetBase.All() {
		kv := iteration.KV[atom.Origin, atom.Origin]{Key: sb.Origin1, Val: sb.Origin2}
		if _, ok := seenSubset[kv]; ok {
			continue
		}
		seenSubset[kv] = struct{}{}
		subsetSeed = append(subsetSeed, kv)
	}
	subset.Insert(subsetSeed)

	for it.Changed() {
		iteration.FromJoin(contains, contains, subset, func(_ atom.Origin, loan atom.Loan, o2 atom.Origin) iteration.KV[atom.Origin, atom.Loan] {
			return iteration.KV[atom.Origin, atom.Loan]{Key: o2, Val: loan}
		})
	}

	return contains.Complete().All()
}

// BorrowckLocationInsensitiveAsSensitive promotes the location-insensitive
// pass's potential_errors/potential_subset_errors into the same errors/
// subset_errors shape the location-sensitive passes produce, by
// synthesizing a single lossy point (0) for every subset-error pair. This
// lets the Hybrid pipeline treat a clean location-insensitive run as proof
// that no further checking is needed, and lets callers of any pipeline read
// a uniform errors/subset_errors pair regardless of which variant ran.
type BorrowckLocationInsensitiveAsSensitive struct{}

func (BorrowckLocationInsensitiveAsSensitive) Name() string {
	return "borrowck_location_insensitive_as_sensitive"
}
func (BorrowckLocationInsensitiveAsSensitive) Inputs() []string {
	return []string{store.RelPotentialErrors, store.RelPotentialSubsetErrors}
}
func (BorrowckLocationInsensitiveAsSensitive) Outputs() []string {
	return []string{store.RelErrors, store.RelSubsetErrors}
}

func (BorrowckLocationInsensitiveAsSensitive) Run(_ context.Context, s *store.FactStore) error {
	potentialErrors := store.MustLoad[store.PotentialError](s, store.RelPotentialErrors)
	potentialSubsetErrors := store.MustLoad[store.PotentialSubsetError](s, store.RelPotentialSubsetErrors)

	var errs []store.LoanError
	for _, pe := range potentialErrors.All() {
		errs = append(errs, store.LoanError{Loan: pe.Loan, Point: pe.Point})
	}

	var subsetErrs []store.SubsetError
	for _, pse := range potentialSubsetErrors.All() {
		subsetErrs = append(subsetErrs, store.SubsetError{Origin1: pse.Origin1, Origin2: pse.Origin2, Point: atom.Point(0)})
	}

	if err := store.Store(s, store.RelErrors, relation.Build(errs, store.LessLoanError)); err != nil {
		return err
	}
	return store.Store(s, store.RelSubsetErrors, relation.Build(subsetErrs, store.LessSubsetError))
}
