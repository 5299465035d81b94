// Package input loads the base facts a pipeline run needs from a JSON
// document into a store.FactStore. The engine's actual fact loader (the
// tab-delimited reader and text interner the original implementation uses)
// is an out-of-scope external collaborator per this project's scope; this
// is the minimal stand-in poloniusctl needs to have something runnable,
// not a re-implementation of that collaborator.
package input

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// Facts is the on-disk shape poloniusctl reads: one JSON array per external
// input relation, keyed by the relation's canonical name. Every field is
// optional; an absent array means that relation has no facts.
type Facts struct {
	LoanIssuedAt               []store.LoanIssuedAt               `json:"loan_issued_at"`
	UniversalRegion            []store.UniversalRegion            `json:"universal_region"`
	CfgEdge                    []store.CfgEdge                    `json:"cfg_edge"`
	LoanKilledAt               []store.LoanKilledAt               `json:"loan_killed_at"`
	SubsetBase                 []store.SubsetBase                 `json:"subset_base"`
	LoanInvalidatedAt          []store.LoanInvalidatedAt          `json:"loan_invalidated_at"`
	VarUsedAt                  []store.VarUsedAt                  `json:"var_used_at"`
	VarDefinedAt               []store.VarDefinedAt               `json:"var_defined_at"`
	VarDroppedAt               []store.VarDroppedAt               `json:"var_dropped_at"`
	UseOfVarDerefsOrigin       []store.UseOfVarDerefsOrigin       `json:"use_of_var_derefs_origin"`
	DropOfVarDerefsOrigin      []store.DropOfVarDerefsOrigin      `json:"drop_of_var_derefs_origin"`
	ChildPath                  []store.ChildPath                  `json:"child_path"`
	PathIsVar                  []store.PathIsVar                  `json:"path_is_var"`
	PathAssignedAtBase         []store.PathAssignedAtBase         `json:"path_assigned_at_base"`
	PathMovedAtBase            []store.PathMovedAtBase            `json:"path_moved_at_base"`
	PathAccessedAtBase         []store.PathAccessedAtBase         `json:"path_accessed_at_base"`
	KnownPlaceholderSubsetBase []store.KnownPlaceholderSubsetBase `json:"known_placeholder_subset_base"`
	Placeholder                []store.Placeholder                `json:"placeholder"`
}

// Load decodes a Facts document from r.
func Load(r io.Reader) (*Facts, error) {
	var f Facts
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("input: decode facts: %w", err)
	}
	return &f, nil
}

// Populate writes every relation in f into s, via store.Store so a fixture
// loaded twice into the same store is still subject to the normal
// write-once-or-equal check.
func (f *Facts) Populate(s *store.FactStore) error {
	s.SetCurrentUnit("input.Populate")
	stores := []func() error{
		func() error {
			return store.Store(s, store.RelLoanIssuedAt, relation.Build(f.LoanIssuedAt, store.LessLoanIssuedAt))
		},
		func() error {
			return store.Store(s, store.RelUniversalRegion, relation.Build(f.UniversalRegion, store.LessUniversalRegion))
		},
		func() error { return store.Store(s, store.RelCfgEdge, relation.Build(f.CfgEdge, store.LessCfgEdge)) },
		func() error {
			return store.Store(s, store.RelLoanKilledAt, relation.Build(f.LoanKilledAt, store.LessLoanKilledAt))
		},
		func() error {
			return store.Store(s, store.RelSubsetBase, relation.Build(f.SubsetBase, store.LessSubsetBase))
		},
		func() error {
			return store.Store(s, store.RelLoanInvalidatedAt, relation.Build(f.LoanInvalidatedAt, store.LessLoanInvalidatedAt))
		},
		func() error {
			return store.Store(s, store.RelVarUsedAt, relation.Build(f.VarUsedAt, store.LessVarUsedAt))
		},
		func() error {
			return store.Store(s, store.RelVarDefinedAt, relation.Build(f.VarDefinedAt, store.LessVarDefinedAt))
		},
		func() error {
			return store.Store(s, store.RelVarDroppedAt, relation.Build(f.VarDroppedAt, store.LessVarDroppedAt))
		},
		func() error {
			return store.Store(s, store.RelUseOfVarDerefsOrigin, relation.Build(f.UseOfVarDerefsOrigin, store.LessUseOfVarDerefsOrigin))
		},
		func() error {
			return store.Store(s, store.RelDropOfVarDerefsOrigin, relation.Build(f.DropOfVarDerefsOrigin, store.LessDropOfVarDerefsOrigin))
		},
		func() error {
			return store.Store(s, store.RelChildPath, relation.Build(f.ChildPath, store.LessChildPath))
		},
		func() error {
			return store.Store(s, store.RelPathIsVar, relation.Build(f.PathIsVar, store.LessPathIsVar))
		},
		func() error {
			return store.Store(s, store.RelPathAssignedAtBase, relation.Build(f.PathAssignedAtBase, store.LessPathAssignedAtBase))
		},
		func() error {
			return store.Store(s, store.RelPathMovedAtBase, relation.Build(f.PathMovedAtBase, store.LessPathMovedAtBase))
		},
		func() error {
			return store.Store(s, store.RelPathAccessedAtBase, relation.Build(f.PathAccessedAtBase, store.LessPathAccessedAtBase))
		},
		func() error {
			return store.Store(s, store.RelKnownPlaceholderSubsetBase, relation.Build(f.KnownPlaceholderSubsetBase, store.LessKnownPlaceholderSubsetBase))
		},
		func() error {
			return store.Store(s, store.RelPlaceholder, relation.Build(f.Placeholder, store.LessPlaceholder))
		},
	}
	for _, fn := range stores {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
