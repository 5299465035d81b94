// Package units implements the fact engine's computation units: the
// individual steps a pipeline sequences, each reading a fixed set of named
// relations from a store.FactStore and writing another fixed set. Every
// unit here is grounded directly on one subsection of the engine's
// published design and, where the original Rust implementation was
// available for cross-reference, on its compute/ and output/ packages.
package units

import (
	"context"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/relation"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// CFGClosure computes cfg_node from cfg_edge: a point belongs to the graph
// if it appears as either endpoint of some edge.
type CFGClosure struct{}

func (CFGClosure) Name() string      { return "cfg_closure" }
func (CFGClosure) Inputs() []string  { return []string{store.RelCfgEdge} }
func (CFGClosure) Outputs() []string { return []string{store.RelCfgNode} }

func (CFGClosure) Run(_ context.Context, s *store.FactStore) error {
	edges := store.MustLoad[store.CfgEdge](s, store.RelCfgEdge)

	seen := make(map[atom.Point]struct{}, edges.Len()*2)
	for _, e := range edges.All() {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}
	nodes := make([]store.CfgNode, 0, len(seen))
	for p := range seen {
		nodes = append(nodes, store.CfgNode{Point: p})
	}

	return store.Store(s, store.RelCfgNode, relation.Build(nodes, store.LessCfgNode))
}

// reverseEdgeIndex adapts a cfg_edge relation to the (to -> []from) index
// every backward propagation in this package walks.
func reverseEdgeIndex(edges *relation.Relation[store.CfgEdge]) func(atom.Point) []atom.Point {
	idx := make(map[atom.Point][]atom.Point, edges.Len())
	for _, e := range edges.All() {
		idx[e.To] = append(idx[e.To], e.From)
	}
	return func(p atom.Point) []atom.Point { return idx[p] }
}

// forwardEdgeIndex adapts a cfg_edge relation to the (from -> []to) index
// every forward propagation in this package walks.
func forwardEdgeIndex(edges *relation.Relation[store.CfgEdge]) func(atom.Point) []atom.Point {
	idx := make(map[atom.Point][]atom.Point, edges.Len())
	for _, e := range edges.All() {
		idx[e.From] = append(idx[e.From], e.To)
	}
	return func(p atom.Point) []atom.Point { return idx[p] }
}
