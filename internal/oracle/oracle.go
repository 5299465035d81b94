// Package oracle is an independent, pure-Prolog re-derivation of two facts
// the engine also computes itself: CFG point reachability and same-point
// subset transitive closure. It exists for tests to cross-check the engine
// against a third, differently-written evaluator, in the same spirit as the
// engine's own Compare pipeline (internal/pipeline.Compare) but grounded in
// a real external interpreter instead of two variants of our own code.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ichiban/prolog"

	"github.com/polonius-rs/polonius-go/internal/atom"
	"github.com/polonius-rs/polonius-go/internal/store"
)

// Kernel wraps a sandboxed ichiban/prolog interpreter loaded with the two
// starter predicates this package queries: reachable/2 over edge/2, and
// subset_holds/3 over subset/3. Facts are asserted per load call; a Kernel
// is meant to be loaded once per fixture and queried repeatedly.
type Kernel struct {
	mu sync.Mutex
	p  *prolog.Interpreter
}

// New returns a Kernel with its reachability and subset-closure rules
// loaded but no facts asserted yet.
func New() *Kernel {
	p := new(prolog.Interpreter)
	k := &Kernel{p: p}
	_ = k.mustExec(`
		:- dynamic edge/2.
		:- dynamic subset/3.

		reachable(S, S).
		reachable(S, T) :- edge(S, U), reachable(U, T).

		subset_holds(R, R, _).
		subset_holds(R1, R2, P) :- subset(R1, R2, P).
		subset_holds(R1, R3, P) :- subset(R1, R2, P), subset_holds(R2, R3, P).
	`)
	return k
}

func (k *Kernel) mustExec(src string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.p.Exec(src)
}

// Assertz asserts a single clause, wrapped the way the teacher's kernel
// wraps ad hoc facts: as assertz((clause)).
func (k *Kernel) Assertz(ctx context.Context, clause string) error {
	_ = ctx // ichiban/prolog calls are synchronous; reserved for future cancellation.
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.p.Exec(fmt.Sprintf(":- assertz((%s)).", strings.TrimSpace(clause)))
}

// QueryBool reports whether q has at least one solution.
func (k *Kernel) QueryBool(ctx context.Context, q string) (bool, error) {
	_ = ctx
	k.mu.Lock()
	defer k.mu.Unlock()

	sols, err := k.p.Query(q + ".")
	if err != nil {
		return false, err
	}
	defer sols.Close()
	return sols.Next(), nil
}

// LoadCFG asserts one edge/2 fact per cfg_edge tuple.
func (k *Kernel) LoadCFG(ctx context.Context, edges []store.CfgEdge) error {
	for _, e := range edges {
		if err := k.Assertz(ctx, fmt.Sprintf("edge(p%d, p%d)", e.From, e.To)); err != nil {
			return fmt.Errorf("oracle: load cfg_edge(%d,%d): %w", e.From, e.To, err)
		}
	}
	return nil
}

// Reachable reports whether to is reachable from from by following asserted
// edge/2 facts, zero or more hops, in the same direction as the engine's
// forward-edge index (forwardEdgeIndex in internal/units/cfg.go).
func (k *Kernel) Reachable(ctx context.Context, from, to atom.Point) (bool, error) {
	return k.QueryBool(ctx, fmt.Sprintf("reachable(p%d, p%d)", from, to))
}

// LoadSubset asserts one subset/3 fact per subset_base tuple.
func (k *Kernel) LoadSubset(ctx context.Context, base []store.SubsetBase) error {
	for _, sb := range base {
		clause := fmt.Sprintf("subset(r%d, r%d, p%d)", sb.Origin1, sb.Origin2, sb.Point)
		if err := k.Assertz(ctx, clause); err != nil {
			return fmt.Errorf("oracle: load subset_base(%d,%d,%d): %w", sb.Origin1, sb.Origin2, sb.Point, err)
		}
	}
	return nil
}

// SubsetHolds reports whether o1 is a (possibly transitive, same-point)
// subset of o2 at p, per the asserted subset/3 facts alone — no cross-edge
// propagation, matching the location-insensitive analysis's single-point
// closure rule rather than the location-sensitive dying-edge transport.
func (k *Kernel) SubsetHolds(ctx context.Context, o1, o2 atom.Origin, p atom.Point) (bool, error) {
	return k.QueryBool(ctx, fmt.Sprintf("subset_holds(r%d, r%d, p%d)", o1, o2, p))
}
