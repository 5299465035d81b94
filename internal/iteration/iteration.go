package iteration

// changer is the type-erased half of Variable that an Iteration needs to
// drive rounds without knowing every Variable's tuple type.
type changer interface {
	step() bool
}

// Iteration owns a pool of Variables and drives them to a joint least fixed
// point. Rule application order within a round never matters (every rule is
// a monotone set union); Iteration does not impose one beyond call order.
type Iteration struct {
	vars []changer
}

// New creates an empty Iteration.
func New() *Iteration {
	return &Iteration{}
}

// NewVariable creates a Variable owned by it and registers it so that
// Changed folds it on every round.
func NewVariable[T comparable](it *Iteration, name string, less func(a, b T) bool) *Variable[T] {
	v := newVariable[T](name, less)
	it.vars = append(it.vars, v)
	return v
}

// Changed runs one round's bookkeeping across every registered Variable:
// recent is merged into stable, staged tuples are promoted to the new
// recent. It returns whether any variable produced a genuinely new tuple,
// i.e. whether the fixed point has not yet been reached.
func (it *Iteration) Changed() bool {
	changed := false
	for _, v := range it.vars {
		if v.step() {
			changed = true
		}
	}
	return changed
}
