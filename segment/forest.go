package segment

import "github.com/pkg/errors"

// element is one disjoint-set node. size and rank are only meaningful at a
// root; a root is its own parent.
type element struct {
	rank   int
	size   int
	parent int
}

// Forest is a disjoint-set forest over pixel indices with path compression
// and union by rank.
type Forest struct {
	elts []element
	num  int
}

// NewForest creates a forest of n singleton sets.
func NewForest(n int) *Forest {
	if n < 0 {
		n = 0
	}
	elts := make([]element, n)
	for i := range elts {
		elts[i] = element{rank: 0, size: 1, parent: i}
	}
	return &Forest{elts: elts, num: n}
}

// Len returns the number of elements.
func (f *Forest) Len() int {
	return len(f.elts)
}

// NumSets returns the current number of disjoint sets.
func (f *Forest) NumSets() int {
	return f.num
}

// Find returns the root of the set containing x. Every node on the path from
// x to the root is re-pointed directly at the root.
func (f *Forest) Find(x int) (int, error) {
	if err := f.check(x); err != nil {
		return 0, err
	}
	return f.find(x), nil
}

// Size returns the number of elements in the set x belongs to. Callers
// normally pass a root.
func (f *Forest) Size(x int) (int, error) {
	if err := f.check(x); err != nil {
		return 0, err
	}
	return f.size(x), nil
}

// Join merges the sets rooted at x and y. The root with the larger rank
// absorbs the other; on a tie y absorbs x and its rank grows by one.
// Both arguments must be distinct roots.
func (f *Forest) Join(x, y int) error {
	if err := f.check(x); err != nil {
		return err
	}
	if err := f.check(y); err != nil {
		return err
	}
	if x == y {
		return errors.Wrapf(ErrSameSet, "join(%d, %d)", x, y)
	}
	if f.elts[x].parent != x {
		return errors.Wrapf(ErrNotRoot, "join: %d", x)
	}
	if f.elts[y].parent != y {
		return errors.Wrapf(ErrNotRoot, "join: %d", y)
	}
	f.join(x, y)
	return nil
}

// Roots returns the root of every element, indexed by element. Paths are
// compressed as a side effect.
func (f *Forest) Roots() []int {
	roots := make([]int, len(f.elts))
	for i := range f.elts {
		roots[i] = f.find(i)
	}
	return roots
}

func (f *Forest) check(x int) error {
	if x < 0 || x >= len(f.elts) {
		return errors.Wrapf(ErrInvalidIndex, "%d not in [0, %d)", x, len(f.elts))
	}
	return nil
}

func (f *Forest) find(x int) int {
	root := x
	for f.elts[root].parent != root {
		root = f.elts[root].parent
	}
	for f.elts[x].parent != root {
		x, f.elts[x].parent = f.elts[x].parent, root
	}
	return root
}

func (f *Forest) size(x int) int {
	return f.elts[f.find(x)].size
}

// join returns the surviving root. x and y must be distinct roots.
func (f *Forest) join(x, y int) int {
	f.num--
	if f.elts[x].rank > f.elts[y].rank {
		f.elts[y].parent = x
		f.elts[x].size += f.elts[y].size
		return x
	}
	f.elts[x].parent = y
	f.elts[y].size += f.elts[x].size
	if f.elts[x].rank == f.elts[y].rank {
		f.elts[y].rank++
	}
	return y
}
