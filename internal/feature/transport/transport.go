// Package transport solves the discrete optimal-transport (transportation)
// problem that underpins the Word Mover's Distance: given a supply
// distribution, a demand distribution, and a dense pairwise cost matrix, find
// the minimum total cost of moving supply mass to demand mass.
//
// The [Solver] interface keeps the feature engine independent of the concrete
// algorithm; [Simplex] is an exact transportation-simplex implementation sized
// for the small dense instances produced by string pairs (the shared
// vocabulary of two utterances, typically tens of words).
package transport

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver computes the minimum-cost transport value between two mass
// distributions under the given pairwise cost matrix.
//
// Implementations must be safe for concurrent use.
type Solver interface {
	// Solve returns min Σ F[i][j]·cost[i][j] over flow matrices F with
	// non-negative entries whose row sums equal supply and column sums equal
	// demand. When the distributions have unequal totals, only
	// min(Σsupply, Σdemand) mass is moved; the surplus is absorbed at zero
	// cost.
	Solve(supply, demand []float64, cost mat.Matrix) (float64, error)
}

// reducedCostTol is the tolerance below which a reduced cost is considered
// non-negative, ending the simplex iteration.
const reducedCostTol = 1e-10

// ErrNoConvergence is returned when the pivoting loop exceeds its iteration
// budget. With exact arithmetic the transportation simplex always terminates;
// hitting this error indicates severe numerical degeneracy in the input.
var ErrNoConvergence = errors.New("transport: simplex did not converge")

// Compile-time assertion that Simplex satisfies the Solver interface.
var _ Solver = (*Simplex)(nil)

// Simplex is an exact transportation-simplex [Solver]: northwest-corner
// initial basis, MODI (u-v) optimality test, and cycle pivoting. It is
// stateless and safe for concurrent use.
type Simplex struct{}

// NewSimplex returns a [Simplex] solver.
func NewSimplex() *Simplex { return &Simplex{} }

// cell addresses one entry of the transport plan.
type cell struct{ i, j int }

// Solve implements [Solver.Solve].
func (s *Simplex) Solve(supply, demand []float64, cost mat.Matrix) (float64, error) {
	r, c := cost.Dims()
	if len(supply) != r || len(demand) != c {
		return 0, fmt.Errorf("transport: cost matrix is %dx%d, supply has %d entries and demand %d",
			r, c, len(supply), len(demand))
	}
	for i, v := range supply {
		if v < 0 || math.IsNaN(v) {
			return 0, fmt.Errorf("transport: supply[%d] = %v is not a valid mass", i, v)
		}
	}
	for j, v := range demand {
		if v < 0 || math.IsNaN(v) {
			return 0, fmt.Errorf("transport: demand[%d] = %v is not a valid mass", j, v)
		}
	}
	if r == 0 || c == 0 {
		return 0, nil
	}

	// Balance the problem with a zero-cost dummy node absorbing the surplus.
	// The epsilon-normalized WMD inputs are off by a hair's breadth at most,
	// but the simplex needs exact row/column sums.
	m, n, costs, sup, dem := balance(supply, demand, cost)
	if m == 1 && n == 1 {
		return sup[0] * costs[0][0], nil
	}

	alloc, basis := northwestCorner(sup, dem)

	// Iteration budget: generous for the tiny instances WMD produces, small
	// enough to fail fast on pathological degeneracy.
	maxIter := 100 * m * n
	for iter := 0; iter < maxIter; iter++ {
		u, v, err := potentials(m, n, costs, basis)
		if err != nil {
			return 0, err
		}

		entering, found := mostNegative(m, n, costs, basis, u, v)
		if !found {
			return objective(alloc, costs), nil
		}

		cycle := findCycle(entering, basis)
		if len(cycle) == 0 {
			return 0, fmt.Errorf("transport: no pivot cycle for cell (%d,%d)", entering.i, entering.j)
		}

		pivot(alloc, basis, cycle)
	}

	return 0, ErrNoConvergence
}

// balance pads the problem with a zero-cost dummy row or column so that total
// supply equals total demand, and materialises the cost matrix as a dense
// slice-of-slices for fast pivoting.
func balance(supply, demand []float64, cost mat.Matrix) (m, n int, costs [][]float64, sup, dem []float64) {
	r, c := cost.Dims()
	var sumS, sumD float64
	for _, v := range supply {
		sumS += v
	}
	for _, v := range demand {
		sumD += v
	}

	m, n = r, c
	extraRow, extraCol := 0, 0
	switch {
	case sumS > sumD:
		extraCol = 1
		n++
	case sumD > sumS:
		extraRow = 1
		m++
	}

	costs = make([][]float64, m)
	for i := range costs {
		costs[i] = make([]float64, n)
		if i < r {
			for j := 0; j < c; j++ {
				costs[i][j] = cost.At(i, j)
			}
		}
	}

	sup = make([]float64, m)
	copy(sup, supply)
	dem = make([]float64, n)
	copy(dem, demand)
	if extraCol == 1 {
		dem[n-1] = sumS - sumD
	}
	if extraRow == 1 {
		sup[m-1] = sumD - sumS
	}
	return m, n, costs, sup, dem
}

// northwestCorner builds an initial basic feasible solution with exactly
// m+n-1 basic cells. Degenerate steps enter the basis with zero allocation so
// the basis always spans rows and columns as a tree.
func northwestCorner(sup, dem []float64) (alloc map[cell]float64, basis []cell) {
	m, n := len(sup), len(dem)
	remS := make([]float64, m)
	copy(remS, sup)
	remD := make([]float64, n)
	copy(remD, dem)

	alloc = make(map[cell]float64, m+n-1)
	basis = make([]cell, 0, m+n-1)

	i, j := 0, 0
	for len(basis) < m+n-1 {
		q := math.Min(remS[i], remD[j])
		cl := cell{i, j}
		alloc[cl] = q
		basis = append(basis, cl)
		remS[i] -= q
		remD[j] -= q
		// Both indices are clamped to their last row/column: balance equalizes
		// the totals only up to floating-point rounding, so a stray ulp of
		// mass must not push the walk off the grid.
		switch {
		case remS[i] <= remD[j] && i < m-1:
			i++
		case j < n-1:
			j++
		default:
			i++
		}
	}
	return alloc, basis
}

// potentials solves u[i] + v[j] = cost[i][j] over the basic cells, anchoring
// u[0] = 0. The basis forms a spanning tree, so the system has a unique
// solution reachable by propagation.
func potentials(m, n int, costs [][]float64, basis []cell) (u, v []float64, err error) {
	u = make([]float64, m)
	v = make([]float64, n)
	uSet := make([]bool, m)
	vSet := make([]bool, n)
	uSet[0] = true

	assigned := 1
	for assigned < m+n {
		progressed := false
		for _, b := range basis {
			switch {
			case uSet[b.i] && !vSet[b.j]:
				v[b.j] = costs[b.i][b.j] - u[b.i]
				vSet[b.j] = true
				assigned++
				progressed = true
			case vSet[b.j] && !uSet[b.i]:
				u[b.i] = costs[b.i][b.j] - v[b.j]
				uSet[b.i] = true
				assigned++
				progressed = true
			}
		}
		if !progressed {
			return nil, nil, errors.New("transport: basis does not span all rows and columns")
		}
	}
	return u, v, nil
}

// mostNegative returns the non-basic cell with the most negative reduced cost
// cost[i][j] - u[i] - v[j], or found=false when the current plan is optimal.
func mostNegative(m, n int, costs [][]float64, basis []cell, u, v []float64) (cell, bool) {
	inBasis := make(map[cell]bool, len(basis))
	for _, b := range basis {
		inBasis[b] = true
	}

	best := cell{-1, -1}
	bestRC := -reducedCostTol
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			cl := cell{i, j}
			if inBasis[cl] {
				continue
			}
			if rc := costs[i][j] - u[i] - v[j]; rc < bestRC {
				bestRC = rc
				best = cl
			}
		}
	}
	return best, best.i >= 0
}

// findCycle returns the unique alternating cycle through entering and the
// basic cells, starting at entering. The cycle is found by repeatedly
// eliminating cells that are alone in their row or column; the survivors each
// share their row with exactly one other survivor and their column with
// exactly one other, which makes the walk from entering deterministic.
func findCycle(entering cell, basis []cell) []cell {
	cells := make(map[cell]bool, len(basis)+1)
	for _, b := range basis {
		cells[b] = true
	}
	cells[entering] = true

	for {
		rowCount := map[int]int{}
		colCount := map[int]int{}
		for cl := range cells {
			rowCount[cl.i]++
			colCount[cl.j]++
		}
		removed := false
		for cl := range cells {
			if cl == entering {
				continue
			}
			if rowCount[cl.i] < 2 || colCount[cl.j] < 2 {
				delete(cells, cl)
				removed = true
			}
		}
		if !removed {
			break
		}
	}

	// Walk the cycle: leave entering along its row, then alternate.
	cycle := []cell{entering}
	cur := entering
	matchRow := true
	for {
		next := cell{-1, -1}
		for cl := range cells {
			if cl == cur {
				continue
			}
			if matchRow && cl.i == cur.i {
				next = cl
				break
			}
			if !matchRow && cl.j == cur.j {
				next = cl
				break
			}
		}
		if next.i < 0 {
			return nil
		}
		if next == entering {
			return cycle
		}
		cycle = append(cycle, next)
		if cur != entering {
			// entering stays in the set so the walk can close the loop.
			delete(cells, cur)
		}
		cur = next
		matchRow = !matchRow
	}
}

// pivot shifts θ mass around the cycle: + at even positions (entering is
// position 0), − at odd positions, where θ is the smallest allocation among
// the odd positions. The first odd cell reaching zero leaves the basis and
// entering joins it.
func pivot(alloc map[cell]float64, basis []cell, cycle []cell) {
	theta := math.Inf(1)
	leaving := -1
	for k := 1; k < len(cycle); k += 2 {
		if a := alloc[cycle[k]]; a < theta {
			theta = a
			leaving = k
		}
	}

	for k, cl := range cycle {
		if k == 0 {
			alloc[cl] = theta
			continue
		}
		if k%2 == 1 {
			alloc[cl] -= theta
		} else {
			alloc[cl] += theta
		}
	}

	out := cycle[leaving]
	delete(alloc, out)
	for k, b := range basis {
		if b == out {
			basis[k] = cycle[0]
			return
		}
	}
}

// objective sums allocation × cost over the plan.
func objective(alloc map[cell]float64, costs [][]float64) float64 {
	var total float64
	for cl, a := range alloc {
		total += a * costs[cl.i][cl.j]
	}
	return total
}
