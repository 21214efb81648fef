package physac

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

type BroadPhaseKind string

const (
	// BroadPhaseNaive tests every pair of boxes: O(n^2), fine for a few hundred bodies.
	BroadPhaseNaive BroadPhaseKind = "naive"
	// BroadPhaseGrid buckets boxes into a uniform grid before testing.
	BroadPhaseGrid BroadPhaseKind = "grid"
)

// candidatePair indexes into the tick's active body list with a < b.
type candidatePair struct {
	a, b int
}

type broadPhase interface {
	// pairs appends the overlapping pairs of boxes to dst in ascending (a, b) order.
	pairs(bodies []*Body, boxes []AABB, dst []candidatePair) []candidatePair
}

func newBroadPhase(kind BroadPhaseKind, cellSize float64) (broadPhase, error) {
	switch kind {
	case BroadPhaseNaive, "":
		return naiveBroadPhase{}, nil
	case BroadPhaseGrid:
		if !(cellSize > 0) || math.IsInf(cellSize, 0) {
			return nil, fmt.Errorf("%w: grid cell size %v must be > 0", ErrInvalidParameter, cellSize)
		}
		return newSpatialGrid(cellSize), nil
	}
	return nil, fmt.Errorf("%w: unknown broad-phase %q", ErrInvalidParameter, kind)
}

func skipPair(a, b *Body) bool {
	return a.Static && b.Static
}

type naiveBroadPhase struct{}

func (naiveBroadPhase) pairs(bodies []*Body, boxes []AABB, dst []candidatePair) []candidatePair {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if skipPair(bodies[i], bodies[j]) {
				continue
			}
			if boxes[i].Overlaps(boxes[j]) {
				dst = append(dst, candidatePair{a: i, b: j})
			}
		}
	}
	return dst
}

// ==================== SPATIAL GRID ====================

type gridCell struct {
	X, Y int
}

type spatialGrid struct {
	grid     map[gridCell][]int
	cellSize float64
	seen     map[candidatePair]struct{}
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	return &spatialGrid{
		grid:     make(map[gridCell][]int),
		cellSize: cellSize,
		seen:     make(map[candidatePair]struct{}),
	}
}

// clear keeps the cells filled last tick for reuse and drops the ones left empty, so
// the map tracks the cells bodies currently cover rather than every cell ever visited.
func (sg *spatialGrid) clear() {
	for key, indices := range sg.grid {
		if len(indices) == 0 {
			delete(sg.grid, key)
			continue
		}
		sg.grid[key] = indices[:0]
	}
	clear(sg.seen)
}

func (sg *spatialGrid) insert(index int, box AABB) {
	minCell := sg.cell(box.Min)
	maxCell := sg.cell(box.Max)
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			c := gridCell{X: x, Y: y}
			sg.grid[c] = append(sg.grid[c], index)
		}
	}
}

func (sg *spatialGrid) cell(pos Vector2) gridCell {
	return gridCell{
		X: int(math.Floor(pos[0] / sg.cellSize)),
		Y: int(math.Floor(pos[1] / sg.cellSize)),
	}
}

func (sg *spatialGrid) pairs(bodies []*Body, boxes []AABB, dst []candidatePair) []candidatePair {
	sg.clear()
	for i := range bodies {
		sg.insert(i, boxes[i])
	}

	start := len(dst)
	for _, indices := range sg.grid {
		for i := 0; i < len(indices); i++ {
			for j := i + 1; j < len(indices); j++ {
				a, b := indices[i], indices[j]
				if a > b {
					a, b = b, a
				}
				if skipPair(bodies[a], bodies[b]) {
					continue
				}
				key := candidatePair{a: a, b: b}
				if _, ok := sg.seen[key]; ok {
					continue
				}
				sg.seen[key] = struct{}{}
				if boxes[a].Overlaps(boxes[b]) {
					dst = append(dst, key)
				}
			}
		}
	}

	// Map iteration order is random; the solver needs a stable order.
	slices.SortFunc(dst[start:], func(x, y candidatePair) int {
		if c := cmp.Compare(x.a, y.a); c != 0 {
			return c
		}
		return cmp.Compare(x.b, y.b)
	})
	return dst
}
