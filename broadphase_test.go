package physac

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBodies(t *testing.T, n int, seed int64) ([]*Body, []AABB) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*Body, 0, n)
	boxes := make([]AABB, 0, n)
	for i := 0; i < n; i++ {
		pos := Vector2{rng.Float64() * 100, rng.Float64() * 100}
		var b *Body
		if rng.Intn(2) == 0 {
			b = testCircle(t, pos, 1+rng.Float64()*4)
		} else {
			b = testBox(t, pos, 1+rng.Float64()*8, 1+rng.Float64()*8)
			b.setRotation(rng.Float64() * 3)
		}
		if rng.Intn(5) == 0 {
			b.setStatic(true)
		}
		bodies = append(bodies, b)
		boxes = append(boxes, b.AABB())
	}
	return bodies, boxes
}

func TestBroadPhasesAgree(t *testing.T) {
	bodies, boxes := randomBodies(t, 120, 42)

	naive, err := newBroadPhase(BroadPhaseNaive, 0)
	require.NoError(t, err)
	grid, err := newBroadPhase(BroadPhaseGrid, 10)
	require.NoError(t, err)

	want := naive.pairs(bodies, boxes, nil)
	got := grid.pairs(bodies, boxes, nil)
	require.NotEmpty(t, want)
	assert.Equal(t, want, got)

	// the grid is reusable between ticks
	got = grid.pairs(bodies, boxes, got[:0])
	assert.Equal(t, want, got)

	for _, p := range want {
		assert.Less(t, p.a, p.b)
		assert.False(t, bodies[p.a].Static && bodies[p.b].Static)
	}
}

func TestBroadPhaseSkipsStaticPairs(t *testing.T) {
	a := testStatic(testBox(t, Vector2{0, 0}, 4, 4))
	b := testStatic(testBox(t, Vector2{1, 0}, 4, 4))
	c := testCircle(t, Vector2{2, 0}, 1)
	bodies := []*Body{a, b, c}
	boxes := []AABB{a.AABB(), b.AABB(), c.AABB()}

	for _, kind := range []BroadPhaseKind{BroadPhaseNaive, BroadPhaseGrid} {
		bp, err := newBroadPhase(kind, 3)
		require.NoError(t, err)
		pairs := bp.pairs(bodies, boxes, nil)
		assert.Equal(t, []candidatePair{{a: 0, b: 2}, {a: 1, b: 2}}, pairs, string(kind))
	}
}

func TestNewBroadPhaseValidation(t *testing.T) {
	_, err := newBroadPhase(BroadPhaseGrid, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = newBroadPhase("octree", 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	bp, err := newBroadPhase("", 0)
	require.NoError(t, err)
	assert.IsType(t, naiveBroadPhase{}, bp)
}

func TestSpatialGridForgetsVacatedCells(t *testing.T) {
	w := testWorld(t, Vector2{0, 50}, func(c *Config) {
		c.BroadPhase = BroadPhaseGrid
		c.GridCellSize = 1
	})
	for i := 0; i < 4; i++ {
		_, err := w.CreateCircle(Vector2{float64(i) * 3, 0}, 0.5, 1)
		require.NoError(t, err)
	}
	grid := w.broad.(*spatialGrid)

	_, err := w.Step(ticks(w, 1000))
	require.NoError(t, err)
	h, ok := w.BodyAt(0)
	require.True(t, ok)
	body, _ := w.Body(h)
	require.Greater(t, body.Position[1], 1000.0)

	// each circle covers at most 2x2 cells, and the previous tick's cells linger one tick
	assert.LessOrEqual(t, len(grid.grid), 4*4*2)
}
