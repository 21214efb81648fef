package physac

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollideCircles(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		hit      bool
	}{
		{"deep", 0.5, true},
		{"shallow", 1.5, true},
		{"grazing", 1.999, true},
		{"touching", 2, false},
		{"apart", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testCircle(t, Vector2{0, 0}, 1)
			b := testCircle(t, Vector2{tt.distance, 0}, 1)

			var m Manifold
			require.Equal(t, tt.hit, Collide(a, b, &m))
			if !tt.hit {
				assert.Equal(t, 0, m.ContactCount)
				return
			}
			assert.Equal(t, 1, m.ContactCount)
			assert.InDelta(t, 2-tt.distance, m.Penetration, 1e-12)
			assert.InDelta(t, 1.0, m.Normal[0], 1e-12)
			assert.InDelta(t, 0.0, m.Normal[1], 1e-12)
			assert.InDelta(t, 1.0, m.Contacts[0][0], 1e-12)
		})
	}
}

func TestCollideCoincidentCircles(t *testing.T) {
	a := testCircle(t, Vector2{3, 3}, 1)
	b := testCircle(t, Vector2{3, 3}, 2)

	var m Manifold
	require.True(t, Collide(a, b, &m))
	assert.Equal(t, Vector2{1, 0}, m.Normal)
	assert.Equal(t, 3.0, m.Penetration)
	assert.Equal(t, Vector2{3, 3}, m.Contacts[0])
}

func TestCollideCirclePolygon(t *testing.T) {
	box := testBox(t, Vector2{0, 0}, 2, 2)

	t.Run("face", func(t *testing.T) {
		circle := testCircle(t, Vector2{1.5, 0}, 1)

		var m Manifold
		require.True(t, Collide(circle, box, &m))
		assert.InDelta(t, -1.0, m.Normal[0], 1e-12)
		assert.InDelta(t, 0.0, m.Normal[1], 1e-12)
		assert.InDelta(t, 0.5, m.Penetration, 1e-12)
		assert.InDelta(t, 0.5, m.Contacts[0][0], 1e-12)

		// swapping the arguments flips the normal only
		var swapped Manifold
		require.True(t, Collide(box, circle, &swapped))
		assert.InDelta(t, 1.0, swapped.Normal[0], 1e-12)
		assert.InDelta(t, m.Penetration, swapped.Penetration, 1e-12)
		assert.Equal(t, m.Contacts, swapped.Contacts)
	})

	t.Run("vertex", func(t *testing.T) {
		circle := testCircle(t, Vector2{1.5, 1.5}, 1)

		var m Manifold
		require.True(t, Collide(circle, box, &m))
		assert.InDelta(t, -math.Sqrt2/2, m.Normal[0], 1e-12)
		assert.InDelta(t, -math.Sqrt2/2, m.Normal[1], 1e-12)
		assert.InDelta(t, 1-math.Sqrt(0.5), m.Penetration, 1e-12)
		assert.InDelta(t, 1.0, m.Contacts[0][0], 1e-12)
		assert.InDelta(t, 1.0, m.Contacts[0][1], 1e-12)
	})

	t.Run("beyond vertex", func(t *testing.T) {
		// the boxes overlap but the circle clears the corner
		circle := testCircle(t, Vector2{1.8, 1.8}, 1)
		require.True(t, circle.AABB().Overlaps(box.AABB()))

		var m Manifold
		assert.False(t, Collide(circle, box, &m))
	})

	t.Run("touching is not a contact", func(t *testing.T) {
		var m Manifold
		// resting exactly on the right face
		assert.False(t, Collide(testCircle(t, Vector2{2, 0}, 1), box, &m))
		assert.False(t, Collide(box, testCircle(t, Vector2{0, -2}, 1), &m))
		// exactly reaching the (1, 1) corner: 3-4-5
		assert.False(t, Collide(testCircle(t, Vector2{4, 5}, 5), box, &m))
		assert.Equal(t, 0, m.ContactCount)

		assert.True(t, Collide(testCircle(t, Vector2{4, 5}, 5.001), box, &m))
	})

	t.Run("center inside", func(t *testing.T) {
		circle := testCircle(t, Vector2{0.5, 0}, 0.25)

		var m Manifold
		require.True(t, Collide(circle, box, &m))
		assert.InDelta(t, -1.0, m.Normal[0], 1e-12)
		assert.InDelta(t, 0.75, m.Penetration, 1e-12)
	})

	t.Run("rotated polygon", func(t *testing.T) {
		diamond := testBox(t, Vector2{0, 0}, 2, 2)
		diamond.setRotation(math.Pi / 4)
		circle := testCircle(t, Vector2{0, 1.8}, 0.5)

		var m Manifold
		require.True(t, Collide(circle, diamond, &m))
		assert.InDelta(t, 0.0, m.Normal[0], 1e-9)
		assert.InDelta(t, -1.0, m.Normal[1], 1e-9)
		assert.InDelta(t, math.Sqrt2+0.5-1.8, m.Penetration, 1e-9)
	})
}

func TestCollidePolygons(t *testing.T) {
	a := testBox(t, Vector2{0, 0}, 2, 2)
	b := testBox(t, Vector2{1.5, 0}, 2, 2)

	var m Manifold
	require.True(t, Collide(a, b, &m))
	assert.Equal(t, 2, m.ContactCount)
	assert.InDelta(t, 1.0, m.Normal[0], 1e-12)
	assert.InDelta(t, 0.0, m.Normal[1], 1e-12)
	assert.InDelta(t, 0.5, m.Penetration, 1e-12)
	for i := 0; i < m.ContactCount; i++ {
		assert.InDelta(t, 0.5, m.Contacts[i][0], 1e-12)
		assert.InDelta(t, 1.0, math.Abs(m.Contacts[i][1]), 1e-12)
	}

	var swapped Manifold
	require.True(t, Collide(b, a, &swapped))
	assert.InDelta(t, -1.0, swapped.Normal[0], 1e-12)
	assert.InDelta(t, 0.5, swapped.Penetration, 1e-12)

	// identical inputs give identical manifolds
	var again Manifold
	require.True(t, Collide(a, b, &again))
	assert.Equal(t, m, again)
}

func TestCollidePolygonsStacked(t *testing.T) {
	ground := testStatic(testBox(t, Vector2{0, 0}, 10, 2))
	crate := testBox(t, Vector2{0.5, -1.9}, 2, 2)

	var m Manifold
	require.True(t, Collide(ground, crate, &m))
	assert.Equal(t, 2, m.ContactCount)
	assert.InDelta(t, 0.0, m.Normal[0], 1e-12)
	assert.InDelta(t, -1.0, m.Normal[1], 1e-12)
	assert.InDelta(t, 0.1, m.Penetration, 1e-9)
}

func TestCollidePolygonsApart(t *testing.T) {
	a := testBox(t, Vector2{0, 0}, 2, 2)

	tests := []struct {
		name string
		pos  Vector2
		rot  float64
	}{
		{"right", Vector2{2.5, 0}, 0},
		{"above", Vector2{0, 2.01}, 0},
		{"rotated corner", Vector2{2.5, 2.5}, math.Pi / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBox(t, tt.pos, 2, 2)
			b.setRotation(tt.rot)
			var m Manifold
			assert.False(t, Collide(a, b, &m))
		})
	}
}

func TestPreferFirst(t *testing.T) {
	assert.True(t, preferFirst(-0.5, -0.5))
	assert.True(t, preferFirst(-0.1, -0.5))
	assert.False(t, preferFirst(-0.5, -0.1))
	// within tolerance of b
	assert.True(t, preferFirst(-0.502, -0.5))
}

func TestManifoldMixing(t *testing.T) {
	a := testCircle(t, Vector2{0, 0}, 1)
	b := testCircle(t, Vector2{1, 0}, 1)
	a.Restitution, b.Restitution = 0.2, 0.8
	a.StaticFriction, b.StaticFriction = 0.25, 1
	a.DynamicFriction, b.DynamicFriction = 0, 0.5

	var m Manifold
	require.True(t, Collide(a, b, &m))
	assert.Equal(t, 0.2, m.Restitution)
	assert.InDelta(t, 0.5, m.StaticFriction, 1e-12)
	assert.Equal(t, 0.0, m.DynamicFriction)
}
