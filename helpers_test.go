package physac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testCircle(t *testing.T, pos Vector2, radius float64) *Body {
	t.Helper()
	shape, err := NewCircleShape(radius)
	require.NoError(t, err)
	b := newBody(pos, shape, 1)
	return &b
}

func testBox(t *testing.T, pos Vector2, width, height float64) *Body {
	t.Helper()
	shape, err := NewRectangleShape(width, height)
	require.NoError(t, err)
	b := newBody(pos, shape, 1)
	return &b
}

func testStatic(b *Body) *Body {
	b.setStatic(true)
	return b
}

// testWorld returns an initialized world with a 10ms step and the given gravity.
func testWorld(t *testing.T, gravity Vector2, mutate ...func(*Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Gravity = gravity
	cfg.TimeStepMs = 10
	for _, m := range mutate {
		m(&cfg)
	}
	w, err := NewWorld(cfg)
	require.NoError(t, err)
	require.NoError(t, w.Init())
	return w
}

func ticks(w *World, n int) time.Duration {
	return time.Duration(n) * w.TimeStep()
}
