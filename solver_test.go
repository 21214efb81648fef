package physac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSolver() solver {
	return solver{
		iterations:           DefaultIterations,
		correctionPercent:    DefaultCorrectionPercent,
		penetrationAllowance: DefaultPenetrationAllowance,
	}
}

func TestSolverElasticHeadOn(t *testing.T) {
	a := testCircle(t, Vector2{0, 0}, 1)
	b := testCircle(t, Vector2{1.5, 0}, 1)
	a.Restitution, b.Restitution = 1, 1
	a.Velocity = Vector2{1, 0}
	b.Velocity = Vector2{-1, 0}

	manifolds := make([]Manifold, 1)
	require.True(t, Collide(a, b, &manifolds[0]))

	s := testSolver()
	s.prepare(manifolds, Vector2{}, 0.01)
	s.solveVelocities(manifolds)

	assert.InDelta(t, -1.0, a.Velocity[0], 1e-12)
	assert.InDelta(t, 1.0, b.Velocity[0], 1e-12)
	assert.InDelta(t, 0.0, a.AngularVelocity, 1e-12)
}

func TestSolverInelasticHeadOn(t *testing.T) {
	a := testCircle(t, Vector2{0, 0}, 1)
	b := testCircle(t, Vector2{1.5, 0}, 1)
	a.Velocity = Vector2{2, 0}

	manifolds := make([]Manifold, 1)
	require.True(t, Collide(a, b, &manifolds[0]))

	s := testSolver()
	s.solveVelocities(manifolds)

	// restitution 0: both leave with the shared velocity
	assert.InDelta(t, 1.0, a.Velocity[0], 1e-12)
	assert.InDelta(t, 1.0, b.Velocity[0], 1e-12)
}

func TestSolverStaticBodyNeverMoves(t *testing.T) {
	ground := testStatic(testBox(t, Vector2{0, 0}, 10, 2))
	ball := testCircle(t, Vector2{0, -1.8}, 1)
	ball.Velocity = Vector2{0, 5}

	manifolds := make([]Manifold, 1)
	require.True(t, Collide(ground, ball, &manifolds[0]))

	s := testSolver()
	s.prepare(manifolds, Vector2{0, 9.81}, 0.01)
	s.solveVelocities(manifolds)
	s.correctPositions(manifolds)

	assert.Equal(t, Vector2{0, 0}, ground.Position)
	assert.Equal(t, Vector2{}, ground.Velocity)
	assert.Equal(t, 0.0, ground.AngularVelocity)

	assert.LessOrEqual(t, ball.Velocity[1], 1e-12)
	// pushed out by percent * (penetration - allowance)
	assert.InDelta(t, -1.8-0.4*(0.2-DefaultPenetrationAllowance), ball.Position[1], 1e-9)
}

func TestSolverFrictionSlowsSliding(t *testing.T) {
	ground := testStatic(testBox(t, Vector2{0, 0}, 20, 2))
	crate := testBox(t, Vector2{0, -1.95}, 2, 2)
	crate.Velocity = Vector2{5, 1}

	manifolds := make([]Manifold, 1)
	require.True(t, Collide(ground, crate, &manifolds[0]))

	s := testSolver()
	s.solveVelocities(manifolds)

	assert.Less(t, crate.Velocity[0], 5.0)
	assert.Greater(t, crate.Velocity[0], 0.0)
	assert.Less(t, crate.Velocity[1], 0.5)
}

func TestSolverFrictionless(t *testing.T) {
	ground := testStatic(testBox(t, Vector2{0, 0}, 20, 2))
	ball := testCircle(t, Vector2{0, -1.95}, 1)
	ball.Velocity = Vector2{5, 1}
	ball.StaticFriction, ball.DynamicFriction = 0, 0

	manifolds := make([]Manifold, 1)
	require.True(t, Collide(ground, ball, &manifolds[0]))

	s := testSolver()
	s.solveVelocities(manifolds)

	assert.InDelta(t, 5.0, ball.Velocity[0], 1e-12)
	assert.InDelta(t, 0.0, ball.Velocity[1], 1e-12)
	assert.InDelta(t, 0.0, ball.AngularVelocity, 1e-12)
}

func TestSolverKillsRestingRestitution(t *testing.T) {
	ground := testStatic(testBox(t, Vector2{0, 0}, 10, 2))
	ball := testCircle(t, Vector2{0, -1.95}, 1)
	ground.Restitution, ball.Restitution = 1, 1
	ball.Velocity = Vector2{0, 0.05}

	manifolds := make([]Manifold, 1)
	require.True(t, Collide(ground, ball, &manifolds[0]))
	require.Equal(t, 1.0, manifolds[0].Restitution)

	s := testSolver()
	s.prepare(manifolds, Vector2{0, 9.81}, 0.01)
	assert.Equal(t, 0.0, manifolds[0].Restitution)

	s.solveVelocities(manifolds)
	assert.InDelta(t, 0.0, ball.Velocity[1], 1e-12)
}

func TestSolverFrozenOrientation(t *testing.T) {
	ground := testStatic(testBox(t, Vector2{0, 0}, 20, 2))
	crate := testBox(t, Vector2{0.5, -1.95}, 2, 2)
	crate.FreezeOrient = true
	crate.Velocity = Vector2{3, 2}

	manifolds := make([]Manifold, 1)
	require.True(t, Collide(ground, crate, &manifolds[0]))

	s := testSolver()
	s.solveVelocities(manifolds)
	assert.Equal(t, 0.0, crate.AngularVelocity)
}
