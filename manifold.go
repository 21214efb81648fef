package physac

import "math"

// Manifold is the contact information of one colliding pair for one tick.
// Normal points from body A to body B.
type Manifold struct {
	A, B Handle

	Normal       Vector2
	Penetration  float64
	Contacts     [2]Vector2
	ContactCount int

	Restitution     float64
	StaticFriction  float64
	DynamicFriction float64

	bodyA, bodyB *Body
}

// CombineRestitution takes the smaller coefficient, so a dead body never bounces.
func CombineRestitution(a, b float64) float64 {
	return math.Min(a, b)
}

// CombineFriction takes the geometric mean; a frictionless body makes the pair frictionless.
func CombineFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

func (m *Manifold) mix() {
	a, b := m.bodyA, m.bodyB
	m.Restitution = CombineRestitution(a.Restitution, b.Restitution)
	m.StaticFriction = CombineFriction(a.StaticFriction, b.StaticFriction)
	m.DynamicFriction = CombineFriction(a.DynamicFriction, b.DynamicFriction)
}
