package physac

import "math"

// solver resolves contact manifolds with sequential impulses followed by a
// fractional positional correction. There is no warm starting between ticks.
type solver struct {
	iterations           int
	correctionPercent    float64
	penetrationAllowance float64
}

// prepare drops restitution for contacts that are only closing at the speed gravity
// adds in one step, so resting bodies do not jitter.
func (s *solver) prepare(manifolds []Manifold, gravity Vector2, dt float64) {
	restingSq := lenSq(gravity.Mul(dt)) + epsilon
	for i := range manifolds {
		m := &manifolds[i]
		a, b := m.bodyA, m.bodyB
		for c := 0; c < m.ContactCount; c++ {
			rA := m.Contacts[c].Sub(a.Position)
			rB := m.Contacts[c].Sub(b.Position)
			rv := b.velocityAt(rB).Sub(a.velocityAt(rA))
			if lenSq(rv) < restingSq {
				m.Restitution = 0
			}
		}
	}
}

func (s *solver) solveVelocities(manifolds []Manifold) {
	for iter := 0; iter < s.iterations; iter++ {
		for i := range manifolds {
			resolveImpulse(&manifolds[i])
		}
	}
}

func effectiveMass(a, b *Body, rA, rB, dir Vector2) float64 {
	rAxD := cross(rA, dir)
	rBxD := cross(rB, dir)
	sum := a.InverseMass + b.InverseMass
	if !a.FreezeOrient {
		sum += rAxD * rAxD * a.InverseInertia
	}
	if !b.FreezeOrient {
		sum += rBxD * rBxD * b.InverseInertia
	}
	return sum
}

func resolveImpulse(m *Manifold) {
	a, b := m.bodyA, m.bodyB
	if a.InverseMass+b.InverseMass <= epsilon {
		return
	}

	contacts := float64(m.ContactCount)
	for c := 0; c < m.ContactCount; c++ {
		rA := m.Contacts[c].Sub(a.Position)
		rB := m.Contacts[c].Sub(b.Position)

		rv := b.velocityAt(rB).Sub(a.velocityAt(rA))
		contactVelocity := rv.Dot(m.Normal)
		if contactVelocity > 0 {
			continue
		}

		invMassSum := effectiveMass(a, b, rA, rB, m.Normal)
		if invMassSum <= epsilon {
			continue
		}

		j := -(1 + m.Restitution) * contactVelocity
		j /= invMassSum
		j /= contacts

		impulse := m.Normal.Mul(j)
		a.applyImpulse(impulse.Mul(-1), rA)
		b.applyImpulse(impulse, rB)

		// Friction along the post-impulse tangential velocity.
		rv = b.velocityAt(rB).Sub(a.velocityAt(rA))
		tangent := rv.Sub(m.Normal.Mul(rv.Dot(m.Normal)))
		if lenSq(tangent) < epsilon*epsilon {
			continue
		}
		tangent = normalize(tangent)

		invMassSumT := effectiveMass(a, b, rA, rB, tangent)
		if invMassSumT <= epsilon {
			continue
		}
		jt := -rv.Dot(tangent)
		jt /= invMassSumT
		jt /= contacts

		if math.Abs(jt) <= epsilon {
			continue
		}

		// Coulomb: stick while under the static cone, otherwise slide.
		var frictionImpulse Vector2
		if math.Abs(jt) < j*m.StaticFriction {
			frictionImpulse = tangent.Mul(jt)
		} else {
			frictionImpulse = tangent.Mul(-j * m.DynamicFriction)
		}

		a.applyImpulse(frictionImpulse.Mul(-1), rA)
		b.applyImpulse(frictionImpulse, rB)
	}
}

func (s *solver) correctPositions(manifolds []Manifold) {
	for i := range manifolds {
		m := &manifolds[i]
		a, b := m.bodyA, m.bodyB

		invMassSum := a.InverseMass + b.InverseMass
		if invMassSum <= epsilon {
			continue
		}

		amount := math.Max(m.Penetration-s.penetrationAllowance, 0) / invMassSum * s.correctionPercent
		if amount == 0 {
			continue
		}
		correction := m.Normal.Mul(amount)

		if a.dynamic() {
			a.Position = a.Position.Sub(correction.Mul(a.InverseMass))
		}
		if b.dynamic() {
			b.Position = b.Position.Add(correction.Mul(b.InverseMass))
		}
	}
}
