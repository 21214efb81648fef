package physac

import "fmt"

// shatterShrink pulls fragment vertices toward their centroid so neighbours do not
// start out overlapping.
const shatterShrink = 0.95

// Shatter splits a polygon body into one triangle per edge, fanned around point, and
// pushes each fragment away from point with an impulse of force times its distance.
// Circles, stale handles and points outside the polygon are ignored.
func (w *World) Shatter(h Handle, point Vector2, force float64) ([]Handle, error) {
	if err := w.requireActive(); err != nil {
		return nil, err
	}
	b := w.pool.lookup(h)
	if b == nil || b.Shape.Type != ShapePolygon {
		return nil, nil
	}

	parent := *b
	poly := &parent.Shape.Polygon
	rot := parent.transform
	local := rot.Transpose().Mul2x1(point.Sub(parent.Position))
	if !polygonContains(poly, local) {
		return nil, nil
	}

	type fragment struct {
		shape  Shape
		center Vector2
	}
	fragments := make([]fragment, 0, poly.VertexCount)
	for i := 0; i < poly.VertexCount; i++ {
		v1 := poly.Vertices[i]
		v2 := poly.Vertices[nextIndex(i, poly.VertexCount)]
		centroid := v1.Add(v2).Add(local).Mul(1.0 / 3.0)

		tri := []Vector2{
			v1.Sub(centroid).Mul(shatterShrink),
			v2.Sub(centroid).Mul(shatterShrink),
			local.Sub(centroid).Mul(shatterShrink),
		}
		shape, offset, err := NewPolygonShape(tri)
		if err != nil {
			// point sits on this edge; the sliver has no area
			continue
		}
		fragments = append(fragments, fragment{shape: shape, center: centroid.Add(offset)})
	}
	if len(fragments) == 0 {
		return nil, nil
	}
	if w.pool.Available()+1 < len(fragments) {
		return nil, fmt.Errorf("%w: shatter needs %d slots, %d free", ErrPoolExhausted, len(fragments), w.pool.Available()+1)
	}

	if err := w.pool.remove(h); err != nil {
		return nil, err
	}

	handles := make([]Handle, 0, len(fragments))
	for _, f := range fragments {
		offset := rot.Mul2x1(f.center)
		body := newBody(parent.Position.Add(offset), f.shape, parent.Density)
		body.Enabled = parent.Enabled
		body.Restitution = parent.Restitution
		body.StaticFriction = parent.StaticFriction
		body.DynamicFriction = parent.DynamicFriction
		body.UseGravity = parent.UseGravity
		body.FreezeOrient = parent.FreezeOrient
		body.setStatic(parent.Static)
		body.setRotation(parent.Orient)

		if body.dynamic() {
			body.Velocity = parent.velocityAt(offset)
			body.AngularVelocity = parent.AngularVelocity

			away := body.Position.Sub(point)
			impulse := normalize(away).Mul(force * away.Len())
			body.applyImpulse(impulse, Vector2{})
		}

		fh, err := w.pool.insert(body)
		if err != nil {
			// capacity was checked above
			return handles, err
		}
		handles = append(handles, fh)
	}

	w.bodies.Store(int64(w.pool.Len()))
	w.log.Debugf("shattered body %s into %d fragments", h, len(handles))
	return handles, nil
}

// polygonContains reports whether a local-space point is strictly inside the polygon.
func polygonContains(p *Polygon, point Vector2) bool {
	for i := 0; i < p.VertexCount; i++ {
		if p.Normals[i].Dot(point.Sub(p.Vertices[i])) >= 0 {
			return false
		}
	}
	return true
}
