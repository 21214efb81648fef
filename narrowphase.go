package physac

import (
	"math"
)

// Collide runs the exact test for a pair and fills m when the shapes overlap.
// The result is always expressed for the argument order: A = a, B = b.
func Collide(a, b *Body, m *Manifold) bool {
	*m = Manifold{A: a.ID, B: b.ID, bodyA: a, bodyB: b}

	var hit bool
	switch a.Shape.Type {
	case ShapeCircle:
		switch b.Shape.Type {
		case ShapeCircle:
			hit = collideCircles(a, b, m)
		case ShapePolygon:
			hit = collideCirclePolygon(a, b, m)
		}
	case ShapePolygon:
		switch b.Shape.Type {
		case ShapeCircle:
			hit = collideCirclePolygon(b, a, m)
			m.Normal = m.Normal.Mul(-1)
		case ShapePolygon:
			hit = collidePolygons(a, b, m)
		}
	}

	if !hit || m.ContactCount == 0 {
		m.ContactCount = 0
		return false
	}
	m.mix()
	return true
}

func collideCircles(a, b *Body, m *Manifold) bool {
	delta := b.Position.Sub(a.Position)
	distanceSquared := lenSq(delta)
	totalRadius := a.Shape.Radius + b.Shape.Radius

	if distanceSquared >= totalRadius*totalRadius {
		return false
	}

	distance := math.Sqrt(distanceSquared)
	m.ContactCount = 1
	m.Penetration = totalRadius - distance
	if distance == 0 {
		m.Normal = Vector2{1, 0}
		m.Contacts[0] = a.Position
		return true
	}

	invDistance := 1.0 / distance
	m.Normal = delta.Mul(invDistance)
	m.Contacts[0] = a.Position.Add(m.Normal.Mul(a.Shape.Radius))
	return true
}

// collideCirclePolygon works in the polygon's local frame; the normal points from the
// circle to the polygon.
func collideCirclePolygon(circle, poly *Body, m *Manifold) bool {
	radius := circle.Shape.Radius
	rot := poly.transform
	center := rot.Transpose().Mul2x1(circle.Position.Sub(poly.Position))

	data := &poly.Shape.Polygon
	separation := -math.MaxFloat64
	face := 0
	for i := 0; i < data.VertexCount; i++ {
		s := data.Normals[i].Dot(center.Sub(data.Vertices[i]))
		if s >= radius {
			return false
		}
		if s > separation {
			separation = s
			face = i
		}
	}

	v1 := data.Vertices[face]
	v2 := data.Vertices[nextIndex(face, data.VertexCount)]

	// Center inside the polygon: push out along the nearest face.
	if separation < epsilon {
		m.ContactCount = 1
		m.Normal = rot.Mul2x1(data.Normals[face]).Mul(-1)
		m.Contacts[0] = circle.Position.Add(m.Normal.Mul(radius))
		m.Penetration = radius - separation
		return true
	}

	dot1 := center.Sub(v1).Dot(v2.Sub(v1))
	dot2 := center.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case dot1 <= 0:
		return circleVertexContact(circle, poly, center, v1, m)
	case dot2 <= 0:
		return circleVertexContact(circle, poly, center, v2, m)
	default:
		normal := data.Normals[face]
		if center.Sub(v1).Dot(normal) >= radius {
			return false
		}
		m.ContactCount = 1
		m.Normal = rot.Mul2x1(normal).Mul(-1)
		m.Contacts[0] = circle.Position.Add(m.Normal.Mul(radius))
		m.Penetration = radius - separation
		return true
	}
}

func circleVertexContact(circle, poly *Body, center, vertex Vector2, m *Manifold) bool {
	radius := circle.Shape.Radius
	toVertex := vertex.Sub(center)
	distSq := lenSq(toVertex)
	if distSq >= radius*radius {
		return false
	}
	dist := math.Sqrt(distSq)

	m.ContactCount = 1
	m.Normal = normalize(poly.transform.Mul2x1(toVertex))
	m.Contacts[0] = poly.transform.Mul2x1(vertex).Add(poly.Position)
	m.Penetration = radius - dist
	return true
}

func collidePolygons(a, b *Body, m *Manifold) bool {
	faceA, separationA := findAxisLeastPenetration(a, b)
	if separationA >= 0 {
		return false
	}
	faceB, separationB := findAxisLeastPenetration(b, a)
	if separationB >= 0 {
		return false
	}

	ref, inc := a, b
	refIndex := faceA
	flip := false
	if !preferFirst(separationA, separationB) {
		ref, inc = b, a
		refIndex = faceB
		flip = true
	}

	incident := findIncidentFace(ref, inc, refIndex)

	refData := &ref.Shape.Polygon
	v1 := ref.transform.Mul2x1(refData.Vertices[refIndex]).Add(ref.Position)
	v2 := ref.transform.Mul2x1(refData.Vertices[nextIndex(refIndex, refData.VertexCount)]).Add(ref.Position)

	sidePlaneNormal := normalize(v2.Sub(v1))
	refFaceNormal := Vector2{sidePlaneNormal[1], -sidePlaneNormal[0]}
	refC := refFaceNormal.Dot(v1)
	negSide := -sidePlaneNormal.Dot(v1)
	posSide := sidePlaneNormal.Dot(v2)

	// Floating point error can leave fewer than two points after clipping.
	if clipSegment(sidePlaneNormal.Mul(-1), negSide, &incident) < 2 {
		return false
	}
	if clipSegment(sidePlaneNormal, posSide, &incident) < 2 {
		return false
	}

	if flip {
		m.Normal = refFaceNormal.Mul(-1)
	} else {
		m.Normal = refFaceNormal
	}

	count := 0
	penetration := 0.0
	for _, p := range incident {
		separation := refFaceNormal.Dot(p) - refC
		if separation <= 0 {
			m.Contacts[count] = p
			penetration += -separation
			count++
		}
	}
	if count == 0 {
		return false
	}
	m.ContactCount = count
	m.Penetration = penetration / float64(count)
	return true
}

// preferFirst reports whether separation a should be used over b. Nearly equal
// separations resolve to a, which keeps the reference face stable between runs.
func preferFirst(a, b float64) bool {
	return a >= b-(0.05*math.Abs(b)+0.001)
}

// findAxisLeastPenetration returns the face of a with the largest separation from b,
// measured in b's local frame. Ties keep the lowest face index.
func findAxisLeastPenetration(a, b *Body) (int, float64) {
	bestIndex := 0
	bestDistance := -math.MaxFloat64

	dataA := &a.Shape.Polygon
	bT := b.transform.Transpose()

	for i := 0; i < dataA.VertexCount; i++ {
		normal := bT.Mul2x1(a.transform.Mul2x1(dataA.Normals[i]))
		support := b.Shape.Polygon.Support(normal.Mul(-1))

		vertex := a.transform.Mul2x1(dataA.Vertices[i]).Add(a.Position).Sub(b.Position)
		vertex = bT.Mul2x1(vertex)

		distance := normal.Dot(support.Sub(vertex))
		if distance > bestDistance {
			bestDistance = distance
			bestIndex = i
		}
	}
	return bestIndex, bestDistance
}

// findIncidentFace returns, in world space, the face of inc most anti-parallel to the
// reference face normal.
func findIncidentFace(ref, inc *Body, refIndex int) [2]Vector2 {
	refNormal := ref.transform.Mul2x1(ref.Shape.Polygon.Normals[refIndex])
	refNormal = inc.transform.Transpose().Mul2x1(refNormal)

	incData := &inc.Shape.Polygon
	face := 0
	minDot := math.MaxFloat64
	for i := 0; i < incData.VertexCount; i++ {
		dot := refNormal.Dot(incData.Normals[i])
		if dot < minDot {
			minDot = dot
			face = i
		}
	}

	return [2]Vector2{
		inc.transform.Mul2x1(incData.Vertices[face]).Add(inc.Position),
		inc.transform.Mul2x1(incData.Vertices[nextIndex(face, incData.VertexCount)]).Add(inc.Position),
	}
}

// clipSegment keeps the part of the segment behind the plane n·x = c and returns the
// number of points kept.
func clipSegment(n Vector2, c float64, face *[2]Vector2) int {
	sp := 0
	out := *face

	distanceA := n.Dot(face[0]) - c
	distanceB := n.Dot(face[1]) - c

	if distanceA <= 0 {
		out[sp] = face[0]
		sp++
	}
	if distanceB <= 0 {
		out[sp] = face[1]
		sp++
	}
	if distanceA*distanceB < 0 && sp < 2 {
		alpha := distanceA / (distanceA - distanceB)
		out[sp] = face[0].Add(face[1].Sub(face[0]).Mul(alpha))
		sp++
	}

	*face = out
	return sp
}
