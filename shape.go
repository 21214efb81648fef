package physac

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type ShapeType int32

const (
	ShapeCircle ShapeType = iota
	ShapePolygon
)

func (t ShapeType) String() string {
	switch t {
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	default:
		return fmt.Sprintf("ShapeType(%d)", int32(t))
	}
}

const (
	MaxPolygonVertices = 24
	// CircleVertices is the number of points used to outline a circle in vertex queries.
	CircleVertices = 24

	inertiaK = 1.0 / 3.0
)

// Polygon holds local-space vertices wound counter-clockwise around the centroid,
// and the outward normal of the face starting at each vertex.
type Polygon struct {
	VertexCount int
	Vertices    [MaxPolygonVertices]Vector2
	Normals     [MaxPolygonVertices]Vector2
}

// Shape is a tagged variant: Radius is meaningful for circles, Polygon for polygons.
type Shape struct {
	Type    ShapeType
	Radius  float64
	Polygon Polygon
}

type MassData struct {
	Mass    float64
	Inertia float64
}

func NewCircleShape(radius float64) (Shape, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Shape{}, fmt.Errorf("%w: circle radius %v must be > 0", ErrInvalidParameter, radius)
	}
	return Shape{Type: ShapeCircle, Radius: radius}, nil
}

// NewRegularPolygonShape builds a regular polygon with the given circumradius.
func NewRegularPolygonShape(radius float64, sides int) (Shape, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Shape{}, fmt.Errorf("%w: polygon radius %v must be > 0", ErrInvalidParameter, radius)
	}
	if sides < 3 || sides > MaxPolygonVertices {
		return Shape{}, fmt.Errorf("%w: polygon sides %d out of range [3, %d]", ErrInvalidParameter, sides, MaxPolygonVertices)
	}

	vertices := make([]Vector2, sides)
	for i := range vertices {
		angle := 2 * math.Pi / float64(sides) * float64(i)
		vertices[i] = Vector2{math.Cos(angle) * radius, math.Sin(angle) * radius}
	}
	shape, _, err := NewPolygonShape(vertices)
	return shape, err
}

func NewRectangleShape(width, height float64) (Shape, error) {
	if !(width > 0) || !(height > 0) {
		return Shape{}, fmt.Errorf("%w: rectangle size %vx%v must be > 0", ErrInvalidParameter, width, height)
	}
	halfW, halfH := width*0.5, height*0.5
	shape, _, err := NewPolygonShape([]Vector2{
		{halfW, -halfH},
		{halfW, halfH},
		{-halfW, halfH},
		{-halfW, -halfH},
	})
	return shape, err
}

// NewPolygonShape validates a convex counter-clockwise vertex loop and re-expresses it
// around its centroid. The returned offset is the centroid in the input's frame.
func NewPolygonShape(vertices []Vector2) (Shape, Vector2, error) {
	count := len(vertices)
	if count < 3 || count > MaxPolygonVertices {
		return Shape{}, Vector2{}, fmt.Errorf("%w: polygon vertex count %d out of range [3, %d]", ErrInvalidParameter, count, MaxPolygonVertices)
	}
	for i, v := range vertices {
		if math.IsNaN(v[0]) || math.IsNaN(v[1]) || math.IsInf(v[0], 0) || math.IsInf(v[1], 0) {
			return Shape{}, Vector2{}, fmt.Errorf("%w: polygon vertex %d is not finite", ErrInvalidParameter, i)
		}
	}
	if err := validateConvexCCW(vertices); err != nil {
		return Shape{}, Vector2{}, err
	}

	centroid, _ := polygonCentroid(vertices)

	shape := Shape{Type: ShapePolygon}
	shape.Polygon.VertexCount = count
	for i, v := range vertices {
		shape.Polygon.Vertices[i] = v.Sub(centroid)
	}
	computeNormals(&shape.Polygon)
	return shape, centroid, nil
}

// validateConvexCCW requires every vertex not on an edge to lie strictly left of it,
// which rejects clockwise, non-convex, self-intersecting and degenerate loops.
// Tolerances are relative to the polygon's extent so the test does not depend on scale.
func validateConvexCCW(vertices []Vector2) error {
	count := len(vertices)
	extent := 0.0
	for _, v := range vertices[1:] {
		extent = math.Max(extent, v.Sub(vertices[0]).Len())
	}
	tolerance := epsilon * extent

	for i := 0; i < count; i++ {
		a := vertices[i]
		b := vertices[nextIndex(i, count)]
		edge := b.Sub(a)
		edgeLen := edge.Len()
		if edgeLen <= tolerance {
			return fmt.Errorf("%w: polygon edge %d has zero length", ErrInvalidParameter, i)
		}
		for j := 0; j < count; j++ {
			if j == i || j == nextIndex(i, count) {
				continue
			}
			// cross is edgeLen times the vertex's distance from the edge line
			if cross(edge, vertices[j].Sub(a)) <= tolerance*edgeLen {
				return fmt.Errorf("%w: polygon must be convex and counter-clockwise (vertex %d vs edge %d)", ErrInvalidParameter, j, i)
			}
		}
	}
	return nil
}

// polygonCentroid uses the signed-area triangle fan from the origin.
func polygonCentroid(vertices []Vector2) (Vector2, float64) {
	var center Vector2
	area := 0.0
	for i := range vertices {
		p1 := vertices[i]
		p2 := vertices[nextIndex(i, len(vertices))]

		triangleArea := cross(p1, p2) * 0.5
		area += triangleArea
		center = center.Add(p1.Add(p2).Mul(triangleArea * inertiaK))
	}
	if area == 0 {
		return Vector2{}, 0
	}
	return center.Mul(1.0 / area), area
}

func computeNormals(p *Polygon) {
	for i := 0; i < p.VertexCount; i++ {
		face := p.Vertices[nextIndex(i, p.VertexCount)].Sub(p.Vertices[i])
		p.Normals[i] = normalize(Vector2{face[1], -face[0]})
	}
}

func (s Shape) MassData(density float64) MassData {
	switch s.Type {
	case ShapeCircle:
		mass := math.Pi * s.Radius * s.Radius * density
		return MassData{Mass: mass, Inertia: 0.5 * mass * s.Radius * s.Radius}
	case ShapePolygon:
		area := 0.0
		inertia := 0.0
		p := s.Polygon
		for i := 0; i < p.VertexCount; i++ {
			p1 := p.Vertices[i]
			p2 := p.Vertices[nextIndex(i, p.VertexCount)]

			d := cross(p1, p2)
			area += d * 0.5

			intx2 := p1[0]*p1[0] + p2[0]*p1[0] + p2[0]*p2[0]
			inty2 := p1[1]*p1[1] + p2[1]*p1[1] + p2[1]*p2[1]
			inertia += (0.25 * inertiaK * d) * (intx2 + inty2)
		}
		return MassData{Mass: density * area, Inertia: density * inertia}
	}
	return MassData{}
}

// Support returns the local-space vertex furthest along dir.
func (p *Polygon) Support(dir Vector2) Vector2 {
	bestProjection := -math.MaxFloat64
	var best Vector2
	for i := 0; i < p.VertexCount; i++ {
		projection := p.Vertices[i].Dot(dir)
		if projection > bestProjection {
			best = p.Vertices[i]
			bestProjection = projection
		}
	}
	return best
}

// Support returns the local-space point of the shape furthest along dir.
func (s Shape) Support(dir Vector2) Vector2 {
	if s.Type == ShapeCircle {
		return normalize(dir).Mul(s.Radius)
	}
	return s.Polygon.Support(dir)
}

func (s Shape) AABB(position Vector2, rot mgl64.Mat2) AABB {
	if s.Type == ShapeCircle {
		return AABB{
			Min: Vector2{position[0] - s.Radius, position[1] - s.Radius},
			Max: Vector2{position[0] + s.Radius, position[1] + s.Radius},
		}
	}

	box := AABB{
		Min: Vector2{math.MaxFloat64, math.MaxFloat64},
		Max: Vector2{-math.MaxFloat64, -math.MaxFloat64},
	}
	for i := 0; i < s.Polygon.VertexCount; i++ {
		v := rot.Mul2x1(s.Polygon.Vertices[i]).Add(position)
		box.Min = Vector2{math.Min(box.Min[0], v[0]), math.Min(box.Min[1], v[1])}
		box.Max = Vector2{math.Max(box.Max[0], v[0]), math.Max(box.Max[1], v[1])}
	}
	return box
}

func (s Shape) VertexCount() int {
	if s.Type == ShapeCircle {
		return CircleVertices
	}
	return s.Polygon.VertexCount
}

// WorldVertex returns vertex i transformed by the body pose.
func (s Shape) WorldVertex(i int, position Vector2, rot mgl64.Mat2) (Vector2, bool) {
	if i < 0 || i >= s.VertexCount() {
		return Vector2{}, false
	}
	if s.Type == ShapeCircle {
		angle := 2 * math.Pi / CircleVertices * float64(i)
		local := Vector2{math.Cos(angle) * s.Radius, math.Sin(angle) * s.Radius}
		return rot.Mul2x1(local).Add(position), true
	}
	return rot.Mul2x1(s.Polygon.Vertices[i]).Add(position), true
}
