package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/0x5844/physac2d"
)

// Kinds lists the scenes Generate knows how to build.
var Kinds = []string{"default", "pyramid", "rain", "container", "shatter", "mixed"}

func ValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Generate builds a procedural scene with roughly count dynamic bodies. Coordinates are
// screen space: +y points down, matching the default gravity.
func Generate(kind string, count int, rng *rand.Rand) (*Scene, error) {
	if count < 1 {
		return nil, fmt.Errorf("scene: body count must be at least 1")
	}

	s := &Scene{World: physac.DefaultConfig()}
	switch kind {
	case "default":
		generateDefault(s, count, rng)
	case "pyramid":
		generatePyramid(s, count)
	case "rain":
		generateRain(s, count, rng)
	case "container":
		generateContainer(s, count, rng)
	case "shatter":
		generateShatter(s, count, rng)
	case "mixed":
		generateMixed(s, count, rng)
	default:
		return nil, fmt.Errorf("scene: unknown scene type %q", kind)
	}

	// shatter fragments need free slots
	s.World.Capacity = max(physac.DefaultCapacity, len(s.Bodies)+len(s.Shatters)*physac.MaxPolygonVertices)
	return s, nil
}

func wall(x, y, width, height float64) BodySpec {
	return BodySpec{Type: "rectangle", Position: physac.Vector2{x, y}, Width: width, Height: height, Density: 1, Static: true}
}

func circle(x, y, radius float64) BodySpec {
	return BodySpec{Type: "circle", Position: physac.Vector2{x, y}, Radius: radius, Density: 1}
}

func box(x, y, width, height float64) BodySpec {
	return BodySpec{Type: "rectangle", Position: physac.Vector2{x, y}, Width: width, Height: height, Density: 1}
}

func generateDefault(s *Scene, count int, rng *rand.Rand) {
	s.Bodies = append(s.Bodies, wall(0, 50, 200, 10))

	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * 150
		y := -(rng.Float64()*50 + 50)

		if rng.Float64() < 0.6 {
			s.Bodies = append(s.Bodies, circle(x, y, rng.Float64()*2+1))
		} else {
			size := rng.Float64()*3 + 1
			s.Bodies = append(s.Bodies, box(x, y, size, size))
		}
	}
}

func generatePyramid(s *Scene, count int) {
	s.Bodies = append(s.Bodies, wall(0, 10, 200, 5))

	levels := int(math.Sqrt(float64(count))) + 1
	size := 2.0
	y := 10 - 2.5 - size/2

	for level := levels; level > 0; level-- {
		for i := 0; i < level; i++ {
			x := (float64(i) - float64(level-1)/2) * size
			s.Bodies = append(s.Bodies, box(x, y, size*0.9, size*0.9))
		}
		y -= size
	}
}

func generateRain(s *Scene, count int, rng *rand.Rand) {
	s.Bodies = append(s.Bodies,
		wall(0, 50, 300, 10),
		wall(-150, 0, 10, 100),
		wall(150, 0, 10, 100),
	)

	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * 250
		y := -(rng.Float64()*200 + 100)

		switch r := rng.Float64(); {
		case r < 0.6:
			s.Bodies = append(s.Bodies, circle(x, y, rng.Float64()*2+0.5))
		case r < 0.8:
			s.Bodies = append(s.Bodies, box(x, y, rng.Float64()*3+1, rng.Float64()*3+1))
		default:
			s.Bodies = append(s.Bodies, BodySpec{
				Type:     "polygon",
				Position: physac.Vector2{x, y},
				Radius:   rng.Float64()*2 + 1,
				Sides:    3 + rng.Intn(6),
				Density:  1,
				Rotation: rng.Float64() * 2 * math.Pi,
			})
		}
	}
}

func generateContainer(s *Scene, count int, rng *rand.Rand) {
	const (
		thickness = 5.0
		width     = 100.0
		height    = 80.0
	)

	s.Bodies = append(s.Bodies,
		wall(0, height/2, width, thickness),
		wall(-width/2, 0, thickness, height),
		wall(width/2, 0, thickness, height),
	)

	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * (width - 20)
		y := -(rng.Float64()*60 + 10)

		if rng.Float64() < 0.6 {
			c := circle(x, y, rng.Float64()*1.5+0.5)
			c.Density = 0.5
			s.Bodies = append(s.Bodies, c)
		} else {
			size := rng.Float64()*2 + 1
			b := box(x, y, size, size)
			b.Density = 0.5
			s.Bodies = append(s.Bodies, b)
		}
	}
}

// generateShatter drops polygons onto a floor and breaks each one shortly after it lands.
func generateShatter(s *Scene, count int, rng *rand.Rand) {
	s.Bodies = append(s.Bodies, wall(0, 50, 200, 10))

	polygons := max(1, count/4)
	for i := 0; i < polygons; i++ {
		x := (float64(i) - float64(polygons-1)/2) * 12
		s.Bodies = append(s.Bodies, BodySpec{
			Type:     "polygon",
			Position: physac.Vector2{x, 30},
			Radius:   5,
			Sides:    5 + rng.Intn(4),
			Density:  1,
		})
		s.Shatters = append(s.Shatters, ShatterSpec{
			Body:  len(s.Bodies) - 1,
			After: 1 + rng.Float64(),
			Force: 10,
		})
	}

	for i := polygons; i < count; i++ {
		x := (rng.Float64() - 0.5) * 150
		y := -(rng.Float64()*40 + 10)
		s.Bodies = append(s.Bodies, circle(x, y, rng.Float64()+0.5))
	}
}

func generateMixed(s *Scene, count int, rng *rand.Rand) {
	s.Bodies = append(s.Bodies,
		wall(-75, 50, 50, 10),
		wall(75, 50, 50, 10),
	)

	for i := 0; i < 5; i++ {
		x := (rng.Float64() - 0.5) * 150
		y := 20 - float64(i)*15
		platform := wall(x, y, rng.Float64()*30+20, 3)
		platform.Rotation = (rng.Float64() - 0.5) * 0.4
		s.Bodies = append(s.Bodies, platform)
	}

	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * 200
		y := -(rng.Float64()*100 + 50)

		var spec BodySpec
		switch rng.Intn(3) {
		case 0:
			spec = circle(x, y, rng.Float64()*2+0.5)
			spec.Material = &physac.Material{
				Restitution:     rng.Float64()*0.5 + 0.5,
				StaticFriction:  rng.Float64()*0.5 + 0.3,
				DynamicFriction: rng.Float64()*0.2 + 0.1,
			}
		case 1:
			size := rng.Float64()*3 + 1
			spec = box(x, y, size, size)
			spec.Material = &physac.Material{
				Restitution:     rng.Float64()*0.5 + 0.3,
				StaticFriction:  rng.Float64()*0.6 + 0.3,
				DynamicFriction: rng.Float64()*0.2 + 0.1,
			}
		case 2:
			spec = BodySpec{
				Type:     "polygon",
				Position: physac.Vector2{x, y},
				Radius:   rng.Float64()*2 + 0.5,
				Sides:    3 + rng.Intn(5),
				Density:  1,
			}
			spec.Material = &physac.Material{
				Restitution:     rng.Float64()*0.4 + 0.4,
				StaticFriction:  rng.Float64()*0.5 + 0.4,
				DynamicFriction: rng.Float64()*0.3 + 0.1,
			}
		}
		s.Bodies = append(s.Bodies, spec)
	}
}
