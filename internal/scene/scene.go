package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0x5844/physac2d"
)

type Scene struct {
	World    physac.Config `yaml:"world" json:"world"`
	Duration float64       `yaml:"duration" json:"duration"`
	Bodies   []BodySpec    `yaml:"bodies" json:"bodies"`
	Shatters []ShatterSpec `yaml:"shatters,omitempty" json:"shatters,omitempty"`
}

// ShatterSpec breaks body number Body (an index into Bodies) at its current centre
// once After seconds of simulated time have passed.
type ShatterSpec struct {
	Body  int     `yaml:"body" json:"body"`
	After float64 `yaml:"after" json:"after"`
	Force float64 `yaml:"force" json:"force"`
}

type BodySpec struct {
	Type     string           `yaml:"type" json:"type"`
	Position physac.Vector2   `yaml:"position" json:"position"`
	Velocity physac.Vector2   `yaml:"velocity" json:"velocity"`
	Rotation float64          `yaml:"rotation" json:"rotation"`
	Density  float64          `yaml:"density" json:"density"`
	Static   bool             `yaml:"static" json:"static"`
	Radius   float64          `yaml:"radius,omitempty" json:"radius,omitempty"`
	Width    float64          `yaml:"width,omitempty" json:"width,omitempty"`
	Height   float64          `yaml:"height,omitempty" json:"height,omitempty"`
	Sides    int              `yaml:"sides,omitempty" json:"sides,omitempty"`
	Vertices []physac.Vector2 `yaml:"vertices,omitempty" json:"vertices,omitempty"`
	Material *physac.Material `yaml:"material,omitempty" json:"material,omitempty"`
}

func IsSceneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Load reads a YAML or JSON scene. World settings missing from the file keep their defaults.
func Load(filename string) (*Scene, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", filename, err)
	}
	s, err := Parse(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", filename, err)
	}
	return s, nil
}

func Parse(data []byte, ext string) (*Scene, error) {
	s := &Scene{World: physac.DefaultConfig()}
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("unmarshal json: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scene format %q", ext)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) Validate() error {
	if err := s.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if s.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	for i, sh := range s.Shatters {
		if sh.Body < 0 || sh.Body >= len(s.Bodies) {
			return fmt.Errorf("shatter %d: body index %d out of range", i, sh.Body)
		}
		if sh.After < 0 {
			return fmt.Errorf("shatter %d: negative delay", i)
		}
	}
	return nil
}

// Apply sets the scene gravity and creates its bodies in order.
func Apply(world *physac.World, s *Scene) ([]physac.Handle, error) {
	if err := world.SetGravity(s.World.Gravity[0], s.World.Gravity[1]); err != nil {
		return nil, err
	}

	handles := make([]physac.Handle, 0, len(s.Bodies))
	for i, spec := range s.Bodies {
		h, err := createBody(world, spec)
		if err != nil {
			return handles, fmt.Errorf("scene: body %d (%s): %w", i, spec.Type, err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

func createBody(world *physac.World, spec BodySpec) (physac.Handle, error) {
	density := spec.Density
	if density == 0 {
		density = 1
	}

	var (
		h   physac.Handle
		err error
	)
	switch strings.ToLower(spec.Type) {
	case "circle":
		h, err = world.CreateCircle(spec.Position, spec.Radius, density)
	case "rectangle", "box":
		h, err = world.CreateRectangle(spec.Position, spec.Width, spec.Height, density)
	case "polygon":
		if len(spec.Vertices) > 0 {
			h, err = world.CreatePolygonFromVertices(spec.Position, spec.Vertices, density)
		} else {
			h, err = world.CreatePolygon(spec.Position, spec.Radius, spec.Sides, density)
		}
	default:
		return physac.Handle{}, fmt.Errorf("unknown body type: %s", spec.Type)
	}
	if err != nil {
		return physac.Handle{}, err
	}

	if err := configure(world, h, spec); err != nil {
		_ = world.Destroy(h)
		return physac.Handle{}, err
	}
	return h, nil
}

func configure(world *physac.World, h physac.Handle, spec BodySpec) error {
	if spec.Material != nil {
		if err := world.SetMaterial(h, *spec.Material); err != nil {
			return err
		}
	}
	if spec.Static {
		if err := world.SetStatic(h, true); err != nil {
			return err
		}
	}
	if spec.Rotation != 0 {
		if err := world.SetRotation(h, spec.Rotation); err != nil {
			return err
		}
	}
	if spec.Velocity != (physac.Vector2{}) {
		return world.SetVelocity(h, spec.Velocity)
	}
	return nil
}
