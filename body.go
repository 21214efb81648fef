package physac

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle identifies a body in a World. A handle outlives its body: once the body is
// destroyed the slot generation moves on and the handle stops resolving.
type Handle struct {
	Index      uint32
	Generation uint32
}

func (h Handle) IsZero() bool {
	return h.Generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Generation)
}

const (
	DefaultRestitution     = 0.0
	DefaultStaticFriction  = 0.4
	DefaultDynamicFriction = 0.2
)

type Material struct {
	Restitution     float64 `yaml:"restitution" json:"restitution"`
	StaticFriction  float64 `yaml:"static_friction" json:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction" json:"dynamic_friction"`
}

func DefaultMaterial() Material {
	return Material{
		Restitution:     DefaultRestitution,
		StaticFriction:  DefaultStaticFriction,
		DynamicFriction: DefaultDynamicFriction,
	}
}

func (m Material) validate() error {
	for _, c := range []float64{m.Restitution, m.StaticFriction, m.DynamicFriction} {
		if !(c >= 0) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: material coefficients must be finite and >= 0 (%+v)", ErrInvalidParameter, m)
		}
	}
	return nil
}

type Body struct {
	ID Handle

	// Enabled bodies take part in collision detection and integration.
	Enabled bool
	// Static bodies have zero inverse mass and inertia and are never moved.
	Static bool

	Position        Vector2
	Orient          float64
	Velocity        Vector2
	AngularVelocity float64
	Force           Vector2
	Torque          float64

	Density        float64
	Mass           float64
	InverseMass    float64
	Inertia        float64
	InverseInertia float64

	Restitution     float64
	StaticFriction  float64
	DynamicFriction float64

	UseGravity   bool
	FreezeOrient bool
	IsGrounded   bool

	Shape Shape

	transform mgl64.Mat2
}

func newBody(position Vector2, shape Shape, density float64) Body {
	md := shape.MassData(density)
	b := Body{
		Enabled:         true,
		Position:        position,
		Density:         density,
		Mass:            md.Mass,
		Inertia:         md.Inertia,
		Restitution:     DefaultRestitution,
		StaticFriction:  DefaultStaticFriction,
		DynamicFriction: DefaultDynamicFriction,
		UseGravity:      true,
		Shape:           shape,
		transform:       rotation(0),
	}
	b.updateInverse()
	return b
}

func (b *Body) updateInverse() {
	if b.Static {
		b.InverseMass = 0
		b.InverseInertia = 0
		return
	}
	b.InverseMass = safeInverse(b.Mass)
	b.InverseInertia = safeInverse(b.Inertia)
}

func (b *Body) setStatic(static bool) {
	b.Static = static
	b.updateInverse()
	if static {
		b.Velocity = Vector2{}
		b.AngularVelocity = 0
		b.Force = Vector2{}
		b.Torque = 0
	}
}

func (b *Body) setRotation(radians float64) {
	b.Orient = radians
	b.transform = rotation(radians)
}

// Transform is the rotation matrix for the current orientation.
func (b *Body) Transform() mgl64.Mat2 {
	return b.transform
}

func (b *Body) AABB() AABB {
	return b.Shape.AABB(b.Position, b.transform)
}

func (b *Body) dynamic() bool {
	return b.Enabled && !b.Static
}

// applyImpulse applies impulse at contact offset r from the center of mass.
func (b *Body) applyImpulse(impulse, r Vector2) {
	if !b.dynamic() {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Mul(b.InverseMass))
	if !b.FreezeOrient {
		b.AngularVelocity += b.InverseInertia * cross(r, impulse)
	}
}

// velocityAt returns the velocity of the point at offset r from the center of mass.
func (b *Body) velocityAt(r Vector2) Vector2 {
	return b.Velocity.Add(crossSV(b.AngularVelocity, r))
}
