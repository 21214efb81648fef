package physac

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StatePaused
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type Option func(*World)

func WithLogger(logger Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.log = logger
		}
	}
}

// WithClock replaces time.Now as the source for Update.
func WithClock(now func() time.Time) Option {
	return func(w *World) {
		if now != nil {
			w.now = now
		}
	}
}

type Stats struct {
	Steps     uint64
	Bodies    int
	Pairs     int
	Manifolds int
}

// World is one independent simulation. It is not safe for concurrent use except for
// Stats and ID; callers that share a World across goroutines must serialise access.
type World struct {
	id  uuid.UUID
	cfg Config
	log Logger
	now func() time.Time

	state       State
	pool        *BodyPool
	gravity     Vector2
	timeStep    time.Duration
	accumulator time.Duration
	lastUpdate  time.Time

	broad  broadPhase
	solver solver

	// per-tick scratch, reused between ticks
	active    []*Body
	boxes     []AABB
	pairs     []candidatePair
	manifolds []Manifold

	steps     atomic.Uint64
	bodies    atomic.Int64
	pairCount atomic.Int64
	contacts  atomic.Int64
}

func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeStep, _ := timeStepDuration(cfg.TimeStepMs)
	broad, _ := newBroadPhase(cfg.BroadPhase, cfg.GridCellSize)

	w := &World{
		id:       uuid.New(),
		cfg:      cfg,
		log:      NewNopLogger(),
		now:      time.Now,
		pool:     NewBodyPool(cfg.Capacity),
		gravity:  cfg.Gravity,
		timeStep: timeStep,
		broad:    broad,
		solver: solver{
			iterations:           cfg.Iterations,
			correctionPercent:    cfg.CorrectionPercent,
			penetrationAllowance: cfg.PenetrationAllowance,
		},
		active:    make([]*Body, 0, cfg.Capacity),
		boxes:     make([]AABB, 0, cfg.Capacity),
		manifolds: make([]Manifold, 0, cfg.Capacity),
	}
	for _, opt := range opts {
		opt(w)
	}
	if dl, ok := w.log.(*DefaultLogger); ok {
		w.log = dl.WithPrefix("physac " + w.id.String()[:8])
	}
	return w, nil
}

func (w *World) ID() uuid.UUID {
	return w.id
}

func (w *World) State() State {
	return w.state
}

func (w *World) Config() Config {
	cfg := w.cfg
	cfg.Gravity = w.gravity
	cfg.TimeStepMs = float64(w.timeStep) / float64(time.Millisecond)
	return cfg
}

func (w *World) Stats() Stats {
	return Stats{
		Steps:     w.steps.Load(),
		Bodies:    int(w.bodies.Load()),
		Pairs:     int(w.pairCount.Load()),
		Manifolds: int(w.contacts.Load()),
	}
}

func (w *World) requireActive() error {
	switch w.state {
	case StateRunning, StatePaused:
		return nil
	}
	return fmt.Errorf("%w: world is %s", ErrNotInitialized, w.state)
}

// ==================== LIFECYCLE ====================

func (w *World) Init() error {
	switch w.state {
	case StateRunning, StatePaused:
		return ErrAlreadyRunning
	case StateClosed:
		return fmt.Errorf("%w: world is closed", ErrNotInitialized)
	}
	w.state = StateRunning
	w.accumulator = 0
	w.lastUpdate = w.now()
	w.log.Infof("initialized (capacity %d, timestep %s, broad-phase %s)", w.pool.Capacity(), w.timeStep, w.cfg.BroadPhase)
	return nil
}

// Reset destroys every body and clears the accumulator; the running/paused state is kept.
func (w *World) Reset() error {
	if err := w.requireActive(); err != nil {
		return err
	}
	n := w.pool.Len()
	w.pool.clear()
	w.accumulator = 0
	w.lastUpdate = w.now()
	w.bodies.Store(0)
	w.log.Infof("reset, released %d bodies", n)
	return nil
}

// Close releases all bodies. A closed world cannot be used again.
func (w *World) Close() error {
	if err := w.requireActive(); err != nil {
		return err
	}
	n := w.pool.Len()
	w.pool.clear()
	w.accumulator = 0
	w.bodies.Store(0)
	w.state = StateClosed
	w.log.Infof("closed, released %d bodies", n)
	return nil
}

func (w *World) Pause() error {
	if err := w.requireActive(); err != nil {
		return err
	}
	w.state = StatePaused
	return nil
}

func (w *World) Resume() error {
	if err := w.requireActive(); err != nil {
		return err
	}
	if w.state == StatePaused {
		w.state = StateRunning
		w.lastUpdate = w.now()
	}
	return nil
}

func (w *World) SetGravity(x, y float64) error {
	if err := w.requireActive(); err != nil {
		return err
	}
	gravity := Vector2{x, y}
	if !finiteVec(gravity) {
		return fmt.Errorf("%w: gravity %v is not finite", ErrInvalidParameter, gravity)
	}
	w.gravity = gravity
	return nil
}

func (w *World) Gravity() Vector2 {
	return w.gravity
}

// SetTimeStep sets the fixed step in milliseconds.
func (w *World) SetTimeStep(ms float64) error {
	if err := w.requireActive(); err != nil {
		return err
	}
	d, err := timeStepDuration(ms)
	if err != nil {
		return err
	}
	w.timeStep = d
	return nil
}

func (w *World) TimeStep() time.Duration {
	return w.timeStep
}

// ==================== BODY MANAGEMENT ====================

func validateDensity(density float64) error {
	if !(density > 0) || math.IsInf(density, 0) {
		return fmt.Errorf("%w: density %v must be > 0", ErrInvalidParameter, density)
	}
	return nil
}

func (w *World) addBody(body Body) (Handle, error) {
	h, err := w.pool.insert(body)
	if err != nil {
		return Handle{}, err
	}
	w.bodies.Store(int64(w.pool.Len()))
	w.log.Debugf("created %s body %s at (%.2f, %.2f) mass %.3f", body.Shape.Type, h, body.Position[0], body.Position[1], body.Mass)
	return h, nil
}

// CreateCircle adds a circle with mass pi*r^2*density and inertia m*r^2/2.
func (w *World) CreateCircle(position Vector2, radius, density float64) (Handle, error) {
	if err := w.requireActive(); err != nil {
		return Handle{}, err
	}
	if err := validateDensity(density); err != nil {
		return Handle{}, err
	}
	shape, err := NewCircleShape(radius)
	if err != nil {
		return Handle{}, err
	}
	return w.addBody(newBody(position, shape, density))
}

// CreatePolygon adds a regular polygon with the given circumradius and side count.
func (w *World) CreatePolygon(position Vector2, radius float64, sides int, density float64) (Handle, error) {
	if err := w.requireActive(); err != nil {
		return Handle{}, err
	}
	if err := validateDensity(density); err != nil {
		return Handle{}, err
	}
	shape, err := NewRegularPolygonShape(radius, sides)
	if err != nil {
		return Handle{}, err
	}
	return w.addBody(newBody(position, shape, density))
}

func (w *World) CreateRectangle(position Vector2, width, height, density float64) (Handle, error) {
	if err := w.requireActive(); err != nil {
		return Handle{}, err
	}
	if err := validateDensity(density); err != nil {
		return Handle{}, err
	}
	shape, err := NewRectangleShape(width, height)
	if err != nil {
		return Handle{}, err
	}
	return w.addBody(newBody(position, shape, density))
}

// CreatePolygonFromVertices adds a convex polygon given counter-clockwise vertices
// relative to position. The body is placed at the polygon's centroid.
func (w *World) CreatePolygonFromVertices(position Vector2, vertices []Vector2, density float64) (Handle, error) {
	if err := w.requireActive(); err != nil {
		return Handle{}, err
	}
	if err := validateDensity(density); err != nil {
		return Handle{}, err
	}
	shape, centroid, err := NewPolygonShape(vertices)
	if err != nil {
		return Handle{}, err
	}
	return w.addBody(newBody(position.Add(centroid), shape, density))
}

func (w *World) Destroy(h Handle) error {
	if err := w.requireActive(); err != nil {
		return err
	}
	if err := w.pool.remove(h); err != nil {
		return err
	}
	w.bodies.Store(int64(w.pool.Len()))
	w.log.Debugf("destroyed body %s", h)
	return nil
}

func (w *World) mutate(h Handle, fn func(b *Body) error) error {
	if err := w.requireActive(); err != nil {
		return err
	}
	b := w.pool.lookup(h)
	if b == nil {
		return fmt.Errorf("%w: handle %s", ErrNotFound, h)
	}
	return fn(b)
}

// AddForce accumulates a force that acts for the next tick only.
func (w *World) AddForce(h Handle, force Vector2) error {
	return w.mutate(h, func(b *Body) error {
		if b.dynamic() {
			b.Force = b.Force.Add(force)
		}
		return nil
	})
}

func (w *World) AddTorque(h Handle, amount float64) error {
	return w.mutate(h, func(b *Body) error {
		if b.dynamic() {
			b.Torque += amount
		}
		return nil
	})
}

func (w *World) SetRotation(h Handle, radians float64) error {
	return w.mutate(h, func(b *Body) error {
		b.setRotation(radians)
		return nil
	})
}

func (w *World) SetPosition(h Handle, position Vector2) error {
	return w.mutate(h, func(b *Body) error {
		b.Position = position
		return nil
	})
}

func (w *World) SetVelocity(h Handle, velocity Vector2) error {
	return w.mutate(h, func(b *Body) error {
		if b.dynamic() {
			b.Velocity = velocity
		}
		return nil
	})
}

func (w *World) SetAngularVelocity(h Handle, omega float64) error {
	return w.mutate(h, func(b *Body) error {
		if b.dynamic() && !b.FreezeOrient {
			b.AngularVelocity = omega
		}
		return nil
	})
}

// SetStatic gives the body infinite mass (static) or restores its computed mass.
func (w *World) SetStatic(h Handle, static bool) error {
	return w.mutate(h, func(b *Body) error {
		b.setStatic(static)
		return nil
	})
}

// SetEnabled removes the body from collision detection and integration when false.
func (w *World) SetEnabled(h Handle, enabled bool) error {
	return w.mutate(h, func(b *Body) error {
		b.Enabled = enabled
		return nil
	})
}

func (w *World) SetUseGravity(h Handle, use bool) error {
	return w.mutate(h, func(b *Body) error {
		b.UseGravity = use
		return nil
	})
}

func (w *World) SetFreezeOrient(h Handle, freeze bool) error {
	return w.mutate(h, func(b *Body) error {
		b.FreezeOrient = freeze
		if freeze {
			b.AngularVelocity = 0
			b.Torque = 0
		}
		return nil
	})
}

func (w *World) SetMaterial(h Handle, m Material) error {
	if err := m.validate(); err != nil {
		return err
	}
	return w.mutate(h, func(b *Body) error {
		b.Restitution = m.Restitution
		b.StaticFriction = m.StaticFriction
		b.DynamicFriction = m.DynamicFriction
		return nil
	})
}

// ==================== QUERIES ====================

// Body returns a snapshot of the body behind h.
func (w *World) Body(h Handle) (Body, bool) {
	return w.pool.Get(h)
}

func (w *World) BodyCount() int {
	return w.pool.Len()
}

// BodyAt returns the i-th live body in creation order.
func (w *World) BodyAt(i int) (Handle, bool) {
	return w.pool.At(i)
}

func (w *World) ShapeType(h Handle) (ShapeType, bool) {
	b := w.pool.lookup(h)
	if b == nil {
		return 0, false
	}
	return b.Shape.Type, true
}

// VertexCount returns the polygon vertex count, CircleVertices for circles, or 0 when
// the handle does not resolve.
func (w *World) VertexCount(h Handle) int {
	b := w.pool.lookup(h)
	if b == nil {
		return 0
	}
	return b.Shape.VertexCount()
}

// VertexAt returns vertex i of the body's outline in world space.
func (w *World) VertexAt(h Handle, i int) (Vector2, bool) {
	b := w.pool.lookup(h)
	if b == nil {
		return Vector2{}, false
	}
	return b.Shape.WorldVertex(i, b.Position, b.transform)
}

// ==================== SIMULATION ====================

// Update advances the world by the wall-clock time since the previous Update, Init or Resume.
func (w *World) Update() (int, error) {
	if err := w.requireActive(); err != nil {
		return 0, err
	}
	now := w.now()
	elapsed := now.Sub(w.lastUpdate)
	w.lastUpdate = now
	return w.Step(elapsed)
}

// Step adds elapsed to the accumulator and runs as many fixed ticks as fit. It returns
// the number of ticks run. A paused world ignores elapsed time.
func (w *World) Step(elapsed time.Duration) (int, error) {
	if err := w.requireActive(); err != nil {
		return 0, err
	}
	if w.state == StatePaused || elapsed <= 0 {
		return 0, nil
	}

	w.accumulator += elapsed
	steps := 0
	for w.accumulator >= w.timeStep {
		if w.cfg.MaxSubSteps > 0 && steps == w.cfg.MaxSubSteps {
			dropped := w.accumulator / w.timeStep
			w.accumulator %= w.timeStep
			w.log.Warnf("step cap %d reached, dropped %d ticks", w.cfg.MaxSubSteps, dropped)
			break
		}
		w.tick()
		w.accumulator -= w.timeStep
		steps++
	}
	return steps, nil
}

func (w *World) tick() {
	dt := w.timeStep.Seconds()

	w.active = w.active[:0]
	for i := 0; i < w.pool.Len(); i++ {
		b := w.pool.at(i)
		b.IsGrounded = false
		if b.Enabled {
			w.active = append(w.active, b)
		}
	}

	for _, b := range w.active {
		integrateForces(b, w.gravity, dt)
	}

	w.boxes = w.boxes[:0]
	for _, b := range w.active {
		w.boxes = append(w.boxes, b.AABB())
	}
	w.pairs = w.broad.pairs(w.active, w.boxes, w.pairs[:0])

	w.manifolds = w.manifolds[:0]
	for _, p := range w.pairs {
		w.manifolds = append(w.manifolds, Manifold{})
		m := &w.manifolds[len(w.manifolds)-1]
		if !Collide(w.active[p.a], w.active[p.b], m) {
			w.manifolds = w.manifolds[:len(w.manifolds)-1]
			continue
		}
		markGrounded(m, w.gravity)
	}

	w.solver.prepare(w.manifolds, w.gravity, dt)
	w.solver.solveVelocities(w.manifolds)

	for _, b := range w.active {
		integrateVelocity(b, dt)
	}

	w.solver.correctPositions(w.manifolds)

	for _, b := range w.active {
		b.Force = Vector2{}
		b.Torque = 0
	}

	w.steps.Add(1)
	w.pairCount.Store(int64(len(w.pairs)))
	w.contacts.Store(int64(len(w.manifolds)))
}

// integrateForces is the velocity half of semi-implicit Euler.
func integrateForces(b *Body, gravity Vector2, dt float64) {
	if !b.dynamic() {
		return
	}
	b.Velocity = b.Velocity.Add(b.Force.Mul(b.InverseMass * dt))
	if b.UseGravity {
		b.Velocity = b.Velocity.Add(gravity.Mul(dt))
	}
	if !b.FreezeOrient {
		b.AngularVelocity += b.Torque * b.InverseInertia * dt
	}
}

// integrateVelocity moves the body with the velocity computed this tick.
func integrateVelocity(b *Body, dt float64) {
	if !b.dynamic() {
		return
	}
	displacement := b.Velocity.Mul(dt)
	if math.IsNaN(displacement.Len()) || math.IsInf(displacement.Len(), 0) {
		b.Velocity = Vector2{}
		b.AngularVelocity = 0
		return
	}
	b.Position = b.Position.Add(displacement)
	if !b.FreezeOrient {
		b.setRotation(b.Orient + b.AngularVelocity*dt)
	}
}

// markGrounded flags whichever body of the pair rests on the other under gravity.
func markGrounded(m *Manifold, gravity Vector2) {
	d := m.Normal.Dot(gravity)
	switch {
	case d < 0:
		m.bodyB.IsGrounded = true
	case d > 0:
		m.bodyA.IsGrounded = true
	}
}
