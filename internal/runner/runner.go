package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0x5844/physac2d"
	"github.com/0x5844/physac2d/internal/scene"
)

const historySize = 100

type Options struct {
	// TargetFPS is the frame rate of the driving ticker.
	TargetFPS int
	// WallClock advances the world with World.Update instead of a fixed 1/TargetFPS per frame.
	WallClock bool
}

type Stats struct {
	FPS      float64
	Frames   int64
	AvgFrame time.Duration
	MinFrame time.Duration
	MaxFrame time.Duration
	SimTime  time.Duration
	World    physac.Stats
}

type pendingShatter struct {
	handle physac.Handle
	at     time.Duration
	force  float64
}

// Runner drives a World from a frame ticker, applies scheduled scene events and keeps
// frame timing statistics. Every Load builds a fresh World, so a scene that fails to
// load leaves the running one untouched.
type Runner struct {
	log     physac.Logger
	opts    Options
	running atomic.Bool

	mu       sync.Mutex
	world    *physac.World
	simTime  time.Duration
	shatters []pendingShatter

	stats struct {
		fps           float64
		lastFrameTime time.Time
		frameCount    int64
		frameTimeSum  time.Duration
		minFrameTime  time.Duration
		maxFrameTime  time.Duration
	}
	frameHistory []time.Duration
}

var ErrNoScene = errors.New("runner: no scene loaded")

func New(opts Options, logger physac.Logger) (*Runner, error) {
	if opts.TargetFPS < 1 {
		return nil, fmt.Errorf("runner: target fps must be at least 1")
	}
	if logger == nil {
		logger = physac.NewNopLogger()
	}
	return &Runner{
		log:          logger,
		opts:         opts,
		frameHistory: make([]time.Duration, 0, historySize),
	}, nil
}

// Load builds a world from s and swaps it in for the current one, which is closed.
// On error the current world keeps running unchanged. Scheduled shatters restart from zero.
func (r *Runner) Load(s *scene.Scene) error {
	world, err := physac.NewWorld(s.World, physac.WithLogger(r.log))
	if err != nil {
		return err
	}
	if err := world.Init(); err != nil {
		return err
	}
	handles, err := scene.Apply(world, s)
	if err != nil {
		world.Close()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.world != nil {
		if err := r.world.Close(); err != nil && !errors.Is(err, physac.ErrNotInitialized) {
			r.log.Warnf("close: %v", err)
		}
	}
	r.world = world
	r.simTime = 0
	r.shatters = r.shatters[:0]
	for _, sh := range s.Shatters {
		r.shatters = append(r.shatters, pendingShatter{
			handle: handles[sh.Body],
			at:     time.Duration(sh.After * float64(time.Second)),
			force:  sh.Force,
		})
	}
	r.log.Infof("loaded scene with %d bodies into world %s", len(handles), world.ID())
	return nil
}

// World returns the world of the last successful Load, or nil.
func (r *Runner) World() *physac.World {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world
}

// Run steps the world once per frame until ctx is done, then closes the world. Scenes
// received on reloads replace the current one between frames.
func (r *Runner) Run(ctx context.Context, reloads <-chan *scene.Scene) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("runner already running")
	}
	defer r.running.Store(false)

	frame := time.Second / time.Duration(r.opts.TargetFPS)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	r.mu.Lock()
	r.stats.lastFrameTime = time.Now()
	r.mu.Unlock()

	for {
		select {
		case <-ticker.C:
			if err := r.Frame(frame); err != nil {
				return err
			}

		case s, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if err := r.Load(s); err != nil {
				r.log.Errorf("reload failed: %v", err)
			}

		case <-ctx.Done():
			r.mu.Lock()
			if r.world != nil {
				if err := r.world.Close(); err != nil && !errors.Is(err, physac.ErrNotInitialized) {
					r.log.Warnf("close: %v", err)
				}
			}
			r.mu.Unlock()
			return ctx.Err()
		}
	}
}

// Frame advances the simulation by one frame of length frame (ignored in wall-clock mode).
func (r *Runner) Frame(frame time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.world == nil {
		return ErrNoScene
	}
	start := time.Now()

	var (
		steps int
		err   error
	)
	if r.opts.WallClock {
		steps, err = r.world.Update()
	} else {
		steps, err = r.world.Step(frame)
	}
	if err != nil {
		return err
	}
	r.simTime += time.Duration(steps) * r.world.TimeStep()
	r.fireShatters()

	r.updateStats(start)
	return nil
}

func (r *Runner) fireShatters() {
	kept := r.shatters[:0]
	for _, sh := range r.shatters {
		if r.simTime < sh.at {
			kept = append(kept, sh)
			continue
		}
		body, ok := r.world.Body(sh.handle)
		if !ok {
			continue
		}
		fragments, err := r.world.Shatter(sh.handle, body.Position, sh.force)
		if err != nil {
			r.log.Warnf("shatter %s: %v", sh.handle, err)
			continue
		}
		r.log.Debugf("shattered %s into %d fragments at %s", sh.handle, len(fragments), r.simTime)
	}
	r.shatters = kept
}

func (r *Runner) updateStats(frameStart time.Time) {
	now := time.Now()
	frameTime := now.Sub(r.stats.lastFrameTime)
	currentFrameTime := now.Sub(frameStart)

	if frameTime > 0 {
		r.stats.fps = float64(time.Second) / float64(frameTime)
	}
	r.stats.lastFrameTime = now
	r.stats.frameCount++
	r.stats.frameTimeSum += currentFrameTime

	if r.stats.minFrameTime == 0 || currentFrameTime < r.stats.minFrameTime {
		r.stats.minFrameTime = currentFrameTime
	}
	if currentFrameTime > r.stats.maxFrameTime {
		r.stats.maxFrameTime = currentFrameTime
	}

	r.frameHistory = append(r.frameHistory, currentFrameTime)
	if len(r.frameHistory) > historySize {
		r.frameHistory = r.frameHistory[1:]
	}
}

func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{
		FPS:      r.stats.fps,
		Frames:   r.stats.frameCount,
		MinFrame: r.stats.minFrameTime,
		MaxFrame: r.stats.maxFrameTime,
		SimTime:  r.simTime,
	}
	if r.world != nil {
		s.World = r.world.Stats()
	}
	if r.stats.frameCount > 0 {
		s.AvgFrame = r.stats.frameTimeSum / time.Duration(r.stats.frameCount)
	}
	return s
}

// RecentFrameTime averages the last frames kept in the history window.
func (r *Runner) RecentFrameTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.frameHistory) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range r.frameHistory {
		sum += d
	}
	return sum / time.Duration(len(r.frameHistory))
}
