package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/0x5844/physac2d"
	"github.com/0x5844/physac2d/internal/runner"
	"github.com/0x5844/physac2d/internal/scene"
)

// Build information (set by build script)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

// ==================== CLI CONFIGURATION ====================

type Config struct {
	// Simulation parameters
	GravityX   float64
	GravityY   float64
	TimeStepMs float64
	Duration   float64
	MaxFPS     int
	WallClock  bool

	// Engine settings
	Capacity    int
	Iterations  int
	MaxSubSteps int
	BroadPhase  string
	CellSize    float64

	// Output settings
	Verbose       bool
	Quiet         bool
	StatsInterval float64
	ProfileCPU    string
	ProfileMem    string

	// Scene settings
	SceneFile   string
	Watch       bool
	BodiesCount int
	SceneType   string
	Seed        int64

	ShowVersion bool

	// flags given explicitly on the command line
	set map[string]bool
}

func parseFlags(args []string, output io.Writer) (*Config, error) {
	config := &Config{set: make(map[string]bool)}
	defaults := physac.DefaultConfig()

	fs := flag.NewFlagSet("physac", flag.ContinueOnError)
	fs.SetOutput(output)

	// Simulation parameters
	fs.Float64Var(&config.GravityX, "gravity-x", defaults.Gravity[0], "gravity X component")
	fs.Float64Var(&config.GravityY, "gravity-y", defaults.Gravity[1], "gravity Y component (+y is down)")
	fs.Float64Var(&config.TimeStepMs, "timestep", defaults.TimeStepMs, "fixed physics step in milliseconds")
	fs.Float64Var(&config.Duration, "duration", 0, "simulation duration in seconds (0 = infinite)")
	fs.IntVar(&config.MaxFPS, "fps", 60, "frames per second of the driving loop")
	fs.BoolVar(&config.WallClock, "wallclock", false, "advance by measured wall-clock time instead of 1/fps per frame")

	// Engine settings
	fs.IntVar(&config.Capacity, "capacity", 0, "body pool capacity (0 = sized from the scene)")
	fs.IntVar(&config.Iterations, "iterations", defaults.Iterations, "impulse solver iterations")
	fs.IntVar(&config.MaxSubSteps, "max-substeps", 0, "maximum ticks per frame (0 = unlimited)")
	fs.StringVar(&config.BroadPhase, "broadphase", string(defaults.BroadPhase), "broad-phase (naive, grid)")
	fs.Float64Var(&config.CellSize, "cell-size", defaults.GridCellSize, "grid broad-phase cell size")

	// Output settings
	fs.BoolVar(&config.Verbose, "verbose", false, "verbose output")
	fs.BoolVar(&config.Quiet, "quiet", false, "minimal output")
	fs.Float64Var(&config.StatsInterval, "stats-interval", 2.0, "statistics reporting interval in seconds")
	fs.StringVar(&config.ProfileCPU, "profile-cpu", "", "CPU profile output file")
	fs.StringVar(&config.ProfileMem, "profile-mem", "", "memory profile output file")

	// Scene settings
	fs.StringVar(&config.SceneFile, "scene", "", "YAML or JSON scene file to load")
	fs.BoolVar(&config.Watch, "watch", false, "reload the scene file when it changes")
	fs.IntVar(&config.BodiesCount, "bodies", 100, "number of bodies for generated scenes")
	fs.StringVar(&config.SceneType, "scene-type", "default", "scene type ("+strings.Join(scene.Kinds, ", ")+")")
	fs.Int64Var(&config.Seed, "seed", 0, "random seed for generated scenes (0 = time based)")

	fs.BoolVar(&config.ShowVersion, "version", false, "show version information")

	fs.Usage = func() {
		fmt.Fprintf(output, "physac - 2D rigid-body physics simulator\n\n")
		fmt.Fprintf(output, "Usage: physac [OPTIONS]\n\n")
		fmt.Fprintf(output, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  physac -bodies 200 -scene-type pyramid\n")
		fmt.Fprintf(output, "  physac -scene scene.yaml -watch -duration 30\n")
		fmt.Fprintf(output, "  physac -scene-type shatter -broadphase grid -profile-cpu cpu.prof\n")
		fmt.Fprintf(output, "\nVersion: %s\n", Version)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { config.set[f.Name] = true })

	if config.ShowVersion {
		return config, nil
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.MaxFPS < 1 || config.MaxFPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000")
	}
	if config.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if config.BodiesCount < 1 {
		return fmt.Errorf("bodies count must be at least 1")
	}
	if config.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1")
	}
	if config.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	if config.StatsInterval <= 0 {
		return fmt.Errorf("stats interval must be positive")
	}
	if config.Watch && config.SceneFile == "" {
		return fmt.Errorf("-watch requires -scene")
	}
	if !scene.ValidKind(config.SceneType) {
		return fmt.Errorf("invalid scene type: %s", config.SceneType)
	}
	return nil
}

// worldConfig starts from the scene's world block and applies explicitly set flags.
// Generated scenes take every engine flag.
func worldConfig(config *Config, s *scene.Scene) physac.Config {
	wc := s.World
	override := func(name string) bool {
		return config.SceneFile == "" || config.set[name]
	}

	if override("gravity-x") {
		wc.Gravity[0] = config.GravityX
	}
	if override("gravity-y") {
		wc.Gravity[1] = config.GravityY
	}
	if override("timestep") {
		wc.TimeStepMs = config.TimeStepMs
	}
	if override("iterations") {
		wc.Iterations = config.Iterations
	}
	if override("max-substeps") {
		wc.MaxSubSteps = config.MaxSubSteps
	}
	if override("broadphase") {
		wc.BroadPhase = physac.BroadPhaseKind(config.BroadPhase)
	}
	if override("cell-size") {
		wc.GridCellSize = config.CellSize
	}
	if config.Capacity > 0 {
		wc.Capacity = config.Capacity
	}
	s.World = wc
	return wc
}

func loadScene(config *Config, rng *rand.Rand) (*scene.Scene, error) {
	if config.SceneFile != "" {
		s, err := scene.Load(config.SceneFile)
		if err != nil {
			return nil, err
		}
		if s.Duration > 0 && !config.set["duration"] {
			config.Duration = s.Duration
		}
		return s, nil
	}
	return scene.Generate(config.SceneType, config.BodiesCount, rng)
}

func reloadScene(config *Config, path string) (*scene.Scene, error) {
	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	worldConfig(config, s)
	if err := s.World.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return s, nil
}

func newLogger(config *Config) physac.Logger {
	if config.Quiet {
		return physac.NewNopLogger()
	}
	return physac.NewDefaultLogger("physac", config.Verbose)
}

// ==================== MAIN APPLICATION ====================

func main() {
	config, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("Invalid configuration: %v", err)
	}
	if config.ShowVersion {
		fmt.Printf("physac version %s\n", Version)
		fmt.Printf("Built: %s\n", BuildTime)
		fmt.Printf("Go: %s\n", GoVersion)
		return
	}

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func run(config *Config) error {
	logger := newLogger(config)
	runID := uuid.New()

	if config.ProfileCPU != "" {
		f, err := os.Create(config.ProfileCPU)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	logger.Infof("starting physac %s (run %s, seed %d)", Version, runID, seed)

	sc, err := loadScene(config, rng)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	worldConfig(config, sc)

	r, err := runner.New(runner.Options{TargetFPS: config.MaxFPS, WallClock: config.WallClock}, logger)
	if err != nil {
		return err
	}
	if err := r.Load(sc); err != nil {
		return fmt.Errorf("failed to setup scene: %w", err)
	}
	if config.SceneFile != "" {
		logger.Infof("loaded scene from %s", config.SceneFile)
	} else {
		logger.Infof("generated %s scene with %d bodies", config.SceneType, r.World().BodyCount())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.Duration*float64(time.Second)))
		defer cancel()
		logger.Infof("simulation duration: %.2f seconds", config.Duration)
	} else {
		logger.Infof("press Ctrl+C to stop")
	}

	reloads := make(chan *scene.Scene, 1)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.Run(ctx, reloads)
	})
	if !config.Quiet {
		g.Go(func() error {
			reportStats(ctx, r, logger, time.Duration(config.StatsInterval*float64(time.Second)), config.Verbose)
			return nil
		})
	}
	if config.Watch {
		g.Go(func() error {
			return watchScene(ctx, config, reloads, logger)
		})
	}

	start := time.Now()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("engine error: %w", err)
	}
	elapsed := time.Since(start)

	if config.ProfileMem != "" {
		if err := writeHeapProfile(config.ProfileMem); err != nil {
			logger.Warnf("could not write memory profile: %v", err)
		}
	}

	stats := r.Stats()
	logger.Infof("simulation completed:")
	logger.Infof("  final FPS: %.1f", stats.FPS)
	logger.Infof("  frames: %d", stats.Frames)
	logger.Infof("  steps: %d (%.1f/s)", stats.World.Steps, float64(stats.World.Steps)/elapsed.Seconds())
	logger.Infof("  simulated: %s", stats.SimTime)
	return nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}

// watchScene sends the scene file on reloads each time it changes, with the same flag
// overrides applied as at startup.
func watchScene(ctx context.Context, config *Config, reloads chan<- *scene.Scene, logger physac.Logger) error {
	path := config.SceneFile
	w, err := scene.NewWatcher(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()
	logger.Infof("watching %s for changes", path)

	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			s, err := reloadScene(config, name)
			if err != nil {
				logger.Errorf("reload: %v", err)
				continue
			}
			select {
			case reloads <- s:
				logger.Infof("reloading %s", name)
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func reportStats(ctx context.Context, r *runner.Runner, logger physac.Logger, interval time.Duration, verbose bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s := r.Stats()
			if verbose {
				logger.Infof("FPS: %.1f | Bodies: %d | Pairs: %d | Contacts: %d | Frame: %s/%s/%s | Sim: %s",
					s.FPS, s.World.Bodies, s.World.Pairs, s.World.Manifolds,
					s.AvgFrame, s.MinFrame, s.MaxFrame, s.SimTime)
			} else {
				logger.Infof("FPS: %.1f | Bodies: %d | Contacts: %d",
					s.FPS, s.World.Bodies, s.World.Manifolds)
			}

		case <-ctx.Done():
			return
		}
	}
}
