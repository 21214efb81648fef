// Package physac is a small 2D rigid-body physics engine.
//
// A World owns a fixed-capacity pool of circle and convex polygon bodies addressed by
// generation-counted handles. Each fixed tick integrates forces, finds candidate pairs
// with an AABB broad-phase, builds contact manifolds, resolves them with sequential
// impulses and positional correction, and integrates positions with semi-implicit Euler.
// Time is fed through Step (deterministic) or Update (wall clock); both run whole ticks
// from an accumulator so results do not depend on how elapsed time is batched.
package physac
