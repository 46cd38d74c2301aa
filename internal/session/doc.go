// Package session implements the guided session runtime: it walks a user
// through the active phases of a plan (Physical, Yoga, Meditation), tracks
// per-item status, enforces the skip quota, runs the meditation countdown,
// computes live weighted progress and produces the final report.
//
// A Controller is owned by exactly one goroutine. Every action (Advance,
// Skip, Previous, End, Tick) runs to completion before the next one is
// accepted, so the package holds no locks. Real time enters only through
// Tick, which the caller invokes once per second while the meditation timer
// is running.
package session
