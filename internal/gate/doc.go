// Package gate owns the safety guards evaluated before any external
// process is spawned.
//
// Ownership boundary:
// - time-boxed armed/disarmed authorization state
// - confirmation-phrase checking for the most destructive tools
//
// The gate never spawns processes and its lock is never held across
// one.
package gate
