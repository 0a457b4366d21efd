// Package supervisor runs the external automation executable under a
// hard deadline.
//
// Ownership boundary:
// - process spawn, wait, and forced termination
// - concurrent diagnostic-channel draining
// - primary-channel JSON decoding
//
// Every failure mode is returned as a Result; nothing escapes Run as
// an error or panic.
package supervisor
