// Package schedule provides recurrence rules for maintenance work and the
// Scheduler abstraction that drives poll cycles, so tests can substitute a
// manual scheduler for real wall-clock timers.
package schedule
