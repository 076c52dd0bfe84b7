// Package maintenance runs the scheduled retention sweep: old metric rows
// are deleted and the store is compacted to reclaim disk space. Sweeps are a
// maintenance operation, not a per-write side effect.
package maintenance
