// Package ledger provides durable storage for observed job failures:
// indexed append, query, an atomic retry-count increment, and explicit
// per-record deletion.
package ledger
