// Package poll drives the fetch → estimate → persist → publish cycle.
//
// A Poller is either Idle or Polling. While polling, a scheduler fires ticks
// at a fixed interval; a tick that arrives while a cycle is still in flight
// is skipped rather than queued, so a slow network response cannot stack
// cycles. Stop cancels the poller's context, which aborts any in-flight
// fetch; a cycle that was cancelled publishes nothing.
//
// Every completed cycle publishes one full Status value to all subscribers.
// Fetch failures degrade to a published disconnected status and the next
// tick retries at the same fixed interval; no failure escapes the Poller.
package poll
