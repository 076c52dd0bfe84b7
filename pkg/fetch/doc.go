// Package fetch implements the HTTP client for the job-queue server.
//
// The client normalizes the server's nested per-queue status payload into a
// flat []core.QueueSnapshot, and exposes the side-effecting control calls
// (pause, resume, retry, cancel) plus an out-of-band ping.
//
// Failures are classified into three error types: TransportError (the
// request never produced a response), ProtocolError (a non-2xx status), and
// DecodeError (the body did not match the expected shape). Callers that do
// not care about the class can treat any returned error uniformly.
package fetch
