// Package control exposes the user-initiated queue and job operations:
// pause, resume, retry, cancel, and failure-record management. Unlike
// passive poll-cycle fetches, errors from these operations propagate to the
// caller so the initiating action can report the failure.
package control
