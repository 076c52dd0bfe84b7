// Package security provides validation and sanitization for values that
// cross the control-operation and persistence boundaries.
package security
