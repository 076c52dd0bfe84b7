package core

import "errors"

// Validation and store-integrity errors
var (
	ErrInvalidQueueName  = errors.New("queuepulse: invalid queue name")
	ErrQueueNameTooLong  = errors.New("queuepulse: queue name too long")
	ErrInvalidJobID      = errors.New("queuepulse: invalid job id")
	ErrJobIDTooLong      = errors.New("queuepulse: job id too long")
	ErrDuplicateMetricID = errors.New("queuepulse: duplicate metric record id")
	ErrJobNotFound       = errors.New("queuepulse: no failure record for job id")
	ErrRecordNotFound    = errors.New("queuepulse: record not found")
)
