package matches

import "errors"

var (
	ErrNotFound       = errors.New("match not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotCompleted   = errors.New("match processing not completed")
	ErrResumeNotReady = errors.New("resume is not completed")
)
