package resumes

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotCompleted  = errors.New("resume processing not completed")
	ErrEmptyDocument = errors.New("no text could be extracted from document")
)
