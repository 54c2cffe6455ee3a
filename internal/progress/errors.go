package progress

import "errors"

var (
	// ErrInput is returned by Input when the input stream is exhausted or
	// fails. The underlying cause (io.EOF for an exhausted stream) is
	// wrapped alongside it.
	ErrInput = errors.New("progress: input unavailable")

	// ErrClosed is returned when registering with, or prompting through, a
	// Multi that has already shut down.
	ErrClosed = errors.New("progress: coordinator closed")
)
