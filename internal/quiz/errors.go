package quiz

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the user.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionSubmitted is returned when a mutation is attempted on a
	// session that has already been submitted.
	ErrSessionSubmitted = errors.New("quiz session already submitted")
	// ErrSessionActive is returned when a report is requested before submit.
	ErrSessionActive = errors.New("quiz session still active")
	// ErrInvalidIndex is returned for a question index outside the session.
	ErrInvalidIndex = errors.New("question index out of range")
	// ErrAcquisitionFailed indicates the question provider could not supply a
	// full batch; a session is never built from a partial one.
	ErrAcquisitionFailed = errors.New("could not acquire question batch")
	// ErrNoQuestions rejects constructing a session from an empty batch.
	ErrNoQuestions = errors.New("session requires at least one question")
)
