package timeline

import "errors"

// Sentinel errors for timeline operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrTrackNotFound indicates the track id has no resolvable time base.
	ErrTrackNotFound = errors.New("track not found")
)
