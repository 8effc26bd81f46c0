package stream

// State is the lifecycle state of a stream. A stream is constructed
// already eligible to run; there is no separate created state.
type State uint8

const (
	// StateRunning indicates the stream is receiving media.
	StateRunning State = iota
	// StateStopped indicates the source went away; the timeline has been
	// re-anchored and the stream can resume.
	StateStopped
	// StateTerminated is terminal. No further transitions are permitted.
	StateTerminated
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateTerminated:
		return "terminated"
	default:
		return "invalid"
	}
}
