package stream

import "errors"

// Sentinel errors for stream operations.
// These errors enable reliable error classification using errors.Is().

// Dispatch errors. All of them are local validation failures handled by
// the caller; none aborts the stream.
var (
	// ErrNoApplication indicates the owning application could not be
	// resolved through the registry.
	ErrNoApplication = errors.New("application not found")

	// ErrNilPacket indicates a nil packet was handed to dispatch.
	ErrNilPacket = errors.New("nil packet")

	// ErrEmptyPayload indicates a data frame without a payload.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrPacketTypeUnspecified indicates the packet type was not set.
	ErrPacketTypeUnspecified = errors.New("packet type must be specified")

	// ErrFormatUnspecified indicates a non-raw packet without a bitstream
	// format.
	ErrFormatUnspecified = errors.New("bitstream format must be specified")

	// ErrNoDataTrack indicates the stream has no data track to carry a
	// data frame.
	ErrNoDataTrack = errors.New("data track not found")
)

// Lifecycle errors.
var (
	// ErrInvalidTransition indicates a state change that is not permitted:
	// entering the stopped state through SetState, or any transition out
	// of the terminated state.
	ErrInvalidTransition = errors.New("invalid state transition")
)
