// Package stream implements the per-stream state object of the ingest
// pipeline: the lifecycle state machine, the outbound frame dispatcher,
// and the timestamp continuity engine owned by each stream.
//
// A Stream is created by an ingest adapter when a source connects. The
// adapter feeds raw timestamps through the stream's timeline engine and
// pushes the normalized packets out with SendFrame; the owning
// application drives Start, Stop and Terminate from the outside.
//
// The stream does not own its application. It holds the application id
// and resolves the fan-out through a Registry at call time, so the
// application side exclusively owns the set of streams it hosts and no
// reference cycle forms.
//
// Stop is the only way to enter StateStopped: stopping re-anchors the
// timeline engine, and the generic SetState refuses the stopped state so
// that reset side effects can never be skipped.
package stream
