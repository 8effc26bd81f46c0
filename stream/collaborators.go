package stream

import "github.com/avkit/ingest/media"

// Forwarder is the application-level fan-out that distributes validated
// packets to subscribers. It may be shared across many concurrent stream
// producers; its concurrency discipline is its own.
type Forwarder interface {
	// Forward delivers one packet on behalf of the named stream.
	Forward(streamID string, packet *media.Packet) error
}

// Registry resolves the owning application's fan-out at call time.
//
// Streams hold only the application id, never the application itself, so
// ownership stays on the application side.
type Registry interface {
	// Forwarder returns the fan-out for an application id and whether the
	// application is still registered.
	Forwarder(appID string) (Forwarder, bool)
}

// Statistics is the monitoring sink for ingested bytes. Reporting is
// fire-and-forget; no return value is relied upon.
type Statistics interface {
	ReportBytesIn(streamID string, bytes int)
}

// TrackSource supplies track metadata for a stream: the time base lookup
// consumed by the timeline engine and the by-type query used for data
// frames.
type TrackSource interface {
	// Resolve returns the track's time base and whether the track exists.
	Resolve(trackID uint32) (media.Rational, bool)

	// FirstTrackOfType returns the first track of the given media type.
	FirstTrackOfType(mediaType media.Type) (media.Track, bool)
}
