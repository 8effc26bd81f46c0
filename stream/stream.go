package stream

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avkit/ingest/media"
	"github.com/avkit/ingest/timeline"
)

// Stream is the per-stream state object of the ingest pipeline.
//
// It owns the timestamp continuity engine for its tracks, validates and
// dispatches outbound packets, and runs the lifecycle state machine that
// gates the engine's reset points.
//
// A Stream is fed by a single producer; none of its methods block or
// yield, and no internal locking is performed. Lifecycle calls must be
// serialized with in-flight adjustment and dispatch calls by the caller.
type Stream struct {
	id    string
	name  string
	appID string

	registry Registry
	tracks   TrackSource
	stats    Statistics

	engine *timeline.Engine
	state  State

	// lastPacketAt is the arrival instant of the most recent outbound
	// packet; the zero value means no packet has been dispatched yet. It
	// drives reconnect-gap compensation on Start.
	lastPacketAt time.Time

	clock TimeProvider
	log   *logrus.Entry
}

// New creates a stream owned by the application identified by appID.
//
// The registry resolves the application's fan-out at dispatch time and
// the track source supplies per-track time bases for the timeline
// engine. stats may be nil when no monitoring sink is attached.
func New(name, appID string, registry Registry, tracks TrackSource, stats Statistics) (*Stream, error) {
	if registry == nil {
		return nil, fmt.Errorf("create stream %q: registry cannot be nil", name)
	}
	if tracks == nil {
		return nil, fmt.Errorf("create stream %q: track source cannot be nil", name)
	}

	id := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"stream": name,
		"id":     id,
	})

	return &Stream{
		id:       id,
		name:     name,
		appID:    appID,
		registry: registry,
		tracks:   tracks,
		stats:    stats,
		engine:   timeline.NewEngine(tracks, log),
		state:    StateRunning,
		clock:    DefaultTimeProvider{},
		log:      log,
	}, nil
}

// SetTimeProvider sets the time provider for deterministic testing.
// If tp is nil, DefaultTimeProvider is used.
func (s *Stream) SetTimeProvider(tp TimeProvider) {
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	s.clock = tp
}

// ID returns the stream's session id.
func (s *Stream) ID() string { return s.id }

// Name returns the stream's name.
func (s *Stream) Name() string { return s.name }

// State returns the current lifecycle state.
func (s *Stream) State() State { return s.state }

// Timeline returns the stream's timestamp continuity engine.
func (s *Stream) Timeline() *timeline.Engine { return s.engine }

// LastPacketAt returns the arrival instant of the most recent outbound
// packet and whether any packet has been dispatched.
func (s *Stream) LastPacketAt() (time.Time, bool) {
	return s.lastPacketAt, !s.lastPacketAt.IsZero()
}

// Start begins (or resumes) the stream.
//
// When packets were dispatched before, the wall-clock time elapsed since
// the last one is added to every track's base timestamp, so the
// continuous timeline reflects the outage instead of collapsing it. The
// caller is assumed to treat a started stream as running.
func (s *Stream) Start() error {
	s.log.Info("Stream started")

	if !s.lastPacketAt.IsZero() {
		gap := s.clock.Since(s.lastPacketAt)
		s.log.WithField("gap_ms", gap.Milliseconds()).Debug("Compensating reconnect gap")
		s.engine.AddReconnectGap(gap)
	}

	return nil
}

// Stop halts the stream and re-anchors the timeline engine so the next
// segment continues from the earliest last-known track position.
//
// Stop is idempotent: stopping a stopped stream has no side effects.
func (s *Stream) Stop() error {
	if s.state == StateStopped {
		return nil
	}
	if s.state == StateTerminated {
		return ErrInvalidTransition
	}

	s.log.Info("Stream stopped")
	s.engine.Reset()
	s.state = StateStopped

	return nil
}

// Terminate moves the stream to its terminal state and discards all
// per-track timestamp records. No transition leaves the terminated state.
func (s *Stream) Terminate() error {
	s.log.Info("Stream terminated")
	s.state = StateTerminated
	s.engine.Clear()
	return nil
}

// SetState sets the lifecycle state directly.
//
// StateStopped is rejected: it can only be entered through Stop, which
// runs the timeline reset. Transitions out of StateTerminated are also
// rejected.
func (s *Stream) SetState(state State) error {
	if state == StateStopped {
		return ErrInvalidTransition
	}
	if s.state == StateTerminated {
		return ErrInvalidTransition
	}

	s.state = state
	return nil
}

// AdjustByBase normalizes a pts/dts pair for a track onto the stream's
// continuous timeline. See timeline.Engine.AdjustByBase.
func (s *Stream) AdjustByBase(trackID uint32, pts, dts, maxTimestamp int64) (int64, int64, error) {
	return s.engine.AdjustByBase(trackID, pts, dts, maxTimestamp)
}

// AdjustByDelta accumulates a raw timestamp into a track's synthetic
// timeline. See timeline.Engine.AdjustByDelta.
func (s *Stream) AdjustByDelta(trackID uint32, timestamp, maxTimestamp int64) int64 {
	return s.engine.AdjustByDelta(trackID, timestamp, maxTimestamp)
}

// DeltaTimestamp returns the increment between a raw timestamp and the
// previous one without accumulating it. See timeline.Engine.DeltaTimestamp.
func (s *Stream) DeltaTimestamp(trackID uint32, timestamp, maxTimestamp int64) int64 {
	return s.engine.DeltaTimestamp(trackID, timestamp, maxTimestamp)
}

// BaseTimestamp returns a track's continuity base in its tick scale.
// See timeline.Engine.BaseTimestamp.
func (s *Stream) BaseTimestamp(trackID uint32) (int64, error) {
	return s.engine.BaseTimestamp(trackID)
}

// SendFrame validates an outbound packet and forwards it to the
// application fan-out.
//
// The packet is rejected when the owning application cannot be resolved,
// when its packet type is unspecified, or when its bitstream format is
// unspecified for any type other than raw passthrough. On success the
// ingested byte count is reported to the statistics sink and the packet
// arrival instant is stamped before forwarding.
func (s *Stream) SendFrame(packet *media.Packet) error {
	forwarder, ok := s.registry.Forwarder(s.appID)
	if !ok {
		return ErrNoApplication
	}

	if packet == nil {
		return ErrNilPacket
	}

	if packet.PacketType == media.PacketTypeUnknown {
		s.log.Error("Dropping packet without a packet type")
		return ErrPacketTypeUnspecified
	}

	if packet.PacketType != media.PacketTypeRaw && packet.Format == media.FormatUnknown {
		s.log.WithField("packet_type", packet.PacketType.String()).Error("Dropping packet without a bitstream format")
		return ErrFormatUnspecified
	}

	if s.stats != nil {
		s.stats.ReportBytesIn(s.id, packet.Size())
	}

	s.lastPacketAt = s.clock.Now()

	return forwarder.Forward(s.id, packet)
}

// SendDataFrame wraps a payload into an event packet on the stream's
// data track, with identical pts and dts, and dispatches it through
// SendFrame.
func (s *Stream) SendDataFrame(timestamp int64, format media.BitstreamFormat, packetType media.PacketType, payload []byte) error {
	if payload == nil {
		return ErrEmptyPayload
	}

	track, ok := s.tracks.FirstTrackOfType(media.TypeData)
	if !ok {
		s.log.Error("Data frame dropped, stream has no data track")
		return ErrNoDataTrack
	}

	packet := media.NewPacket(track.ID, media.TypeData, timestamp, packetType, format, payload)

	return s.SendFrame(packet)
}
