package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkit/ingest/media"
)

// mockForwarder records forwarded packets.
type mockForwarder struct {
	packets []*media.Packet
	err     error
}

func (m *mockForwarder) Forward(streamID string, packet *media.Packet) error {
	if m.err != nil {
		return m.err
	}
	m.packets = append(m.packets, packet)
	return nil
}

// mockRegistry resolves a single application id.
type mockRegistry struct {
	appID     string
	forwarder Forwarder
}

func (m *mockRegistry) Forwarder(appID string) (Forwarder, bool) {
	if appID != m.appID || m.forwarder == nil {
		return nil, false
	}
	return m.forwarder, true
}

// mockStats counts reported bytes.
type mockStats struct {
	bytesIn int
	calls   int
}

func (m *mockStats) ReportBytesIn(streamID string, bytes int) {
	m.bytesIn += bytes
	m.calls++
}

// mockTracks implements TrackSource over a static track list.
type mockTracks struct {
	tracks []media.Track
}

func (m *mockTracks) Resolve(trackID uint32) (media.Rational, bool) {
	for _, track := range m.tracks {
		if track.ID == trackID {
			return track.Timebase, true
		}
	}
	return media.Rational{}, false
}

func (m *mockTracks) FirstTrackOfType(mediaType media.Type) (media.Track, bool) {
	for _, track := range m.tracks {
		if track.Type == mediaType {
			return track, true
		}
	}
	return media.Track{}, false
}

// mockClock is a settable time provider.
type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time                  { return m.now }
func (m *mockClock) Since(t time.Time) time.Duration { return m.now.Sub(t) }

func (m *mockClock) advance(d time.Duration) { m.now = m.now.Add(d) }

// testStream builds a stream wired to fresh mocks.
func testStream(t *testing.T, tracks []media.Track) (*Stream, *mockForwarder, *mockStats, *mockClock) {
	t.Helper()

	forwarder := &mockForwarder{}
	stats := &mockStats{}
	clock := &mockClock{now: time.Unix(1700000000, 0)}

	s, err := New("camera-1", "live", &mockRegistry{appID: "live", forwarder: forwarder}, &mockTracks{tracks: tracks}, stats)
	require.NoError(t, err)
	s.SetTimeProvider(clock)

	return s, forwarder, stats, clock
}

func rawPacket(trackID uint32) *media.Packet {
	return media.NewPacket(trackID, media.TypeVideo, 0, media.PacketTypeRaw, media.FormatUnknown, []byte{1, 2, 3, 4})
}

// TestNewValidation verifies constructor collaborator checks.
func TestNewValidation(t *testing.T) {
	_, err := New("s", "app", nil, &mockTracks{}, nil)
	assert.Error(t, err)

	_, err = New("s", "app", &mockRegistry{}, nil, nil)
	assert.Error(t, err)

	s, err := New("s", "app", &mockRegistry{}, &mockTracks{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, StateRunning, s.State())
}

// TestSendFrameValidation verifies the dispatch rejection matrix: no
// forwarding and no statistics on any rejected packet.
func TestSendFrameValidation(t *testing.T) {
	tracks := []media.Track{{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseVideo90kHz}}

	t.Run("unspecified packet type", func(t *testing.T) {
		s, forwarder, stats, _ := testStream(t, tracks)
		pkt := media.NewPacket(1, media.TypeVideo, 0, media.PacketTypeUnknown, media.FormatH264AnnexB, []byte{1})

		err := s.SendFrame(pkt)
		assert.ErrorIs(t, err, ErrPacketTypeUnspecified)
		assert.Empty(t, forwarder.packets)
		assert.Zero(t, stats.calls)
	})

	t.Run("unspecified format on non-raw packet", func(t *testing.T) {
		s, forwarder, stats, _ := testStream(t, tracks)
		pkt := media.NewPacket(1, media.TypeVideo, 0, media.PacketTypeNALU, media.FormatUnknown, []byte{1})

		err := s.SendFrame(pkt)
		assert.ErrorIs(t, err, ErrFormatUnspecified)
		assert.Empty(t, forwarder.packets)
		assert.Zero(t, stats.calls)
	})

	t.Run("raw packet needs no format", func(t *testing.T) {
		s, forwarder, _, _ := testStream(t, tracks)

		err := s.SendFrame(rawPacket(1))
		assert.NoError(t, err)
		assert.Len(t, forwarder.packets, 1)
	})

	t.Run("nil packet", func(t *testing.T) {
		s, forwarder, _, _ := testStream(t, tracks)

		err := s.SendFrame(nil)
		assert.ErrorIs(t, err, ErrNilPacket)
		assert.Empty(t, forwarder.packets)
	})

	t.Run("application gone", func(t *testing.T) {
		s, err := New("s", "gone", &mockRegistry{appID: "live"}, &mockTracks{tracks: tracks}, nil)
		require.NoError(t, err)

		err = s.SendFrame(rawPacket(1))
		assert.ErrorIs(t, err, ErrNoApplication)
	})
}

// TestSendFrameSideEffects verifies byte accounting, arrival stamping
// and forwarding on success.
func TestSendFrameSideEffects(t *testing.T) {
	tracks := []media.Track{{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseVideo90kHz}}
	s, forwarder, stats, clock := testStream(t, tracks)

	_, ok := s.LastPacketAt()
	assert.False(t, ok, "no packet dispatched yet")

	err := s.SendFrame(rawPacket(1))
	require.NoError(t, err)

	assert.Equal(t, 4, stats.bytesIn)
	assert.Equal(t, 1, stats.calls)
	require.Len(t, forwarder.packets, 1)

	at, ok := s.LastPacketAt()
	require.True(t, ok)
	assert.Equal(t, clock.now, at)
}

// TestSendFrameForwarderError verifies the fan-out result is returned
// as-is.
func TestSendFrameForwarderError(t *testing.T) {
	tracks := []media.Track{{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseVideo90kHz}}
	s, forwarder, _, _ := testStream(t, tracks)
	forwarder.err = errors.New("subscriber queue full")

	err := s.SendFrame(rawPacket(1))
	assert.EqualError(t, err, "subscriber queue full")
}

// TestSendDataFrame verifies the data-track convenience wrapper.
func TestSendDataFrame(t *testing.T) {
	t.Run("wraps payload on the data track", func(t *testing.T) {
		tracks := []media.Track{
			{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseVideo90kHz},
			{ID: 9, Type: media.TypeData, Timebase: media.TimebaseMicroseconds},
		}
		s, forwarder, _, _ := testStream(t, tracks)

		err := s.SendDataFrame(12345, media.FormatJSON, media.PacketTypeEvent, []byte(`{"cue":"start"}`))
		require.NoError(t, err)

		require.Len(t, forwarder.packets, 1)
		pkt := forwarder.packets[0]
		assert.Equal(t, uint32(9), pkt.TrackID)
		assert.Equal(t, media.TypeData, pkt.Type)
		assert.Equal(t, int64(12345), pkt.PTS)
		assert.Equal(t, int64(12345), pkt.DTS)
		assert.Equal(t, media.PacketTypeEvent, pkt.PacketType)
		assert.Equal(t, media.FormatJSON, pkt.Format)
	})

	t.Run("no data track", func(t *testing.T) {
		tracks := []media.Track{{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseVideo90kHz}}
		s, forwarder, _, _ := testStream(t, tracks)

		err := s.SendDataFrame(0, media.FormatJSON, media.PacketTypeEvent, []byte(`{}`))
		assert.ErrorIs(t, err, ErrNoDataTrack)
		assert.Empty(t, forwarder.packets)
	})

	t.Run("nil payload", func(t *testing.T) {
		tracks := []media.Track{{ID: 9, Type: media.TypeData, Timebase: media.TimebaseMicroseconds}}
		s, _, _, _ := testStream(t, tracks)

		err := s.SendDataFrame(0, media.FormatJSON, media.PacketTypeEvent, nil)
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})
}

// TestStopIdempotent verifies only the first Stop runs the timeline
// reset.
func TestStopIdempotent(t *testing.T) {
	tracks := []media.Track{{ID: 1, Type: media.TypeAudio, Timebase: media.TimebaseMicroseconds}}
	s, _, _, _ := testStream(t, tracks)

	// Give the track a last timestamp so Stop moves the base.
	s.AdjustByDelta(1, 0, 1<<32-1)
	s.AdjustByDelta(1, 700, 1<<32-1)

	require.NoError(t, s.Stop())
	assert.Equal(t, StateStopped, s.State())

	base, err := s.BaseTimestamp(1)
	require.NoError(t, err)
	assert.Equal(t, int64(700), base)

	// Move the track's last position; a second Stop must not re-anchor.
	s.AdjustByDelta(1, 900, 1<<32-1)
	s.AdjustByDelta(1, 1100, 1<<32-1)
	require.NoError(t, s.Stop())
	base, err = s.BaseTimestamp(1)
	require.NoError(t, err)
	assert.Equal(t, int64(700), base)
}

// TestStopBroadcastsMinimum mirrors the engine-level global-minimum
// behavior through the stream surface with two tracks.
func TestStopBroadcastsMinimum(t *testing.T) {
	tracks := []media.Track{
		{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseMicroseconds},
		{ID: 2, Type: media.TypeAudio, Timebase: media.TimebaseMicroseconds},
	}
	s, _, _, _ := testStream(t, tracks)

	s.AdjustByDelta(1, 0, 1<<32-1)
	s.AdjustByDelta(1, 1000, 1<<32-1)
	s.AdjustByDelta(2, 0, 1<<32-1)
	s.AdjustByDelta(2, 500, 1<<32-1)

	require.NoError(t, s.Stop())

	base1, err := s.BaseTimestamp(1)
	require.NoError(t, err)
	base2, err := s.BaseTimestamp(2)
	require.NoError(t, err)
	assert.Equal(t, int64(500), base1)
	assert.Equal(t, int64(500), base2)
}

// TestStartCompensatesReconnectGap verifies the wall-clock outage lands
// on every track's base timestamp.
func TestStartCompensatesReconnectGap(t *testing.T) {
	tracks := []media.Track{
		{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseMicroseconds},
		{ID: 2, Type: media.TypeAudio, Timebase: media.TimebaseMicroseconds},
	}
	s, _, _, clock := testStream(t, tracks)

	s.AdjustByDelta(1, 0, 1<<32-1)
	s.AdjustByDelta(2, 0, 1<<32-1)

	// Last packet at T0, source reconnects 2.5s later.
	require.NoError(t, s.SendFrame(rawPacket(1)))
	clock.advance(2500 * time.Millisecond)
	require.NoError(t, s.Start())

	base1, err := s.BaseTimestamp(1)
	require.NoError(t, err)
	base2, err := s.BaseTimestamp(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2500000), base1)
	assert.Equal(t, int64(2500000), base2)
}

// TestStartWithoutPriorPackets verifies the first Start leaves bases
// untouched.
func TestStartWithoutPriorPackets(t *testing.T) {
	tracks := []media.Track{{ID: 1, Type: media.TypeVideo, Timebase: media.TimebaseMicroseconds}}
	s, _, _, _ := testStream(t, tracks)

	s.AdjustByDelta(1, 0, 1<<32-1)
	require.NoError(t, s.Start())

	base, err := s.BaseTimestamp(1)
	require.NoError(t, err)
	assert.Zero(t, base)
}

// TestSetStateGuard verifies StateStopped is unreachable through the
// generic setter.
func TestSetStateGuard(t *testing.T) {
	s, _, _, _ := testStream(t, nil)

	err := s.SetState(StateStopped)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateRunning, s.State())

	require.NoError(t, s.SetState(StateRunning))
	assert.Equal(t, StateRunning, s.State())
}

// TestTerminateIsTerminal verifies no transition leaves the terminated
// state and that track records are discarded.
func TestTerminateIsTerminal(t *testing.T) {
	tracks := []media.Track{{ID: 1, Type: media.TypeAudio, Timebase: media.TimebaseMicroseconds}}
	s, _, _, _ := testStream(t, tracks)

	s.AdjustByDelta(1, 100, 1<<32-1)
	require.NoError(t, s.Terminate())
	assert.Equal(t, StateTerminated, s.State())

	assert.ErrorIs(t, s.SetState(StateRunning), ErrInvalidTransition)
	assert.ErrorIs(t, s.Stop(), ErrInvalidTransition)
	assert.Equal(t, StateTerminated, s.State())

	_, ok := s.Timeline().LastTimestamp(1)
	assert.False(t, ok, "track records cleared on terminate")
}
