package media

// Track describes one elementary substream within a session.
type Track struct {
	// ID is the track identifier, unique within the owning stream.
	ID uint32
	// Type is the kind of media the track carries.
	Type Type
	// Timebase is the tick scale of the track's raw timestamps.
	Timebase Rational
}

// Packet is one media frame moving through the ingest pipeline.
//
// PTS and DTS are expressed in the owning track's tick scale. Before a
// packet leaves the ingest side both values must have passed through the
// timeline engine so that downstream consumers see a single continuous
// clock per track.
type Packet struct {
	TrackID uint32
	Type    Type

	// PTS is the presentation timestamp in track ticks.
	PTS int64
	// DTS is the decode timestamp in track ticks.
	DTS int64

	PacketType PacketType
	Format     BitstreamFormat

	// KeyFrame marks a random access point.
	KeyFrame bool

	Payload []byte
}

// NewPacket builds a packet with identical pts and dts, the common case
// for audio and data frames.
func NewPacket(trackID uint32, mediaType Type, timestamp int64, packetType PacketType, format BitstreamFormat, payload []byte) *Packet {
	return &Packet{
		TrackID:    trackID,
		Type:       mediaType,
		PTS:        timestamp,
		DTS:        timestamp,
		PacketType: packetType,
		Format:     format,
		Payload:    payload,
	}
}

// Size returns the payload length in bytes.
func (p *Packet) Size() int {
	return len(p.Payload)
}
