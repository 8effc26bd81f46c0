package rtp

import (
	"errors"
	"fmt"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/avkit/ingest/media"
	"github.com/avkit/ingest/stream"
)

// MaxTimestamp is the modulus of the 32-bit RTP timestamp counter.
const MaxTimestamp = int64(1)<<32 - 1

// ErrUnknownSSRC indicates a packet whose SSRC has no track mapping.
var ErrUnknownSSRC = errors.New("unknown ssrc")

// TrackConfig binds an RTP source to a stream track.
type TrackConfig struct {
	// TrackID is the stream track fed by this source.
	TrackID uint32
	// MediaType is the kind of media the source carries.
	MediaType media.Type
	// PacketType and Format describe the payload framing handed
	// downstream; depacketization is not this adapter's concern.
	PacketType media.PacketType
	Format     media.BitstreamFormat
}

// Receiver turns raw RTP datagrams into normalized media packets on a
// stream.
//
// Like the stream it feeds, a Receiver is driven by a single ingest
// path and performs no internal locking.
type Receiver struct {
	stream *stream.Stream
	bySSRC map[uint32]TrackConfig
	log    *logrus.Entry
}

// NewReceiver creates a receiver feeding the given stream.
func NewReceiver(s *stream.Stream) (*Receiver, error) {
	if s == nil {
		return nil, fmt.Errorf("create rtp receiver: stream cannot be nil")
	}

	return &Receiver{
		stream: s,
		bySSRC: make(map[uint32]TrackConfig),
		log: logrus.WithFields(logrus.Fields{
			"stream": s.Name(),
			"id":     s.ID(),
		}),
	}, nil
}

// MapSSRC routes packets carrying the given SSRC to a stream track.
// Remapping an SSRC replaces the previous binding.
func (r *Receiver) MapSSRC(ssrc uint32, cfg TrackConfig) {
	r.log.WithFields(logrus.Fields{
		"ssrc":  ssrc,
		"track": cfg.TrackID,
		"media": cfg.MediaType.String(),
	}).Debug("Mapped RTP source to track")
	r.bySSRC[ssrc] = cfg
}

// Input parses one RTP datagram, normalizes its timestamp through the
// stream's delta strategy and dispatches the resulting packet.
//
// The returned packet carries the synthetic timestamp in the track's
// clock-rate ticks. Packets without a payload (padding, probes) are
// dropped silently with a nil packet and no error.
func (r *Receiver) Input(raw []byte) (*media.Packet, error) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("unmarshal rtp packet: %w", err)
	}

	cfg, ok := r.bySSRC[pkt.SSRC]
	if !ok {
		r.log.WithField("ssrc", pkt.SSRC).Debug("Dropping packet from unmapped SSRC")
		return nil, ErrUnknownSSRC
	}

	if len(pkt.Payload) == 0 {
		return nil, nil
	}

	timestamp := r.stream.AdjustByDelta(cfg.TrackID, int64(pkt.Timestamp), MaxTimestamp)

	out := media.NewPacket(cfg.TrackID, cfg.MediaType, timestamp, cfg.PacketType, cfg.Format, pkt.Payload)

	if err := r.stream.SendFrame(out); err != nil {
		return nil, err
	}

	return out, nil
}
