package media

// Type identifies the kind of elementary substream a track carries.
type Type uint8

const (
	// TypeUnknown indicates the media type has not been determined.
	TypeUnknown Type = iota
	// TypeVideo is a video substream.
	TypeVideo
	// TypeAudio is an audio substream.
	TypeAudio
	// TypeData is a timed-metadata substream (events, captions, SCTE).
	TypeData
)

// String returns a human-readable name for the media type.
func (t Type) String() string {
	switch t {
	case TypeVideo:
		return "video"
	case TypeAudio:
		return "audio"
	case TypeData:
		return "data"
	default:
		return "unknown"
	}
}

// PacketType identifies how a packet's payload is framed.
type PacketType uint8

const (
	// PacketTypeUnknown indicates the packet type has not been set.
	// Dispatch rejects such packets.
	PacketTypeUnknown PacketType = iota
	// PacketTypeRaw is an opaque passthrough payload relayed between
	// pipeline nodes without inspection. Raw packets are exempt from the
	// bitstream format requirement.
	PacketTypeRaw
	// PacketTypeNALU is a video payload carried as NAL units.
	PacketTypeNALU
	// PacketTypeSequenceHeader is codec configuration data (SPS/PPS,
	// AudioSpecificConfig and the like).
	PacketTypeSequenceHeader
	// PacketTypeEvent is a timed application event on a data track.
	PacketTypeEvent
)

// String returns a human-readable name for the packet type.
func (t PacketType) String() string {
	switch t {
	case PacketTypeRaw:
		return "raw"
	case PacketTypeNALU:
		return "nalu"
	case PacketTypeSequenceHeader:
		return "sequence_header"
	case PacketTypeEvent:
		return "event"
	default:
		return "unknown"
	}
}

// BitstreamFormat identifies the byte-level layout of a packet's payload.
type BitstreamFormat uint8

const (
	// FormatUnknown indicates the bitstream format has not been set.
	// Dispatch rejects such packets unless the packet type is raw.
	FormatUnknown BitstreamFormat = iota
	// FormatH264AnnexB is H.264 with Annex-B start codes.
	FormatH264AnnexB
	// FormatH264AVCC is H.264 with AVCC length prefixes.
	FormatH264AVCC
	// FormatAACADTS is AAC framed with ADTS headers.
	FormatAACADTS
	// FormatAACRaw is AAC without transport framing.
	FormatAACRaw
	// FormatOpus is an Opus frame.
	FormatOpus
	// FormatJSON is a JSON-encoded event payload.
	FormatJSON
)

// String returns a human-readable name for the bitstream format.
func (f BitstreamFormat) String() string {
	switch f {
	case FormatH264AnnexB:
		return "h264_annexb"
	case FormatH264AVCC:
		return "h264_avcc"
	case FormatAACADTS:
		return "aac_adts"
	case FormatAACRaw:
		return "aac_raw"
	case FormatOpus:
		return "opus"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}
