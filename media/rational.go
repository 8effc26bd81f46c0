package media

// Rational is a track time base: the duration of one tick is Num/Den
// seconds. A 90 kHz RTP video clock is Rational{1, 90000}.
type Rational struct {
	Num int32
	Den int32
}

// Common time bases.
var (
	// TimebaseVideo90kHz is the 90 kHz clock used by RTP video and MPEG-TS.
	TimebaseVideo90kHz = Rational{1, 90000}
	// TimebaseAudio48kHz is the 48 kHz clock used by Opus.
	TimebaseAudio48kHz = Rational{1, 48000}
	// TimebaseMicroseconds expresses timestamps directly in microseconds.
	TimebaseMicroseconds = Rational{1, 1000000}
)

// IsValid reports whether the time base can be used for conversion.
func (r Rational) IsValid() bool {
	return r.Num > 0 && r.Den > 0
}

// Expr returns the duration of one tick in seconds.
func (r Rational) Expr() float64 {
	return float64(r.Num) / float64(r.Den)
}

// Timescale returns the number of ticks per second.
func (r Rational) Timescale() float64 {
	return float64(r.Den) / float64(r.Num)
}

// TicksToMicros converts a tick count to microseconds.
//
// The conversion is performed in floating point; multiplication before
// division keeps the common clocks (90kHz, 48kHz) exact. Values near the
// int64 range lose precision; media timestamps stay far below that.
func (r Rational) TicksToMicros(ticks int64) int64 {
	return int64(float64(ticks) * 1000000 * float64(r.Num) / float64(r.Den))
}

// MicrosToTicks converts microseconds to a tick count in this time base.
func (r Rational) MicrosToTicks(us int64) int64 {
	return int64(float64(us) * float64(r.Den) / float64(r.Num) / 1000000)
}
