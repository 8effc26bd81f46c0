package timeline

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avkit/ingest/media"
)

// Resolver supplies the time base for a track id.
//
// It is the engine's only view of track metadata. A track that no longer
// resolves is skipped by Reset and causes adjustment calls to fail with
// ErrTrackNotFound.
type Resolver interface {
	// Resolve returns the track's time base and whether the track exists.
	Resolve(trackID uint32) (media.Rational, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(trackID uint32) (media.Rational, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(trackID uint32) (media.Rational, bool) {
	return f(trackID)
}

// originState tracks the raw counter of one timestamp kind (pts or dts)
// for wraparound detection.
type originState struct {
	// origin is the most recent raw value seen for this kind.
	origin int64
	// wraps counts forward wraps of the raw counter. It never decrements;
	// a reverse wrap only lowers the effective count for one computation.
	wraps int64
	seen  bool
}

// detectWrap classifies the step from the previous raw value to raw.
// A jump of more than half the modulus backwards is a forward wrap and
// increments the stored counter; a jump of more than half the modulus
// forwards is a reverse wrap (the clock stepped back across the wrap
// boundary) and is only reported, never persisted.
func (o *originState) detectWrap(raw, maxTimestamp int64) (reverse bool) {
	if !o.seen {
		return false
	}
	if o.origin-raw > maxTimestamp/2 {
		o.wraps++
	} else if raw-o.origin > maxTimestamp/2 {
		reverse = true
	}
	return reverse
}

// trackState is the per-track timestamp record. All microsecond fields
// survive segment resets; only the delta baseline is cleared.
type trackState struct {
	// base is the continuity anchor in microseconds. It changes only at
	// reset points (Reset, AddReconnectGap), never during packet flow.
	base int64

	// last is the most recently emitted timestamp in microseconds, the
	// candidate anchor for the next segment.
	last     int64
	lastSeen bool

	// pts and dts wraparound detection state, tracked independently.
	pts originState
	dts originState

	// source is the delta strategy's raw baseline, independent from the
	// pts/dts origin state.
	source     int64
	sourceSeen bool
}

// Engine is the timestamp continuity engine for one stream.
//
// It is created with the stream and lives as long as the stream does;
// track records are created lazily on the first adjustment call for a
// track id and are only discarded by Clear.
//
// The Engine performs no internal locking. The owning stream is assumed
// to be driven by a single producer; see the package documentation.
type Engine struct {
	resolver Resolver
	tracks   map[uint32]*trackState

	// startUS anchors the current continuity segment, -1 when the next
	// AdjustByBase call should re-anchor.
	startUS int64

	log *logrus.Entry
}

// NewEngine creates an engine bound to a track time-base resolver.
func NewEngine(resolver Resolver, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		resolver: resolver,
		tracks:   make(map[uint32]*trackState),
		startUS:  -1,
		log:      log,
	}
}

// track returns the per-track record, creating it on first use.
func (e *Engine) track(trackID uint32) *trackState {
	ts, ok := e.tracks[trackID]
	if !ok {
		ts = &trackState{}
		e.tracks[trackID] = ts
	}
	return ts
}

// AdjustByBase normalizes a pts/dts pair onto the track's continuous
// timeline. The source pts-dts relationship is preserved, so the result
// remains usable for A/V sync; only the start of the segment is moved
// onto the continuity base.
//
// pts and dts must be in the track's declared time base, and maxTimestamp
// must be the modulus of the source counter (e.g. 1<<32 - 1 for 32-bit
// RTP timestamps).
//
// Returns the adjusted pts and dts, or ErrTrackNotFound when the track
// has no resolvable time base.
func (e *Engine) AdjustByBase(trackID uint32, pts, dts, maxTimestamp int64) (int64, int64, error) {
	tb, ok := e.resolver.Resolve(trackID)
	if !ok {
		return -1, -1, ErrTrackNotFound
	}

	// Anchor the segment on the first dts seen after a reset.
	if e.startUS == -1 {
		e.startUS = tb.TicksToMicros(dts)
		e.log.WithFields(logrus.Fields{
			"track":    trackID,
			"dts":      dts,
			"start_us": e.startUS,
		}).Debug("Anchored stream start timestamp")
	}

	ts := e.track(trackID)
	startTB := tb.MicrosToTicks(e.startUS)
	baseTB := tb.MicrosToTicks(ts.base)

	finalPTS := baseTB + (pts - startTB)
	finalDTS := baseTB + (dts - startTB)

	// The pts stream is not sequential, so it can also step backwards
	// across the wrap boundary; that reverse wrap lowers the effective
	// count for this packet only and leaves the stored origin untouched.
	reverse := ts.pts.detectWrap(pts, maxTimestamp)
	if reverse {
		e.log.WithField("track", trackID).Debug("Reverse pts wraparound detected")
	}
	if ts.pts.wraps > 0 {
		count := ts.pts.wraps
		if reverse {
			count--
		}
		finalPTS += count * maxTimestamp
	}

	// No reverse handling on the dts stream; only forward wraps count.
	ts.dts.detectWrap(dts, maxTimestamp)
	if ts.dts.wraps > 0 {
		finalDTS += ts.dts.wraps * maxTimestamp
	}

	ts.last = tb.TicksToMicros(finalDTS)
	ts.lastSeen = true

	if !reverse {
		ts.pts.origin = pts
		ts.pts.seen = true
	}
	ts.dts.origin = dts
	ts.dts.seen = true

	return finalPTS, finalDTS, nil
}

// AdjustByDelta generates a synthetic monotonic timestamp by accumulating
// the increments of the raw source counter. It is the strategy for
// sources whose absolute timestamps carry no meaning, such as RTP
// timestamps with a random epoch.
//
// The returned value is in the same tick units as the input.
func (e *Engine) AdjustByDelta(trackID uint32, timestamp, maxTimestamp int64) int64 {
	ts := e.track(trackID)

	var current int64
	if ts.lastSeen {
		current = ts.last
	}

	current += e.DeltaTimestamp(trackID, timestamp, maxTimestamp)

	ts.last = current
	ts.lastSeen = true

	return current
}

// DeltaTimestamp computes the increment between the raw timestamp and the
// previous one seen for the track, without accumulating it. The first
// timestamp of a track yields 0 and becomes the baseline.
//
// A backwards step is a wraparound only when the baseline sits within
// 0.01% of the counter modulus; any other drop means the source counter
// restarted (reconnect with a fresh epoch) and yields 0.
func (e *Engine) DeltaTimestamp(trackID uint32, timestamp, maxTimestamp int64) int64 {
	ts := e.track(trackID)

	if !ts.sourceSeen {
		e.log.WithFields(logrus.Fields{
			"track":     trackID,
			"timestamp": timestamp,
		}).Debug("First source timestamp for track")
		ts.source = timestamp
		ts.sourceSeen = true
		return 0
	}

	var delta int64
	switch {
	case timestamp >= ts.source:
		delta = timestamp - ts.source

	case float64(ts.source) > float64(maxTimestamp)*99.99/100:
		delta = (maxTimestamp - ts.source) + timestamp
		e.log.WithFields(logrus.Fields{
			"track": trackID,
			"last":  ts.source,
			"curr":  timestamp,
		}).Debug("Source timestamp wrapped around")

	default:
		// The counter dropped without being near the modulus: the source
		// restarted. Hold the timeline still rather than jumping back.
		delta = 0
		e.log.WithFields(logrus.Fields{
			"track": trackID,
			"last":  ts.source,
			"curr":  timestamp,
		}).Debug("Source timestamp restarted")
	}

	ts.source = timestamp
	return delta
}

// BaseTimestamp returns the track's continuity base converted to its tick
// scale, or ErrTrackNotFound when the track has no resolvable time base.
func (e *Engine) BaseTimestamp(trackID uint32) (int64, error) {
	tb, ok := e.resolver.Resolve(trackID)
	if !ok {
		return -1, ErrTrackNotFound
	}

	var base int64
	if ts, ok := e.tracks[trackID]; ok {
		base = ts.base
	}

	return tb.MicrosToTicks(base), nil
}

// LastTimestamp returns the most recently emitted timestamp for the track
// in microseconds, and whether one has been recorded.
func (e *Engine) LastTimestamp(trackID uint32) (int64, bool) {
	ts, ok := e.tracks[trackID]
	if !ok || !ts.lastSeen {
		return 0, false
	}
	return ts.last, true
}

// Reset closes the current continuity segment. It is called when the
// stream stops.
//
// The minimum of the last emitted timestamps across all tracks that still
// resolve becomes the new base for every track, so no track can step
// behind its own prior output when the next segment starts. Wraparound
// counters survive; only the segment anchor and the delta baselines are
// cleared.
func (e *Engine) Reset() {
	minLast := int64(math.MaxInt64)
	found := false
	for trackID, ts := range e.tracks {
		if !ts.lastSeen {
			continue
		}
		if _, ok := e.resolver.Resolve(trackID); !ok {
			continue
		}
		if ts.last < minLast {
			minLast = ts.last
		}
		found = true
	}

	if found {
		for trackID, ts := range e.tracks {
			if !ts.lastSeen {
				continue
			}
			e.log.WithFields(logrus.Fields{
				"track":     trackID,
				"prev_base": ts.base,
				"base":      minLast,
			}).Debug("Updated track base timestamp")
			ts.base = minLast
		}
	}

	e.startUS = -1
	for _, ts := range e.tracks {
		ts.sourceSeen = false
		ts.source = 0
	}
}

// AddReconnectGap widens every track's base by the wall-clock time lost
// while the source was away, so the continuous timeline reflects real
// elapsed time instead of collapsing the outage to zero. It is called on
// stream (re)start with the measured gap.
func (e *Engine) AddReconnectGap(gap time.Duration) {
	us := gap.Microseconds()
	if us <= 0 {
		return
	}
	e.log.WithField("gap_ms", gap.Milliseconds()).Debug("Adding reconnect gap to base timestamps")
	for _, ts := range e.tracks {
		ts.base += us
	}
}

// Clear discards all per-track records. It is called when the owning
// stream is terminated or destroyed.
func (e *Engine) Clear() {
	e.tracks = make(map[uint32]*trackState)
	e.startUS = -1
}
