// Package timeline produces a continuous, monotonically increasing
// timestamp timeline per track from the raw timestamps of an unreliable
// live source.
//
// Raw timestamps from live sources are non-monotonic across reconnects,
// wrap around fixed-width counters, or carry a random epoch that makes
// them unusable as absolute time. The Engine owns all per-track timestamp
// state and exposes two independent normalization strategies:
//
//   - AdjustByBase keeps the source pts/dts relationship intact (so the
//     output can still be used for A/V sync) and only shifts the values
//     onto a continuous base, detecting counter wraparound on the way.
//     Use it when the source timestamps share the track's declared time
//     base, e.g. RTMP or MPEG-TS ingest.
//
//   - AdjustByDelta accumulates increments into a synthetic timeline.
//     Use it when the absolute value of the source timestamp is
//     meaningless, e.g. RTP timestamps with a random offset.
//
// Reset and AddReconnectGap stitch continuity segments together across
// stream stop/start cycles: Reset re-anchors every track on the global
// minimum of the last emitted timestamps, and AddReconnectGap widens the
// base by the wall-clock time lost while the source was away.
//
// The Engine is not safe for concurrent use. Each stream is fed by a
// single ingest path, and that path is the only writer; lifecycle resets
// must be serialized with adjustment calls by the caller.
package timeline
