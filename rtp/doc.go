// Package rtp adapts RTP ingest to the timestamp continuity engine.
//
// RTP timestamps start at a random epoch, so their absolute value cannot
// be used as a presentation timestamp. The Receiver parses incoming RTP
// packets with pion/rtp, routes them to a stream track by SSRC, and runs
// the 32-bit RTP clock through the delta strategy of the stream's
// timeline engine to obtain a monotonic timeline in the track's own tick
// scale.
//
// Protocol-specific timestamp extraction lives here, outside the core
// engine, which only ever sees integer ticks.
package rtp
