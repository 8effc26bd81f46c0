// Package media defines the packet and track types shared by the ingest
// pipeline.
//
// A Packet is one elementary media frame (or a fragment of one) together
// with its presentation/decode timestamps expressed in the owning track's
// tick scale. A Track describes one elementary substream and carries the
// rational time base used to convert between ticks and wall-clock
// microseconds.
//
// The package holds no mutable state of its own; it exists so that the
// timeline engine, the stream dispatcher, and the protocol adapters agree
// on a single container type without importing each other.
package media
