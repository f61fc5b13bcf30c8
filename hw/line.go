// Package hw abstracts the simulated hardware that bus engines drive and
// sample. A Line is one named bus wire or wire bundle. An Entity groups the
// lines of a design and answers presence queries, since many AXI lines are
// optional per protocol profile.
package hw

// A Line is a named, width-typed handle to one bus line. Values are held as
// little-endian bytes and are always masked to the declared width.
type Line interface {
	Name() string

	// Width returns the number of bits carried by the line.
	Width() int

	// Uint returns the low 64 bits of the current value.
	Uint() uint64

	// SetUint drives the line with v, zeroing any bits above 64.
	SetUint(v uint64)

	// Bytes returns a copy of the value as little-endian bytes,
	// ceil(width/8) long.
	Bytes() []byte

	// SetBytes drives the line from little-endian bytes. Short input is
	// zero-extended, long input is truncated to the line width.
	SetBytes(b []byte)
}

// An Entity provides named lines. Absent lines report ok == false. Engines
// resolve presence once at construction and never re-query.
type Entity interface {
	Line(name string) (line Line, ok bool)
}
