package hw

import (
	"fmt"
	"sync"
)

// A Wire is the concrete Line used by test benches. It simply stores the
// driven value.
type Wire struct {
	name  string
	width int
	value []byte
}

// NewWire creates a standalone wire with the given name and width in bits.
func NewWire(name string, width int) *Wire {
	if width <= 0 {
		panic(fmt.Sprintf("wire %s: width must be positive", name))
	}

	return &Wire{
		name:  name,
		width: width,
		value: make([]byte, (width+7)/8),
	}
}

// Name returns the name of the wire.
func (w *Wire) Name() string {
	return w.name
}

// Width returns the width of the wire in bits.
func (w *Wire) Width() int {
	return w.width
}

// Uint returns the low 64 bits of the wire value.
func (w *Wire) Uint() uint64 {
	var v uint64
	n := len(w.value)
	if n > 8 {
		n = 8
	}

	for i := 0; i < n; i++ {
		v |= uint64(w.value[i]) << (8 * i)
	}

	return v
}

// SetUint drives the wire with v. Bits above 64 are cleared.
func (w *Wire) SetUint(v uint64) {
	for i := range w.value {
		w.value[i] = 0
	}

	for i := 0; i < len(w.value) && i < 8; i++ {
		w.value[i] = byte(v >> (8 * i))
	}

	w.maskTop()
}

// Bytes returns a copy of the wire value as little-endian bytes.
func (w *Wire) Bytes() []byte {
	b := make([]byte, len(w.value))
	copy(b, w.value)

	return b
}

// SetBytes drives the wire from little-endian bytes.
func (w *Wire) SetBytes(b []byte) {
	for i := range w.value {
		if i < len(b) {
			w.value[i] = b[i]
		} else {
			w.value[i] = 0
		}
	}

	w.maskTop()
}

func (w *Wire) maskTop() {
	rem := w.width % 8
	if rem != 0 {
		w.value[len(w.value)-1] &= byte(1<<rem) - 1
	}
}

// A Bench is an in-memory Entity. Tests and demo programs register the lines
// a design would expose and wire engines against it.
type Bench struct {
	mu    sync.RWMutex
	wires map[string]*Wire
}

// NewBench creates an empty bench.
func NewBench() *Bench {
	return &Bench{wires: make(map[string]*Wire)}
}

// AddLine registers a line with the given width in bits and returns it.
// Registering the same name twice panics.
func (b *Bench) AddLine(name string, width int) *Wire {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.wires[name]; ok {
		panic(fmt.Sprintf("line %s already registered", name))
	}

	w := NewWire(name, width)
	b.wires[name] = w

	return w
}

// Line returns the named line, or ok == false if it was never registered.
func (b *Bench) Line(name string) (Line, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	w, ok := b.wires[name]
	if !ok {
		return nil, false
	}

	return w, true
}
