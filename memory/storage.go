// Package memory provides the byte-addressable backing store that the AXI
// slave engine services bursts against. The store is externally owned: test
// code may read and write it directly between transactions, and nothing
// synchronizes such access against an in-flight burst.
package memory

import "github.com/pkg/errors"

const defaultPageSize = 4096

// A Storage is a fixed-capacity, byte-addressable buffer. Pages are
// allocated lazily, so a sparse address space costs little.
type Storage struct {
	pageSize uint64
	capacity uint64
	pages    map[uint64][]byte
}

// NewStorage creates a storage with the given capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		pageSize: defaultPageSize,
		capacity: capacity,
		pages:    make(map[uint64][]byte),
	}
}

// Capacity returns the capacity of the storage in bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// Read copies n bytes starting at addr out of the storage.
func (s *Storage) Read(addr, n uint64) ([]byte, error) {
	if addr+n > s.capacity {
		return nil, errors.Errorf(
			"read of %d bytes at 0x%x exceeds capacity 0x%x",
			n, addr, s.capacity)
	}

	out := make([]byte, n)
	done := uint64(0)
	for done < n {
		page, off := s.locate(addr + done)
		chunk := s.pageSize - off
		if chunk > n-done {
			chunk = n - done
		}

		copy(out[done:done+chunk], page[off:off+chunk])
		done += chunk
	}

	return out, nil
}

// Write copies data into the storage starting at addr.
func (s *Storage) Write(addr uint64, data []byte) error {
	n := uint64(len(data))
	if addr+n > s.capacity {
		return errors.Errorf(
			"write of %d bytes at 0x%x exceeds capacity 0x%x",
			n, addr, s.capacity)
	}

	done := uint64(0)
	for done < n {
		page, off := s.locate(addr + done)
		chunk := s.pageSize - off
		if chunk > n-done {
			chunk = n - done
		}

		copy(page[off:off+chunk], data[done:done+chunk])
		done += chunk
	}

	return nil
}

// locate returns the page holding addr, allocating it on first touch, and
// the offset of addr within the page.
func (s *Storage) locate(addr uint64) (page []byte, offset uint64) {
	offset = addr % s.pageSize
	base := addr - offset

	page, ok := s.pages[base]
	if !ok {
		page = make([]byte, s.pageSize)
		s.pages[base] = page
	}

	return page, offset
}
