package amba

import "fmt"

// A ProtocolError reports a completed handshake that returned a nonzero
// response code. It is surfaced synchronously to the caller of the write or
// read that triggered it and is never retried.
type ProtocolError struct {
	Op   string
	Addr uint64
	Resp Resp
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s to address 0x%08x failed with %s (%d)",
		e.Op, e.Addr, e.Resp, uint8(e.Resp))
}
