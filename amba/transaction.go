package amba

// A Transaction records one completed burst as observed by an engine. The
// slave engine hands a Transaction to its callback after servicing a burst;
// recorders persist them.
type Transaction struct {
	Addr        uint64
	Data        []byte
	Length      int
	BytesInBeat uint64
	Burst       Burst
	Resp        Resp
	Write       bool
}

// Bytes returns the total number of bytes the burst transfers.
func (t Transaction) Bytes() uint64 {
	return uint64(t.Length) * t.BytesInBeat
}
