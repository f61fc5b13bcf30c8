// Package amba holds the protocol vocabulary shared by the AXI master,
// slave, and stream engines: response codes, burst arithmetic, transaction
// records, protocol errors, and the binding of named bus lines to an entity.
package amba

import "fmt"

// Resp is a per-transaction response code as carried on BRESP/RRESP.
type Resp uint8

// The response codes defined by the AXI specification.
const (
	RespOKAY Resp = iota
	RespEXOKAY
	RespSLVERR
	RespDECERR
)

// OK reports whether the response signals success.
func (r Resp) OK() bool {
	return r == RespOKAY
}

func (r Resp) String() string {
	switch r {
	case RespOKAY:
		return "OKAY"
	case RespEXOKAY:
		return "EXOKAY"
	case RespSLVERR:
		return "SLVERR"
	case RespDECERR:
		return "DECERR"
	default:
		return fmt.Sprintf("Resp(%d)", uint8(r))
	}
}
