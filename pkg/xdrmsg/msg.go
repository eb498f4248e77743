// Package xdrmsg implements the RFC 5531 record-marking message buffer:
// a 4-byte network-order record mark followed by a 4-byte-aligned
// payload. A single message always carries the last-fragment bit set —
// multi-fragment records are rejected on input, per the fragmentation
// non-goal.
package xdrmsg

import (
	"fmt"

	"github.com/xdrpp/goxdr/pkg/xdr"
)

// LastFragment is the RFC 5531 high bit of the record mark that
// indicates this fragment is the final (and, here, only) one.
const LastFragment uint32 = 1 << 31

// MaxPayload is the largest payload a record mark can describe: the
// low 31 bits of the mark word.
const MaxPayload uint32 = (1 << 31) - 1

// Msg is a heap-owned message buffer: a record mark plus a payload
// whose length is always a multiple of 4. The zero value is not a
// valid Msg; use New or Parse.
type Msg struct {
	payload []byte
}

// New allocates a message around a caller-supplied payload, which must
// already be padded to a 4-byte boundary and fit within MaxPayload.
func New(payload []byte) (*Msg, error) {
	if len(payload)%4 != 0 {
		return nil, xdr.NewBadMessageSizeError("payload", fmt.Sprintf("length %d not a multiple of 4", len(payload)))
	}
	if uint32(len(payload)) > MaxPayload {
		return nil, xdr.NewOverflowError("payload", uint32(len(payload)), MaxPayload)
	}
	return &Msg{payload: payload}, nil
}

// Payload returns the message body, excluding the record mark.
func (m *Msg) Payload() []byte { return m.payload }

// Len returns the payload length in bytes.
func (m *Msg) Len() int { return len(m.payload) }

// RecordMark computes the 4-byte record mark for this message: the
// last-fragment bit always set, plus the payload length in the low 31
// bits.
func (m *Msg) RecordMark() uint32 {
	return LastFragment | uint32(len(m.payload))
}

// Marshal writes the full wire representation — record mark followed
// by payload — into dst, which must be at least 4+Len() bytes.
func (m *Msg) Marshal(dst []byte) int {
	mark := m.RecordMark()
	dst[0] = byte(mark >> 24)
	dst[1] = byte(mark >> 16)
	dst[2] = byte(mark >> 8)
	dst[3] = byte(mark)
	copy(dst[4:], m.payload)
	return 4 + len(m.payload)
}

// RawSize is the total wire size: 4-byte mark plus payload.
func (m *Msg) RawSize() int { return 4 + len(m.payload) }

// ParseRecordMark decodes a 4-byte record mark, rejecting marks whose
// last-fragment bit is unset (fragmented records are not supported) and
// marks whose payload length exceeds maxLen.
func ParseRecordMark(b []byte, maxLen uint32) (payloadLen uint32, err error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("xdrmsg: short record mark (%d bytes)", len(b))
	}
	mark := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if mark&LastFragment == 0 {
		return 0, xdr.NewBadMessageSizeError("record-mark", "fragmented records are not supported")
	}
	n := mark & MaxPayload
	if n%4 != 0 {
		return 0, xdr.NewBadMessageSizeError("payload", fmt.Sprintf("length %d not a multiple of 4", n))
	}
	if n > maxLen {
		return 0, xdr.NewOverflowError("payload", n, maxLen)
	}
	return n, nil
}

// Parse builds a Msg from a raw payload already read off the wire
// (the record mark having already been validated by ParseRecordMark),
// asserting the 4-byte alignment invariant still holds.
func Parse(payload []byte) (*Msg, error) {
	return New(payload)
}
