// Package xdrsock implements a non-blocking, length-delimited message
// socket over a stream connection: reads are framed by the RFC 5531
// record mark (pkg/xdrmsg) and dispatched to a receive callback; writes
// are queued and drained as the fd becomes writable. Registered on a
// reactor.Reactor, it never blocks the calling goroutine.
package xdrsock

import (
	"io"

	"golang.org/x/sys/unix"

	"github.com/xdrpp/goxdr/pkg/reactor"
	"github.com/xdrpp/goxdr/pkg/xdrmsg"
)

// DefaultMaxMsgLen bounds an incoming message's payload size, matching
// xdrpp's SeqSock default.
const DefaultMaxMsgLen = 0x100000

// RecvFunc receives one fully-framed message. A nil msg signals the
// peer closed the connection or a fatal read error occurred; it is
// delivered exactly once per socket lifetime.
type RecvFunc func(msg *xdrmsg.Msg, err error)

// SeqSock multiplexes delimited reads and queued writes for one
// connected, non-blocking file descriptor.
type SeqSock struct {
	r  *reactor.Reactor
	fd int

	maxMsgLen uint32
	rcb       RecvFunc

	readBuf   []byte
	readPos   int
	wantLen   int // -1: still reading the 4-byte mark; >=0: reading payload

	wqueue    [][]byte
	wpos      int
	destroyed bool
}

// New wraps fd (already non-blocking) in a SeqSock registered on r,
// invoking rcb for each message received.
func New(r *reactor.Reactor, fd int, rcb RecvFunc, maxMsgLen uint32) *SeqSock {
	if maxMsgLen == 0 {
		maxMsgLen = DefaultMaxMsgLen
	}
	s := &SeqSock{
		r:         r,
		fd:        fd,
		maxMsgLen: maxMsgLen,
		rcb:       rcb,
		readBuf:   make([]byte, 4),
		wantLen:   -1,
	}
	r.FdCb(fd, reactor.Read, s.onReadable)
	return s
}

// Destroyed reports whether the socket has delivered its terminal nil
// message, letting a callback that holds a reference detect a
// self-delete from within the receive callback itself.
func (s *SeqSock) Destroyed() bool { return s.destroyed }

func (s *SeqSock) onReadable() {
	if s.destroyed {
		return
	}
	for i := 0; i < 64; i++ {
		n, err := unix.Read(s.fd, s.readBuf[s.readPos:])
		if n > 0 {
			s.readPos += n
		}
		if n == 0 && err == nil {
			s.fail(io.EOF)
			return
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			s.fail(err)
			return
		}
		if s.readPos < len(s.readBuf) {
			continue
		}
		if !s.advance() {
			return
		}
	}
}

// advance processes one fully-read buffer (either the 4-byte mark or a
// complete payload), returning false if the socket failed or was
// destroyed mid-callback.
func (s *SeqSock) advance() bool {
	if s.wantLen < 0 {
		n, err := xdrmsg.ParseRecordMark(s.readBuf, s.maxMsgLen)
		if err != nil {
			s.fail(err)
			return false
		}
		if n == 0 {
			msg, _ := xdrmsg.New(nil)
			s.readBuf = make([]byte, 4)
			s.readPos = 0
			s.wantLen = -1
			return s.deliver(msg)
		}
		s.wantLen = int(n)
		s.readBuf = make([]byte, n)
		s.readPos = 0
		return true
	}
	payload := s.readBuf
	msg, err := xdrmsg.New(payload)
	s.readBuf = make([]byte, 4)
	s.readPos = 0
	s.wantLen = -1
	if err != nil {
		s.fail(err)
		return false
	}
	return s.deliver(msg)
}

func (s *SeqSock) deliver(msg *xdrmsg.Msg) bool {
	s.rcb(msg, nil)
	return !s.destroyed
}

func (s *SeqSock) fail(err error) {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.r.FdCb(s.fd, reactor.Read, nil)
	s.r.FdCb(s.fd, reactor.Write, nil)
	s.rcb(nil, err)
}

// PutMsg enqueues msg for transmission, registering a write callback if
// the queue was previously empty.
func (s *SeqSock) PutMsg(msg *xdrmsg.Msg) {
	if s.destroyed {
		return
	}
	buf := make([]byte, msg.RawSize())
	msg.Marshal(buf)
	empty := len(s.wqueue) == 0
	s.wqueue = append(s.wqueue, buf)
	if empty {
		s.r.FdCb(s.fd, reactor.Write, s.onWritable)
	}
}

// WSize reports the total bytes still queued for write, a crude
// backpressure signal for callers deciding whether to keep accepting
// work for this connection.
func (s *SeqSock) WSize() int {
	total := -s.wpos
	for _, b := range s.wqueue {
		total += len(b)
	}
	return total
}

func (s *SeqSock) onWritable() {
	if s.destroyed {
		return
	}
	const maxIov = 16
	for len(s.wqueue) > 0 {
		iovs := make([][]byte, 0, maxIov)
		first := s.wqueue[0][s.wpos:]
		iovs = append(iovs, first)
		for i := 1; i < len(s.wqueue) && len(iovs) < maxIov; i++ {
			iovs = append(iovs, s.wqueue[i])
		}
		n, err := unix.Writev(s.fd, iovs)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			s.fail(err)
			return
		}
		s.popWBytes(n)
	}
	s.r.FdCb(s.fd, reactor.Write, nil)
}

func (s *SeqSock) popWBytes(n int) {
	for n > 0 && len(s.wqueue) > 0 {
		remain := len(s.wqueue[0]) - s.wpos
		if n < remain {
			s.wpos += n
			return
		}
		n -= remain
		s.wqueue = s.wqueue[1:]
		s.wpos = 0
	}
}
