package rpc

import (
	"bytes"
	"runtime"

	"github.com/xdrpp/goxdr/internal/logger"
	"github.com/xdrpp/goxdr/pkg/reactor"
	"github.com/xdrpp/goxdr/pkg/xdr"
	"github.com/xdrpp/goxdr/pkg/xdrmsg"
	"github.com/xdrpp/goxdr/pkg/xdrsock"
)

// AsyncHandlerFunc is like HandlerFunc but receives a ReplyCb instead of
// returning a result directly: it may reply synchronously, retain cb and
// reply later (from the reactor goroutine only), or let cb be dropped
// to signal PROC_UNAVAIL.
type AsyncHandlerFunc func(body []byte, clientAddr string, cb *ReplyCb)

// ReplyCb lets an asynchronous handler deliver its result once ready.
// It is not thread-safe: Reply/Reject must be called from the reactor
// goroutine that owns the originating connection.
type ReplyCb struct {
	conn    *asyncConn
	xid     uint32
	replied bool
}

// Reply marshals res as a successful reply and sends it.
func (cb *ReplyCb) Reply(res xdr.Marshaler) {
	if cb.replied {
		return
	}
	cb.replied = true
	cb.conn.sendAccepted(cb.xid, Success, MismatchInfo{}, res)
}

// Reject sends a MSG_ACCEPTED reply with a non-SUCCESS status (e.g.
// PROC_UNAVAIL, GARBAGE_ARGS) and no result body.
func (cb *ReplyCb) Reject(stat AcceptStat) {
	if cb.replied {
		return
	}
	cb.replied = true
	cb.conn.sendAccepted(cb.xid, stat, MismatchInfo{}, nil)
}

// finalize sends PROC_UNAVAIL if cb was dropped without a reply. It is
// run on the reactor goroutine, injected by a finalizer once cb becomes
// unreachable.
func (cb *ReplyCb) finalize() {
	if !cb.replied {
		cb.Reject(ProcUnavail)
	}
}

// AsyncServer dispatches calls on the reactor goroutine, letting
// handlers defer their reply instead of returning a result inline.
type AsyncServer struct {
	programs map[uint32]map[uint32]map[uint32]AsyncHandlerFunc
	r        *reactor.Reactor
}

// NewAsyncServer creates an AsyncServer driven by r.
func NewAsyncServer(r *reactor.Reactor) *AsyncServer {
	return &AsyncServer{r: r, programs: map[uint32]map[uint32]map[uint32]AsyncHandlerFunc{}}
}

// Register adds one procedure's asynchronous handler.
func (s *AsyncServer) Register(prog, vers, proc uint32, h AsyncHandlerFunc) {
	versions, ok := s.programs[prog]
	if !ok {
		versions = map[uint32]map[uint32]AsyncHandlerFunc{}
		s.programs[prog] = versions
	}
	procs, ok := versions[vers]
	if !ok {
		procs = map[uint32]AsyncHandlerFunc{}
		versions[vers] = procs
	}
	procs[proc] = h
}

type asyncConn struct {
	sock       *xdrsock.SeqSock
	srv        *AsyncServer
	clientAddr string
}

// Accept wraps fd (already non-blocking) as a connection served by s.
func (s *AsyncServer) Accept(fd int, clientAddr string) {
	ac := &asyncConn{srv: s, clientAddr: clientAddr}
	ac.sock = xdrsock.New(s.r, fd, ac.onMsg, xdrsock.DefaultMaxMsgLen)
}

func (c *asyncConn) onMsg(msg *xdrmsg.Msg, err error) {
	if err != nil || msg == nil {
		return
	}
	r := bytes.NewReader(msg.Payload())
	call, decErr := DecodeCallHeader(r)
	if decErr != nil {
		logger.Debug("async rpc: bad call header", "client", c.clientAddr, "error", decErr)
		return
	}
	if call.Body.RPCVers != RPCVersion {
		c.sendDenied(call.Xid, RPCMismatch, MismatchInfo{Low: RPCVersion, High: RPCVersion})
		return
	}
	versions, ok := c.srv.programs[call.Body.Prog]
	if !ok {
		c.sendAccepted(call.Xid, ProgUnavail, MismatchInfo{}, nil)
		return
	}
	procs, ok := versions[call.Body.Vers]
	if !ok {
		low, high := versionRangeOf(versions)
		c.sendAccepted(call.Xid, ProgMismatch, MismatchInfo{Low: low, High: high}, nil)
		return
	}
	h, ok := procs[call.Body.Proc]
	if !ok {
		c.sendAccepted(call.Xid, ProcUnavail, MismatchInfo{}, nil)
		return
	}
	rest := msg.Payload()[len(msg.Payload())-r.Len():]
	cb := &ReplyCb{conn: c, xid: call.Xid}
	runtime.SetFinalizer(cb, func(cb *ReplyCb) {
		c.srv.r.InjectCb(cb.finalize)
	})
	h(rest, c.clientAddr, cb)
}

func versionRangeOf(versions map[uint32]map[uint32]AsyncHandlerFunc) (low, high uint32) {
	first := true
	for v := range versions {
		if first || v < low {
			low = v
		}
		if first || v > high {
			high = v
		}
		first = false
	}
	return low, high
}

func (c *asyncConn) sendAccepted(xid uint32, stat AcceptStat, mismatch MismatchInfo, res xdr.Marshaler) {
	hdr := acceptedReply(stat, mismatch)
	hdr.Xid = xid
	c.send(hdr, res)
}

func (c *asyncConn) sendDenied(xid uint32, rejected RejectStat, mismatch MismatchInfo) {
	hdr := &ReplyHeader{Xid: xid, Stat: MsgDenied, RejectedStat: rejected, RPCMismatch: mismatch}
	c.send(hdr, nil)
}

func (c *asyncConn) send(hdr *ReplyHeader, res xdr.Marshaler) {
	var body bytes.Buffer
	if err := EncodeReplyHeader(&body, hdr); err != nil {
		logger.Warn("async rpc: encode reply header failed", "error", err)
		return
	}
	if res != nil {
		if err := xdr.Marshal(&body, res); err != nil {
			logger.Warn("async rpc: encode result failed", "error", err)
			return
		}
	}
	if body.Len()%4 != 0 {
		body.Write(make([]byte, 4-body.Len()%4))
	}
	msg, err := xdrmsg.New(body.Bytes())
	if err != nil {
		logger.Warn("async rpc: build reply message failed", "error", err)
		return
	}
	if c.sock.Destroyed() {
		return
	}
	c.sock.PutMsg(msg)
}
