package rpc

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/xdrpp/goxdr/internal/logger"
	"github.com/xdrpp/goxdr/pkg/xdr"
	"github.com/xdrpp/goxdr/pkg/xdrmsg"
)

// Client is a synchronous ONC RPC client over one TCP connection: each
// Call blocks until the next reply arrives (or the connection fails) and
// fails if that reply carries a different xid, matching one call per
// round trip with no pipelining.
type Client struct {
	conn net.Conn
	prog uint32
	vers uint32
	xid  uint32
}

// NewClient wraps an already-connected stream conn for calls to
// (prog, vers).
func NewClient(conn net.Conn, prog, vers uint32) *Client {
	return &Client{conn: conn, prog: prog, vers: vers}
}

// Dial connects to addr and wraps the connection for calls to
// (prog, vers).
func Dial(network, addr string, prog, vers uint32) (*Client, error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", addr, err)
	}
	return NewClient(conn, prog, vers), nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// nextXid returns the next transaction id, advancing past any value
// already in flight is unnecessary for this single-call-at-a-time
// client but kept monotonic for log correlation.
func (c *Client) nextXid() uint32 {
	return atomic.AddUint32(&c.xid, 1)
}

// Call marshals header+arg into one record-marked message, sends it,
// reads the reply, verifies xid and acceptance, and unmarshals the
// result into res. arg/res may be nil for void arguments/results.
func (c *Client) Call(proc uint32, arg xdr.Marshaler, res xdr.Unmarshaler) error {
	xid := c.nextXid()
	var body bytes.Buffer
	hdr := &CallHeader{
		Xid:  xid,
		Type: Call,
		Body: CallBody{
			RPCVers: RPCVersion,
			Prog:    c.prog,
			Vers:    c.vers,
			Proc:    proc,
			Cred:    OpaqueAuth{Flavor: AuthNone},
			Verf:    OpaqueAuth{Flavor: AuthNone},
		},
	}
	if err := EncodeCallHeader(&body, hdr); err != nil {
		return err
	}
	if arg != nil {
		if err := xdr.Marshal(&body, arg); err != nil {
			return err
		}
	}
	if body.Len()%4 != 0 {
		pad := make([]byte, 4-body.Len()%4)
		body.Write(pad)
	}

	msg, err := xdrmsg.New(body.Bytes())
	if err != nil {
		return err
	}
	out := make([]byte, msg.RawSize())
	msg.Marshal(out)
	if _, err := c.conn.Write(out); err != nil {
		return fmt.Errorf("rpc: write: %w", err)
	}

	payload, err := readFramedMessage(c.conn, xdrmsg.MaxPayload)
	if err != nil {
		return err
	}
	r := bytes.NewReader(payload)
	rhdr, err := DecodeReplyHeader(r)
	if err != nil {
		return err
	}
	if rhdr.Xid != xid {
		logger.Warn("rpc client: xid mismatch", "want", xid, "got", rhdr.Xid)
		return fmt.Errorf("rpc: xid mismatch: sent %d, got %d", xid, rhdr.Xid)
	}
	if callErr := NewCallErrorFromReply(rhdr); callErr != nil {
		return callErr
	}
	if res != nil {
		if err := xdr.Unmarshal(r, res); err != nil {
			return err
		}
	}
	if r.Len() != 0 {
		return xdr.NewBadMessageSizeError("reply", "trailing bytes after result")
	}
	return nil
}

// readFramedMessage reads one RFC 5531 record-marked message (mark +
// payload) from r, rejecting fragmented or over-length records.
func readFramedMessage(r io.Reader, maxLen uint32) ([]byte, error) {
	var markBuf [4]byte
	if _, err := io.ReadFull(r, markBuf[:]); err != nil {
		return nil, fmt.Errorf("rpc: read record mark: %w", err)
	}
	n, err := xdrmsg.ParseRecordMark(markBuf[:], maxLen)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("rpc: read payload: %w", err)
	}
	return payload, nil
}
