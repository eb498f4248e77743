package rpc

import (
	"io"

	xdr2 "github.com/rasky/go-xdr/xdr2"
)

// marshalAll runs xdr2.Marshal over each value in order, stopping at
// the first error — used because the call/reply header's shape
// branches on its own discriminants (MsgType, ReplyStat, AcceptStat),
// which a single reflection-driven struct encode cannot express.
func marshalAll(w io.Writer, vals ...any) error {
	for _, v := range vals {
		if _, err := xdr2.Marshal(w, v); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalAll(r io.Reader, vals ...any) error {
	for _, v := range vals {
		if _, err := xdr2.Unmarshal(r, v); err != nil {
			return err
		}
	}
	return nil
}

// EncodeCallHeader writes a CALL message header.
func EncodeCallHeader(w io.Writer, h *CallHeader) error {
	return marshalAll(w,
		h.Xid, uint32(Call),
		h.Body.RPCVers, h.Body.Prog, h.Body.Vers, h.Body.Proc,
		uint32(h.Body.Cred.Flavor), h.Body.Cred.Body,
		uint32(h.Body.Verf.Flavor), h.Body.Verf.Body,
	)
}

// DecodeCallHeader reads a CALL message header. The caller has already
// determined the message is a CALL (or is peeking to find out) from the
// Xid/Type pair.
func DecodeCallHeader(r io.Reader) (*CallHeader, error) {
	var xid, mtype uint32
	if err := unmarshalAll(r, &xid, &mtype); err != nil {
		return nil, err
	}
	h := &CallHeader{Xid: xid, Type: MsgType(mtype)}
	var credFlavor, verfFlavor uint32
	if err := unmarshalAll(r,
		&h.Body.RPCVers, &h.Body.Prog, &h.Body.Vers, &h.Body.Proc,
		&credFlavor, &h.Body.Cred.Body,
	); err != nil {
		return nil, err
	}
	h.Body.Cred.Flavor = AuthFlavor(credFlavor)
	if err := unmarshalAll(r, &verfFlavor, &h.Body.Verf.Body); err != nil {
		return nil, err
	}
	h.Body.Verf.Flavor = AuthFlavor(verfFlavor)
	return h, nil
}

// EncodeReplyHeader writes a REPLY message header, branching on Stat and
// (if denied) RejectedStat to emit only the fields RFC 5531 §8 defines
// for that outcome.
func EncodeReplyHeader(w io.Writer, h *ReplyHeader) error {
	if err := marshalAll(w, h.Xid, uint32(Reply), uint32(h.Stat)); err != nil {
		return err
	}
	switch h.Stat {
	case MsgAccepted:
		if err := marshalAll(w, uint32(h.Verf.Flavor), h.Verf.Body, uint32(h.AcceptStat)); err != nil {
			return err
		}
		if h.AcceptStat == ProgMismatch {
			return marshalAll(w, h.Mismatch.Low, h.Mismatch.High)
		}
		return nil
	case MsgDenied:
		if err := marshalAll(w, uint32(h.RejectedStat)); err != nil {
			return err
		}
		switch h.RejectedStat {
		case RPCMismatch:
			return marshalAll(w, h.RPCMismatch.Low, h.RPCMismatch.High)
		case AuthError:
			return marshalAll(w, uint32(h.AuthStat))
		}
		return nil
	}
	return nil
}

// DecodeReplyHeader reads a REPLY message header.
func DecodeReplyHeader(r io.Reader) (*ReplyHeader, error) {
	var xid, mtype, stat uint32
	if err := unmarshalAll(r, &xid, &mtype, &stat); err != nil {
		return nil, err
	}
	h := &ReplyHeader{Xid: xid, Type: MsgType(mtype), Stat: ReplyStat(stat)}
	switch h.Stat {
	case MsgAccepted:
		var flavor, acceptStat uint32
		if err := unmarshalAll(r, &flavor, &h.Verf.Body, &acceptStat); err != nil {
			return nil, err
		}
		h.Verf.Flavor = AuthFlavor(flavor)
		h.AcceptStat = AcceptStat(acceptStat)
		if h.AcceptStat == ProgMismatch {
			if err := unmarshalAll(r, &h.Mismatch.Low, &h.Mismatch.High); err != nil {
				return nil, err
			}
		}
	case MsgDenied:
		var rejected uint32
		if err := unmarshalAll(r, &rejected); err != nil {
			return nil, err
		}
		h.RejectedStat = RejectStat(rejected)
		switch h.RejectedStat {
		case RPCMismatch:
			if err := unmarshalAll(r, &h.RPCMismatch.Low, &h.RPCMismatch.High); err != nil {
				return nil, err
			}
		case AuthError:
			var authStat uint32
			if err := unmarshalAll(r, &authStat); err != nil {
				return nil, err
			}
			h.AuthStat = AuthStat(authStat)
		}
	}
	return h, nil
}
