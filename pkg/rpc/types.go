// Package rpc implements the RFC 5531 (formerly RFC 1057) ONC RPC
// message layer on top of pkg/xdrmsg's record marking and pkg/reactor's
// event loop: a synchronous client, a synchronous and an asynchronous
// server, a TCP listener with optional rpcbind registration, and the
// accept/reject/auth status taxonomy used to report call outcomes.
//
// The rpc_msg call/reply header itself is encoded with
// github.com/rasky/go-xdr/xdr2's reflection-based codec rather than the
// generated pkg/xdr containers this module builds elsewhere — the
// header is a small, fixed, well-known structure external to any IDL
// file a user compiles, so it is consumed here rather than re-specified
// through the code generator.
package rpc

import "fmt"

// MsgType is the rpc_msg discriminant: a message is either a CALL or a
// REPLY.
type MsgType uint32

const (
	Call  MsgType = 0
	Reply MsgType = 1
)

// ReplyStat distinguishes an accepted call from a denied one.
type ReplyStat uint32

const (
	MsgAccepted ReplyStat = 0
	MsgDenied   ReplyStat = 1
)

// AcceptStat is the outcome of an accepted call, RFC 5531 §8.
type AcceptStat uint32

const (
	Success      AcceptStat = 0
	ProgUnavail  AcceptStat = 1
	ProgMismatch AcceptStat = 2
	ProcUnavail  AcceptStat = 3
	GarbageArgs  AcceptStat = 4
	SystemErr    AcceptStat = 5
)

func (s AcceptStat) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case ProgUnavail:
		return "PROG_UNAVAIL"
	case ProgMismatch:
		return "PROG_MISMATCH"
	case ProcUnavail:
		return "PROC_UNAVAIL"
	case GarbageArgs:
		return "GARBAGE_ARGS"
	case SystemErr:
		return "SYSTEM_ERR"
	default:
		return fmt.Sprintf("AcceptStat(%d)", uint32(s))
	}
}

// RejectStat is the outcome of a denied call, RFC 5531 §8.
type RejectStat uint32

const (
	RPCMismatch  RejectStat = 0
	AuthError    RejectStat = 1
)

func (s RejectStat) String() string {
	switch s {
	case RPCMismatch:
		return "RPC_MISMATCH"
	case AuthError:
		return "AUTH_ERROR"
	default:
		return fmt.Sprintf("RejectStat(%d)", uint32(s))
	}
}

// AuthStat is the sub-status of an AuthError rejection, RFC 5531 §8.2.
type AuthStat uint32

const (
	AuthOK           AuthStat = 0
	AuthBadCred      AuthStat = 1
	AuthRejectedCred AuthStat = 2
	AuthBadVerf      AuthStat = 3
	AuthRejectedVerf AuthStat = 4
	AuthTooWeak      AuthStat = 5
)

// AuthFlavor identifies the credential/verifier encoding. The client
// only produces AUTH_NONE; the servers do not inspect the credential or
// verifier of a call.
type AuthFlavor uint32

const (
	AuthNone AuthFlavor = 0
	AuthSys  AuthFlavor = 1
)

// OpaqueAuth is the generic (flavor, body) credential/verifier pair
// carried in every call and reply header, RFC 5531 §8.1.
type OpaqueAuth struct {
	Flavor AuthFlavor
	Body   []byte
}

// CallBody is the body of a CALL message.
type CallBody struct {
	RPCVers uint32
	Prog    uint32
	Vers    uint32
	Proc    uint32
	Cred    OpaqueAuth
	Verf    OpaqueAuth
}

// RPCVersion is the only rpcvers value this implementation speaks.
const RPCVersion uint32 = 2

// CallHeader is the full header of an outgoing or incoming CALL
// message; the procedure arguments follow immediately in the same
// buffer once this header is encoded.
type CallHeader struct {
	Xid  uint32
	Type MsgType
	Body CallBody
}

// MismatchInfo carries the [low, high] supported version range on an
// RPC_MISMATCH rejection or a PROG_MISMATCH acceptance.
type MismatchInfo struct {
	Low  uint32
	High uint32
}

// ReplyHeader is the full header of an outgoing or incoming REPLY
// message. Exactly one of the Accept/Reject-specific fields is
// meaningful, selected by Stat and (when denied) RejectedStat.
type ReplyHeader struct {
	Xid  uint32
	Type MsgType
	Stat ReplyStat

	// MsgAccepted fields.
	Verf       OpaqueAuth
	AcceptStat AcceptStat
	Mismatch   MismatchInfo // meaningful iff AcceptStat == ProgMismatch

	// MsgDenied fields.
	RejectedStat RejectStat
	RPCMismatch  MismatchInfo // meaningful iff RejectedStat == RPCMismatch
	AuthStat     AuthStat     // meaningful iff RejectedStat == AuthError
}
