package rpc

import "fmt"

// CallError reports why a call did not return MSG_ACCEPTED/SUCCESS: a
// denial (RPC_MISMATCH or an AUTH_ERROR with its AuthStat) or an
// acceptance with a non-SUCCESS AcceptStat (including PROG_MISMATCH's
// version range).
type CallError struct {
	Denied       bool
	RejectedStat RejectStat
	AuthStat     AuthStat
	AcceptStat   AcceptStat
	Mismatch     MismatchInfo
}

func (e *CallError) Error() string {
	if e.Denied {
		if e.RejectedStat == AuthError {
			return fmt.Sprintf("rpc: call denied: auth error %d", e.AuthStat)
		}
		return fmt.Sprintf("rpc: call denied: %s (supported [%d,%d])",
			e.RejectedStat, e.Mismatch.Low, e.Mismatch.High)
	}
	if e.AcceptStat == ProgMismatch {
		return fmt.Sprintf("rpc: %s (supported [%d,%d])", e.AcceptStat, e.Mismatch.Low, e.Mismatch.High)
	}
	return fmt.Sprintf("rpc: %s", e.AcceptStat)
}

// NewCallErrorFromReply builds a CallError from a non-success reply
// header; returns nil if the reply was in fact a success.
func NewCallErrorFromReply(h *ReplyHeader) error {
	if h.Stat == MsgDenied {
		return &CallError{
			Denied:       true,
			RejectedStat: h.RejectedStat,
			AuthStat:     h.AuthStat,
			Mismatch:     h.RPCMismatch,
		}
	}
	if h.AcceptStat != Success {
		return &CallError{AcceptStat: h.AcceptStat, Mismatch: h.Mismatch}
	}
	return nil
}
