package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the RPC transport,
// the message socket, and the event reactor. Use these keys consistently
// so the same query finds a field regardless of which layer logged it.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // per-connection trace ID
	KeySpanID  = "span_id"  // per-call span ID

	// ========================================================================
	// RPC Call Identity (RFC 5531)
	// ========================================================================
	KeyXID     = "xid"     // rpc_msg transaction ID
	KeyProgram = "program" // RPC program number
	KeyVersion = "version" // RPC program version
	KeyProc    = "proc"    // RPC procedure number

	// ========================================================================
	// Reply / Error Status
	// ========================================================================
	KeyAcceptStat = "accept_stat" // SUCCESS, PROG_UNAVAIL, PROG_MISMATCH, ...
	KeyRejectStat = "reject_stat" // RPC_MISMATCH, AUTH_ERROR
	KeyAuthStat   = "auth_stat"   // AUTH_BADCRED, AUTH_TOOWEAK, ...
	KeyErrorCode  = "error_code"  // xdr.ErrorCode
	KeyError      = "error"       // error message

	// ========================================================================
	// Transport / Connection
	// ========================================================================
	KeyClientAddr   = "client_addr"   // client address without port
	KeyConnectionID = "connection_id" // message socket identifier
	KeyFD           = "fd"            // file descriptor being watched by the reactor
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"
	KeyMsgLen       = "msg_len" // decoded record length

	// ========================================================================
	// Auth
	// ========================================================================
	KeyAuthFlavor = "auth_flavor" // AUTH_NONE, AUTH_UNIX, ...
	KeyUID        = "uid"
	KeyGID        = "gid"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyAttempt    = "attempt"    // attempt number of a retried operation
	KeyMaxRetries = "max_retries"
)

// TraceID returns a slog.Attr for the connection trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for the per-call span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// XID returns a slog.Attr for an RPC transaction ID.
func XID(xid uint32) slog.Attr {
	return slog.Uint64(KeyXID, uint64(xid))
}

// Program returns three slog.Attrs, as a []any ready to spread into a
// log call, for an RPC program/version/proc triple.
func Program(program, version, proc uint32) []any {
	return []any{
		slog.Uint64(KeyProgram, uint64(program)),
		slog.Uint64(KeyVersion, uint64(version)),
		slog.Uint64(KeyProc, uint64(proc)),
	}
}

// AcceptStat returns a slog.Attr for an RPC accept_stat value.
func AcceptStat(stat uint32) slog.Attr {
	return slog.Uint64(KeyAcceptStat, uint64(stat))
}

// ClientAddr returns a slog.Attr for the client address.
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// Err returns a slog.Attr wrapping an error's message, or a no-op attr if
// err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// DurationAttr returns a slog.Attr for a duration already expressed in
// milliseconds.
func DurationAttr(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
