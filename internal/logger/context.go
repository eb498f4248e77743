package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds call-scoped logging context for one RPC invocation.
type LogContext struct {
	TraceID    string    // trace ID assigned at connection accept time
	SpanID     string    // span ID for this call within the trace
	XID        uint32    // RPC transaction ID (rpc_msg.xid)
	Program    uint32    // RPC program number
	Version    uint32    // RPC program version
	Proc       uint32    // RPC procedure number
	ClientAddr string    // client address (without port)
	UID        uint32    // AUTH_UNIX effective user ID
	GID        uint32    // AUTH_UNIX effective group ID
	AuthFlavor uint32    // RPC auth flavor (AUTH_NONE, AUTH_UNIX, ...)
	StartTime  time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a just-accepted connection.
func NewLogContext(clientAddr string) *LogContext {
	return &LogContext{
		ClientAddr: clientAddr,
		StartTime:  time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithCall returns a copy with the program/version/proc/xid set for one call.
func (lc *LogContext) WithCall(xid, program, version, proc uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.XID = xid
		clone.Program = program
		clone.Version = version
		clone.Proc = proc
	}
	return clone
}

// WithAuth returns a copy with authentication info set
func (lc *LogContext) WithAuth(uid, gid, authFlavor uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.UID = uid
		clone.GID = gid
		clone.AuthFlavor = authFlavor
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
