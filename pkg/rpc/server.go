package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xdrpp/goxdr/internal/logger"
	"github.com/xdrpp/goxdr/pkg/xdr"
	"github.com/xdrpp/goxdr/pkg/xdrmsg"
)

// Server is a synchronous ONC RPC server: it accepts TCP connections,
// reads record-marked messages in a loop, dispatches each through a
// ProgramRegistry, and writes back the marshaled reply — one call
// in flight at a time per connection, matching the single-threaded
// processing model described for the reactor-driven transport even
// though this server variant uses a goroutine per connection rather
// than the reactor.
type Server struct {
	Registry *ProgramRegistry

	listener net.Listener
	uaddr    string

	registered []registeredService

	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup

	callsTotal    *prometheus.CounterVec
	callDurations *prometheus.HistogramVec
}

type registeredService struct {
	prog, vers uint32
}

// NewServer creates a Server dispatching through reg.
func NewServer(reg *ProgramRegistry) *Server {
	return &Server{
		Registry: reg,
		shutdown: make(chan struct{}),
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xdrpp_rpc_calls_total",
			Help: "Total RPC calls dispatched, by program, version, and accept status.",
		}, []string{"program", "version", "accept_stat"}),
		callDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "xdrpp_rpc_call_duration_seconds",
			Help: "RPC call handling latency.",
		}, []string{"program", "version"}),
	}
}

// Describe implements prometheus.Collector.
func (s *Server) Describe(ch chan<- *prometheus.Desc) {
	s.callsTotal.Describe(ch)
	s.callDurations.Describe(ch)
}

// Collect implements prometheus.Collector.
func (s *Server) Collect(ch chan<- prometheus.Metric) {
	s.callsTotal.Collect(ch)
	s.callDurations.Collect(ch)
}

// RegisterService records (prog, vers) as served here, for rpcbind
// registration in ListenAndServe. It does not touch the Registry's
// procedure table; procedures are added with Registry.Register.
func (s *Server) RegisterService(prog, vers uint32) {
	s.registered = append(s.registered, registeredService{prog, vers})
}

// ListenAndServe binds addr, optionally registers every RegisterService
// entry with rpcbind, then serves until Stop is called or ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, registerRPCBind bool) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpc: listen %s: %w", addr, err)
	}
	s.listener = ln
	s.uaddr = MakeUaddr(ln.Addr())

	if registerRPCBind {
		for _, svc := range s.registered {
			if err := RegisterWithRPCBind(svc.prog, svc.vers, s.uaddr); err != nil {
				logger.Warn("rpc: rpcbind registration failed", "program", svc.prog, "version", svc.vers, "error", err)
			}
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.shutdown:
		}
	}()

	logger.Info("rpc server listening", "address", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
				return fmt.Errorf("rpc: accept: %w", err)
			}
		}
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConn(c)
		}(conn)
	}
}

// Stop closes the listener and unregisters every RegisterService entry
// from rpcbind, then waits for in-flight connections to finish.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.listener != nil {
			_ = s.listener.Close()
		}
		for _, svc := range s.registered {
			_ = UnregisterFromRPCBind(svc.prog, svc.vers)
		}
	})
	s.wg.Wait()
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	clientAddr := conn.RemoteAddr().String()

	lc := logger.NewLogContext(clientAddr).WithTrace(uuid.NewString(), "")
	ctx := logger.WithContext(context.Background(), lc)

	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		payload, err := readFramedMessage(conn, 1 << 20)
		if err != nil {
			if err != io.EOF {
				logger.DebugCtx(ctx, "rpc server: read error", "error", err)
			}
			return
		}

		reply, prog, vers, status := s.processOne(ctx, lc, payload, clientAddr)
		s.callsTotal.WithLabelValues(fmt.Sprint(prog), fmt.Sprint(vers), status.String()).Inc()
		if reply == nil {
			continue
		}
		if _, err := conn.Write(reply); err != nil {
			logger.DebugCtx(ctx, "rpc server: write error", "error", err)
			return
		}
	}
}

// processOne decodes one call message, dispatches it, and returns the
// fully record-marked reply bytes ready to write to the connection. lc
// is cloned per call so XID/program/version/proc annotate only the log
// lines for this one call, while TraceID stays fixed for the connection.
func (s *Server) processOne(ctx context.Context, lc *logger.LogContext, payload []byte, clientAddr string) (reply []byte, prog, vers uint32, status AcceptStat) {
	r := bytes.NewReader(payload)
	call, err := DecodeCallHeader(r)
	if err != nil {
		logger.DebugCtx(ctx, "rpc server: bad call header", "error", err)
		return nil, 0, 0, GarbageArgs
	}
	prog, vers = call.Body.Prog, call.Body.Vers
	callCtx := logger.WithContext(ctx, lc.WithCall(call.Xid, prog, vers, call.Body.Proc))

	start := time.Now()
	rhdr, result, status := s.Registry.Dispatch(&call.Body, r, clientAddr)
	rhdr.Xid = call.Xid
	s.callDurations.WithLabelValues(fmt.Sprint(prog), fmt.Sprint(vers)).Observe(time.Since(start).Seconds())

	var body bytes.Buffer
	if err := EncodeReplyHeader(&body, rhdr); err != nil {
		logger.WarnCtx(callCtx, "rpc server: encode reply header failed", "error", err)
		return nil, prog, vers, SystemErr
	}
	if result != nil {
		if err := xdr.Marshal(&body, result); err != nil {
			logger.WarnCtx(callCtx, "rpc server: encode result failed", "error", err)
			return nil, prog, vers, SystemErr
		}
	}
	if body.Len()%4 != 0 {
		body.Write(make([]byte, 4-body.Len()%4))
	}

	msg, err := xdrmsg.New(body.Bytes())
	if err != nil {
		return nil, prog, vers, SystemErr
	}
	out := make([]byte, msg.RawSize())
	msg.Marshal(out)
	logger.DebugCtx(callCtx, "rpc server: call handled", "status", status.String(), "duration_ms", logger.Duration(start))
	return out, prog, vers, status
}
