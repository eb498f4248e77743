package rpc

import (
	"io"
	"sort"

	"github.com/xdrpp/goxdr/pkg/xdr"
)

// HandlerFunc processes one already-header-stripped call body: it
// unmarshals its own argument type from body, runs the procedure, and
// returns the result to marshal back (or an error, mapped to
// GARBAGE_ARGS per the synchronous-server rule for handler failures
// that stem from bad input).
type HandlerFunc func(body io.Reader, clientAddr string) (xdr.Marshaler, error)

// versionEntry holds one program version's registered procedures.
type versionEntry struct {
	procs map[uint32]HandlerFunc
	names map[uint32]string
}

// ProgramRegistry is a two-level (program, version) -> procedure
// dispatch table, mirroring the portmapper's own procedure table
// structure one level up.
type ProgramRegistry struct {
	programs map[uint32]map[uint32]*versionEntry
}

// NewProgramRegistry creates an empty registry.
func NewProgramRegistry() *ProgramRegistry {
	return &ProgramRegistry{programs: map[uint32]map[uint32]*versionEntry{}}
}

// Register adds one procedure's handler under (prog, vers, proc), with
// a human-readable name for use by Services.
func (reg *ProgramRegistry) Register(prog, vers, proc uint32, name string, h HandlerFunc) {
	versions, ok := reg.programs[prog]
	if !ok {
		versions = map[uint32]*versionEntry{}
		reg.programs[prog] = versions
	}
	ve, ok := versions[vers]
	if !ok {
		ve = &versionEntry{procs: map[uint32]HandlerFunc{}, names: map[uint32]string{}}
		versions[vers] = ve
	}
	ve.procs[proc] = h
	ve.names[proc] = name
}

// ServiceEntry describes one registered procedure, for introspection
// tools like xdrsrv's "services" subcommand.
type ServiceEntry struct {
	Program   uint32
	Version   uint32
	Procedure uint32
	Name      string
}

// Services lists every (program, version, procedure) this registry
// dispatches to, in ascending order.
func (reg *ProgramRegistry) Services() []ServiceEntry {
	var progs []uint32
	for p := range reg.programs {
		progs = append(progs, p)
	}
	sort.Slice(progs, func(i, j int) bool { return progs[i] < progs[j] })

	var entries []ServiceEntry
	for _, p := range progs {
		var versions []uint32
		for v := range reg.programs[p] {
			versions = append(versions, v)
		}
		sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
		for _, v := range versions {
			ve := reg.programs[p][v]
			var procs []uint32
			for pr := range ve.procs {
				procs = append(procs, pr)
			}
			sort.Slice(procs, func(i, j int) bool { return procs[i] < procs[j] })
			for _, pr := range procs {
				entries = append(entries, ServiceEntry{Program: p, Version: v, Procedure: pr, Name: ve.names[pr]})
			}
		}
	}
	return entries
}

// versionRange reports the lowest and highest registered version for
// prog, used to populate PROG_MISMATCH's low/high fields.
func (reg *ProgramRegistry) versionRange(prog uint32) (low, high uint32, ok bool) {
	versions, exists := reg.programs[prog]
	if !exists || len(versions) == 0 {
		return 0, 0, false
	}
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
	return low, high, true
}

// Dispatch routes one call body by (program, version, proc):
// unregistered program -> PROG_UNAVAIL, unregistered version ->
// PROG_MISMATCH with the program's version range, rpcvers != 2 ->
// RPC_MISMATCH, unregistered proc -> PROC_UNAVAIL, handler error ->
// GARBAGE_ARGS.
func (reg *ProgramRegistry) Dispatch(call *CallBody, body io.Reader, clientAddr string) (*ReplyHeader, xdr.Marshaler, AcceptStat) {
	if call.RPCVers != RPCVersion {
		return &ReplyHeader{
			Stat:         MsgDenied,
			RejectedStat: RPCMismatch,
			RPCMismatch:  MismatchInfo{Low: RPCVersion, High: RPCVersion},
		}, nil, SystemErr
	}

	versions, ok := reg.programs[call.Prog]
	if !ok {
		return acceptedReply(ProgUnavail, MismatchInfo{}), nil, ProgUnavail
	}
	ve, ok := versions[call.Vers]
	if !ok {
		low, high, _ := reg.versionRange(call.Prog)
		return acceptedReply(ProgMismatch, MismatchInfo{Low: low, High: high}), nil, ProgMismatch
	}
	h, ok := ve.procs[call.Proc]
	if !ok {
		return acceptedReply(ProcUnavail, MismatchInfo{}), nil, ProcUnavail
	}
	res, err := h(body, clientAddr)
	if err != nil {
		return acceptedReply(GarbageArgs, MismatchInfo{}), nil, GarbageArgs
	}
	return acceptedReply(Success, MismatchInfo{}), res, Success
}

func acceptedReply(stat AcceptStat, mismatch MismatchInfo) *ReplyHeader {
	return &ReplyHeader{
		Stat:       MsgAccepted,
		Verf:       OpaqueAuth{Flavor: AuthNone},
		AcceptStat: stat,
		Mismatch:   mismatch,
	}
}
