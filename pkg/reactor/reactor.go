// Package reactor implements a single-threaded, cooperative event
// multiplexer: fd read/write callbacks, monotonic timers, cross-thread
// callback injection via a self-pipe, OS signal delivery, and fire-and-
// forget async work dispatched to a goroutine. Every callback runs on
// whichever goroutine calls Poll — the reactor does not spawn goroutines
// of its own to run callbacks, matching the single-threaded scheduling
// model the RPC transport (pkg/rpc) assumes.
package reactor

import (
	"container/heap"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Op identifies which readiness condition a callback is registered for.
type Op int

const (
	Read Op = 1 << iota
	Write
	once
)

const (
	ReadOnce  = Read | once
	WriteOnce = Write | once
)

type fdState struct {
	rcb, wcb         func()
	roneshot, wonshot bool
}

type timer struct {
	deadline int64 // ms
	seq      uint64
	cb       func()
	canceled bool
	index    int
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Timer is an opaque handle returned by Timeout/TimeoutAt, usable to
// cancel a pending callback before it fires.
type Timer struct {
	t *timer
	r *Reactor
}

// Cancel prevents the timer from firing. Canceling an already-fired or
// already-canceled timer is a no-op.
func (h Timer) Cancel() {
	h.t.canceled = true
}

// Reactor is a single-threaded poll loop. It is not safe for concurrent
// use except for InjectCb and Wake, which may be called from any
// goroutine.
type Reactor struct {
	fds   map[int]*fdState
	start time.Time
	seq   uint64
	timers timerHeap

	mu       sync.Mutex
	injected []func()

	selfpipeR, selfpipeW int

	nasync int

	sigMu  sync.Mutex
	sigCbs map[int]func()
	sigCh  chan unix.Signal
}

// New creates an empty Reactor with its self-pipe ready for injection.
func New() (*Reactor, error) {
	fds := [2]int{}
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	r := &Reactor{
		fds:       map[int]*fdState{},
		start:     time.Now(),
		selfpipeR: fds[0],
		selfpipeW: fds[1],
		sigCbs:    map[int]func(){},
	}
	r.fds[r.selfpipeR] = &fdState{rcb: r.drainSelfPipe}
	return r, nil
}

// Close releases the self-pipe file descriptors. It does not close any
// fd registered by the caller via FdCb.
func (r *Reactor) Close() error {
	unix.Close(r.selfpipeW)
	return unix.Close(r.selfpipeR)
}

// nowMs returns milliseconds since the reactor was created — its
// monotonic epoch for timer deadlines.
func (r *Reactor) nowMs() int64 {
	return time.Since(r.start).Milliseconds()
}

// FdCb registers (or, with a nil cb, clears) a read or write callback on
// fd. Passing Read or Write overwrites any previously registered
// callback for that condition on fd; ReadOnce/WriteOnce variants clear
// themselves immediately after firing.
func (r *Reactor) FdCb(fd int, op Op, cb func()) {
	st, ok := r.fds[fd]
	if !ok {
		st = &fdState{}
		r.fds[fd] = st
	}
	if op&Read != 0 {
		st.rcb = cb
		st.roneshot = op&once != 0
	}
	if op&Write != 0 {
		st.wcb = cb
		st.wonshot = op&once != 0
	}
	if st.rcb == nil && st.wcb == nil && fd != r.selfpipeR {
		delete(r.fds, fd)
	}
}

// Timeout schedules cb to run approximately ms milliseconds from now.
func (r *Reactor) Timeout(ms int64, cb func()) Timer {
	return r.TimeoutAt(r.nowMs()+ms, cb)
}

// TimeoutAt schedules cb to run at deadline (ms since the reactor's
// epoch, as returned by nowMs-relative arithmetic). Timers fire in
// non-decreasing deadline order; ties break in registration order.
func (r *Reactor) TimeoutAt(deadline int64, cb func()) Timer {
	r.seq++
	t := &timer{deadline: deadline, seq: r.seq, cb: cb}
	heap.Push(&r.timers, t)
	return Timer{t: t, r: r}
}

// InjectCb thread-safely enqueues cb to run on the reactor's goroutine
// at the next Poll call, waking the reactor if it is blocked in poll(2).
// Safe to call from any goroutine; not safe to call from a signal
// handler (use SignalCb for that).
func (r *Reactor) InjectCb(cb func()) {
	r.mu.Lock()
	r.injected = append(r.injected, cb)
	r.mu.Unlock()
	r.Wake()
}

// Wake causes a blocked Poll call to return promptly. Safe to call from
// any goroutine.
func (r *Reactor) Wake() {
	var b [1]byte
	unix.Write(r.selfpipeW, b[:])
}

func (r *Reactor) drainSelfPipe() {
	var buf [64]byte
	for {
		n, err := unix.Read(r.selfpipeR, buf[:])
		if n <= 0 || err != nil {
			break
		}
	}
}

// Async runs work on a new goroutine, then injects cb(result) back onto
// the reactor goroutine once work returns. The reactor counts the task
// as pending until cb has been invoked.
func Async[R any](r *Reactor, work func() R, cb func(R)) {
	r.nasync++
	go func() {
		result := work()
		r.InjectCb(func() {
			r.nasync--
			cb(result)
		})
	}()
}

// SignalCb installs a process-wide handler for sig whose callback runs
// on this reactor's goroutine at the next Poll. Registering a new
// reactor for a signal already owned by another reactor transfers
// ownership; the prior reactor stops receiving it.
func (r *Reactor) SignalCb(sig unix.Signal, cb func()) {
	r.sigMu.Lock()
	defer r.sigMu.Unlock()
	if r.sigCh == nil {
		r.sigCh = make(chan unix.Signal, 16)
		go r.signalPump()
	}
	r.sigCbs[int(sig)] = cb
	notifySignal(r.sigCh, sig)
}

func (r *Reactor) signalPump() {
	for sig := range r.sigCh {
		r.InjectCb(func() {
			r.sigMu.Lock()
			cb := r.sigCbs[int(sig)]
			r.sigMu.Unlock()
			if cb != nil {
				cb()
			}
		})
	}
}

// Pending reports whether any fd callback, timer, injected callback, or
// async task remains outstanding. If false, a Poll call with an
// infinite timeout would block forever absent external wakeup.
func (r *Reactor) Pending() bool {
	for fd, st := range r.fds {
		if fd == r.selfpipeR {
			continue
		}
		if st.rcb != nil || st.wcb != nil {
			return true
		}
	}
	for _, t := range r.timers {
		if !t.canceled {
			return true
		}
	}
	r.mu.Lock()
	injected := len(r.injected) > 0
	r.mu.Unlock()
	return injected || r.nasync > 0
}

// Poll runs one iteration: computes an effective timeout as the lesser
// of timeoutMs and the next timer deadline, invokes poll(2), dispatches
// ready fd callbacks, drains the self-pipe, runs injected callbacks, and
// fires expired timers. timeoutMs of -1 means wait indefinitely (subject
// to the next timer deadline).
func (r *Reactor) Poll(timeoutMs int) error {
	pfds := make([]unix.PollFd, 0, len(r.fds))
	order := make([]int, 0, len(r.fds))
	for fd, st := range r.fds {
		var events int16
		if st.rcb != nil {
			events |= unix.POLLIN
		}
		if st.wcb != nil {
			events |= unix.POLLOUT
		}
		if events == 0 {
			continue
		}
		pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: events})
		order = append(order, fd)
	}

	eff := r.effectiveTimeout(timeoutMs)
	_, err := unix.Poll(pfds, eff)
	if err != nil && err != unix.EINTR {
		return err
	}

	for i, pfd := range pfds {
		if pfd.Revents == 0 {
			continue
		}
		fd := order[i]
		st, ok := r.fds[fd]
		if !ok {
			continue
		}
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 && st.rcb != nil {
			cb := st.rcb
			if st.roneshot {
				st.rcb = nil
			}
			cb()
		}
		st, ok = r.fds[fd]
		if !ok {
			continue
		}
		if pfd.Revents&unix.POLLOUT != 0 && st.wcb != nil {
			cb := st.wcb
			if st.wonshot {
				st.wcb = nil
			}
			cb()
		}
	}

	r.runInjected()
	r.runTimers()
	return nil
}

func (r *Reactor) effectiveTimeout(timeoutMs int) int {
	if len(r.timers) == 0 {
		return timeoutMs
	}
	next := r.timers[0].deadline - r.nowMs()
	if next < 0 {
		next = 0
	}
	if timeoutMs < 0 || int64(timeoutMs) > next {
		return int(next)
	}
	return timeoutMs
}

func (r *Reactor) runInjected() {
	r.mu.Lock()
	batch := r.injected
	r.injected = nil
	r.mu.Unlock()
	for _, cb := range batch {
		cb()
	}
}

func (r *Reactor) runTimers() {
	now := r.nowMs()
	for len(r.timers) > 0 && r.timers[0].deadline <= now {
		t := heap.Pop(&r.timers).(*timer)
		if t.canceled {
			continue
		}
		t.cb()
	}
}
