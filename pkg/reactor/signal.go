package reactor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// sigOwners holds, per signal, the os/signal channel of the most recent
// registration; registering again stops and replaces it.
var (
	sigOwnersMu sync.Mutex
	sigOwners   = map[unix.Signal]chan os.Signal{}
)

// notifySignal bridges a unix.Signal registration onto Go's os/signal
// machinery, which already handles the async-signal-safety concerns a
// hand-rolled sigaction flag table would need to get right.
func notifySignal(ch chan unix.Signal, sig unix.Signal) {
	notify := make(chan os.Signal, 16)
	sigOwnersMu.Lock()
	if prior, ok := sigOwners[sig]; ok {
		signal.Stop(prior)
		close(prior)
	}
	sigOwners[sig] = notify
	sigOwnersMu.Unlock()
	signal.Notify(notify, syscall.Signal(sig))
	go func() {
		for range notify {
			select {
			case ch <- sig:
			default:
			}
		}
	}()
}
