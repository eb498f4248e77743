package xdrsock

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/xdrpp/goxdr/pkg/reactor"
	"github.com/xdrpp/goxdr/pkg/xdrmsg"
)

func socketpair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(fds[0], true))
	require.NoError(t, unix.SetNonblock(fds[1], true))
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func pollUntil(t *testing.T, r *reactor.Reactor, deadline time.Duration, done func() bool) {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		require.NoError(t, r.Poll(10))
		if done() {
			return
		}
	}
	t.Fatalf("condition never became true")
}

// TestHappyRoundTrip exercises a well-formed record mark followed by a
// payload, confirming SeqSock reassembles exactly one message.
func TestHappyRoundTrip(t *testing.T) {
	a, b := socketpair(t)

	r, err := reactor.New()
	require.NoError(t, err)
	defer r.Close()

	var got *xdrmsg.Msg
	var gotErr error
	delivered := false
	New(r, a, func(msg *xdrmsg.Msg, err error) {
		got, gotErr = msg, err
		delivered = true
	}, 0)

	payload := []byte{0, 0, 0, 7}
	mark := make([]byte, 4)
	binary.BigEndian.PutUint32(mark, xdrmsg.LastFragment|uint32(len(payload)))
	_, err = unix.Write(b, mark)
	require.NoError(t, err)
	_, err = unix.Write(b, payload)
	require.NoError(t, err)

	pollUntil(t, r, 2*time.Second, func() bool { return delivered })

	require.NoError(t, gotErr)
	require.NotNil(t, got)
	assert.Equal(t, payload, got.Payload())
}

// TestFragmentedRecordRejected exercises the framing-rejection
// scenario: a record mark with the last-fragment bit unset is treated
// as an unsupported fragmented record, delivering a terminal nil
// message to the receive callback instead of waiting for a
// continuation that will never be honored.
func TestFragmentedRecordRejected(t *testing.T) {
	a, b := socketpair(t)

	r, err := reactor.New()
	require.NoError(t, err)
	defer r.Close()

	var got *xdrmsg.Msg
	var gotErr error
	delivered := false
	sock := New(r, a, func(msg *xdrmsg.Msg, err error) {
		got, gotErr = msg, err
		delivered = true
	}, 0)

	mark := make([]byte, 4)
	binary.BigEndian.PutUint32(mark, 4) // high bit clear: fragment, not last
	_, err = unix.Write(b, mark)
	require.NoError(t, err)

	pollUntil(t, r, 2*time.Second, func() bool { return delivered })

	assert.Nil(t, got)
	assert.Error(t, gotErr)
	assert.True(t, sock.Destroyed())
}

// TestConnectionClose exercises the ordinary EOF path: closing the
// peer delivers a terminal nil message carrying io.EOF.
func TestConnectionClose(t *testing.T) {
	a, b := socketpair(t)

	r, err := reactor.New()
	require.NoError(t, err)
	defer r.Close()

	var got *xdrmsg.Msg
	var gotErr error
	delivered := false
	New(r, a, func(msg *xdrmsg.Msg, err error) {
		got, gotErr = msg, err
		delivered = true
	}, 0)

	require.NoError(t, unix.Close(b))

	pollUntil(t, r, 2*time.Second, func() bool { return delivered })

	assert.Nil(t, got)
	assert.Error(t, gotErr)
}
