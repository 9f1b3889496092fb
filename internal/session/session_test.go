package session_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otprelay/internal/domain"
	"otprelay/internal/protocol/frame"
	"otprelay/internal/session"
)

const waitFor = 2 * time.Second

// openPair returns a session adopting one end of an in-memory pipe and the
// raw peer end.
func openPair(t *testing.T, opts ...session.Option) (*session.Session, net.Conn) {
	t.Helper()
	local, peer := net.Pipe()
	s := session.New(opts...)
	require.NoError(t, s.Open(local))
	t.Cleanup(func() {
		_ = s.Close()
		_ = peer.Close()
	})
	return s, peer
}

func recv(t *testing.T, s *session.Session) (domain.Message, bool) {
	t.Helper()
	select {
	case m, ok := <-s.Messages():
		return m, ok
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for message")
		return domain.Message{}, false
	}
}

func waitDone(t *testing.T, s *session.Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("read loop did not stop")
	}
}

func TestSession_LifecycleStates(t *testing.T) {
	s := session.New()
	assert.Equal(t, domain.StateIdle, s.State())

	local, peer := net.Pipe()
	defer peer.Close()
	require.NoError(t, s.Open(local))
	assert.Equal(t, domain.StateOpen, s.State())

	require.NoError(t, s.Close())
	assert.Equal(t, domain.StateClosed, s.State())
}

func TestSession_OpenTwice(t *testing.T) {
	s, _ := openPair(t)
	other, otherPeer := net.Pipe()
	defer otherPeer.Close()
	assert.ErrorIs(t, s.Open(other), session.ErrAlreadyOpen)

	// The rejected stream is closed, not left dangling.
	_, err := other.Write([]byte{1})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestSession_SingleUse(t *testing.T) {
	s := session.New()
	require.NoError(t, s.Close())

	local, peer := net.Pipe()
	defer local.Close()
	defer peer.Close()
	assert.ErrorIs(t, s.Open(local), session.ErrClosed)
}

func TestSession_IdempotentClose(t *testing.T) {
	s, _ := openPair(t)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	idle := session.New()
	assert.NoError(t, idle.Close())
	assert.NoError(t, idle.Close())
	_, ok := <-idle.Messages()
	assert.False(t, ok)
}

func TestSession_SendNotConnected(t *testing.T) {
	s := session.New()
	err := s.Send(context.Background(), domain.NewMessage(domain.KindTest, nil))
	assert.ErrorIs(t, err, session.ErrNotConnected)

	open, _ := openPair(t)
	require.NoError(t, open.Close())
	err = open.Send(context.Background(), domain.NewMessage(domain.KindTest, nil))
	assert.ErrorIs(t, err, session.ErrNotConnected)
}

func TestSession_SendOrdering(t *testing.T) {
	a, b := net.Pipe()
	sa, sb := session.New(), session.New()
	require.NoError(t, sa.Open(a))
	require.NoError(t, sb.Open(b))
	defer sa.Close()
	defer sb.Close()

	ctx := context.Background()
	go func() {
		_ = sa.Send(ctx, domain.NewMessage(domain.KindTest, []byte("A")))
		_ = sa.Send(ctx, domain.NewMessage(domain.KindSmsPayload, []byte("B")))
	}()

	first, ok := recv(t, sb)
	require.True(t, ok)
	second, ok := recv(t, sb)
	require.True(t, ok)
	assert.Equal(t, []byte("A"), first.Payload)
	assert.Equal(t, domain.KindTest, first.Kind)
	assert.Equal(t, []byte("B"), second.Payload)
	assert.Equal(t, domain.KindSmsPayload, second.Kind)
}

func TestSession_DeliversUnknownKindsAndEmptyPayloads(t *testing.T) {
	s, peer := openPair(t)
	go func() {
		_ = frame.Write(peer, domain.NewMessage(domain.Kind(0xEE), nil))
	}()
	m, ok := recv(t, s)
	require.True(t, ok)
	assert.Equal(t, domain.Kind(0xEE), m.Kind)
	assert.NotNil(t, m.Payload)
	assert.Empty(t, m.Payload)
}

func TestSession_ConcurrentSendsDoNotInterleave(t *testing.T) {
	s, peer := openPair(t)

	const senders, perSender = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				p := bytes.Repeat([]byte(fmt.Sprintf("%02d", i)), 50+j)
				assert.NoError(t, s.Send(context.Background(), domain.NewMessage(domain.KindTest, p)))
			}
		}(i)
	}

	got := make(map[string]int)
	for n := 0; n < senders*perSender; n++ {
		m, err := frame.Decode(peer, 0)
		require.NoError(t, err)
		tag := string(m.Payload[:2])
		require.Equal(t, bytes.Repeat([]byte(tag), len(m.Payload)/2), m.Payload)
		got[tag]++
	}
	wg.Wait()
	assert.Len(t, got, senders)
	for _, c := range got {
		assert.Equal(t, perSender, c)
	}
}

func TestSession_PeerCloseIsSilent(t *testing.T) {
	s, peer := openPair(t)
	require.NoError(t, peer.Close())

	_, ok := recv(t, s)
	assert.False(t, ok)
	waitDone(t, s)
	assert.NoError(t, s.Err())
}

func TestSession_CloseDuringReadIsSilent(t *testing.T) {
	s, _ := openPair(t)
	require.NoError(t, s.Close())
	waitDone(t, s)
	assert.NoError(t, s.Err())
	_, ok := <-s.Messages()
	assert.False(t, ok)
}

func TestSession_MalformedFrameClosesSession(t *testing.T) {
	s, peer := openPair(t)
	go func() {
		_, _ = peer.Write([]byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF})
	}()

	_, ok := recv(t, s)
	assert.False(t, ok)
	waitDone(t, s)
	assert.ErrorIs(t, s.Err(), frame.ErrMalformedFrame)
	assert.Equal(t, domain.StateClosed, s.State())

	// The session dropped its end, so the peer sees the stream end.
	_ = peer.SetReadDeadline(time.Now().Add(waitFor))
	_, err := peer.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrDeadlineExceeded))

	assert.NoError(t, s.Close())
}

func TestSession_MessagesBeforeErrorAreDelivered(t *testing.T) {
	s, peer := openPair(t)
	go func() {
		_ = frame.Write(peer, domain.NewMessage(domain.KindTest, []byte("ok")))
		_, _ = peer.Write([]byte{0x01, 0x80, 0x00, 0x00, 0x00})
	}()

	m, ok := recv(t, s)
	require.True(t, ok)
	assert.Equal(t, []byte("ok"), m.Payload)

	_, ok = recv(t, s)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Err(), frame.ErrMalformedFrame)
}

func TestSession_TruncatedPayloadIsReadError(t *testing.T) {
	s, peer := openPair(t)
	go func() {
		_, _ = peer.Write([]byte{0x04, 0x00, 0x00, 0x00, 0x08, '1', '2', '3', '4'})
		_ = peer.Close()
	}()

	_, ok := recv(t, s)
	assert.False(t, ok)
	waitDone(t, s)
	assert.ErrorIs(t, s.Err(), frame.ErrTruncatedPayload)
	assert.NotErrorIs(t, s.Err(), frame.ErrPeerClosed)
}

func TestSession_WriteFailure(t *testing.T) {
	s, peer := openPair(t)
	require.NoError(t, peer.Close())
	waitDone(t, s)

	err := s.Send(context.Background(), domain.NewMessage(domain.KindTest, []byte("x")))
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrWriteFailure)
	var we *session.WriteError
	assert.ErrorAs(t, err, &we)
}

func TestSession_SendHonoursContextDeadline(t *testing.T) {
	s, _ := openPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Nobody reads the peer end, so the pipe write blocks until the deadline.
	err := s.Send(ctx, domain.NewMessage(domain.KindTest, []byte("stuck")))
	assert.ErrorIs(t, err, session.ErrWriteFailure)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

type dialerFunc func(ctx context.Context) (domain.Stream, error)

func (f dialerFunc) Dial(ctx context.Context) (domain.Stream, error) { return f(ctx) }

func TestSession_ConnectFailure(t *testing.T) {
	boom := errors.New("no route to host")
	s := session.New()
	err := s.Connect(context.Background(), dialerFunc(func(context.Context) (domain.Stream, error) {
		return nil, boom
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrConnection)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StateClosed, s.State())
	waitDone(t, s)
	assert.NoError(t, s.Close())
}

func TestSession_Connect(t *testing.T) {
	local, peer := net.Pipe()
	defer peer.Close()
	s := session.New(session.WithName("initiator"))
	defer s.Close()

	require.NoError(t, s.Connect(context.Background(), dialerFunc(func(context.Context) (domain.Stream, error) {
		return local, nil
	})))
	assert.Equal(t, domain.StateOpen, s.State())
	assert.Equal(t, "initiator", s.Name())

	err := s.Connect(context.Background(), dialerFunc(func(context.Context) (domain.Stream, error) {
		t.Fatal("second dial must not happen")
		return nil, nil
	}))
	assert.ErrorIs(t, err, session.ErrAlreadyOpen)
}

func TestSession_CustomMaxPayload(t *testing.T) {
	s, peer := openPair(t, session.WithMaxPayload(4))
	go func() {
		_ = frame.Write(peer, domain.NewMessage(domain.KindTest, []byte("12345")))
	}()
	_, ok := recv(t, s)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Err(), frame.ErrMalformedFrame)
}
