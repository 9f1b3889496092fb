//go:build linux

package rfcomm

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"otprelay/internal/domain"
)

var aLongTimeAgo = time.Unix(1, 0)

func socket() (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	return fd, nil
}

// Dial connects to the device at Address on Channel. Cancelling ctx aborts
// the connection attempt.
func (p *Provider) Dial(ctx context.Context) (domain.Stream, error) {
	remote, err := ParseAddress(p.Address)
	if err != nil {
		return nil, err
	}
	if remote.IsAny() {
		return nil, ErrInvalidAddress
	}
	if err := p.validChannel(); err != nil {
		return nil, err
	}

	fd, err := socket()
	if err != nil {
		return nil, err
	}
	err = unix.Connect(fd, &unix.SockaddrRFCOMM{Addr: remote.reversed(), Channel: p.Channel})
	inProgress := errors.Is(err, unix.EINPROGRESS)
	if err != nil && !inProgress {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("connect", err)
	}

	raddr := Addr{Device: remote, Channel: p.Channel}
	f := os.NewFile(uintptr(fd), "rfcomm:"+raddr.String())
	if inProgress {
		if err := waitConnected(ctx, f); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return &conn{File: f, remote: raddr}, nil
}

// waitConnected blocks until a non-blocking connect on f completes.
func waitConnected(ctx context.Context, f *os.File) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = f.SetWriteDeadline(aLongTimeAgo)
	})
	defer stop()

	var connErr error
	polled := false
	err = rc.Write(func(fd uintptr) bool {
		if !polled {
			polled = true
			return false
		}
		n, err := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			connErr = os.NewSyscallError("getsockopt", err)
			return true
		}
		switch e := unix.Errno(n); e {
		case unix.EINPROGRESS, unix.EALREADY, unix.EINTR:
			return false
		case 0:
			if _, err := unix.Getpeername(int(fd)); err != nil {
				return false
			}
			return true
		default:
			connErr = os.NewSyscallError("connect", e)
			return true
		}
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return connErr
}

// Listen binds Channel on the adapter at Address and starts listening.
// serviceID must be a UUID; the empty string means the Serial Port Profile.
func (p *Provider) Listen(_ context.Context, serviceID string) (domain.StreamListener, error) {
	id, err := ParseServiceID(serviceID)
	if err != nil {
		return nil, err
	}
	local, err := ParseAddress(p.Address)
	if err != nil {
		return nil, err
	}
	if err := p.validChannel(); err != nil {
		return nil, err
	}

	fd, err := socket()
	if err != nil {
		return nil, err
	}
	if err := unix.Bind(fd, &unix.SockaddrRFCOMM{Addr: local.reversed(), Channel: p.Channel}); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("bind", err)
	}
	if err := unix.Listen(fd, 1); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("listen", err)
	}

	return &listener{
		f:     os.NewFile(uintptr(fd), "rfcomm-listener"),
		id:    id.String(),
		local: Addr{Device: local, Channel: p.Channel},
	}, nil
}

type listener struct {
	f     *os.File
	id    string
	local Addr
}

// Accept waits for the next inbound connection or for ctx to end.
func (l *listener) Accept(ctx context.Context) (domain.Stream, error) {
	rc, err := l.f.SyscallConn()
	if err != nil {
		return nil, net.ErrClosed
	}
	stop := context.AfterFunc(ctx, func() {
		_ = l.f.SetReadDeadline(aLongTimeAgo)
	})

	var (
		nfd     int
		sa      unix.Sockaddr
		acceptE error
	)
	err = rc.Read(func(fd uintptr) bool {
		nfd, sa, acceptE = unix.Accept4(int(fd), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch {
		case errors.Is(acceptE, unix.EAGAIN), errors.Is(acceptE, unix.EINTR), errors.Is(acceptE, unix.ECONNABORTED):
			return false
		}
		return true
	})
	if !stop() {
		_ = l.f.SetReadDeadline(time.Time{})
	}
	if ctx.Err() != nil {
		if err == nil && acceptE == nil {
			_ = unix.Close(nfd)
		}
		return nil, ctx.Err()
	}
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return nil, net.ErrClosed
		}
		return nil, err
	}
	if acceptE != nil {
		return nil, os.NewSyscallError("accept", acceptE)
	}

	raddr := Addr{Channel: l.local.Channel}
	if peer, ok := sa.(*unix.SockaddrRFCOMM); ok {
		raddr = Addr{Device: fromSockaddr(peer.Addr), Channel: peer.Channel}
	}
	return &conn{
		File:   os.NewFile(uintptr(nfd), "rfcomm:"+raddr.String()),
		remote: raddr,
	}, nil
}

func (l *listener) ServiceID() string { return l.id }

func (l *listener) Close() error { return l.f.Close() }

// conn is an established RFCOMM stream. The embedded file is registered with
// the runtime poller, so Close unblocks a pending Read and write deadlines
// apply.
type conn struct {
	*os.File
	remote Addr
}

func (c *conn) RemoteAddr() net.Addr { return c.remote }
