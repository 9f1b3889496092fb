package main

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otprelay/internal/app"
)

// syncBuffer guards a bytes.Buffer written by serve and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestServe_RelaysOTP(t *testing.T) {
	w, err := app.NewWire(app.Config{
		Home:      t.TempDir(),
		Transport: app.TransportTCP,
		Addr:      freeAddr(t),
		LogLevel:  "error",
	})
	require.NoError(t, err)

	once = true
	t.Cleanup(func() { once = false })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- serve(ctx, w, nil, &out) }()

	var sendErr error
	require.Eventually(t, func() bool {
		s, err := w.Initiator().Connect(ctx)
		if err != nil {
			return false
		}
		defer s.Close()
		sendErr = w.Sender("").Relay(ctx, s, "314159")
		return true
	}, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, sendErr)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("serve did not return after the first OTP")
	}
	assert.Equal(t, "314159\n", out.String())
}

func TestServe_StopsOnCancel(t *testing.T) {
	w, err := app.NewWire(app.Config{
		Home:      t.TempDir(),
		Transport: app.TransportTCP,
		Addr:      freeAddr(t),
		LogLevel:  "error",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, w, nil, &syncBuffer{}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}
