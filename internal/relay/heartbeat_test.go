package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHeartbeatSendsPeriodically(t *testing.T) {
	conn := newFakeConn()
	s := newSession("s1", conn, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runHeartbeat(ctx, s, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(conn.framesOfType(TypeHeartbeat)) >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop on cancellation")
	}

	for _, frame := range conn.framesOfType(TypeHeartbeat) {
		_, err := time.Parse(time.RFC3339, frame["timestamp"].(string))
		require.NoError(t, err)
	}
}

func TestHeartbeatStopsOnSendFailure(t *testing.T) {
	conn := newFakeConn()
	conn.setFailWrite(true)
	s := newSession("s1", conn, time.Second)

	done := make(chan struct{})
	go func() {
		runHeartbeat(context.Background(), s, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop after send failure")
	}
}
