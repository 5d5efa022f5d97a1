package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo/internal/eventbus"
)

// fakeWireConn is an in-memory WireConn recording every outbound frame,
// used to exercise Session.Inject/HandleUserText without a live socket.
type fakeWireConn struct {
	mu     sync.Mutex
	sent   []any
	closed bool
}

func (c *fakeWireConn) ReadJSON(v any) error { <-make(chan struct{}); return nil }
func (c *fakeWireConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}
func (c *fakeWireConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeWireConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func newTestSession() (*Session, *fakeWireConn) {
	conn := &fakeWireConn{}
	sess := NewSession(conn, SessionConfig{}, Dependencies{
		BatteryTracker: &BatteryQueryTracker{},
	})
	return sess, conn
}

func TestInjectSteadyBatteryStatusDoesNotRequestResponse(t *testing.T) {
	sess, conn := newTestSession()
	event := eventbus.Event{
		Source:    "battery",
		Kind:      "status",
		Priority:  eventbus.PriorityNormal,
		Content:   "battery 80% (info)",
		Metadata:  map[string]any{"severity": "info", "transition": "steady_normal"},
		DedupeKey: "battery:status",
		CreatedAt: time.Now(),
	}

	require.NoError(t, sess.Inject(context.Background(), event))

	// Only the silent system-context frame goes out; no response.create is
	// queued because severity=info, no warning/critical transition, and no
	// recent battery query.
	assert.Equal(t, 1, conn.frameCount())
	assert.Empty(t, sess.responseQueue)
}

func TestInjectBatteryEnterWarningRequestsResponse(t *testing.T) {
	sess, conn := newTestSession()
	sess.admitter = NewStimulusAdmitter(0, 0)
	event := eventbus.Event{
		Source:    "battery",
		Kind:      "status",
		Priority:  eventbus.PriorityHigh,
		Content:   "battery 20% (warning)",
		Metadata:  map[string]any{"severity": "warning", "transition": "enter_warning"},
		DedupeKey: "battery:status",
		CreatedAt: time.Now(),
	}

	require.NoError(t, sess.Inject(context.Background(), event))

	// The system-context frame plus a queued/sent response.create.
	assert.Equal(t, 2, conn.frameCount())
}

func TestInjectCriticalBatteryAlwaysAdmitted(t *testing.T) {
	sess, _ := newTestSession()
	sess.phase = PhaseAwaitingConfirmation
	sess.admitter = NewStimulusAdmitter(0, time.Minute)
	event := eventbus.Event{
		Source:    "battery",
		Kind:      "status",
		Priority:  eventbus.PriorityCritical,
		Content:   "battery 3% (critical)",
		Metadata:  map[string]any{"severity": "critical", "transition": "enter_critical"},
		DedupeKey: "battery:status",
		CreatedAt: time.Now(),
	}

	require.NoError(t, sess.Inject(context.Background(), event))
	// response.create for a critical event is queued, not dropped, because
	// phase is awaiting_confirmation (§4.L confirmation-flow gating).
	require.Len(t, sess.responseQueue, 1)
}

func TestHandleProtocolErrorClassification(t *testing.T) {
	sess, _ := newTestSession()

	sess.responseInProgress = false
	sess.handleProtocolError("Conversation already has an active response")
	assert.True(t, sess.responseInProgress)

	sess.responseInProgress = true
	sess.handleProtocolError("input_audio_buffer is empty")
	assert.True(t, sess.responseInProgress) // untouched by the ignored case

	sess.handleProtocolError("something else entirely")
	assert.True(t, sess.responseInProgress) // untouched by the logged case
}
