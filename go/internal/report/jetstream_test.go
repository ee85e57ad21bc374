package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)

	go ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second), "nats server not ready")

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns
}

func newTestJetStreamReporter(t *testing.T) (*JetStreamReporter, JetStreamConfig) {
	t.Helper()
	ns := runJetStreamServer(t)

	cfg := DefaultJetStreamConfig()
	cfg.URL = ns.ClientURL()
	cfg.MaxReconnects = 0

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := NewJetStreamReporter(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, cfg
}

func TestJetStreamReporter_CreatesStream(t *testing.T) {
	r, cfg := newTestJetStreamReporter(t)
	ctx := context.Background()

	stream, err := r.js.Stream(ctx, cfg.StreamName)
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{cfg.SubjectPrefix + ".>"}, info.Config.Subjects)
	assert.Equal(t, uint64(0), info.State.Msgs)
}

func TestJetStreamReporter_Report(t *testing.T) {
	r, cfg := newTestJetStreamReporter(t)
	ctx := context.Background()
	sessionID := uuid.New()

	require.NoError(t, r.Report(ctx, sessionID, []float64{0.532, 1.25}))

	stream, err := r.js.Stream(ctx, cfg.StreamName)
	require.NoError(t, err)
	msg, err := stream.GetLastMsgForSubject(ctx, cfg.SubjectPrefix+".completed")
	require.NoError(t, err)

	assert.Equal(t, EventTypeGameCompleted, msg.Header.Get("Event-Type"))
	assert.Equal(t, sessionID.String(), msg.Header.Get("Session-ID"))
	assert.NotEmpty(t, msg.Header.Get("Event-ID"))

	var env struct {
		EventType string               `json:"eventType"`
		Payload   GameCompletedPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, EventTypeGameCompleted, env.EventType)
	assert.Equal(t, sessionID.String(), env.Payload.SessionID)
	assert.Equal(t, []float64{0.532, 1.25}, env.Payload.ElapsedTimes)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}

func TestJetStreamReporter_RetriedEventStoredOnce(t *testing.T) {
	r, cfg := newTestJetStreamReporter(t)
	ctx := context.Background()
	eventID, sessionID := uuid.New(), uuid.New()

	require.NoError(t, r.publish(ctx, eventID, sessionID, []float64{1}))
	require.NoError(t, r.publish(ctx, eventID, sessionID, []float64{1}))
	require.NoError(t, r.Report(ctx, sessionID, []float64{2}))

	stream, err := r.js.Stream(ctx, cfg.StreamName)
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.State.Msgs)
}

func TestJetStreamReporter_Close(t *testing.T) {
	r, _ := newTestJetStreamReporter(t)

	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
	assert.Error(t, r.Report(context.Background(), uuid.New(), []float64{1}))
}

func TestNewJetStreamReporter_Unreachable(t *testing.T) {
	cfg := DefaultJetStreamConfig()
	cfg.URL = "nats://127.0.0.1:1"

	_, err := NewJetStreamReporter(context.Background(), cfg)
	assert.ErrorContains(t, err, "connect to NATS")
}
