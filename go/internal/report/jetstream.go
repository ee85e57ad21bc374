package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// EventTypeGameCompleted is the event type published for every finished game.
const EventTypeGameCompleted = "GameCompleted"

type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	DuplicateWindow time.Duration // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "GAME_RESULTS",
		SubjectPrefix:   "elevator.results",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          30 * 24 * time.Hour,
		DuplicateWindow: 2 * time.Minute,
	}
}

// GameCompletedPayload is the body of a GameCompleted event.
type GameCompletedPayload struct {
	SessionID    string    `json:"session_id"`
	ElapsedTimes []float64 `json:"elapsed_times"`
	CompletedAt  time.Time `json:"completed_at"`
}

// JetStreamReporter publishes finished games to a NATS JetStream stream.
type JetStreamReporter struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStreamReporter(ctx context.Context, cfg JetStreamConfig) (*JetStreamReporter, error) {
	opts := []nats.Option{
		nats.Name("elevator"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	r := &JetStreamReporter{nc: nc, js: js, config: cfg}
	if err := r.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return r, nil
}

func (r *JetStreamReporter) ensureStream(ctx context.Context) error {
	sc := streamConfig(r.config)

	if _, err := r.js.CreateOrUpdateStream(ctx, sc); err != nil {
		return fmt.Errorf("create or update stream: %w", err)
	}

	log.Info().
		Str("stream", sc.Name).
		Strs("subjects", sc.Subjects).
		Msg("JetStream stream ready")
	return nil
}

func (r *JetStreamReporter) Report(ctx context.Context, sessionID uuid.UUID, times []float64) error {
	return r.publish(ctx, uuid.New(), sessionID, times)
}

// publish sends one GameCompleted event. The event id doubles as the
// JetStream message id, so a retried publish is stored once.
func (r *JetStreamReporter) publish(ctx context.Context, eventID, sessionID uuid.UUID, times []float64) error {
	msg, err := buildMessage(r.config.SubjectPrefix, eventID, sessionID, times, time.Now().UTC())
	if err != nil {
		return err
	}

	ack, err := r.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(eventID.String()),
		jetstream.WithExpectStream(r.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", msg.Subject).
		Str("event_id", eventID.String()).
		Uint64("sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")

	return nil
}

func (r *JetStreamReporter) Close() error {
	if r.nc != nil {
		r.nc.Close()
	}
	return nil
}

func streamConfig(cfg JetStreamConfig) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Completed elevator game results",
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Duplicates:  cfg.DuplicateWindow,
	}
}

func buildMessage(prefix string, eventID, sessionID uuid.UUID, times []float64, at time.Time) (*nats.Msg, error) {
	if times == nil {
		times = []float64{}
	}
	payload, err := json.Marshal(GameCompletedPayload{
		SessionID:    sessionID.String(),
		ElapsedTimes: times,
		CompletedAt:  at,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	env := map[string]interface{}{
		"eventId":   eventID.String(),
		"eventType": EventTypeGameCompleted,
		"sessionId": sessionID.String(),
		"timestamp": at,
		"payload":   json.RawMessage(payload),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return &nats.Msg{
		Subject: prefix + ".completed",
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{EventTypeGameCompleted},
			"Session-ID": []string{sessionID.String()},
			"Event-ID":   []string{eventID.String()},
		},
	}, nil
}
