package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/session"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"github.com/drdonut/voicecart-backend/pkg/logger"
)

// Envelope is the wire form of one order event as published by the speech
// transduction service.
type Envelope struct {
	SessionID  string     `json:"session_id"`
	Event      cart.Event `json:"event"`
	OccurredAt time.Time  `json:"occurred_at,omitempty"`
}

// Service consumes order events from Pub/Sub and applies them to session
// carts. Malformed messages and dead sessions are acked after a warning so
// they never poison the subscription; only transient failures nack.
type Service struct {
	subscription *gcppubsub.Subscriber
	registry     *session.Registry
	logg         *logger.Logger
}

// NewService builds an order-events consumer.
func NewService(subscription *gcppubsub.Subscriber, registry *session.Registry, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("order events subscription is required")
	}
	if registry == nil {
		return nil, errors.New("session registry is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{subscription: subscription, registry: registry, logg: logg}, nil
}

// Run consumes messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg.Data).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

func (s *Service) process(ctx context.Context, data []byte) processResult {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "invalid order event envelope")
		return processResult{}
	}
	if envelope.SessionID == "" {
		s.logg.Warn(ctx, "order event missing session id")
		return processResult{}
	}

	logCtx := s.logg.WithSessionID(ctx, envelope.SessionID)
	logCtx = s.logg.WithField(logCtx, "event_type", string(envelope.Event.Type))

	// The publisher owns session ids; an unseen id just means this worker
	// has not handled the session yet.
	s.registry.GetOrCreate(logCtx, envelope.SessionID)

	snap, diags, err := s.registry.Apply(logCtx, envelope.SessionID, envelope.Event)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeNotFound {
			s.logg.Warn(logCtx, "order event for expired session")
			return processResult{}
		}
		s.logg.Error(logCtx, "apply order event failed", err)
		return processResult{nack: true}
	}

	for _, d := range diags {
		s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{
			"kind":   string(d.Kind),
			"detail": d.Detail,
		}), "order event diagnostic")
	}
	s.logg.Debug(s.logg.WithField(logCtx, "version", snap.Version), "order event applied")
	return processResult{}
}
