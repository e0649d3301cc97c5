package analytics

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Analytics event names emitted after committed admission transitions.
const (
	EventWaitlistSubmitted = "waitlist_submitted"
	EventBetaApproved      = "beta_approved"
	EventReferralSignup    = "referral_signup"
)

const defaultStream = "analytics:events"

// Sink publishes analytics events to a Redis stream. Best-effort: every
// failure is swallowed after a warn log, the admission outcome is already
// committed by the time Emit runs. A nil Sink or nil client is a no-op.
type Sink struct {
	Rdb    *redis.Client
	Stream string
}

func (s *Sink) stream() string {
	if s.Stream != "" {
		return s.Stream
	}
	return defaultStream
}

// Emit publishes {event, properties} to the stream.
func (s *Sink) Emit(ctx context.Context, event string, properties map[string]interface{}) {
	if s == nil || s.Rdb == nil {
		return
	}
	props, err := json.Marshal(properties)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("analytics: marshal properties failed")
		return
	}
	err = s.Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream(),
		Values: map[string]interface{}{
			"event":      event,
			"properties": string(props),
		},
	}).Err()
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("analytics: emit failed")
	}
}
