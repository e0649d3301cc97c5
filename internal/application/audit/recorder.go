package audit

import (
	"context"
	"encoding/json"

	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder writes structured audit records for committed admission
// transitions: a zerolog event plus a durable audit_events row. Runs
// post-commit and best-effort; a nil Recorder is a no-op.
type Recorder struct {
	DB *gorm.DB
}

// Record logs and persists one audit record.
func (r *Recorder) Record(ctx context.Context, email, action string, data map[string]interface{}) {
	ev := log.Info().Str("email", email).Str("action", action)
	for k, v := range data {
		ev = ev.Interface(k, v)
	}
	ev.Msg("audit")

	if r == nil || r.DB == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit: marshal payload failed")
		return
	}
	row := &domain.AuditEvent{
		Email:     email,
		Action:    action,
		EventData: datatypes.JSON(payload),
	}
	if err := r.DB.WithContext(ctx).Create(row).Error; err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit: persist failed")
	}
}
