package redemption

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/admission"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/analytics"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/audit"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/emails"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Redemption outcomes. Contention results are statuses, not errors.
const (
	StatusApproved        = "approved"
	StatusAlreadyApproved = "already_approved"
	StatusCodeExhausted   = "code_exhausted"
	StatusInvalidCode     = "invalid_code"
	StatusExpired         = "expired"
	StatusAtCapacity      = "at_capacity"
)

// Service redeems single-use (or limited-use) invite codes. The conditional
// "uses = uses + 1 WHERE uses < max_uses" increment is the sole mechanism
// that keeps consumption exactly-once under concurrency; everything else in
// the transaction hangs off its affected-row count.
type Service struct {
	DB        *gorm.DB
	Emails    emails.Sender
	Analytics *analytics.Sink
	Audit     *audit.Recorder
}

// Result is the outcome of a redemption attempt.
type Result struct {
	Status  string          `json:"status"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

// Canonicalize normalizes a code for lookup: trimmed, uppercase.
func Canonicalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeem grants access to the identity behind email in exchange for one use
// of the code. Idempotent for already-granted identities. The use-count
// increment, slot reservation, and grant commit or roll back together.
func (s *Service) Redeem(ctx context.Context, rawCode, email, displayName string) (*Result, error) {
	code := Canonicalize(rawCode)
	if code == "" {
		return nil, ErrCodeRequired
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	result := &Result{}
	var referrer *uuid.UUID

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotency guard first: a retried request from an already-granted
		// identity is a pure no-op reporting the prior outcome, even when the
		// very grant it is retrying already spent or deactivated the code.
		var p domain.Profile
		lookupErr := tx.Where("email = ?", email).First(&p).Error
		if lookupErr == nil && p.BetaAccess {
			result.Status = StatusAlreadyApproved
			result.Profile = &p
			return nil
		}
		if lookupErr != nil && lookupErr != gorm.ErrRecordNotFound {
			return lookupErr
		}

		// Fresh reads at redemption time, never cached state.
		var ic domain.InviteCode
		if err := tx.Where("code = ?", code).First(&ic).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				result.Status = StatusInvalidCode
				return nil
			}
			return err
		}
		// A spent code reports exhaustion even after it deactivated itself.
		if ic.Exhausted() {
			result.Status = StatusCodeExhausted
			return nil
		}
		if !ic.Active {
			result.Status = StatusInvalidCode
			return nil
		}
		if ic.ExpiresAt != nil && ic.ExpiresAt.Before(time.Now()) {
			result.Status = StatusExpired
			return nil
		}

		// Optimistic check-and-increment. Zero rows affected means a
		// concurrent redeemer consumed the last use.
		res := tx.Model(&domain.InviteCode{}).
			Where("code_id = ? AND uses < max_uses", ic.CodeID).
			Update("uses", gorm.Expr("uses + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result.Status = StatusCodeExhausted
			return nil
		}

		// Same ledger primitive as the scored path; a full ledger aborts the
		// transaction so the increment above rolls back too.
		reservation, err := admission.TryReserveSlot(tx, 0)
		if err != nil {
			return err
		}
		if !reservation.Reserved {
			return errCapacityFull
		}

		granted, err := admission.GrantAccess(tx, email, displayName, &code)
		if err != nil {
			return err
		}
		result.Profile = granted

		var fresh domain.InviteCode
		if err := tx.Where("code_id = ?", ic.CodeID).First(&fresh).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"last_used_by": granted.ProfileID}
		if fresh.Exhausted() {
			updates["active"] = false
		}
		if err := tx.Model(&domain.InviteCode{}).Where("code_id = ?", ic.CodeID).Updates(updates).Error; err != nil {
			return err
		}

		referrer = ic.CreatedBy
		result.Status = StatusApproved
		return nil
	})
	if errors.Is(err, errCapacityFull) {
		result.Status = StatusAtCapacity
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if result.Status == StatusApproved {
		s.afterRedeem(email, displayName, code, referrer)
	}
	return result, nil
}

// afterRedeem runs post-commit: referrer counter bump, audit, analytics, and
// the approval email. All best-effort; the grant already stands.
func (s *Service) afterRedeem(email, firstName, code string, referrer *uuid.UUID) {
	ctx := context.Background()

	if referrer != nil {
		err := s.DB.Model(&domain.Profile{}).
			Where("profile_id = ?", *referrer).
			Update("referral_count", gorm.Expr("referral_count + 1")).Error
		if err != nil {
			log.Warn().Err(err).Str("code", code).Msg("redemption: referrer counter bump failed")
		}
		s.Analytics.Emit(ctx, analytics.EventReferralSignup, map[string]interface{}{
			"code":     code,
			"referrer": referrer.String(),
		})
	}

	props := map[string]interface{}{"code": code, "path": "invite_code"}
	s.Audit.Record(ctx, email, domain.AuditCodeRedeemed, props)
	s.Analytics.Emit(ctx, analytics.EventBetaApproved, props)

	if s.Emails == nil {
		return
	}
	go func() {
		if err := s.Emails.SendApproved(context.Background(), email, firstName); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("redemption: notification send failed")
		}
	}()
}
