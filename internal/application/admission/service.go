package admission

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/analytics"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/audit"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/emails"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/scoring"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service scores applications and admits them against the capacity ledger.
// All cross-request coordination goes through conditional row updates; the
// service itself holds no shared mutable state.
type Service struct {
	DB        *gorm.DB
	Rubric    scoring.Config
	Emails    emails.Sender
	Analytics *analytics.Sink
	Audit     *audit.Recorder
}

// SubmitInput is one waitlist submission.
type SubmitInput struct {
	Email       string
	DisplayName string
	Answers     scoring.Answers
}

// Decision is the outcome of a submission.
type Decision struct {
	ApplicationID  uuid.UUID         `json:"application_id"`
	Status         string            `json:"status"`
	Score          int               `json:"score"`
	Breakdown      scoring.Breakdown `json:"breakdown"`
	AlreadyGranted bool              `json:"already_granted"`
}

// Reservation is the result of the atomic slot reservation.
type Reservation struct {
	Reserved bool
	Active   int
	Cap      int
}

// TryReserveSlot claims one capacity slot with a single conditional UPDATE:
// the increment only applies while approved_active < cap - buffer, and the
// affected-row count says whether this caller won the slot. Never implemented
// as a read followed by a write. Call inside the transaction that writes the
// grant so both commit or neither does.
func TryReserveSlot(tx *gorm.DB, buffer int) (Reservation, error) {
	res := tx.Model(&domain.BetaCapacity{}).
		Where("id = ? AND approved_active < cap - ?", domain.BetaCapacityRowID, buffer).
		Updates(map[string]interface{}{
			"approved_active": gorm.Expr("approved_active + 1"),
			"approved_total":  gorm.Expr("approved_total + 1"),
		})
	if res.Error != nil {
		return Reservation{}, res.Error
	}
	var row domain.BetaCapacity
	if err := tx.Where("id = ?", domain.BetaCapacityRowID).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Reservation{}, ErrLedgerMissing
		}
		return Reservation{}, err
	}
	return Reservation{Reserved: res.RowsAffected > 0, Active: row.ApprovedActive, Cap: row.Cap}, nil
}

// GrantAccess marks the identity admitted. The update is conditioned on
// beta_access still being false; an already-granted identity returns
// ErrAlreadyGranted and nothing changes. codeUsed is set on the code path.
func GrantAccess(tx *gorm.DB, email, displayName string, codeUsed *string) (*domain.Profile, error) {
	now := time.Now()
	var p domain.Profile
	err := tx.Where("email = ?", email).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		p = domain.Profile{
			Email:               email,
			DisplayName:         displayName,
			BetaAccess:          true,
			BetaAccessGrantedAt: &now,
			InviteCodeUsed:      codeUsed,
		}
		if err := tx.Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	} else if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"beta_access":            true,
		"beta_access_granted_at": now,
	}
	if codeUsed != nil {
		updates["invite_code_used"] = *codeUsed
	}
	res := tx.Model(&domain.Profile{}).
		Where("profile_id = ? AND beta_access = ?", p.ProfileID, false).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return &p, ErrAlreadyGranted
	}
	p.BetaAccess = true
	p.BetaAccessGrantedAt = &now
	p.InviteCodeUsed = codeUsed
	return &p, nil
}

// SubmitApplication validates, scores, records the application, and decides
// admission. The slot reservation and the grant commit in one transaction.
func (s *Service) SubmitApplication(ctx context.Context, in SubmitInput) (*Decision, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(in.Answers.Role) == "" {
		return nil, ErrRoleRequired
	}

	bd := scoring.Score(in.Answers, s.Rubric)

	answersJSON, err := json.Marshal(in.Answers)
	if err != nil {
		return nil, err
	}
	breakdownJSON, err := json.Marshal(bd)
	if err != nil {
		return nil, err
	}
	appRow := &domain.WaitlistApplication{
		Email:        email,
		Answers:      datatypes.JSON(answersJSON),
		Breakdown:    datatypes.JSON(breakdownJSON),
		Score:        bd.CappedTotal,
		ScoreVersion: s.Rubric.Version,
	}

	decision := &Decision{Score: bd.CappedTotal, Breakdown: bd}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotency guard: a fresh read of the current grant, not a cache.
		var existing domain.Profile
		lookupErr := tx.Where("email = ?", email).First(&existing).Error
		if lookupErr == nil && existing.BetaAccess {
			decision.Status = domain.ApplicationApproved
			decision.AlreadyGranted = true
			appRow.Status = domain.ApplicationApproved
			return tx.Create(appRow).Error
		}
		if lookupErr != nil && lookupErr != gorm.ErrRecordNotFound {
			return lookupErr
		}

		if bd.CappedTotal < s.Rubric.AutoApproveThreshold {
			decision.Status = domain.ApplicationPending
			appRow.Status = domain.ApplicationPending
			return tx.Create(appRow).Error
		}

		reservation, err := TryReserveSlot(tx, s.Rubric.CapacityBuffer)
		if err != nil {
			return err
		}
		if !reservation.Reserved {
			decision.Status = domain.ApplicationAtCapacity
			appRow.Status = domain.ApplicationAtCapacity
			return tx.Create(appRow).Error
		}

		if _, err := GrantAccess(tx, email, in.DisplayName, nil); err != nil {
			return err
		}
		decision.Status = domain.ApplicationApproved
		appRow.Status = domain.ApplicationApproved
		return tx.Create(appRow).Error
	})
	if err != nil {
		return nil, err
	}
	decision.ApplicationID = appRow.ApplicationID

	s.afterSubmit(email, in.DisplayName, decision)
	return decision, nil
}

// afterSubmit runs the post-commit hooks: audit record, analytics event, and
// the fire-and-forget notification. None of these can fail the submission.
func (s *Service) afterSubmit(email, firstName string, d *Decision) {
	ctx := context.Background()
	props := map[string]interface{}{
		"status":        d.Status,
		"score":         d.Score,
		"score_version": s.Rubric.Version,
	}
	s.Analytics.Emit(ctx, analytics.EventWaitlistSubmitted, props)
	s.Audit.Record(ctx, email, domain.AuditWaitlistSubmitted, props)

	if d.AlreadyGranted {
		return
	}

	if d.Status == domain.ApplicationApproved {
		s.Analytics.Emit(ctx, analytics.EventBetaApproved, map[string]interface{}{
			"score":         d.Score,
			"score_version": s.Rubric.Version,
			"path":          "waitlist",
		})
		s.Audit.Record(ctx, email, domain.AuditBetaApproved, props)
	}

	if s.Emails == nil {
		return
	}
	status := d.Status
	go func() {
		var err error
		if status == domain.ApplicationApproved {
			err = s.Emails.SendApproved(context.Background(), email, firstName)
		} else {
			err = s.Emails.SendWaitlisted(context.Background(), email, firstName, status)
		}
		if err != nil {
			log.Warn().Err(err).Str("email", email).Str("status", status).Msg("admission: notification send failed")
		}
	}()
}

// Summary is the display-only capacity snapshot. Never consulted for
// admission decisions; those re-check through TryReserveSlot.
type Summary struct {
	Cap            int  `json:"cap"`
	ApprovedActive int  `json:"approvedActive"`
	ApprovedTotal  int  `json:"approvedTotal"`
	Remaining      int  `json:"remaining"`
	IsOpen         bool `json:"isOpen"`
}

// CapacitySummary reads the ledger for display.
func (s *Service) CapacitySummary(ctx context.Context) (*Summary, error) {
	var row domain.BetaCapacity
	if err := s.DB.WithContext(ctx).Where("id = ?", domain.BetaCapacityRowID).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLedgerMissing
		}
		return nil, err
	}
	remaining := row.Cap - row.ApprovedActive
	if remaining < 0 {
		remaining = 0
	}
	return &Summary{
		Cap:            row.Cap,
		ApprovedActive: row.ApprovedActive,
		ApprovedTotal:  row.ApprovedTotal,
		Remaining:      remaining,
		IsOpen:         row.ApprovedActive < row.Cap-s.Rubric.CapacityBuffer,
	}, nil
}

// EnsureLedger creates the singleton capacity row if absent and keeps its cap
// in sync with configuration. Counters are never touched here.
func EnsureLedger(db *gorm.DB, cap int) error {
	row := domain.BetaCapacity{ID: domain.BetaCapacityRowID, Cap: cap}
	res := db.Where("id = ?", domain.BetaCapacityRowID).FirstOrCreate(&row)
	if res.Error != nil {
		return res.Error
	}
	if row.Cap != cap {
		return db.Model(&domain.BetaCapacity{}).
			Where("id = ?", domain.BetaCapacityRowID).
			Update("cap", cap).Error
	}
	return nil
}
