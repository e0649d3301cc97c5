package invites

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/redemption"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var codeRe = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Service manages the invite-code inventory (admin surface). Redemption
// itself lives in the redemption package.
type Service struct {
	DB *gorm.DB
}

// CreateCodeInput for minting a new code. Code is optional; a random one is
// generated when empty.
type CreateCodeInput struct {
	Code          string
	MaxUses       int
	ExpiresInDays int
	Note          string
	CreatedBy     *uuid.UUID
}

// CreateCode mints an invite code, canonicalized to uppercase.
func (s *Service) CreateCode(ctx context.Context, in CreateCodeInput) (*domain.InviteCode, error) {
	if in.MaxUses <= 0 {
		in.MaxUses = 1
	}
	code := redemption.Canonicalize(in.Code)
	if code == "" {
		code = "TEED-" + randomHex(3)
	}
	if !codeRe.MatchString(code) {
		return nil, ErrInvalidCodeChars
	}

	var existing domain.InviteCode
	err := s.DB.WithContext(ctx).Where("code = ?", code).First(&existing).Error
	if err == nil {
		return nil, ErrCodeExists
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	ic := &domain.InviteCode{
		Code:      code,
		MaxUses:   in.MaxUses,
		Active:    true,
		CreatedBy: in.CreatedBy,
		Note:      strings.TrimSpace(in.Note),
	}
	if in.ExpiresInDays > 0 {
		expires := time.Now().Add(time.Duration(in.ExpiresInDays) * 24 * time.Hour)
		ic.ExpiresAt = &expires
	}
	if err := s.DB.WithContext(ctx).Create(ic).Error; err != nil {
		return nil, err
	}
	return ic, nil
}

// DeactivateCode turns a code off. Deactivation is advisory on top of the
// use-count guard; redemption checks both.
func (s *Service) DeactivateCode(ctx context.Context, rawCode string) (*domain.InviteCode, error) {
	code := redemption.Canonicalize(rawCode)
	var ic domain.InviteCode
	if err := s.DB.WithContext(ctx).Where("code = ?", code).First(&ic).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&ic).Update("active", false).Error; err != nil {
		return nil, err
	}
	ic.Active = false
	return &ic, nil
}

// ListCodesInput filters the code listing.
type ListCodesInput struct {
	ActiveOnly bool
}

// ListCodes returns codes, newest first.
func (s *Service) ListCodes(ctx context.Context, in ListCodesInput) ([]domain.InviteCode, error) {
	q := s.DB.WithContext(ctx)
	if in.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	var codes []domain.InviteCode
	if err := q.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform's entropy source is
		// broken; minting a predictable code is worse than crashing.
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
