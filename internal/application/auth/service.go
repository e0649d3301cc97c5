package auth

import (
	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	ProfileID   string `json:"profile_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	BetaAccess  bool   `json:"beta_access"`
}

// ProfileFinder abstracts profile lookup by email+password (for production GORM or test doubles).
type ProfileFinder interface {
	FindByEmailAndPassword(email, password string) (*domain.Profile, error)
}

// GormProfileFinder implements ProfileFinder using GORM and bcrypt.
type GormProfileFinder struct{ DB *gorm.DB }

func (g *GormProfileFinder) FindByEmailAndPassword(email, password string) (*domain.Profile, error) {
	return LoginProfile(g.DB, LoginInput{Email: email, Password: password})
}

// LoginProfile finds a profile by email and verifies the password.
func LoginProfile(db *gorm.DB, input LoginInput) (*domain.Profile, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var p domain.Profile
	if err := db.Where("email = ?", input.Email).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if p.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &p, nil
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	profileID, _ := m["profile_id"].(string)
	if profileID == "" {
		return nil, ErrNotAuthenticated
	}
	betaAccess, _ := m["beta_access"].(bool)
	return &SessionUserShape{
		ProfileID:   profileID,
		DisplayName: str(m["display_name"]),
		Email:       str(m["email"]),
		Role:        str(m["role"]),
		BetaAccess:  betaAccess,
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
