package auth

import (
	"testing"

	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Profile{}))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Profile{
		Email:        "member@test.com",
		DisplayName:  "Member",
		PasswordHash: string(hash),
		Role:         "member",
		BetaAccess:   true,
	}).Error)
	return db
}

func TestLoginProfile_Success(t *testing.T) {
	db := setupAuthTest(t)

	p, err := LoginProfile(db, LoginInput{Email: "member@test.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Member", p.DisplayName)
	assert.True(t, p.BetaAccess)
}

func TestLoginProfile_WrongPassword(t *testing.T) {
	db := setupAuthTest(t)

	_, err := LoginProfile(db, LoginInput{Email: "member@test.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestLoginProfile_UnknownEmail(t *testing.T) {
	db := setupAuthTest(t)

	_, err := LoginProfile(db, LoginInput{Email: "ghost@test.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLoginProfile_MissingFields(t *testing.T) {
	db := setupAuthTest(t)

	_, err := LoginProfile(db, LoginInput{Email: "member@test.com"})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
}

func TestLoginProfile_NoPasswordHash(t *testing.T) {
	db := setupAuthTest(t)
	// Waitlist-created profiles have no credentials until they register.
	require.NoError(t, db.Create(&domain.Profile{Email: "waitlist@test.com"}).Error)

	_, err := LoginProfile(db, LoginInput{Email: "waitlist@test.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestVerifyUser(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"profile_id": "abc", "display_name": "X", "email": "x@test.com",
		"role": "member", "beta_access": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", u.ProfileID)
	assert.True(t, u.BetaAccess)

	_, err = VerifyUser(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser(map[string]interface{}{"email": "no-id@test.com"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
