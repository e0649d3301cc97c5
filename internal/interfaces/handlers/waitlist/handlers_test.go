package waitlist

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	admsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/admission"
	redsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/redemption"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/scoring"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWaitlistTest(t *testing.T, cap int) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Profile{}, &domain.WaitlistApplication{},
		&domain.InviteCode{}, &domain.BetaCapacity{}, &domain.AuditEvent{},
	))
	require.NoError(t, admsvc.EnsureLedger(db, cap))
	h := &Handlers{
		Admission:  &admsvc.Service{DB: db, Rubric: scoring.Default()},
		Redemption: &redsvc.Service{DB: db},
	}
	return h, db
}

func waitlistApp(h *Handlers) *fiber.App {
	app := fiber.New()
	app.Post("/submit", h.Submit)
	app.Post("/redeem", h.Redeem)
	app.Get("/summary", h.Summary)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	_ = json.Unmarshal(raw, &parsed)
	return resp.StatusCode, parsed
}

func TestSubmit_Approved(t *testing.T) {
	h, db := setupWaitlistTest(t, 10)
	app := waitlistApp(h)

	status, body := postJSON(t, app, "/submit", map[string]interface{}{
		"email":          "fitter@test.com",
		"display_name":   "Fitter",
		"role":           "fitter_builder",
		"buy_frequency":  "monthly",
		"share_channels": []string{"reddit", "youtube"},
	})
	assert.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "approved", data["status"])
	assert.NotEmpty(t, data["applicationId"])

	var p domain.Profile
	require.NoError(t, db.Where("email = ?", "fitter@test.com").First(&p).Error)
	assert.True(t, p.BetaAccess)
}

func TestSubmit_PendingLowScore(t *testing.T) {
	h, _ := setupWaitlistTest(t, 10)
	app := waitlistApp(h)

	status, body := postJSON(t, app, "/submit", map[string]interface{}{
		"email": "casual@test.com",
		"role":  "golfer",
	})
	assert.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
}

func TestSubmit_AtCapacity(t *testing.T) {
	h, db := setupWaitlistTest(t, 1)
	app := waitlistApp(h)
	require.NoError(t, db.Model(&domain.BetaCapacity{}).
		Where("id = ?", domain.BetaCapacityRowID).
		Updates(map[string]interface{}{"approved_active": 1, "approved_total": 1}).Error)

	status, body := postJSON(t, app, "/submit", map[string]interface{}{
		"email":         "late@test.com",
		"role":          "creator",
		"buy_frequency": "weekly_plus",
	})
	assert.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "at_capacity", data["status"])
}

func TestSubmit_BadRequest(t *testing.T) {
	h, _ := setupWaitlistTest(t, 10)
	app := waitlistApp(h)

	status, _ := postJSON(t, app, "/submit", map[string]interface{}{
		"email": "not-an-email", "role": "golfer",
	})
	assert.Equal(t, 400, status)

	status, _ = postJSON(t, app, "/submit", map[string]interface{}{
		"email": "ok@test.com",
	})
	assert.Equal(t, 400, status)
}

func TestRedeem_Success(t *testing.T) {
	h, db := setupWaitlistTest(t, 10)
	app := waitlistApp(h)
	require.NoError(t, db.Create(&domain.InviteCode{Code: "ABC-123", MaxUses: 1, Active: true}).Error)

	status, body := postJSON(t, app, "/redeem", map[string]interface{}{
		"code": "abc-123", "email": "friend@test.com",
	})
	assert.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "approved", data["status"])
}

func TestRedeem_ConflictOutcomes(t *testing.T) {
	h, db := setupWaitlistTest(t, 10)
	app := waitlistApp(h)

	status, _ := postJSON(t, app, "/redeem", map[string]interface{}{
		"code": "NOPE-01", "email": "x@test.com",
	})
	assert.Equal(t, 409, status)

	// Exhausted single-use code.
	require.NoError(t, db.Create(&domain.InviteCode{Code: "GONE-01", MaxUses: 1, Uses: 1, Active: true}).Error)
	status, _ = postJSON(t, app, "/redeem", map[string]interface{}{
		"code": "GONE-01", "email": "x@test.com",
	})
	assert.Equal(t, 409, status)
}

func TestRedeem_BadRequest(t *testing.T) {
	h, _ := setupWaitlistTest(t, 10)
	app := waitlistApp(h)

	status, _ := postJSON(t, app, "/redeem", map[string]interface{}{
		"email": "x@test.com",
	})
	assert.Equal(t, 400, status)

	status, _ = postJSON(t, app, "/redeem", map[string]interface{}{
		"code": "ABC-123", "email": "nope",
	})
	assert.Equal(t, 400, status)
}

func TestSummary(t *testing.T) {
	h, db := setupWaitlistTest(t, 150)
	app := waitlistApp(h)
	require.NoError(t, db.Model(&domain.BetaCapacity{}).
		Where("id = ?", domain.BetaCapacityRowID).
		Updates(map[string]interface{}{"approved_active": 40, "approved_total": 55}).Error)

	req := httptest.NewRequest("GET", "/summary", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(150), data["cap"])
	assert.Equal(t, float64(40), data["approvedActive"])
	assert.Equal(t, float64(110), data["remaining"])
	assert.Equal(t, true, data["isOpen"])
}
