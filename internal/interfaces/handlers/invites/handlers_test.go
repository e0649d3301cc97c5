package invites

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	invsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/invites"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupInvitesTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.InviteCode{}))
	return &Handlers{Service: &invsvc.Service{DB: db}}, db
}

func invitesApp(h *Handlers, actorID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"profile_id": actorID.String(), "role": "admin",
			"email": "admin@test.com", "display_name": "Admin",
		})
		return c.Next()
	})
	app.Post("/create-code", h.CreateCode)
	app.Patch("/deactivate-code", h.DeactivateCode)
	app.Get("/list-codes", h.ListCodes)
	return app
}

func TestCreateCode_RecordsActor(t *testing.T) {
	h, db := setupInvitesTest(t)
	actorID := uuid.New()
	app := invitesApp(h, actorID)

	body, _ := json.Marshal(map[string]interface{}{"code": "launch-01", "max_uses": 3})
	req := httptest.NewRequest("POST", "/create-code", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var ic domain.InviteCode
	require.NoError(t, db.Where("code = ?", "LAUNCH-01").First(&ic).Error)
	assert.Equal(t, 3, ic.MaxUses)
	require.NotNil(t, ic.CreatedBy)
	assert.Equal(t, actorID, *ic.CreatedBy)
}

func TestCreateCode_Duplicate(t *testing.T) {
	h, db := setupInvitesTest(t)
	app := invitesApp(h, uuid.New())
	require.NoError(t, db.Create(&domain.InviteCode{Code: "DUP-01", MaxUses: 1, Active: true}).Error)

	body, _ := json.Marshal(map[string]interface{}{"code": "dup-01"})
	req := httptest.NewRequest("POST", "/create-code", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestDeactivateCode(t *testing.T) {
	h, db := setupInvitesTest(t)
	app := invitesApp(h, uuid.New())
	require.NoError(t, db.Create(&domain.InviteCode{Code: "OFF-01", MaxUses: 1, Active: true}).Error)

	body, _ := json.Marshal(map[string]interface{}{"code": "off-01"})
	req := httptest.NewRequest("PATCH", "/deactivate-code", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var ic domain.InviteCode
	require.NoError(t, db.Where("code = ?", "OFF-01").First(&ic).Error)
	assert.False(t, ic.Active)
}

func TestDeactivateCode_MissingBody(t *testing.T) {
	h, _ := setupInvitesTest(t)
	app := invitesApp(h, uuid.New())

	req := httptest.NewRequest("PATCH", "/deactivate-code", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListCodes_ActiveFilter(t *testing.T) {
	h, db := setupInvitesTest(t)
	app := invitesApp(h, uuid.New())
	require.NoError(t, db.Create(&domain.InviteCode{Code: "ON-01", MaxUses: 1, Active: true}).Error)
	require.NoError(t, db.Create(&domain.InviteCode{Code: "OFF-01", MaxUses: 1, Active: false}).Error)

	req := httptest.NewRequest("GET", "/list-codes?active=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	codes := parsed["data"].([]interface{})
	require.Len(t, codes, 1)
	first := codes[0].(map[string]interface{})
	assert.Equal(t, "ON-01", first["code"])
}
