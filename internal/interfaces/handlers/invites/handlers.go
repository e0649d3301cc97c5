package invites

import (
	invsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/invites"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/middleware"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for the admin invite-code endpoints.
type Handlers struct {
	Service *invsvc.Service
}

// POST /api/v1/invites/create-code (MANAGE_INVITES permission via middleware)
func (h *Handlers) CreateCode(c *fiber.Ctx) error {
	var body struct {
		Code          string `json:"code"`
		MaxUses       int    `json:"max_uses"`
		ExpiresInDays int    `json:"expires_in_days"`
		Note          string `json:"note"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	var createdBy *uuid.UUID
	if actor := getActor(c); actor != nil {
		if id, err := uuid.Parse(actor.ProfileID); err == nil {
			createdBy = &id
		}
	}

	code, err := h.Service.CreateCode(c.Context(), invsvc.CreateCodeInput{
		Code:          body.Code,
		MaxUses:       body.MaxUses,
		ExpiresInDays: body.ExpiresInDays,
		Note:          body.Note,
		CreatedBy:     createdBy,
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.SuccessCreated(c, "Invite code created", code, nil)
}

// PATCH /api/v1/invites/deactivate-code (MANAGE_INVITES permission via middleware)
func (h *Handlers) DeactivateCode(c *fiber.Ctx) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil || body.Code == "" {
		return response.Error(c, "Code is required", fiber.StatusBadRequest, nil)
	}

	code, err := h.Service.DeactivateCode(c.Context(), body.Code)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Invite code deactivated", code, nil)
}

// GET /api/v1/invites/list-codes (VIEW_WAITLIST permission via middleware)
func (h *Handlers) ListCodes(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	codes, err := h.Service.ListCodes(c.Context(), invsvc.ListCodesInput{ActiveOnly: activeOnly})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Invite codes fetched", codes, nil)
}

type actorInfo struct {
	ProfileID   string
	DisplayName string
	Email       string
	Role        string
}

func getActor(c *fiber.Ctx) *actorInfo {
	u := middleware.GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	profileID, _ := m["profile_id"].(string)
	if profileID == "" {
		return nil
	}
	role, _ := m["role"].(string)
	email, _ := m["email"].(string)
	displayName, _ := m["display_name"].(string)
	return &actorInfo{ProfileID: profileID, DisplayName: displayName, Email: email, Role: role}
}
