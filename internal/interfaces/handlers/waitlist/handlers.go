package waitlist

import (
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/admission"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/redemption"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/scoring"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for the public waitlist endpoints.
type Handlers struct {
	Admission  *admission.Service
	Redemption *redemption.Service
}

// SubmitRequest is the waitlist application body.
type SubmitRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	scoring.Answers
}

// Submit POST /api/v1/waitlist/submit
func (h *Handlers) Submit(c *fiber.Ctx) error {
	var body SubmitRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	decision, err := h.Admission.SubmitApplication(c.Context(), admission.SubmitInput{
		Email:       body.Email,
		DisplayName: body.DisplayName,
		Answers:     body.Answers,
	})
	if err != nil {
		switch err {
		case admission.ErrInvalidEmail:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "email"})
		case admission.ErrRoleRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "role"})
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	return response.Success(c, "Application received", fiber.Map{
		"applicationId": decision.ApplicationID.String(),
		"status":        decision.Status,
		"score":         decision.Score,
	}, nil)
}

// RedeemRequest is the invite redemption body.
type RedeemRequest struct {
	Code        string `json:"code"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Redeem POST /api/v1/waitlist/redeem
func (h *Handlers) Redeem(c *fiber.Ctx) error {
	var body RedeemRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	result, err := h.Redemption.Redeem(c.Context(), body.Code, body.Email, body.DisplayName)
	if err != nil {
		switch err {
		case redemption.ErrCodeRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "code"})
		case redemption.ErrInvalidEmail:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "email"})
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	data := fiber.Map{"status": result.Status}
	switch result.Status {
	case redemption.StatusApproved, redemption.StatusAlreadyApproved:
		return response.Success(c, "Invite code redeemed", data, nil)
	default:
		// Contention and validity outcomes are reported precisely, not as
		// generic errors: the caller must know whether a use was consumed.
		data["error"] = result.Status
		return response.Error(c, redeemMessage(result.Status), fiber.StatusConflict, data)
	}
}

func redeemMessage(status string) string {
	switch status {
	case redemption.StatusInvalidCode:
		return "Invalid invite code"
	case redemption.StatusExpired:
		return "Invite code has expired"
	case redemption.StatusCodeExhausted:
		return "Invite code has no uses left"
	case redemption.StatusAtCapacity:
		return "The beta is currently full"
	}
	return "Invite code could not be redeemed"
}

// Summary GET /api/v1/waitlist/summary — display-only capacity snapshot.
func (h *Handlers) Summary(c *fiber.Ctx) error {
	summary, err := h.Admission.CapacitySummary(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Capacity summary", summary, nil)
}
