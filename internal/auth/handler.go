package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/payload"
)

// Handler exposes the public token endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type existsResponse struct {
	Exists       bool   `json:"exists"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Exists answers GET /account/exists?email=.
func (h *Handler) Exists(c *fiber.Ctx) error {
	res, err := h.svc.CheckEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return err
	}
	out := existsResponse{Exists: res.Exists}
	if res.Tokens != nil {
		out.AccessToken = res.Tokens.AccessToken
		out.RefreshToken = res.Tokens.RefreshToken
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Refresh exchanges {"refresh_token": "..."} for a new pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	p, err := payload.Parse(c.Body())
	if err != nil {
		return err
	}
	token, _, err := p.String("refresh_token")
	if err != nil {
		return err
	}
	pair, err := h.svc.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(pair)
}
