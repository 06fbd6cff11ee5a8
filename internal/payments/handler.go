package payments

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/ledger"
	"github.com/congo-pay/walletapi/internal/payload"
)

// Handler exposes payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ByUsername records a transaction on the wallet of the account named in the
// body's username field. No token is required.
func (h *Handler) ByUsername(c *fiber.Ctx) error {
	p, err := payload.Parse(c.Body())
	if err != nil {
		return err
	}
	username, _, err := p.String("username")
	if err != nil {
		return err
	}
	draft, err := ledger.DraftFromPayload(p)
	if err != nil {
		return err
	}
	txn, err := h.service.Receive(c.UserContext(), username, draft)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ledger.ToView(txn))
}
