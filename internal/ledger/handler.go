package ledger

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/payload"
)

// Handler exposes transaction endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create records a transaction on the caller's own wallet.
func (h *Handler) Create(c *fiber.Ctx) error {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		return apperr.ErrAuthentication
	}
	draft, _, err := draftFrom(c)
	if err != nil {
		return err
	}
	txn, err := h.service.CreateOwned(c.UserContext(), caller, draft)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ToView(txn))
}

// CreateByAddress records a transaction addressed by wallet_address, or on the
// caller's own wallet when a valid token is presented.
func (h *Handler) CreateByAddress(c *fiber.Ctx) error {
	draft, p, err := draftFrom(c)
	if err != nil {
		return err
	}
	address, _, err := p.String("wallet_address")
	if err != nil {
		return err
	}
	var caller *identity.Account
	if account, ok := identity.CallerFrom(c); ok {
		caller = &account
	}
	txn, err := h.service.CreateByAddress(c.UserContext(), caller, address, draft)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ToView(txn))
}

// List returns the caller's active transactions.
func (h *Handler) List(c *fiber.Ctx) error {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		return apperr.ErrAuthentication
	}
	txns, err := h.service.List(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(Views(txns))
}

// Get returns one of the caller's transactions.
func (h *Handler) Get(c *fiber.Ctx) error {
	caller, id, err := target(c)
	if err != nil {
		return err
	}
	txn, err := h.service.Get(c.UserContext(), caller.ID, id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(ToView(txn))
}

// Update serves PUT and PATCH; only the supplied fields change.
func (h *Handler) Update(c *fiber.Ctx) error {
	caller, id, err := target(c)
	if err != nil {
		return err
	}
	p, err := payload.Parse(c.Body())
	if err != nil {
		return err
	}
	changes, err := ChangesFromPayload(p)
	if err != nil {
		return err
	}
	txn, err := h.service.Update(c.UserContext(), caller.ID, id, changes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(ToView(txn))
}

// Delete soft-deletes one of the caller's transactions.
func (h *Handler) Delete(c *fiber.Ctx) error {
	caller, id, err := target(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), caller.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Activity returns the caller's wallet activity feed.
func (h *Handler) Activity(c *fiber.Ctx) error {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		return apperr.ErrAuthentication
	}
	items, err := h.service.Activity(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(items)
}

func draftFrom(c *fiber.Ctx) (Draft, payload.Payload, error) {
	p, err := payload.Parse(c.Body())
	if err != nil {
		return Draft{}, nil, err
	}
	draft, err := DraftFromPayload(p)
	if err != nil {
		return Draft{}, nil, err
	}
	return draft, p, nil
}

func target(c *fiber.Ctx) (identity.Account, int64, error) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		return identity.Account{}, 0, apperr.ErrAuthentication
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return identity.Account{}, 0, errTransactionNotFound
	}
	return caller, id, nil
}
