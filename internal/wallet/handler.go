package wallet

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/payload"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create links a wallet to the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		return apperr.ErrAuthentication
	}
	p, err := payload.Parse(c.Body())
	if err != nil {
		return err
	}
	v := apperr.NewValidator()
	address, _, err := p.String("address")
	v.Merge(err)
	walletType, _, err := p.String("wallet_type")
	v.Merge(err)
	balance, err := p.Decimal("balance")
	v.Merge(err)
	if err := v.Err(); err != nil {
		return err
	}

	wallet, err := h.service.Create(c.UserContext(), caller.ID, CreateInput{Address: address, WalletType: walletType, Balance: balance})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ToView(wallet, caller.Email))
}

// List returns the caller's active wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		return apperr.ErrAuthentication
	}
	wallets, err := h.service.List(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	views := make([]View, 0, len(wallets))
	for _, w := range wallets {
		views = append(views, ToView(w, caller.Email))
	}
	return c.Status(http.StatusOK).JSON(views)
}

// Get returns one of the caller's wallets.
func (h *Handler) Get(c *fiber.Ctx) error {
	caller, id, err := target(c)
	if err != nil {
		return err
	}
	wallet, err := h.service.Get(c.UserContext(), caller.ID, id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(ToView(wallet, caller.Email))
}

// Update serves PUT and PATCH. A balance in the body is ignored.
func (h *Handler) Update(c *fiber.Ctx) error {
	caller, id, err := target(c)
	if err != nil {
		return err
	}
	p, err := payload.Parse(c.Body())
	if err != nil {
		return err
	}
	var input UpdateInput
	v := apperr.NewValidator()
	if p.Has("address") {
		address, _, err := p.String("address")
		v.Merge(err)
		input.Address = &address
	}
	if p.Has("wallet_type") {
		walletType, _, err := p.String("wallet_type")
		v.Merge(err)
		input.WalletType = &walletType
	}
	if err := v.Err(); err != nil {
		return err
	}

	wallet, err := h.service.Update(c.UserContext(), caller.ID, id, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(ToView(wallet, caller.Email))
}

// Delete soft-deletes one of the caller's wallets.
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

func target(c *fiber.Ctx) (identity.Account, int64, error) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		return identity.Account{}, 0, apperr.ErrAuthentication
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return identity.Account{}, 0, errWalletNotFound
	}
	return caller, id, nil
}
