package identity

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/payload"
)

// Handler exposes the owner-scoped account endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns the caller's own account as a single-element list.
func (h *Handler) List(c *fiber.Ctx) error {
	caller, ok := CallerFrom(c)
	if !ok {
		return apperr.ErrAuthentication
	}
	return c.Status(http.StatusOK).JSON([]View{ToView(caller)})
}

// Get returns one of the caller's accounts by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	caller, id, err := h.target(c)
	if err != nil {
		return err
	}
	account, err := h.service.Get(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(ToView(account))
}

// Update applies a full or partial update; both verbs only touch supplied fields.
func (h *Handler) Update(c *fiber.Ctx) error {
	caller, id, err := h.target(c)
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
	account, err := h.service.Update(c.UserContext(), caller, id, changes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(ToView(account))
}

// Delete deactivates the caller's account.
func (h *Handler) Delete(c *fiber.Ctx) error {
	caller, id, err := h.target(c)
	if err != nil {
		return err
	}
	if err := h.service.Deactivate(c.UserContext(), caller, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) target(c *fiber.Ctx) (Account, int64, error) {
	caller, ok := CallerFrom(c)
	if !ok {
		return Account{}, 0, apperr.ErrAuthentication
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return Account{}, 0, errAccountNotFound
	}
	return caller, id, nil
}

// ProfileFromPayload reads registration fields from a request body.
func ProfileFromPayload(p payload.Payload) (Profile, error) {
	v := apperr.NewValidator()
	var prof Profile
	str := func(key string) string {
		s, _, err := p.String(key)
		v.Merge(err)
		return s
	}
	prof.Email = str("email")
	prof.Username = str("username")
	prof.PhoneNo = str("phone_no")
	prof.FirstName = str("first_name")
	prof.LastName = str("last_name")
	if photo := str("profile_photo"); photo != "" {
		prof.ProfilePhoto = &photo
	}
	dob, _, err := p.Date("date_of_birth")
	v.Merge(err)
	prof.DateOfBirth = dob
	verified, _, err := p.Bool("is_verified")
	v.Merge(err)
	prof.IsVerified = verified
	return prof, v.Err()
}

// ChangesFromPayload reads the fields present in an update body. Explicit
// nulls clear optional values.
func ChangesFromPayload(p payload.Payload) (Changes, error) {
	v := apperr.NewValidator()
	var ch Changes
	str := func(key string) *string {
		if !p.Has(key) {
			return nil
		}
		s, _, err := p.String(key)
		if err != nil {
			v.Merge(err)
			return nil
		}
		return &s
	}
	ch.Email = str("email")
	ch.Username = str("username")
	ch.PhoneNo = str("phone_no")
	ch.FirstName = str("first_name")
	ch.LastName = str("last_name")
	if photo := str("profile_photo"); photo != nil {
		var value *string
		if *photo != "" {
			value = photo
		}
		ch.ProfilePhoto = &value
	}
	dob, set, err := p.Date("date_of_birth")
	v.Merge(err)
	if set {
		ch.DateOfBirth = &dob
	}
	verified, set, err := p.Bool("is_verified")
	v.Merge(err)
	if set {
		ch.IsVerified = &verified
	}
	return ch, v.Err()
}
