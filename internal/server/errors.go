package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/ledger"
)

type errorResponse struct {
	Error    string              `json:"error"`
	Detail   string              `json:"detail"`
	Fields   map[string][]string `json:"fields,omitempty"`
	Existing *ledger.View        `json:"existing,omitempty"`
}

// ErrorHandler renders every error returned by a handler or middleware as
// {"error": label, "detail": message, "fields": {...}}. Unknown errors are
// logged and reported as a bare 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var dup *ledger.DuplicateError
		if errors.As(err, &dup) {
			body := fromApp(dup.Err)
			if dup.Existing != nil {
				existing := ledger.ToView(*dup.Existing)
				body.Existing = &existing
			}
			return c.Status(dup.Err.Status()).JSON(body)
		}

		if e, ok := apperr.As(err); ok {
			return c.Status(e.Status()).JSON(fromApp(e))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorResponse{Error: statusLabel(fe.Code), Detail: fe.Message})
		}

		logger.Error("unhandled error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return c.Status(http.StatusInternalServerError).JSON(errorResponse{
			Error:  "internal_error",
			Detail: "Internal server error.",
		})
	}
}

func fromApp(e *apperr.Error) errorResponse {
	return errorResponse{Error: e.Label(), Detail: e.Message, Fields: e.Fields}
}

// statusLabel turns "Too Many Requests" into "too_many_requests".
func statusLabel(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "error"
	}
	return strings.ToLower(strings.ReplaceAll(text, " ", "_"))
}
