package handlers

import (
	"github.com/gofiber/fiber/v2"

	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

// respondError renders err as {"message", "error"[, "details"]} with the
// status of its code. Internal failures are logged and hide their cause.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	code := pkgerrors.CodeOf(err)
	meta := pkgerrors.MetadataFor(code)

	body := fiber.Map{
		"message": meta.PublicMessage,
		"error":   string(code),
	}
	if typed := pkgerrors.As(err); typed != nil {
		if meta.DetailsAllowed || code == pkgerrors.CodeNotFound {
			body["message"] = typed.Message()
		}
		if meta.DetailsAllowed && typed.Details() != nil {
			body["details"] = typed.Details()
		}
	}

	if meta.HTTPStatus >= fiber.StatusInternalServerError {
		log.Error(c.UserContext(), "request failed", err)
	}
	return c.Status(meta.HTTPStatus).JSON(body)
}

func badRequest(c *fiber.Ctx, log *logger.Logger, err error) error {
	return respondError(c, log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
}
