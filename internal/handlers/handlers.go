package handlers

import (
	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/middleware"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/validators"
	"github.com/labstack/echo/v4"
)

// caller returns the identity the auth middleware attached to the request.
func caller(c echo.Context) (models.Identity, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return models.Identity{}, apperrors.Unauthorized("Unauthorized", nil)
	}
	return identity, nil
}

// bindAndValidate decodes the request body into req and runs the struct
// validators, reporting failures per field.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		if fields := validators.Fields(err); fields != nil {
			return apperrors.ValidationFields(fields)
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}

func message(text string) map[string]string {
	return map[string]string{"message": text}
}
