package validator

import (
	"taxonomy-editor/internal/pkg/xerrors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator wraps go-playground validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface, returning the first field error as an AppError
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		details := TranslateValidationErrors(err)
		appErr := xerrors.NewValidationError(details[0].Field, details[0].Message)
		appErr.Message = details[0].Message
		return appErr.WithMetadata("errors", details)
	}
	return nil
}

// New creates a new custom validator instance with the taxonomy rules registered
func New() echo.Validator {
	v := validator.New()
	registerRules(v)
	return &CustomValidator{
		validator: v,
	}
}
