package validate

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// EchoValidator plugs go-playground/validator into echo's c.Validate.
type EchoValidator struct {
	v *validator.Validate
}

func New() *EchoValidator {
	return &EchoValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (ev *EchoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}

var _ echo.Validator = (*EchoValidator)(nil)
