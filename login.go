package folio

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// LoginRequest is the admin login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required,max=128"`
	Password string `form:"password" validate:"notblank,max=256"`
}

// loginMessages maps field and failed rule to the message shown on the form.
var loginMessages = map[string]map[string]string{
	"Username": {
		"required": "Username or Email is required",
		"max":      "Username too long",
	},
	"Password": {
		"notblank": "Password is required",
		"max":      "Password too long",
	},
}

// FormValidator adapts go-playground/validator to echo.Validator.
type FormValidator struct {
	v *validator.Validate
}

// NewFormValidator returns a validator for tagged form structs. Besides the
// built-in rules it knows notblank, which rejects whitespace-only strings.
func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return &FormValidator{v: v}
}

// Validate implements echo.Validator.
func (fv *FormValidator) Validate(i any) error {
	return fv.v.Struct(i)
}

// ValidateLogin checks r against the login rules and returns the messages
// for every failing field, in field order. Surrounding whitespace in the
// username is ignored.
func ValidateLogin(fv *FormValidator, r *LoginRequest) []string {
	r.Username = strings.TrimSpace(r.Username)
	err := fv.Validate(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := loginMessages[fe.StructField()][fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, fe.Error())
	}
	return msgs
}
