package auth

import (
	"fmt"

	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials is the body of the register and login endpoints.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	// bcrypt ignores everything past 72 bytes.
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// PublicKeyUpdate is the body of the public key upload endpoint.
type PublicKeyUpdate struct {
	Username  string `json:"username" validate:"required"`
	PublicKey string `json:"public_key" validate:"required,max=8192"`
}

func ValidateCredentials(c Credentials) error {
	return validateStruct(c)
}

func ValidatePublicKeyUpdate(u PublicKeyUpdate) error {
	return validateStruct(u)
}

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", chaterrors.ErrInvalidRequest, err)
	}
	return nil
}
