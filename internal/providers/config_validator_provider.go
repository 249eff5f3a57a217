package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"drinkaware/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	seen := make(map[string]struct{}, len(cv.conf.Accounts))
	for _, acc := range cv.conf.Accounts {
		if _, ok := seen[acc.ID]; ok {
			return fmt.Errorf("duplicate account id %q", acc.ID)
		}
		seen[acc.ID] = struct{}{}

		// A bare access token is allowed (manual token bootstrap),
		// but an account with neither token cannot be polled at all.
		if acc.AccessToken == "" && acc.RefreshToken == "" {
			return fmt.Errorf("account %q has no access token and no refresh token", acc.ID)
		}
	}

	return nil
}
