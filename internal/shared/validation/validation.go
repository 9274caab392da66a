// Package validation registers the custom binding rules used by request DTOs.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"coin_backend/internal/shared/apperr"
)

var (
	// ErrInvalidCurrency is returned for a currency that is not a three-letter code.
	ErrInvalidCurrency = apperr.New(apperr.ErrValidation, "currency must be a three-letter code")

	// ErrInvalidCoin is returned for a malformed coin symbol.
	ErrInvalidCoin = apperr.New(apperr.ErrValidation, "coin must be 1-20 letters or digits")
)

var (
	coinSymbolRe = regexp.MustCompile(`^[A-Za-z0-9]{1,20}$`)
	currencyRe   = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// Register adds the "coinsymbol" and "currency" rules to gin's validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn adds the custom rules to v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("coinsymbol", func(fl validator.FieldLevel) bool {
		return IsCoinSymbol(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return IsCurrency(fl.Field().String())
	})
}

// IsCoinSymbol reports whether s looks like a ticker symbol such as "BTC".
func IsCoinSymbol(s string) bool {
	return coinSymbolRe.MatchString(strings.TrimSpace(s))
}

// IsCurrency reports whether s is a three-letter currency code.
func IsCurrency(s string) bool {
	return currencyRe.MatchString(strings.TrimSpace(s))
}

// NormalizeSymbol trims and upper-cases a coin or currency symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
