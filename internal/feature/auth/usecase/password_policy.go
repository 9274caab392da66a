package usecase

import (
	"strings"
	"unicode"

	"coin_backend/internal/shared/apperr"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// minUsernameLength はユーザー名の最低文字数を定義します。
	minUsernameLength = 4
	// passwordSpecials はパスワードに1文字以上含める必要がある記号です。
	passwordSpecials = `!@#$%^&*(),.?":{}|<>`
)

// ValidatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
// 8文字以上で、大文字・数字・記号をそれぞれ1文字以上含む必要があります。
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters long", minPasswordLength)
	}
	var upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return apperr.Validation("password must contain at least one uppercase letter")
	}
	if !digit {
		return apperr.Validation("password must contain at least one digit")
	}
	if !strings.ContainsAny(password, passwordSpecials) {
		return apperr.Validation("password must contain at least one special character")
	}
	return nil
}

// ValidateUsername はユーザー名の長さをチェックします。
func ValidateUsername(username string) error {
	if len([]rune(strings.TrimSpace(username))) < minUsernameLength {
		return apperr.Validation("username must be at least %d characters long", minUsernameLength)
	}
	return nil
}
