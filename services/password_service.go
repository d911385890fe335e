package services

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordCommon   = errors.New("password is too common")
)

// PasswordValidator applies the storefront's signup password rules.
type PasswordValidator struct {
	minLength       int
	commonPasswords map[string]bool
}

func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		minLength: 6,
		commonPasswords: map[string]bool{
			"password": true,
			"123456":   true,
			"1234567":  true,
			"12345678": true,
			"qwerty":   true,
			"admin":    true,
			"welcome":  true,
			"abc123":   true,
		},
	}
}

func (pv *PasswordValidator) ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < pv.minLength {
		return ErrPasswordTooShort
	}
	if pv.commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}
