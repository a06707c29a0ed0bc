package flow

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	tghelpers "freelancebot/internal/telegram/helpers"
)

// ValidateFunc checks raw user input and returns the typed value to store.
// The error message is shown to the user as the re-prompt hint.
type ValidateFunc func(raw string) (any, error)

func validatorFor(kind InputKind) ValidateFunc {
	switch kind {
	case KindNumber:
		return validateNumber
	case KindDate:
		return validateDate
	case KindEmail:
		return validateEmail
	default:
		return validateText
	}
}

func validateText(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("Please send a non-empty text value.")
	}
	return s, nil
}

func validateNumber(raw string) (any, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return nil, errors.New("Please send a positive number, e.g. 1500.50.")
	}
	return v, nil
}

func validateDate(raw string) (any, error) {
	t, ok := tghelpers.ParseFlexibleDate(raw)
	if !ok {
		return nil, errors.New("Please send a date like 2026-08-31 or 31.08.2026.")
	}
	return t.Format("2006-01-02"), nil
}

func validateEmail(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return nil, errors.New("Please send a valid email address, e.g. a@acme.com.")
	}
	return addr.Address, nil
}

func validateOption(step Step, value string) (any, error) {
	for _, opt := range step.Options {
		if opt.Value == value {
			return value, nil
		}
	}
	return nil, fmt.Errorf("Unknown option %q. Please use the buttons.", value)
}
