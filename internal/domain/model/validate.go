// Package model holds the dashboard-facing entity types and their
// field-level validation. Entities are stored upstream; this layer only
// rejects obviously bad input before it crosses the wire.
package model

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"

	apperrors "github.com/proxymarket/admin-api/internal/errors"
)

const maxNameLen = 255

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func requireName(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperrors.ValidationField(field, "Ce champ est obligatoire.")
	}
	if len(value) > maxNameLen {
		return apperrors.ValidationField(field, "Ce champ est trop long.")
	}
	return nil
}

func validateEmail(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperrors.ValidationField(field, "Ce champ est obligatoire.")
	}
	if !emailRe.MatchString(value) {
		return apperrors.ValidationField(field, "L'adresse e-mail est invalide.")
	}
	return nil
}

// validatePhone accepts an optional leading + and 8 to 15 digits, ignoring
// spaces, dots, and dashes.
func validatePhone(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperrors.ValidationField(field, "Ce champ est obligatoire.")
	}
	digits := 0
	for i, r := range value {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '.' || r == '-':
		default:
			return apperrors.ValidationField(field, "Le numéro de téléphone est invalide.")
		}
	}
	if digits < 8 || digits > 15 {
		return apperrors.ValidationField(field, "Le numéro de téléphone est invalide.")
	}
	return nil
}

// validateWebsite requires an http(s) URL whose host carries a real
// registrable domain. Empty values pass; websites are optional.
func validateWebsite(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.ValidationField(field, "L'adresse du site est invalide.")
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname()); err != nil {
		return apperrors.ValidationField(field, "L'adresse du site est invalide.")
	}
	return nil
}
