package domain

import (
	"regexp"

	dErrors "avviso/pkg/domain-errors"
)

// FiscalCode is the tax identifier of a citizen (codice fiscale).
// Invariant: sixteen characters in the standard person format.
//
// Usage: construct via ParseFiscalCode at trust boundaries; direct casting
// bypasses validation.
type FiscalCode string

var fiscalCodePattern = regexp.MustCompile(
	`^[A-Z]{6}[0-9LMNPQRSTUV]{2}[ABCDEHLMPRST][0-9LMNPQRSTUV]{2}[A-Z][0-9LMNPQRSTUV]{3}[A-Z]$`,
)

// ParseFiscalCode constructs a FiscalCode from external input.
func ParseFiscalCode(s string) (FiscalCode, error) {
	if !fiscalCodePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid fiscal code")
	}
	return FiscalCode(s), nil
}

func (fc FiscalCode) String() string {
	return string(fc)
}

// OrganizationFiscalCode identifies a public administration (eleven digits).
type OrganizationFiscalCode string

var organizationFiscalCodePattern = regexp.MustCompile(`^[0-9]{11}$`)

// ParseOrganizationFiscalCode constructs an OrganizationFiscalCode from
// external input.
func ParseOrganizationFiscalCode(s string) (OrganizationFiscalCode, error) {
	if !organizationFiscalCodePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid organization fiscal code")
	}
	return OrganizationFiscalCode(s), nil
}

func (ofc OrganizationFiscalCode) String() string {
	return string(ofc)
}

// ServiceID identifies a sender service registered on the platform.
type ServiceID string

// ParseServiceID constructs a ServiceID from external input.
func ParseServiceID(s string) (ServiceID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "service id cannot be empty")
	}
	return ServiceID(s), nil
}

func (sid ServiceID) String() string {
	return string(sid)
}

// MessageID identifies a single message directed to a citizen.
type MessageID string

// ParseMessageID constructs a MessageID from external input.
func ParseMessageID(s string) (MessageID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "message id cannot be empty")
	}
	return MessageID(s), nil
}

func (mid MessageID) String() string {
	return string(mid)
}
