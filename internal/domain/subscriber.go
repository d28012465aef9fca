package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Subscriber is one row of the subscriber directory
type Subscriber struct {
	Phone       string
	Email       string
	Authorized  bool
	LedgerID    string
	LedgerURL   string
	DisplayName string
	Note        string
}

// Field names a mutable directory column
type Field string

const (
	FieldEmail       Field = "email"
	FieldLedgerID    Field = "ledger_id"
	FieldLedgerURL   Field = "ledger_url"
	FieldDisplayName Field = "display_name"
	FieldNote        Field = "note"
)

// Ledger locates a provisioned per-user ledger
type Ledger struct {
	ID  string
	URL string
}

// IsValidEmail checks the local@domain.tld shape
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// HasValidEmail reports whether onboarding can skip the email step
func (s *Subscriber) HasValidEmail() bool {
	return IsValidEmail(s.Email)
}

// HasLedger reports whether the ledger was already provisioned
func (s *Subscriber) HasLedger() bool {
	return strings.TrimSpace(s.LedgerID) != ""
}

// HasName reports whether the subscriber told us how to call them
func (s *Subscriber) HasName() bool {
	return strings.TrimSpace(s.DisplayName) != ""
}

// LedgerTitle is the name given to the subscriber's copy of the template
func (s *Subscriber) LedgerTitle() string {
	name := strings.TrimSpace(s.DisplayName)
	if name == "" {
		name = strings.TrimSpace(s.Phone)
	}
	if name == "" {
		name = "Usuario"
	}
	return "Finanzas - " + name
}
