package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format stored in ledgers
const DateLayout = "2006-01-02"

// Kind classifies a transaction and decides the sign of its amount
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// Label returns the user-facing name of the kind
func (k Kind) Label() string {
	if k == KindIncome {
		return "Ingreso"
	}
	return "Gasto"
}

// DefaultCategory is used when a one-shot command omits the category
func (k Kind) DefaultCategory() string {
	return k.Label()
}

// Signed applies the kind's sign to an amount, ignoring the sign it had
func (k Kind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == KindExpense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// KindFromKeyword maps the command words "gasto" and "ingreso"
func KindFromKeyword(word string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "gasto":
		return KindExpense, true
	case "ingreso":
		return KindIncome, true
	}
	return "", false
}

// DefaultCategories seeds a ledger without a categories table
func DefaultCategories(k Kind) []string {
	if k == KindIncome {
		return []string{"Sueldo", "Freelance", "Ventas", "Otros"}
	}
	return []string{"Comida", "Transporte", "Vivienda", "Servicios", "Salud", "Educación", "Entretenimiento", "Otros"}
}

// Transaction is one immutable ledger movement
type Transaction struct {
	ID       string
	Date     string
	Kind     Kind
	Category string
	Amount   decimal.Decimal
	Detail   string
}

// NewTransaction builds a movement whose amount sign follows kind
func NewTransaction(id string, at time.Time, kind Kind, category string, amount decimal.Decimal, detail string) Transaction {
	return Transaction{
		ID:       id,
		Date:     at.Format(DateLayout),
		Kind:     kind,
		Category: category,
		Amount:   kind.Signed(amount).Round(2),
		Detail:   detail,
	}
}

// AmountString renders the signed amount with two decimals
func (t Transaction) AmountString() string {
	return t.Amount.StringFixed(2)
}
