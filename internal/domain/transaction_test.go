package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKind_Signed(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		amount   string
		expected string
	}{
		{name: "expense positive input", kind: KindExpense, amount: "25.50", expected: "-25.50"},
		{name: "expense negative input", kind: KindExpense, amount: "-25.50", expected: "-25.50"},
		{name: "income positive input", kind: KindIncome, amount: "1200", expected: "1200.00"},
		{name: "income negative input", kind: KindIncome, amount: "-10", expected: "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.kind.Signed(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.expected, result.StringFixed(2))
		})
	}
}

func TestKindFromKeyword(t *testing.T) {
	kind, ok := KindFromKeyword("Gasto")
	assert.True(t, ok)
	assert.Equal(t, KindExpense, kind)

	kind, ok = KindFromKeyword("INGRESO")
	assert.True(t, ok)
	assert.Equal(t, KindIncome, kind)

	_, ok = KindFromKeyword("compra")
	assert.False(t, ok)
}

func TestNewTransaction(t *testing.T) {
	at := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)

	tx := NewTransaction("ID1", at, KindExpense, "Taxi", decimal.RequireFromString("25.505"), "")

	assert.Equal(t, "2026-10-18", tx.Date)
	assert.Equal(t, "-25.51", tx.AmountString())
	assert.Equal(t, KindExpense, tx.Kind)
	assert.Equal(t, "Taxi", tx.Category)
}

func TestDefaultCategories(t *testing.T) {
	assert.Contains(t, DefaultCategories(KindExpense), "Comida")
	assert.Contains(t, DefaultCategories(KindIncome), "Sueldo")
}
