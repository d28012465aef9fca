package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledgerbot/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	movementsRange = "Movimientos!A:F"

	categoriesSheet     = "Categorias"
	categoriesRange     = "Categorias!A:B"
	categoriesDataRange = "Categorias!A2:B"

	dashboardSheet = "Dashboard"

	ledgerURLFormat = "https://docs.google.com/spreadsheets/d/%s/edit"
)

// spreadsheet epoch used by serial date values
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// LedgerRepo implements repository.LedgerRepository on per-user spreadsheets
type LedgerRepo struct {
	values ValuesAPI
	files  FilesAPI
}

// NewLedgerRepo creates a new ledger repository
func NewLedgerRepo(values ValuesAPI, files FilesAPI) *LedgerRepo {
	return &LedgerRepo{values: values, files: files}
}

// kind cells keep the labels the ledger template's formulas expect
func kindCell(k domain.Kind) string {
	if k == domain.KindIncome {
		return "INGRESO"
	}
	return "GASTO"
}

func parseKindCell(v interface{}) (domain.Kind, bool) {
	switch strings.ToUpper(cellString(v)) {
	case "INGRESO", string(domain.KindIncome):
		return domain.KindIncome, true
	case "GASTO", string(domain.KindExpense):
		return domain.KindExpense, true
	}
	return "", false
}

// categoryColumn: expenses live in column A, incomes in column B
func categoryColumn(k domain.Kind) int {
	if k == domain.KindIncome {
		return 1
	}
	return 0
}

// AppendTransaction adds one row to the Movimientos table.
// The amount is written as a number so the dashboard can sum it.
func (r *LedgerRepo) AppendTransaction(ctx context.Context, ledgerID string, tx domain.Transaction) error {
	row := []interface{}{
		tx.ID,
		tx.Date,
		kindCell(tx.Kind),
		tx.Category,
		tx.Amount.InexactFloat64(),
		tx.Detail,
	}
	return r.values.Append(ctx, ledgerID, movementsRange, InputRaw, [][]interface{}{row})
}

// RecentTransactions returns up to limit of the last movements, oldest first
func (r *LedgerRepo) RecentTransactions(ctx context.Context, ledgerID string, limit int) ([]domain.Transaction, error) {
	rows, err := r.values.Get(ctx, ledgerID, movementsRange)
	if err != nil {
		return nil, err
	}

	var txs []domain.Transaction
	for _, row := range rows {
		tx, ok := parseMovement(row)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}

	if limit > 0 && len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	return txs, nil
}

// parseMovement skips the header and any row that is not a movement
func parseMovement(row []interface{}) (domain.Transaction, bool) {
	id := cellString(cellAt(row, 0))
	if id == "" || strings.EqualFold(id, "id") {
		return domain.Transaction{}, false
	}

	kind, ok := parseKindCell(cellAt(row, 2))
	if !ok {
		return domain.Transaction{}, false
	}

	amount, err := parseAmountCell(cellAt(row, 4))
	if err != nil {
		return domain.Transaction{}, false
	}

	return domain.Transaction{
		ID:       id,
		Date:     parseDateCell(cellAt(row, 1)),
		Kind:     kind,
		Category: cellString(cellAt(row, 3)),
		Amount:   amount,
		Detail:   cellString(cellAt(row, 5)),
	}, true
}

func parseAmountCell(v interface{}) (decimal.Decimal, error) {
	if f, ok := v.(float64); ok {
		return decimal.NewFromFloat(f).Round(2), nil
	}
	d, err := decimal.NewFromString(cellString(v))
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// parseDateCell accepts both text dates and spreadsheet serial numbers
func parseDateCell(v interface{}) string {
	if f, ok := v.(float64); ok {
		return serialEpoch.AddDate(0, 0, int(f)).Format(domain.DateLayout)
	}
	return cellString(v)
}

// ListCategories returns the names in the kind's column, in sheet order
func (r *LedgerRepo) ListCategories(ctx context.Context, ledgerID string, kind domain.Kind) ([]string, error) {
	rows, err := r.values.Get(ctx, ledgerID, categoriesDataRange)
	if err != nil {
		return nil, err
	}

	col := categoryColumn(kind)
	var names []string
	for _, row := range rows {
		if name := cellString(cellAt(row, col)); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// AddCategory writes name below the last entry of the kind's column.
// A missing Categorias tab is created and seeded with the defaults first.
func (r *LedgerRepo) AddCategory(ctx context.Context, ledgerID string, kind domain.Kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name is empty")
	}

	rows, err := r.values.Get(ctx, ledgerID, categoriesRange)
	if isMissingSheet(err) {
		rows, err = r.seedCategories(ctx, ledgerID)
	}
	if err != nil {
		return err
	}

	col := categoryColumn(kind)
	last := 0 // header row
	for i, row := range rows {
		if i == 0 {
			continue
		}
		existing := cellString(cellAt(row, col))
		if existing == "" {
			continue
		}
		if strings.EqualFold(existing, name) {
			return nil
		}
		last = i
	}

	return r.values.BatchUpdate(ctx, ledgerID, InputRaw, []CellRange{{
		Range:  cellRef(categoriesSheet, col, last+2),
		Values: [][]interface{}{{name}},
	}})
}

func (r *LedgerRepo) seedCategories(ctx context.Context, ledgerID string) ([][]interface{}, error) {
	if err := r.values.AddSheet(ctx, ledgerID, categoriesSheet); err != nil && !isSheetExists(err) {
		return nil, err
	}

	expenses := domain.DefaultCategories(domain.KindExpense)
	incomes := domain.DefaultCategories(domain.KindIncome)

	rows := [][]interface{}{{kindCell(domain.KindExpense), kindCell(domain.KindIncome)}}
	for i := 0; i < len(expenses) || i < len(incomes); i++ {
		row := []interface{}{"", ""}
		if i < len(expenses) {
			row[0] = expenses[i]
		}
		if i < len(incomes) {
			row[1] = incomes[i]
		}
		rows = append(rows, row)
	}

	err := r.values.BatchUpdate(ctx, ledgerID, InputRaw, []CellRange{{
		Range:  categoriesSheet + "!A1",
		Values: rows,
	}})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ProvisionLedger copies the template spreadsheet
func (r *LedgerRepo) ProvisionLedger(ctx context.Context, templateID, title string) (domain.Ledger, error) {
	id, err := r.files.Copy(ctx, templateID, title)
	if err != nil {
		return domain.Ledger{}, err
	}
	return domain.Ledger{ID: id, URL: fmt.Sprintf(ledgerURLFormat, id)}, nil
}

// ShareLedger grants the subscriber read access
func (r *LedgerRepo) ShareLedger(ctx context.Context, ledgerID, email string) error {
	return r.files.ShareReader(ctx, ledgerID, email)
}

// InitDashboard adds a summary tab computed from Movimientos
func (r *LedgerRepo) InitDashboard(ctx context.Context, ledgerID string) error {
	if err := r.values.AddSheet(ctx, ledgerID, dashboardSheet); err != nil && !isSheetExists(err) {
		return err
	}

	rows := [][]interface{}{
		{"Resumen", ""},
		{"Ingresos", `=SUMIF(Movimientos!C:C,"INGRESO",Movimientos!E:E)`},
		{"Gastos", `=-SUMIF(Movimientos!C:C,"GASTO",Movimientos!E:E)`},
		{"Balance", "=SUM(Movimientos!E:E)"},
	}
	return r.values.BatchUpdate(ctx, ledgerID, InputUserEntered, []CellRange{{
		Range:  dashboardSheet + "!A1:B4",
		Values: rows,
	}})
}
