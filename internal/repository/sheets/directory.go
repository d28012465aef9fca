package sheets

import (
	"context"
	"fmt"
	"strings"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/phone"
)

const (
	directorySheet = "Suscriptores"
	directoryRange = "Suscriptores!A:G"

	colPhone      = "telefono"
	colAuthorized = "autorizado"
)

// directoryHeader is written when the directory sheet is empty
var directoryHeader = []string{colPhone, "email", colAuthorized, "sheet_id", "sheet_url", "nombre", "observacion"}

var directoryColumns = map[domain.Field]string{
	domain.FieldEmail:       "email",
	domain.FieldLedgerID:    "sheet_id",
	domain.FieldLedgerURL:   "sheet_url",
	domain.FieldDisplayName: "nombre",
	domain.FieldNote:        "observacion",
}

// DirectoryRepo implements repository.DirectoryRepository on the shared directory spreadsheet.
// Rows are located by scanning the table, so lookups are read-then-write and not atomic.
type DirectoryRepo struct {
	values        ValuesAPI
	spreadsheetID string
	phones        *phone.Normalizer
}

// NewDirectoryRepo creates a new directory repository
func NewDirectoryRepo(values ValuesAPI, spreadsheetID string, phones *phone.Normalizer) *DirectoryRepo {
	return &DirectoryRepo{
		values:        values,
		spreadsheetID: spreadsheetID,
		phones:        phones,
	}
}

type directoryTable struct {
	columns map[string]int
	rows    [][]interface{}
}

func (r *DirectoryRepo) load(ctx context.Context) (*directoryTable, error) {
	rows, err := r.values.Get(ctx, r.spreadsheetID, directoryRange)
	if err != nil {
		return nil, err
	}

	t := &directoryTable{columns: make(map[string]int)}
	if len(rows) == 0 {
		return t, nil
	}
	for i, h := range rows[0] {
		t.columns[strings.ToLower(cellString(h))] = i
	}
	t.rows = rows[1:]
	return t, nil
}

func (t *directoryTable) column(name string) (int, error) {
	idx, ok := t.columns[name]
	if !ok {
		return 0, fmt.Errorf("directory sheet has no %q column", name)
	}
	return idx, nil
}

// find returns the zero-based data row index for phone, or -1
func (t *directoryTable) find(phones *phone.Normalizer, canonical string) int {
	idx, ok := t.columns[colPhone]
	if !ok {
		return -1
	}
	for i, row := range t.rows {
		if phones.Normalize(cellString(cellAt(row, idx))) == canonical {
			return i
		}
	}
	return -1
}

func (t *directoryTable) value(row []interface{}, column string) interface{} {
	idx, ok := t.columns[column]
	if !ok {
		return nil
	}
	return cellAt(row, idx)
}

func (t *directoryTable) subscriber(phones *phone.Normalizer, i int) *domain.Subscriber {
	row := t.rows[i]
	return &domain.Subscriber{
		Phone:       phones.Normalize(cellString(t.value(row, colPhone))),
		Email:       cellString(t.value(row, directoryColumns[domain.FieldEmail])),
		Authorized:  parseBool(t.value(row, colAuthorized)),
		LedgerID:    cellString(t.value(row, directoryColumns[domain.FieldLedgerID])),
		LedgerURL:   cellString(t.value(row, directoryColumns[domain.FieldLedgerURL])),
		DisplayName: cellString(t.value(row, directoryColumns[domain.FieldDisplayName])),
		Note:        cellString(t.value(row, directoryColumns[domain.FieldNote])),
	}
}

// FindByPhone returns the subscriber whose phone normalizes to phone
func (r *DirectoryRepo) FindByPhone(ctx context.Context, phone string) (*domain.Subscriber, error) {
	t, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	i := t.find(r.phones, r.phones.Normalize(phone))
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	return t.subscriber(r.phones, i), nil
}

// SetFields rewrites single cells of the subscriber's row
func (r *DirectoryRepo) SetFields(ctx context.Context, phone string, fields map[domain.Field]string) error {
	cells := make(map[string]string, len(fields))
	for f, v := range fields {
		column, ok := directoryColumns[f]
		if !ok {
			return fmt.Errorf("unknown subscriber field %q", f)
		}
		cells[column] = v
	}
	return r.updateCells(ctx, phone, cells)
}

// SetAuthorized writes TRUE or FALSE in the authorization column
func (r *DirectoryRepo) SetAuthorized(ctx context.Context, phone string, authorized bool) error {
	return r.updateCells(ctx, phone, map[string]string{colAuthorized: formatBool(authorized)})
}

func (r *DirectoryRepo) updateCells(ctx context.Context, phone string, cells map[string]string) error {
	if len(cells) == 0 {
		return nil
	}

	t, err := r.load(ctx)
	if err != nil {
		return err
	}

	i := t.find(r.phones, r.phones.Normalize(phone))
	if i < 0 {
		return domain.ErrNotFound
	}

	data := make([]CellRange, 0, len(cells))
	for column, v := range cells {
		col, err := t.column(column)
		if err != nil {
			return err
		}
		// header is row 1, data starts at row 2
		data = append(data, CellRange{
			Range:  cellRef(directorySheet, col, i+2),
			Values: [][]interface{}{{v}},
		})
	}

	return r.values.BatchUpdate(ctx, r.spreadsheetID, InputRaw, data)
}

// Append adds an authorized row. An existing row is authorized instead,
// so a phone never appears twice.
func (r *DirectoryRepo) Append(ctx context.Context, phone string) error {
	canonical := r.phones.Normalize(phone)

	t, err := r.load(ctx)
	if err != nil {
		return err
	}

	if len(t.columns) == 0 {
		header := make([]interface{}, len(directoryHeader))
		for i, h := range directoryHeader {
			header[i] = h
			t.columns[h] = i
		}
		if err := r.values.Append(ctx, r.spreadsheetID, directoryRange, InputRaw, [][]interface{}{header}); err != nil {
			return err
		}
	} else if i := t.find(r.phones, canonical); i >= 0 {
		return r.SetAuthorized(ctx, canonical, true)
	}

	width := 0
	for _, idx := range t.columns {
		if idx+1 > width {
			width = idx + 1
		}
	}
	row := make([]interface{}, width)
	for i := range row {
		row[i] = ""
	}
	phoneCol, err := t.column(colPhone)
	if err != nil {
		return err
	}
	authCol, err := t.column(colAuthorized)
	if err != nil {
		return err
	}
	row[phoneCol] = canonical
	row[authCol] = formatBool(true)

	return r.values.Append(ctx, r.spreadsheetID, directoryRange, InputRaw, [][]interface{}{row})
}
