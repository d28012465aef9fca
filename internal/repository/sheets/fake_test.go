package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
)

// fakeValues is an in-memory spreadsheet store speaking A1 ranges
type fakeValues struct {
	mu      sync.Mutex
	books   map[string]map[string][][]interface{}
	updates []CellRange
	options []InputOption
	getErr  error
}

func newFakeValues() *fakeValues {
	return &fakeValues{books: make(map[string]map[string][][]interface{})}
}

func (f *fakeValues) setSheet(spreadsheetID, sheet string, rows [][]interface{}) {
	if f.books[spreadsheetID] == nil {
		f.books[spreadsheetID] = make(map[string][][]interface{})
	}
	f.books[spreadsheetID][sheet] = rows
}

func (f *fakeValues) sheet(spreadsheetID, sheet string) ([][]interface{}, bool) {
	rows, ok := f.books[spreadsheetID][sheet]
	return rows, ok
}

type a1 struct {
	sheet              string
	startCol, startRow int
	endCol, endRow     int
}

func parseA1(rng string) a1 {
	sheet, ref, _ := strings.Cut(rng, "!")
	r := a1{sheet: sheet, endCol: 1 << 20, endRow: 1 << 20}
	parts := strings.Split(ref, ":")
	r.startCol, r.startRow = parseCell(parts[0], 0)
	if len(parts) == 1 {
		r.endCol, r.endRow = r.startCol, r.startRow
		return r
	}
	r.endCol, r.endRow = parseCell(parts[1], 1<<20)
	return r
}

// parseCell returns zero-based column and row
func parseCell(ref string, defaultRow int) (int, int) {
	col := 0
	i := 0
	for ; i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z'; i++ {
		col = col*26 + int(ref[i]-'A'+1)
	}
	row := defaultRow
	if i < len(ref) {
		fmt.Sscanf(ref[i:], "%d", &row)
		row--
	}
	return col - 1, row
}

func missingRange(rng string) error {
	return &googleapi.Error{Code: 400, Message: "Unable to parse range: " + rng}
}

func (f *fakeValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}

	r := parseA1(rng)
	rows, ok := f.sheet(spreadsheetID, r.sheet)
	if !ok {
		return nil, missingRange(rng)
	}

	var out [][]interface{}
	for i := r.startRow; i < len(rows) && i <= r.endRow; i++ {
		var cells []interface{}
		for j := r.startCol; j < len(rows[i]) && j <= r.endCol; j++ {
			cells = append(cells, rows[i][j])
		}
		for len(cells) > 0 && (cells[len(cells)-1] == nil || cells[len(cells)-1] == "") {
			cells = cells[:len(cells)-1]
		}
		out = append(out, cells)
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeValues) BatchUpdate(ctx context.Context, spreadsheetID string, opt InputOption, data []CellRange) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, d := range data {
		r := parseA1(d.Range)
		rows, ok := f.sheet(spreadsheetID, r.sheet)
		if !ok {
			return missingRange(d.Range)
		}
		for i, values := range d.Values {
			row := r.startRow + i
			for len(rows) <= row {
				rows = append(rows, nil)
			}
			for j, v := range values {
				col := r.startCol + j
				for len(rows[row]) <= col {
					rows[row] = append(rows[row], nil)
				}
				rows[row][col] = v
			}
		}
		f.books[spreadsheetID][r.sheet] = rows
		f.updates = append(f.updates, d)
		f.options = append(f.options, opt)
	}
	return nil
}

func (f *fakeValues) Append(ctx context.Context, spreadsheetID, rng string, opt InputOption, rows [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := parseA1(rng)
	existing, ok := f.sheet(spreadsheetID, r.sheet)
	if !ok {
		return missingRange(rng)
	}
	for _, row := range rows {
		existing = append(existing, append([]interface{}(nil), row...))
	}
	f.books[spreadsheetID][r.sheet] = existing
	f.options = append(f.options, opt)
	return nil
}

func (f *fakeValues) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.sheet(spreadsheetID, title); ok {
		return &googleapi.Error{Code: 400, Message: fmt.Sprintf("A sheet with the name %q already exists.", title)}
	}
	f.setSheet(spreadsheetID, title, [][]interface{}{})
	return nil
}

// fakeFiles records Drive calls
type fakeFiles struct {
	copies   []string
	shares   []string
	copyErr  error
	shareErr error
}

func (f *fakeFiles) Copy(ctx context.Context, fileID, name string) (string, error) {
	if f.copyErr != nil {
		return "", f.copyErr
	}
	f.copies = append(f.copies, name)
	return fmt.Sprintf("%s-copy-%d", fileID, len(f.copies)), nil
}

func (f *fakeFiles) ShareReader(ctx context.Context, fileID, email string) error {
	if f.shareErr != nil {
		return f.shareErr
	}
	f.shares = append(f.shares, fileID+":"+email)
	return nil
}
