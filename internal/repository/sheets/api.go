package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
)

// InputOption controls how the Sheets API interprets written values
type InputOption string

const (
	InputRaw         InputOption = "RAW"
	InputUserEntered InputOption = "USER_ENTERED"
)

// CellRange is a block of values anchored at an A1 range
type CellRange struct {
	Range  string
	Values [][]interface{}
}

// ValuesAPI is the part of the Sheets API the repositories need.
// Reads return unformatted values, so cells may be strings, float64 or bool.
type ValuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	BatchUpdate(ctx context.Context, spreadsheetID string, opt InputOption, data []CellRange) error
	Append(ctx context.Context, spreadsheetID, rng string, opt InputOption, rows [][]interface{}) error
	AddSheet(ctx context.Context, spreadsheetID, title string) error
}

// FilesAPI is the part of the Drive API used to provision ledgers
type FilesAPI interface {
	Copy(ctx context.Context, fileID, name string) (string, error)
	ShareReader(ctx context.Context, fileID, email string) error
}

// isMissingSheet reports whether err came from reading a tab that does not exist
func isMissingSheet(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == 400 && strings.Contains(gerr.Message, "Unable to parse range")
}

// isSheetExists reports whether err came from adding a tab that already exists
func isSheetExists(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == 400 && strings.Contains(gerr.Message, "already exists")
}

// columnLetter converts a zero-based column index to A1 letters
func columnLetter(idx int) string {
	letters := ""
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		letters = string(rune('A'+(n-1)%26)) + letters
	}
	return letters
}

func cellRef(sheet string, col, row int) string {
	return fmt.Sprintf("%s!%s%d", sheet, columnLetter(col), row)
}

// cellString renders an unformatted cell value as text
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return formatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func cellAt(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseBool(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	switch strings.ToUpper(cellString(v)) {
	case "TRUE", "1":
		return true
	}
	return false
}
