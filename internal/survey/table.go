package survey

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/orgpulse/pulse/internal/model"
)

// Table is a raw header + rows grid as read from a file.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}

// LoadTable reads a .xlsx or .csv file. For workbooks, sheet selects the
// worksheet; empty means the first one.
func LoadTable(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f, path)
	default:
		return nil, model.NewError(model.ErrUnsupportedFormat,
			fmt.Sprintf("unsupported survey file %q (want .xlsx or .csv)", filepath.Base(path)), nil)
	}
}

func loadWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, model.NewError(model.ErrMalformed, path+": workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return newTable(path, rows)
}

// ReadCSV reads comma-separated rows with a header line.
func ReadCSV(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, model.NewError(model.ErrMalformed, "parse "+source, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return newTable(source, rows)
}

func newTable(source string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, model.NewError(model.ErrMalformed, source+": no header row", nil)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// Workbooks drop trailing empty cells.
		padded := make([]string, len(header))
		copy(padded, row)
		body = append(body, padded)
	}
	return &Table{Source: source, Header: header, Rows: body}, nil
}
