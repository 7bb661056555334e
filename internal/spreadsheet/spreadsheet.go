// Package spreadsheet reads xlsx workbooks into header/row form, either as
// display strings or as typed cells.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet with its first row split off as headers.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// ReadSheets parses every worksheet of a workbook. Cells are rendered as
// their formatted display text. Empty sheets yield no headers and no rows.
func ReadSheets(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		s := Sheet{Name: name}
		if len(rows) > 0 {
			s.Headers = rows[0]
			s.Rows = rows[1:]
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// CellKind classifies a typed cell.
type CellKind int

// Cell kinds.
const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
	CellDate
	CellError
)

// Cell is a typed spreadsheet value. Only the field matching Kind is set,
// except Text which always holds the raw cell text.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
}

// TypedSheet is a worksheet with trimmed headers and typed data rows.
type TypedSheet struct {
	Name    string
	Headers []string
	Rows    [][]Cell
}

// HeaderIndex maps each header to its column position. The first occurrence
// of a duplicated header wins.
func (s *TypedSheet) HeaderIndex() map[string]int {
	idx := make(map[string]int, len(s.Headers))
	for i, h := range s.Headers {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

// CellAt returns the cell at column col of row, or an empty cell when the
// row is shorter.
func CellAt(row []Cell, col int) Cell {
	if col < 0 || col >= len(row) {
		return Cell{Kind: CellEmpty}
	}
	return row[col]
}

// ReadFirstSheet parses the first worksheet of a workbook into typed cells.
// The header row is trimmed of surrounding whitespace.
func ReadFirstSheet(r io.Reader) (*TypedSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := names[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	sheet := &TypedSheet{Name: name}
	if len(raw) == 0 {
		return sheet, nil
	}
	for _, h := range raw[0] {
		sheet.Headers = append(sheet.Headers, strings.TrimSpace(h))
	}

	tc := typer{f: f, sheet: name, dateStyles: map[int]bool{}}
	for r, values := range raw[1:] {
		row := make([]Cell, len(values))
		for c, v := range values {
			// +1 for 1-based coordinates, +1 more for the header row
			cell, err := tc.cell(c+1, r+2, v)
			if err != nil {
				return nil, err
			}
			row[c] = cell
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

type typer struct {
	f          *excelize.File
	sheet      string
	dateStyles map[int]bool
}

func (t *typer) cell(col, row int, raw string) (Cell, error) {
	if raw == "" {
		return Cell{Kind: CellEmpty}, nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, err
	}
	typ, err := t.f.GetCellType(t.sheet, ref)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %s: %w", ref, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return Cell{Kind: CellBool, Text: raw, Bool: raw == "1" || strings.EqualFold(raw, "true")}, nil
	case excelize.CellTypeError:
		return Cell{Kind: CellError, Text: raw}, nil
	case excelize.CellTypeDate:
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return Cell{Kind: CellDate, Text: raw, Time: ts}, nil
		}
		return Cell{Kind: CellString, Text: raw}, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return Cell{Kind: CellString, Text: raw}, nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Cell{Kind: CellString, Text: raw}, nil
	}
	isDate, err := t.isDateStyled(ref)
	if err != nil {
		return Cell{}, err
	}
	if isDate {
		ts, err := excelize.ExcelDateToTime(n, false)
		if err == nil {
			return Cell{Kind: CellDate, Text: raw, Time: ts}, nil
		}
	}
	return Cell{Kind: CellNumber, Text: raw, Number: n}, nil
}

func (t *typer) isDateStyled(ref string) (bool, error) {
	id, err := t.f.GetCellStyle(t.sheet, ref)
	if err != nil {
		return false, fmt.Errorf("cell %s style: %w", ref, err)
	}
	if cached, ok := t.dateStyles[id]; ok {
		return cached, nil
	}
	style, err := t.f.GetStyle(id)
	if err != nil {
		return false, fmt.Errorf("style %d: %w", id, err)
	}
	isDate := isDateNumFmt(style.NumFmt)
	if !isDate && style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	t.dateStyles[id] = isDate
	return isDate, nil
}

// Built-in number formats 14-22 and 45-47 are dates and times.
func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

func isDateFormatCode(code string) bool {
	// strip quoted literals and bracketed sections such as colors or locales
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ymdh")
}
