package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/pkg/metrics"
)

const (
	isoDate = "2006-01-02"

	// maxDateSerial is 9999-12-31, the last day a sheet can hold.
	maxDateSerial = 2958465
)

// XLSXSource reads an .xlsx export of the sheet. Row 1 holds the column
// names; each later row becomes one record with empty cells left out.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource reads the named sheet of the workbook at path, falling back
// to the first sheet when no sheet of that name exists.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

// Kind implements Source.
func (s *XLSXSource) Kind() string { return KindXLSX }

// Fetch implements Source.
func (s *XLSXSource) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	start := time.Now()
	records, err := s.read(ctx)
	ms := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordSourceFetch(KindXLSX, outcome(err), ms)
		metrics.RecordErrorByComponent("source", outcome(err))
		return nil, err
	}
	metrics.RecordSourceFetch(KindXLSX, "ok", ms)
	metrics.UpdateSourceRecords(KindXLSX, len(records))
	return records, nil
}

func (s *XLSXSource) read(ctx context.Context) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrTransport, s.path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrShape)
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if name == s.sheet {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrShape, sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	return rowsToRecords(datesToISO(rows, date1904)), nil
}

// dateColumns are the headers whose cells hold the snapshot date.
var dateColumns = map[string]bool{"date": true, "snapshot_date": true}

// datesToISO rewrites date cells in the date columns as 2006-01-02 so the
// snapshot dates order lexically. Cells holding other text are kept.
func datesToISO(rows [][]string, date1904 bool) [][]string {
	if len(rows) == 0 {
		return rows
	}
	var cols []int
	for i, h := range rows[0] {
		if dateColumns[strings.TrimSpace(h)] {
			cols = append(cols, i)
		}
	}
	for _, row := range rows[1:] {
		for _, i := range cols {
			if i >= len(row) {
				continue
			}
			if t, ok := cellDate(strings.TrimSpace(row[i]), date1904); ok {
				row[i] = t.Format(isoDate)
			}
		}
	}
	return rows
}

// cellDate reads a raw date cell: a serial number, or an ISO 8601 stamp as
// stored by typed date cells.
func cellDate(v string, date1904 bool) (time.Time, bool) {
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if serial <= 0 || serial > maxDateSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		return t, err == nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	return t, err == nil
}

// rowsToRecords maps data rows onto the header row.
func rowsToRecords(rows [][]string) []model.RawRecord {
	if len(rows) == 0 {
		return []model.RawRecord{}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	out := make([]model.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := model.RawRecord{}
		for i, cell := range row {
			if i >= len(header) || header[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			rec[header[i]] = cell
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}
