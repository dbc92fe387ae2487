package usecase

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iho/kakeibo/internal/domain"
)

// CSVColumns is the fixed column order of exported files.
var CSVColumns = []string{
	"date",
	"type",
	"amount",
	"account",
	"to_account",
	"category",
	"category_free",
	"description",
	"note",
}

const utf8BOM = "\ufeff"

// CSVRecord is one transaction row with references expressed by name. An
// empty name means no reference.
type CSVRecord struct {
	Date         time.Time
	Type         domain.TransactionType
	Account      string
	ToAccount    string
	Category     string
	CategoryFree string
	Description  string
	Note         string
	Amount       int64
	Line         int
}

// Period returns the period the record's date falls in.
func (r CSVRecord) Period() domain.Period {
	return domain.PeriodOf(r.Date)
}

func (r CSVRecord) fields() []string {
	return []string{
		r.Date.Format(domain.DateLayout),
		string(r.Type),
		strconv.FormatInt(r.Amount, 10),
		r.Account,
		r.ToAccount,
		r.Category,
		r.CategoryFree,
		r.Description,
		r.Note,
	}
}

// WriteCSV writes the header followed by one line per record.
func WriteCSV(w io.Writer, records []CSVRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.fields()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads and validates every row before returning. Any malformed row
// fails the whole parse; errors wrap domain.ErrMalformedInput and carry the
// line number.
func ParseCSV(r io.Reader) ([]CSVRecord, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidHeader, err)
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []CSVRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
		}

		line, _ := cr.FieldPos(0)
		rec, err := parseRecord(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// headerIndex maps each column to its position. The header must hold the
// column set exactly, in any order; names are compared as written, so
// padded names such as " date" are rejected.
func headerIndex(header []string) (map[string]int, error) {
	want := make(map[string]bool, len(CSVColumns))
	for _, c := range CSVColumns {
		want[c] = true
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if !want[name] {
			return nil, fmt.Errorf("%w: unexpected column %q", domain.ErrInvalidHeader, name)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", domain.ErrInvalidHeader, name)
		}
		index[name] = i
	}

	for _, c := range CSVColumns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrInvalidHeader, c)
		}
	}

	return index, nil
}

func parseRecord(row []string, index map[string]int, line int) (CSVRecord, error) {
	get := func(col string) string {
		return strings.TrimSpace(row[index[col]])
	}

	rec := CSVRecord{
		Line:         line,
		Account:      get("account"),
		ToAccount:    get("to_account"),
		Category:     get("category"),
		CategoryFree: get("category_free"),
		Description:  get("description"),
		Note:         get("note"),
	}

	date, err := domain.ParseDate(get("date"))
	if err != nil {
		return CSVRecord{}, fmt.Errorf("line %d: %w: %q", line, domain.ErrInvalidDate, get("date"))
	}
	rec.Date = date

	typ, err := domain.ParseTransactionType(get("type"))
	if err != nil {
		return CSVRecord{}, fmt.Errorf("line %d: %w: %w", line, domain.ErrMalformedInput, err)
	}
	rec.Type = typ

	amount, err := strconv.ParseInt(get("amount"), 10, 64)
	if err != nil || amount <= 0 {
		return CSVRecord{}, fmt.Errorf("line %d: %w: %w", line, domain.ErrMalformedInput, domain.ErrInvalidAmount)
	}
	rec.Amount = amount

	return rec, nil
}
