// Package importer loads fund data from CSV files into the store.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sadopc/fundscope/internal/store"
)

// Kind selects the CSV layout.
type Kind string

const (
	KindFunds       Kind = "funds"
	KindNAV         Kind = "nav"
	KindPredictions Kind = "predictions"
)

var Kinds = []Kind{KindFunds, KindNAV, KindPredictions}

// Result summarises one import. Row errors do not abort the import.
type Result struct {
	Kind     Kind
	Imported int
	Skipped  int
	Errors   []error
}

type fundRow struct {
	Code     string `validate:"required,max=16"`
	Name     string `validate:"required"`
	FundType string `validate:"required"`
	Channel  string `validate:"oneof=online stores"`
}

type navRow struct {
	Code string    `validate:"required"`
	Date time.Time `validate:"required"`
	NAV  float64   `validate:"gt=0"`
}

type predictionRow struct {
	Code      string    `validate:"required"`
	Date      time.Time `validate:"required"`
	Predicted float64   `validate:"gt=0"`
	Actual    *float64  `validate:"omitempty,gt=0"`
}

var validate = validator.New()

// header lists the expected columns per kind.
var header = map[Kind][]string{
	KindFunds:       {"code", "name", "type", "channel"},
	KindNAV:         {"code", "date", "nav"},
	KindPredictions: {"code", "date", "predicted", "actual"},
}

// File imports the CSV at path.
func File(s *store.Store, kind Kind, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{Kind: kind}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(s, kind, f)
}

// Read imports CSV rows from r. The first row must be the header for kind.
func Read(s *store.Store, kind Kind, r io.Reader) (Result, error) {
	res := Result{Kind: kind}
	want, ok := header[kind]
	if !ok {
		return res, fmt.Errorf("unknown import kind %q", kind)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(head, want); err != nil {
		return res, err
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if err := importRow(s, kind, rec); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

func checkHeader(got, want []string) error {
	if len(got) < len(want) {
		return fmt.Errorf("header %v: expected columns %v", got, want)
	}
	for i, w := range want {
		if strings.ToLower(strings.TrimSpace(got[i])) != w {
			return fmt.Errorf("header column %d is %q, expected %q", i+1, got[i], w)
		}
	}
	return nil
}

func importRow(s *store.Store, kind Kind, rec []string) error {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	switch kind {
	case KindFunds:
		row := fundRow{Code: field(0), Name: field(1), FundType: field(2), Channel: strings.ToLower(field(3))}
		if row.Channel == "" {
			row.Channel = "online"
		}
		if err := validate.Struct(row); err != nil {
			return err
		}
		_, err := s.UpsertFund(row.Code, row.Name, row.FundType, row.Channel)
		return err

	case KindNAV:
		d, err := parseDate(field(1))
		if err != nil {
			return err
		}
		nav, err := strconv.ParseFloat(field(2), 64)
		if err != nil {
			return fmt.Errorf("nav %q: %w", field(2), err)
		}
		row := navRow{Code: field(0), Date: d, NAV: nav}
		if err := validate.Struct(row); err != nil {
			return err
		}
		return s.AddNAV(row.Code, row.Date, row.NAV)

	case KindPredictions:
		d, err := parseDate(field(1))
		if err != nil {
			return err
		}
		predicted, err := strconv.ParseFloat(field(2), 64)
		if err != nil {
			return fmt.Errorf("predicted %q: %w", field(2), err)
		}
		row := predictionRow{Code: field(0), Date: d, Predicted: predicted}
		if raw := field(3); raw != "" {
			actual, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("actual %q: %w", raw, err)
			}
			row.Actual = &actual
		}
		if err := validate.Struct(row); err != nil {
			return err
		}
		return s.AddPrediction(row.Code, row.Date, row.Predicted, row.Actual)
	}
	return fmt.Errorf("unknown import kind %q", kind)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}
