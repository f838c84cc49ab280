package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVOptions controls type inference when loading CSV files.
type CSVOptions struct {
	// Nominal forces columns to nominal. Entries are attribute names, 1-based
	// indices, "first" or "last".
	Nominal []string
	// MissingValue is the placeholder for missing cells besides the empty cell.
	MissingValue string
}

// DefaultCSVOptions reads "?" as missing and treats the last column as the
// nominal class.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Nominal: []string{"last"}, MissingValue: "?"}
}

// LoadCSV reads a CSV file with a header row into Instances.
func LoadCSV(path string, opts CSVOptions) (*Instances, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadCSV(f, name, opts)
}

func ReadCSV(r io.Reader, relation string, opts CSVOptions) (*Instances, error) {
	if opts.MissingValue == "" {
		opts.MissingValue = "?"
	}
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty CSV file")
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	cr.FieldsPerRecord = len(header)
	var cells [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		cells = append(cells, rec)
	}
	if len(cells) == 0 {
		return nil, errors.New("CSV file has a header but no data")
	}

	forced, err := resolveColumns(header, opts.Nominal)
	if err != nil {
		return nil, err
	}
	isMissing := func(s string) bool {
		s = strings.TrimSpace(s)
		return s == "" || s == opts.MissingValue
	}

	attrs := make([]*Attribute, len(header))
	for j, h := range header {
		numeric := !forced[j]
		if numeric {
			for _, rec := range cells {
				if isMissing(rec[j]) {
					continue
				}
				if _, err := strconv.ParseFloat(strings.TrimSpace(rec[j]), 64); err != nil {
					numeric = false
					break
				}
			}
		}
		if numeric {
			attrs[j] = NewNumeric(strings.TrimSpace(h))
		} else {
			attrs[j] = NewNominal(strings.TrimSpace(h))
		}
	}

	inst := NewInstances(relation, attrs)
	inst.Rows = make([][]float64, 0, len(cells))
	for _, rec := range cells {
		row := make([]float64, len(attrs))
		for j, s := range rec {
			s = strings.TrimSpace(s)
			switch {
			case isMissing(s):
				row[j] = Missing()
			case attrs[j].Type == Numeric:
				row[j], _ = strconv.ParseFloat(s, 64)
			default:
				row[j] = float64(attrs[j].addValue(s))
			}
		}
		inst.Rows = append(inst.Rows, row)
	}
	return inst, nil
}

func resolveColumns(header []string, specs []string) ([]bool, error) {
	out := make([]bool, len(header))
	for _, s := range specs {
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "first":
			out[0] = true
			continue
		case "last":
			out[len(header)-1] = true
			continue
		}
		if n, err := strconv.Atoi(s); err == nil {
			if n < 1 || n > len(header) {
				return nil, fmt.Errorf("column %d out of range [1,%d]", n, len(header))
			}
			out[n-1] = true
			continue
		}
		found := false
		for j, h := range header {
			if strings.TrimSpace(h) == s {
				out[j] = true
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown column %q", s)
		}
	}
	return out, nil
}
