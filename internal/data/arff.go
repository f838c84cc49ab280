package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

func LoadARFF(path string) (*Instances, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inst, err := ReadARFF(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// ReadARFF parses a dense ARFF document.
func ReadARFF(r io.Reader) (*Instances, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	inst := NewInstances("", nil)
	inData := false
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		if !inData {
			lower := strings.ToLower(text)
			switch {
			case strings.HasPrefix(lower, "@relation"):
				toks, err := tokenize(strings.TrimSpace(text[len("@relation"):]))
				if err != nil || len(toks) == 0 {
					return nil, fmt.Errorf("line %d: bad @relation", line)
				}
				inst.Relation = toks[0]
			case strings.HasPrefix(lower, "@attribute"):
				a, err := parseAttribute(strings.TrimSpace(text[len("@attribute"):]))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				inst.Attributes = append(inst.Attributes, a)
			case strings.HasPrefix(lower, "@data"):
				if len(inst.Attributes) == 0 {
					return nil, fmt.Errorf("line %d: @data before any @attribute", line)
				}
				inData = true
			default:
				return nil, fmt.Errorf("line %d: unexpected %q in header", line, text)
			}
			continue
		}
		if strings.HasPrefix(text, "{") {
			return nil, fmt.Errorf("line %d: sparse instances are not supported", line)
		}
		row, err := parseRow(inst.Attributes, text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		inst.Rows = append(inst.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !inData {
		return nil, errors.New("no @data section")
	}
	return inst, nil
}

func parseAttribute(s string) (*Attribute, error) {
	name, rest, err := nextToken(s)
	if err != nil {
		return nil, err
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") {
		end := strings.LastIndex(rest, "}")
		if end < 0 {
			return nil, fmt.Errorf("attribute %q: unterminated label list", name)
		}
		labels, err := tokenize(rest[1:end])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		return NewNominal(name, labels...), nil
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, fmt.Errorf("attribute %q: missing type", name)
	}
	kind := strings.ToLower(fields[0])
	switch kind {
	case "numeric", "real", "integer":
		return NewNumeric(name), nil
	case "string":
		return &Attribute{Name: name, Type: String}, nil
	case "date", "relational":
		return nil, fmt.Errorf("attribute %q: %s attributes are not supported", name, kind)
	}
	return nil, fmt.Errorf("attribute %q: unknown type %q", name, rest)
}

func parseRow(attrs []*Attribute, text string) ([]float64, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) != len(attrs) {
		return nil, fmt.Errorf("got %d values, want %d", len(toks), len(attrs))
	}
	row := make([]float64, len(attrs))
	for j, t := range toks {
		if t == "?" {
			row[j] = Missing()
			continue
		}
		a := attrs[j]
		switch a.Type {
		case Numeric:
			v, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %q is not numeric", a.Name, t)
			}
			row[j] = v
		case Nominal:
			i := a.IndexOf(t)
			if i < 0 {
				return nil, fmt.Errorf("attribute %q: undeclared label %q", a.Name, t)
			}
			row[j] = float64(i)
		case String:
			row[j] = float64(a.addValue(t))
		}
	}
	return row, nil
}

// tokenize splits a comma or whitespace separated list honouring quotes.
func tokenize(s string) ([]string, error) {
	var out []string
	for {
		s = strings.TrimLeft(s, " \t,")
		if s == "" {
			return out, nil
		}
		tok, rest, err := nextToken(s)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		s = rest
	}
}

func nextToken(s string) (string, string, error) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", "", errors.New("missing token")
	}
	if q := s[0]; q == '\'' || q == '"' {
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			c := s[i]
			switch {
			case c == '\\' && i+1 < len(s):
				i++
				b.WriteByte(unescape(s[i]))
			case c == q:
				return b.String(), s[i+1:], nil
			default:
				b.WriteByte(c)
			}
		}
		return "", "", fmt.Errorf("unterminated quote in %q", s)
	}
	end := strings.IndexAny(s, " \t,")
	if end < 0 {
		return s, "", nil
	}
	return s[:end], s[end:], nil
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	return c
}

// SaveARFF writes inst to path, creating the parent directory.
func SaveARFF(path string, inst *Instances) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	w := bufio.NewWriter(f)
	if err := WriteARFF(w, inst); err != nil {
		return err
	}
	return w.Flush()
}

func WriteARFF(w io.Writer, inst *Instances) error {
	bw := &errWriter{w: w}
	bw.printf("@relation %s\n\n", quote(inst.Relation))
	for _, a := range inst.Attributes {
		switch a.Type {
		case Numeric:
			bw.printf("@attribute %s numeric\n", quote(a.Name))
		case String:
			bw.printf("@attribute %s string\n", quote(a.Name))
		default:
			labels := make([]string, len(a.Values))
			for i, v := range a.Values {
				labels[i] = quote(v)
			}
			bw.printf("@attribute %s {%s}\n", quote(a.Name), strings.Join(labels, ","))
		}
	}
	bw.printf("\n@data\n")
	vals := make([]string, len(inst.Attributes))
	for _, row := range inst.Rows {
		for j, v := range row {
			s := inst.FormatValue(j, v)
			if s != "?" || !IsMissing(v) {
				s = quote(s)
			}
			vals[j] = s
		}
		bw.printf("%s\n", strings.Join(vals, ","))
	}
	return bw.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// quote single-quotes s when it would not survive tokenize unchanged.
func quote(s string) string {
	if s == "" {
		return "''"
	}
	if s != "?" && !strings.ContainsAny(s, " \t\n\r,'\"{}%\\") {
		return s
	}
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
