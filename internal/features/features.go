package features

import (
	"fmt"
	"strconv"
	"strings"

	"nurseryml/internal/data"
)

// Select keeps the named attributes, plus the class attribute when set, in
// their original order.
func Select(in *data.Instances, keep []string) (*data.Instances, error) {
	want := map[string]bool{}
	for _, k := range keep {
		want[strings.TrimSpace(k)] = true
	}
	var cols []int
	for j, a := range in.Attributes {
		if want[a.Name] || j == in.ClassIndex {
			cols = append(cols, j)
			delete(want, a.Name)
		}
	}
	for name := range want {
		return nil, fmt.Errorf("unknown attribute %q", name)
	}
	attrs := make([]*data.Attribute, len(cols))
	h := in.Header()
	out := data.NewInstances(in.Relation, nil)
	for i, j := range cols {
		attrs[i] = h.Attributes[j]
		if j == in.ClassIndex {
			out.ClassIndex = i
		}
	}
	out.Attributes = attrs
	out.Rows = make([][]float64, len(in.Rows))
	for r, row := range in.Rows {
		v := make([]float64, len(cols))
		for i, j := range cols {
			v[i] = row[j]
		}
		out.Rows[r] = v
	}
	return out, nil
}

// Vectorize encodes a name -> label record against header. Attributes absent
// from the record, including the class, are missing.
func Vectorize(header *data.Instances, record map[string]string) ([]float64, error) {
	vec := make([]float64, header.NumAttributes())
	for i := range vec {
		vec[i] = data.Missing()
	}
	for name, label := range record {
		j := indexOf(header, name)
		if j < 0 {
			return nil, fmt.Errorf("unknown attribute %q", name)
		}
		v, err := encode(header.Attributes[j], label)
		if err != nil {
			return nil, err
		}
		vec[j] = v
	}
	return vec, nil
}

// BuildRecord maps a positional row of labels onto the header's attribute names.
func BuildRecord(header *data.Instances, labels []string) (map[string]string, error) {
	if len(labels) > header.NumAttributes() {
		return nil, fmt.Errorf("got %d values for %d attributes", len(labels), header.NumAttributes())
	}
	rec := make(map[string]string, len(labels))
	for i, l := range labels {
		rec[header.Attributes[i].Name] = l
	}
	return rec, nil
}

func indexOf(h *data.Instances, name string) int {
	for j, a := range h.Attributes {
		if a.Name == name {
			return j
		}
	}
	return -1
}

func encode(a *data.Attribute, label string) (float64, error) {
	label = strings.TrimSpace(label)
	if label == "" || label == "?" {
		return data.Missing(), nil
	}
	if a.Type == data.Numeric {
		v, err := strconv.ParseFloat(label, 64)
		if err != nil {
			return 0, fmt.Errorf("attribute %q: %q is not numeric", a.Name, label)
		}
		return v, nil
	}
	i := a.IndexOf(label)
	if i < 0 {
		return 0, fmt.Errorf("attribute %q: unknown label %q", a.Name, label)
	}
	return float64(i), nil
}
