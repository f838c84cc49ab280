package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

var rank = map[string]map[string]int{
	"parents":  {"usual": 0, "pretentious": 1, "great_pret": 2},
	"has_nurs": {"proper": 0, "less_proper": 0, "improper": 1, "critical": 2, "very_crit": 3},
	"form":     {"complete": 0, "completed": 0, "incomplete": 1, "foster": 1},
	"children": {"1": 0, "2": 0, "3": 1, "more": 1},
	"housing":  {"convenient": 0, "less_conv": 1, "critical": 2},
	"finance":  {"convenient": 0, "inconv": 1},
	"social":   {"nonprob": 0, "slightly_prob": 0, "problematic": 1},
}

// NurseryClass ranks an application from its attributes.
func NurseryClass(r NurseryRecord) string {
	if r.Health == "not_recom" {
		return "not_recom"
	}
	score := rank["parents"][r.Parents] + rank["has_nurs"][r.HasNurs] + rank["form"][r.Form] +
		rank["children"][r.Children] + rank["housing"][r.Housing] + rank["finance"][r.Finance] +
		rank["social"][r.Social]
	if r.Health == "priority" {
		if score >= 4 {
			return "spec_prior"
		}
		return "priority"
	}
	switch {
	case score == 0 && r.Parents == "usual" && r.HasNurs == "proper" && r.Form == "complete" && r.Children == "1":
		return "recommend"
	case score <= 1:
		return "very_recom"
	case score <= 4:
		return "priority"
	}
	return "spec_prior"
}

// NurseryRecords enumerates every attribute combination, 12960 records.
func NurseryRecords() []NurseryRecord {
	var out []NurseryRecord
	for _, p := range nurseryDomains["parents"] {
		for _, hn := range nurseryDomains["has_nurs"] {
			for _, f := range nurseryDomains["form"] {
				for _, c := range nurseryDomains["children"] {
					for _, ho := range nurseryDomains["housing"] {
						for _, fi := range nurseryDomains["finance"] {
							for _, s := range nurseryDomains["social"] {
								for _, h := range nurseryDomains["health"] {
									r := NurseryRecord{Parents: p, HasNurs: hn, Form: f, Children: c, Housing: ho, Finance: fi, Social: s, Health: h}
									r.Class = NurseryClass(r)
									out = append(out, r)
								}
							}
						}
					}
				}
			}
		}
	}
	return out
}

// GenerateNursery writes the nursery dataset as CSV. When keep is non-empty
// only those attributes are written, in canonical order, followed by class.
func GenerateNursery(outPath string, keep []string) error {
	cols, err := nurseryColumns(keep)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = NurseryAttributes[c]
	}
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for _, r := range NurseryRecords() {
		fields := r.Fields()
		for i, c := range cols {
			rec[i] = fields[c]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func nurseryColumns(keep []string) ([]int, error) {
	classCol := len(NurseryAttributes) - 1
	if len(keep) == 0 {
		out := make([]int, len(NurseryAttributes))
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	want := map[string]bool{}
	for _, k := range keep {
		if _, ok := nurseryDomains[k]; !ok {
			return nil, fmt.Errorf("unknown nursery attribute %q", k)
		}
		want[k] = true
	}
	var out []int
	for i, name := range NurseryAttributes[:classCol] {
		if want[name] {
			out = append(out, i)
		}
	}
	return append(out, classCol), nil
}
