package data

import "math"

type AttrType int

const (
	Numeric AttrType = iota
	Nominal
	String
)

func (t AttrType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Nominal:
		return "nominal"
	case String:
		return "string"
	}
	return "unknown"
}

// Attribute describes one column. Nominal and string values are stored in rows
// as indices into Values.
type Attribute struct {
	Name   string
	Type   AttrType
	Values []string
}

func NewNumeric(name string) *Attribute { return &Attribute{Name: name, Type: Numeric} }

func NewNominal(name string, values ...string) *Attribute {
	return &Attribute{Name: name, Type: Nominal, Values: append([]string(nil), values...)}
}

func (a *Attribute) IsNominal() bool { return a.Type == Nominal || a.Type == String }

func (a *Attribute) NumValues() int { return len(a.Values) }

// IndexOf returns the index of label, or -1.
func (a *Attribute) IndexOf(label string) int {
	for i, v := range a.Values {
		if v == label {
			return i
		}
	}
	return -1
}

// addValue returns the index of label, appending it if unseen.
func (a *Attribute) addValue(label string) int {
	if i := a.IndexOf(label); i >= 0 {
		return i
	}
	a.Values = append(a.Values, label)
	return len(a.Values) - 1
}

func (a *Attribute) clone() *Attribute {
	return &Attribute{Name: a.Name, Type: a.Type, Values: append([]string(nil), a.Values...)}
}

func Missing() float64 { return math.NaN() }

func IsMissing(v float64) bool { return math.IsNaN(v) }

// NurseryRecord is one row of the nursery admission dataset.
type NurseryRecord struct {
	Parents  string `json:"parents"`
	HasNurs  string `json:"has_nurs"`
	Form     string `json:"form"`
	Children string `json:"children"`
	Housing  string `json:"housing"`
	Finance  string `json:"finance"`
	Social   string `json:"social"`
	Health   string `json:"health"`
	Class    string `json:"class"`
}

func (r NurseryRecord) Fields() []string {
	return []string{r.Parents, r.HasNurs, r.Form, r.Children, r.Housing, r.Finance, r.Social, r.Health, r.Class}
}

var NurseryAttributes = []string{"parents", "has_nurs", "form", "children", "housing", "finance", "social", "health", "class"}

var nurseryDomains = map[string][]string{
	"parents":  {"usual", "pretentious", "great_pret"},
	"has_nurs": {"proper", "less_proper", "improper", "critical", "very_crit"},
	"form":     {"complete", "completed", "incomplete", "foster"},
	"children": {"1", "2", "3", "more"},
	"housing":  {"convenient", "less_conv", "critical"},
	"finance":  {"convenient", "inconv"},
	"social":   {"nonprob", "slightly_prob", "problematic"},
	"health":   {"recommended", "priority", "not_recom"},
	"class":    {"not_recom", "recommend", "very_recom", "priority", "spec_prior"},
}

