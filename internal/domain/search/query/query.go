// Package query turns a raw search string into structured filters plus a
// residual free-text query.
package query

import "time"

// Op is a comparison operator recognized in filter expressions.
type Op string

const (
	OpGT  Op = ">"
	OpGTE Op = ">="
	OpLT  Op = "<"
	OpLTE Op = "<="
	OpEQ  Op = "="
)

// ScoreFilter constrains the numeric risk score.
type ScoreFilter struct {
	Op    Op
	Value float64
}

// DateFilter constrains the record creation date.
type DateFilter struct {
	Op    Op
	Value time.Time
}

// Filters holds at most one structured constraint per kind.
type Filters struct {
	RiskScore *ScoreFilter
	Date      *DateFilter
	Category  string
}

// IsEmpty reports whether no filter kind is present.
func (f Filters) IsEmpty() bool {
	return f.RiskScore == nil && f.Date == nil && f.Category == ""
}

// Parsed is the parser output: extracted filters and the residual text with
// all matched filter expressions removed.
type Parsed struct {
	Text    string
	Filters Filters
}
