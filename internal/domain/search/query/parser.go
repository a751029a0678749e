package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateExprPat matches "Month Day[, Year]", "YYYY-MM-DD" or "M/D/YYYY". Month
// validity is checked during parsing, not by the pattern.
const dateExprPat = `([A-Za-z]+\s+\d{1,2}(?:,\s*\d{4})?|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})`

var (
	scoreRe        = regexp.MustCompile(`(?i)(?:\brisk\s+)?(?:\bscore\s+)?(>=|<=|==|=|>|<)\s*(\d+(?:\.\d+)?)\s*%?`)
	explicitDateRe = regexp.MustCompile(`(?i)\b(?:date|created|assessment)\s*(>=|<=|==|=|>|<)\s*` + dateExprPat)
	keywordDateRe  = regexp.MustCompile(`(?i)\b(after|before)\s+` + dateExprPat)
	categoryRe     = regexp.MustCompile(`(?i)\b(very\s+high|high|intermediate|borderline|low)(?:\s+risk)?\b`)
)

// Parse extracts structured filters from a raw search string. It never fails:
// unrecognized input yields empty filters and the whole input as residual
// text. At most one filter per kind is extracted, first match wins, and each
// matched expression is removed from the residual.
func Parse(raw string) Parsed {
	return parseAt(raw, time.Now().UTC())
}

func parseAt(raw string, now time.Time) Parsed {
	residual := raw
	var filters Filters

	residual, filters.RiskScore = extractScore(residual)
	residual, filters.Date = extractExplicitDate(residual, now)
	if filters.Date == nil {
		residual, filters.Date = extractKeywordDate(residual, now)
	}
	residual, filters.Category = extractCategory(residual)

	return Parsed{
		Text:    strings.Join(strings.Fields(residual), " "),
		Filters: filters,
	}
}

func extractScore(s string) (string, *ScoreFilter) {
	for _, m := range scoreRe.FindAllStringSubmatchIndex(s, -1) {
		numEnd := m[5]
		// A number immediately followed by "/" or "-digit" is the start of a
		// date literal, not a score; leave it for the date extractors.
		if startsDateLiteral(s, numEnd) {
			continue
		}
		value, err := strconv.ParseFloat(s[m[4]:m[5]], 64)
		if err != nil {
			continue
		}
		f := &ScoreFilter{Op: normalizeOp(s[m[2]:m[3]]), Value: value}
		return cut(s, m[0], m[1]), f
	}
	return s, nil
}

func extractExplicitDate(s string, now time.Time) (string, *DateFilter) {
	for _, m := range explicitDateRe.FindAllStringSubmatchIndex(s, -1) {
		value, ok := parseDateExpr(s[m[4]:m[5]], now)
		if !ok {
			continue
		}
		f := &DateFilter{Op: normalizeOp(s[m[2]:m[3]]), Value: value}
		return cut(s, m[0], m[1]), f
	}
	return s, nil
}

func extractKeywordDate(s string, now time.Time) (string, *DateFilter) {
	for _, m := range keywordDateRe.FindAllStringSubmatchIndex(s, -1) {
		value, ok := parseDateExpr(s[m[4]:m[5]], now)
		if !ok {
			continue
		}
		op := OpGT
		if strings.EqualFold(s[m[2]:m[3]], "before") {
			op = OpLT
		}
		return cut(s, m[0], m[1]), &DateFilter{Op: op, Value: value}
	}
	return s, nil
}

func extractCategory(s string) (string, string) {
	m := categoryRe.FindStringSubmatchIndex(s)
	if m == nil {
		return s, ""
	}
	category := strings.ToLower(strings.Join(strings.Fields(s[m[2]:m[3]]), " "))
	return cut(s, m[0], m[1]), category
}

// parseDateExpr parses a date expression matched by dateExprPat. A bare
// "Month Day" is assumed to be in the current year. Unparseable expressions
// (e.g. an unknown month name) report false so the caller can leave the text
// untouched.
func parseDateExpr(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	norm := normalizeMonth(s)
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, norm); err == nil {
			return t, true
		}
	}
	for _, layout := range []string{"January 2", "Jan 2"} {
		if t, err := time.Parse(layout, norm); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// normalizeMonth title-cases the leading month token so case-sensitive
// time.Parse layouts accept "august 3" and "AUGUST 3".
func normalizeMonth(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	month := fields[0]
	fields[0] = strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
	return strings.Join(fields, " ")
}

func startsDateLiteral(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	if s[i] == '/' {
		return true
	}
	return s[i] == '-' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9'
}

func normalizeOp(s string) Op {
	if s == "==" {
		return OpEQ
	}
	return Op(s)
}

// cut removes s[start:end], joining the remainder with a single space so
// surrounding words do not fuse together.
func cut(s string, start, end int) string {
	return s[:start] + " " + s[end:]
}
