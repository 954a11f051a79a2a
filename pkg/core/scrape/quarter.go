package scrape

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Quarter classifies a filing by its description text.
type Quarter int

const (
	QuarterOther Quarter = iota
	Quarter1
	Quarter2
	Quarter3
)

func (q Quarter) String() string {
	switch q {
	case Quarter1:
		return "Q1"
	case Quarter2:
		return "Q2"
	case Quarter3:
		return "Q3"
	default:
		return "Other"
	}
}

// Checked in fixed order; first match wins.
var quarterPatterns = []struct {
	pattern string
	quarter Quarter
}{
	{"第1四半期", Quarter1},
	{"第2四半期", Quarter2},
	{"第3四半期", Quarter3},
}

// ClassifyQuarter maps a document description to a quarter. An empty or
// unrecognized description is QuarterOther, not an error. Only the text
// is inspected, never the period dates.
func ClassifyQuarter(description string) Quarter {
	if description == "" {
		return QuarterOther
	}
	normalized := norm.NFKC.String(description)
	for _, p := range quarterPatterns {
		if strings.Contains(normalized, p.pattern) {
			return p.quarter
		}
	}
	return QuarterOther
}
