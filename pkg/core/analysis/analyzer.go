// Package analysis derives a per-filing corporate value from the
// extracted statement line items.
package analysis

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"edinet_analyzer/pkg/core/scrape"
)

// ErrSubjectNotFound means a required statement subject was missing
// from the extraction, so no value can be computed for the filing.
var ErrSubjectNotFound = errors.New("required subject not found")

// Weights of the corporate-value formula: ten years of operating
// profit, and current liabilities grossed up by the average current
// ratio.
var (
	businessValueWeight = decimal.NewFromInt(10)
	averageCurrentRatio = decimal.RequireFromString("1.2")
)

// Subject labels looked up in the extracted items. Primary label first,
// then accepted variants.
var (
	subjectCurrentAssets      = []string{"流動資産合計"}
	subjectInvestmentsOther   = []string{"投資その他の資産合計"}
	subjectCurrentLiabilities = []string{"流動負債合計"}
	subjectFixedLiabilities   = []string{"固定負債合計", "非流動負債合計"}
	subjectOperatingProfit    = []string{"営業利益", "営業利益又は営業損失(△)"}
)

// Result is one computed corporate value, keyed the way the valuation
// series is later queried.
type Result struct {
	DocumentID     string
	EdinetCode     string
	PeriodEnd      time.Time
	SubmitDate     time.Time
	CorporateValue decimal.Decimal
}

// CorporateValue computes the per-share corporate value:
//
//	(operating profit × 10
//	 + total current assets − total current liabilities × 1.2
//	 + investments and other assets − total fixed liabilities) ÷ shares
//
// Every term must be present in the items; shares must be positive.
func CorporateValue(items []scrape.LineItem, shares decimal.Decimal) (decimal.Decimal, error) {
	currentAssets, err := findValue(items, scrape.BalanceSheet, subjectCurrentAssets)
	if err != nil {
		return decimal.Zero, err
	}
	investments, err := findValue(items, scrape.BalanceSheet, subjectInvestmentsOther)
	if err != nil {
		return decimal.Zero, err
	}
	currentLiabilities, err := findValue(items, scrape.BalanceSheet, subjectCurrentLiabilities)
	if err != nil {
		return decimal.Zero, err
	}
	fixedLiabilities, err := findValue(items, scrape.BalanceSheet, subjectFixedLiabilities)
	if err != nil {
		return decimal.Zero, err
	}
	operatingProfit, err := findValue(items, scrape.IncomeStatement, subjectOperatingProfit)
	if err != nil {
		return decimal.Zero, err
	}

	if !shares.IsPositive() {
		return decimal.Zero, fmt.Errorf("shares outstanding must be positive, got %s", shares)
	}

	value := operatingProfit.Mul(businessValueWeight).
		Add(currentAssets).
		Sub(currentLiabilities.Mul(averageCurrentRatio)).
		Add(investments).
		Sub(fixedLiabilities)

	return value.DivRound(shares, 10), nil
}

// findValue picks the current-period value of the first item whose
// subject matches one of the labels, in label priority order.
func findValue(items []scrape.LineItem, kind scrape.StatementKind, labels []string) (decimal.Decimal, error) {
	for _, label := range labels {
		for _, item := range items {
			if item.Kind != kind || item.Current == nil {
				continue
			}
			subject, ok := item.SubjectText()
			if !ok {
				continue
			}
			if normalizeSubject(subject) == label {
				return *item.Current, nil
			}
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %s %q", ErrSubjectNotFound, kind, labels[0])
}

func normalizeSubject(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}
