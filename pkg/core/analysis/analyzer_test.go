package analysis_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"edinet_analyzer/pkg/core/analysis"
	"edinet_analyzer/pkg/core/scrape"
)

func item(kind scrape.StatementKind, subject string, current int64) scrape.LineItem {
	value := decimal.NewFromInt(current)
	return scrape.LineItem{
		Subject: &subject,
		Current: &value,
		Kind:    kind,
	}
}

func standardItems() []scrape.LineItem {
	return []scrape.LineItem{
		item(scrape.BalanceSheet, "流動資産合計", 3000),
		item(scrape.BalanceSheet, "投資その他の資産合計", 300),
		item(scrape.BalanceSheet, "流動負債合計", 1000),
		item(scrape.BalanceSheet, "固定負債合計", 500),
		item(scrape.IncomeStatement, "営業利益", 200),
	}
}

func TestCorporateValue(t *testing.T) {
	// 200*10 + 3000 - 1000*1.2 + 300 - 500 = 3600; / 100 shares = 36
	value, err := analysis.CorporateValue(standardItems(), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(decimal.NewFromInt(36)) {
		t.Errorf("value = %v, want 36", value)
	}
}

func TestCorporateValue_SubjectVariants(t *testing.T) {
	// 非流動負債合計 and the loss-form operating profit label are
	// accepted in place of the primary wording.
	items := []scrape.LineItem{
		item(scrape.BalanceSheet, "流動資産合計", 3000),
		item(scrape.BalanceSheet, "投資その他の資産合計", 300),
		item(scrape.BalanceSheet, "流動負債合計", 1000),
		item(scrape.BalanceSheet, "非流動負債合計", 500),
		item(scrape.IncomeStatement, "営業利益又は営業損失（△）", 200),
	}
	value, err := analysis.CorporateValue(items, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(decimal.NewFromInt(36)) {
		t.Errorf("value = %v, want 36", value)
	}
}

func TestCorporateValue_NegativeOperatingProfit(t *testing.T) {
	items := standardItems()
	loss := decimal.NewFromInt(-200)
	items[4].Current = &loss
	// -200*10 + 3000 - 1200 + 300 - 500 = -400; / 100 = -4
	value, err := analysis.CorporateValue(items, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(decimal.NewFromInt(-4)) {
		t.Errorf("value = %v, want -4", value)
	}
}

func TestCorporateValue_MissingSubject(t *testing.T) {
	// Drop the income statement entirely.
	items := standardItems()[:4]
	_, err := analysis.CorporateValue(items, decimal.NewFromInt(100))
	if !errors.Is(err, analysis.ErrSubjectNotFound) {
		t.Fatalf("error = %v, want ErrSubjectNotFound", err)
	}
}

func TestCorporateValue_WrongStatementKind(t *testing.T) {
	// A matching label on the wrong statement must not satisfy the
	// lookup.
	items := standardItems()[:4]
	items = append(items, item(scrape.BalanceSheet, "営業利益", 200))
	_, err := analysis.CorporateValue(items, decimal.NewFromInt(100))
	if !errors.Is(err, analysis.ErrSubjectNotFound) {
		t.Fatalf("error = %v, want ErrSubjectNotFound", err)
	}
}

func TestCorporateValue_NilCurrentSkipped(t *testing.T) {
	// A value-less row with the right subject is passed over in favor
	// of the populated one.
	blank := "流動資産合計"
	items := append([]scrape.LineItem{{Subject: &blank, Kind: scrape.BalanceSheet}}, standardItems()...)
	value, err := analysis.CorporateValue(items, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(decimal.NewFromInt(36)) {
		t.Errorf("value = %v, want 36", value)
	}
}

func TestCorporateValue_InvalidShares(t *testing.T) {
	for _, shares := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		if _, err := analysis.CorporateValue(standardItems(), shares); err == nil {
			t.Errorf("shares = %v: expected error", shares)
		}
	}
}

func TestCorporateValue_FractionalResult(t *testing.T) {
	// 3600 / 7 = 514.2857142857... rounded at 10 places.
	value, err := analysis.CorporateValue(standardItems(), decimal.NewFromInt(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := decimal.RequireFromString("514.2857142857")
	if !value.Equal(want) {
		t.Errorf("value = %v, want %v", value, want)
	}
}
