package scrape

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

const shareStatusHTML = `<html><body>
<table>
<tr><td>種類</td><td>事業年度末現在発行数(株)</td><td>提出日現在発行数(株)</td></tr>
<tr><td>普通株式</td><td>364,781,998</td><td>364,781,998</td></tr>
<tr><td>計</td><td>364,781,998</td><td>364,781,998</td></tr>
</table>
</body></html>`

func TestScrapeShares(t *testing.T) {
	shares, err := ScrapeShares(parseHTML(t, shareStatusHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shares.Equal(decimal.NewFromInt(364781998)) {
		t.Errorf("shares = %v, want 364781998", shares)
	}
}

func TestScrapeShares_QuarterlyWording(t *testing.T) {
	html := `<html><body>
<table>
<tr><td>種類</td><td>第3四半期末現在発行数(株)</td></tr>
<tr><td>普通株式</td><td>1,000</td></tr>
<tr><td>計</td><td>1,000</td></tr>
</table>
</body></html>`
	shares, err := ScrapeShares(parseHTML(t, html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shares.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("shares = %v, want 1000", shares)
	}
}

func TestScrapeShares_SkipsAccountingTotalRow(t *testing.T) {
	// 会計 rows contain 計 but are not the total line.
	html := `<html><body>
<table>
<tr><td>種類</td><td>事業年度末現在発行数(株)</td></tr>
<tr><td>会計方針</td><td>注記</td></tr>
<tr><td>計</td><td>2,000</td></tr>
</table>
</body></html>`
	shares, err := ScrapeShares(parseHTML(t, html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shares.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("shares = %v, want 2000", shares)
	}
}

func TestScrapeShares_NotFound(t *testing.T) {
	cases := []string{
		`<html><body></body></html>`,
		// Header present but no total row.
		`<html><body><table>
<tr><td>種類</td><td>事業年度末現在発行数(株)</td></tr>
<tr><td>普通株式</td><td>1,000</td></tr>
</table></body></html>`,
		// Total row present but the cell is not numeric.
		`<html><body><table>
<tr><td>種類</td><td>事業年度末現在発行数(株)</td></tr>
<tr><td>計</td><td>同上</td></tr>
</table></body></html>`,
	}
	for _, html := range cases {
		if _, err := ScrapeShares(parseHTML(t, html)); !errors.Is(err, ErrSharesNotFound) {
			t.Errorf("error = %v, want ErrSharesNotFound", err)
		}
	}
}
