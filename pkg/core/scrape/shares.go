package scrape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ErrSharesNotFound means no share-status table carried the issued
// share count.
var ErrSharesNotFound = errors.New("shares outstanding not found")

const totalMarker = "計"

// ScrapeShares reads the issued share count from the share-status
// table: the column is located by its header ("…末現在発行数…"), the row
// by the 計 total line, and the count sits at their intersection.
func ScrapeShares(doc *goquery.Document) (decimal.Decimal, error) {
	var shares *decimal.Decimal

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := tableCells(table)

		column := -1
		for _, row := range rows {
			for i, cell := range row {
				if isSharesHeader(cell) {
					column = i
					break
				}
			}
			if column >= 0 {
				break
			}
		}
		if column < 0 {
			return true
		}

		for _, row := range rows {
			if !isTotalRow(row) || column >= len(row) {
				continue
			}
			if value := parseAmount(row[column]); value != nil {
				shares = value
				return false
			}
		}
		return true
	})

	if shares == nil {
		return decimal.Zero, fmt.Errorf("%w", ErrSharesNotFound)
	}
	return *shares, nil
}

func tableCells(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		rows = append(rows, cells)
	})
	return rows
}

// isSharesHeader matches the header cell of the issued-count column in
// its annual and quarterly wordings.
func isSharesHeader(cell string) bool {
	s := norm.NFKC.String(cell)
	switch {
	case containsAll(s, "事業", "年度", "末", "現在", "発行"),
		containsAll(s, "当期", "末", "現在", "発行", "数"),
		containsAll(s, "四半期", "末", "発行", "数"):
		return true
	}
	return false
}

func isTotalRow(row []string) bool {
	for _, cell := range row {
		if strings.Contains(cell, totalMarker) && !strings.Contains(cell, "会計") {
			return true
		}
	}
	return false
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
