package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"edinet_analyzer/pkg/logger"
)

// StatementKind is a closed classification of financial tables.
type StatementKind int

const (
	BalanceSheet StatementKind = iota
	IncomeStatement
	CashFlowStatement
	OtherStatement
)

func (k StatementKind) String() string {
	switch k {
	case BalanceSheet:
		return "balance_sheet"
	case IncomeStatement:
		return "income_statement"
	case CashFlowStatement:
		return "cash_flow_statement"
	default:
		return "other"
	}
}

// CellLayout binds a statement kind to its table position inside the
// filing document and the cell positions inside each row.
type CellLayout struct {
	TableIndex  int `yaml:"table_index"`
	SubjectCell int `yaml:"subject_cell"`
	PriorCell   int `yaml:"prior_cell"`
	CurrentCell int `yaml:"current_cell"`
}

// TableConfig maps each extracted statement kind to its layout. The
// binding is configuration, not runtime discovery, so a layout change
// in the source documents fails loudly instead of silently shifting.
type TableConfig map[StatementKind]CellLayout

// DefaultTableConfig mirrors the standard annual-report layout:
// balance sheet first, then income statement, then cash flows, with
// subject / prior / current in the first three cells.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		BalanceSheet:      {TableIndex: 0, SubjectCell: 0, PriorCell: 1, CurrentCell: 2},
		IncomeStatement:   {TableIndex: 1, SubjectCell: 0, PriorCell: 1, CurrentCell: 2},
		CashFlowStatement: {TableIndex: 2, SubjectCell: 0, PriorCell: 1, CurrentCell: 2},
	}
}

// LineItem is one extracted statement row. Subject and both values are
// optional: value-only rows (subtotal continuations) and sparse cells
// are valid states, not errors.
type LineItem struct {
	Subject *string
	Prior   *decimal.Decimal
	Current *decimal.Decimal
	Period  *ReportingPeriod
	Quarter Quarter
	Kind    StatementKind
}

// SubjectText returns the subject label and whether the row had one.
func (li LineItem) SubjectText() (string, bool) {
	if li.Subject == nil {
		return "", false
	}
	return *li.Subject, true
}

// Extractor turns parsed filing documents into line items.
type Extractor struct {
	config TableConfig
}

func NewExtractor(config TableConfig) *Extractor {
	if config == nil {
		config = DefaultTableConfig()
	}
	return &Extractor{config: config}
}

// Kinds returns the configured statement kinds in extraction order.
func (e *Extractor) Kinds() []StatementKind {
	kinds := make([]StatementKind, 0, len(e.config))
	for _, k := range []StatementKind{BalanceSheet, IncomeStatement, CashFlowStatement, OtherStatement} {
		if _, ok := e.config[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ExtractFiling extracts every configured statement kind from the
// document. The reporting period is scraped from the cover page and the
// quarter from the description; a malformed period leaves Period nil on
// every row rather than failing the filing.
func (e *Extractor) ExtractFiling(doc *goquery.Document, description string) ([]LineItem, error) {
	period, err := e.ScrapePeriod(doc)
	if err != nil {
		logger.Log.Debugf("[Extractor] no reporting period available: %v", err)
		period = nil
	}
	quarter := ClassifyQuarter(description)

	var items []LineItem
	for _, kind := range e.Kinds() {
		kindItems, err := e.ExtractStatement(doc, kind)
		if err != nil {
			return nil, err
		}
		for i := range kindItems {
			kindItems[i].Period = period
			kindItems[i].Quarter = quarter
		}
		items = append(items, kindItems...)
	}
	return items, nil
}

// ExtractStatement extracts one statement table into ordered line
// items. A table with N rows yields exactly N items.
func (e *Extractor) ExtractStatement(doc *goquery.Document, kind StatementKind) ([]LineItem, error) {
	layout, ok := e.config[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no layout configured for %s", ErrTableNotFound, kind)
	}

	tables := doc.Find("table")
	if layout.TableIndex < 0 || layout.TableIndex >= tables.Length() {
		return nil, fmt.Errorf("%w: %s wants table %d but document has %d",
			ErrTableNotFound, kind, layout.TableIndex, tables.Length())
	}

	var items []LineItem
	tables.Eq(layout.TableIndex).Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		items = append(items, LineItem{
			Subject: cellText(cells, layout.SubjectCell),
			Prior:   parseAmount(cellString(cells, layout.PriorCell)),
			Current: parseAmount(cellString(cells, layout.CurrentCell)),
			Kind:    kind,
		})
	})

	logger.Log.Debugf("[Extractor] %s: %d rows from table %d", kind, len(items), layout.TableIndex)
	return items, nil
}

// ScrapePeriod reads the reporting period off the cover page, trying
// the fiscal-year element before the accounting-period one.
func (e *Extractor) ScrapePeriod(doc *goquery.Document) (*ReportingPeriod, error) {
	for _, name := range []string{"FiscalYearCoverPage", "AccountingPeriodCoverPage"} {
		sel := doc.Find(fmt.Sprintf(`[name*=%q]`, name))
		if text := strings.TrimSpace(sel.Text()); text != "" {
			return ParsePeriod(text)
		}
	}
	return nil, fmt.Errorf("%w: no cover page period element", ErrMalformedPeriodText)
}

func cellString(cells *goquery.Selection, index int) string {
	if index < 0 || index >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(index).Text())
}

func cellText(cells *goquery.Selection, index int) *string {
	text := cellString(cells, index)
	if text == "" {
		return nil
	}
	return &text
}

// parseAmount parses source-locale numeric text: NFKC-collapsed digits,
// thousands separators, a 円 suffix, and negatives written either as
// △/▲ prefixes or parentheses. Unparseable text is an absent value.
func parseAmount(text string) *decimal.Decimal {
	s := strings.TrimSpace(norm.NFKC.String(text))
	if s == "" {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "△") || strings.HasPrefix(s, "▲") {
		negative = true
		s = strings.TrimPrefix(strings.TrimPrefix(s, "△"), "▲")
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "円")
	s = strings.TrimSpace(s)

	value, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if negative {
		value = value.Neg()
	}
	return &value
}
