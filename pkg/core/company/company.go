// Package company holds the entity master imported from the EDINET
// code list and the business rule selecting filings for extraction.
package company

// Company is one reporting entity from the code-list CSV.
type Company struct {
	EdinetCode string
	Code       string // securities code, empty for unlisted entities
	Name       string
	Industry   string
}

// Listed reports whether the entity has a securities code and can be
// priced against the market.
func (c Company) Listed() bool {
	return c.Code != ""
}
