package company

import "edinet_analyzer/pkg/core/edinet"

// TargetRule decides which listed filings get extracted. Filings
// failing the rule are marked not-target and never retried.
type TargetRule struct {
	// Document type codes selected for extraction, e.g. the annual
	// securities report.
	TargetTypeCodes []string
	// Industries whose statements do not fit the standard layout and
	// are excluded wholesale (banking, insurance).
	ExcludedIndustries []string
}

// DefaultTargetRule mirrors the production configuration: annual
// reports only, banks and insurers excluded.
func DefaultTargetRule() TargetRule {
	return TargetRule{
		TargetTypeCodes:    []string{edinet.TypeAnnualReport},
		ExcludedIndustries: []string{"銀行業", "保険業"},
	}
}

// IsTarget evaluates the business rule for one filing. company may be
// nil when the filer is not in the master at all.
func (r TargetRule) IsTarget(filing edinet.Filing, c *Company) bool {
	if c == nil || !c.Listed() {
		return false
	}
	for _, industry := range r.ExcludedIndustries {
		if c.Industry == industry {
			return false
		}
	}
	for _, code := range r.TargetTypeCodes {
		if filing.DocTypeCode == code {
			return true
		}
	}
	return false
}
