package tracker

import "time"

// FilingStatus is the persisted per-filing state slice the aggregation
// reads. It deliberately carries no other filing attributes.
type FilingStatus struct {
	DocumentID string
	State      ProcessingState
}

// DateSummary aggregates filing states for one submission date. It is
// computed from already-persisted states on demand, never incremented,
// so concurrent scrape workers need no shared counters.
type DateSummary struct {
	SubmitDate        time.Time
	CountAll          int
	CountTarget       int
	CountScraped      int
	CountAnalyzed     int
	CountNotTarget    int
	CountScrapeFailed int

	// First actionable retry candidates, empty when none.
	FirstPendingTarget string
	FirstScrapeFailed  string
}

// Aggregate computes the summary for one submission date from the
// current per-filing states, preserving input order for the "first"
// fields.
func Aggregate(submitDate time.Time, statuses []FilingStatus) DateSummary {
	summary := DateSummary{SubmitDate: submitDate, CountAll: len(statuses)}

	for _, st := range statuses {
		switch st.State {
		case StateNotTarget:
			summary.CountNotTarget++
		case StateTarget:
			summary.CountTarget++
			if summary.FirstPendingTarget == "" {
				summary.FirstPendingTarget = st.DocumentID
			}
		case StateScrapeFailed:
			summary.CountScrapeFailed++
			if summary.FirstScrapeFailed == "" {
				summary.FirstScrapeFailed = st.DocumentID
			}
		case StateScraped:
			summary.CountScraped++
		case StateAnalyzed:
			summary.CountAnalyzed++
		}
	}

	// A filing past the target gate stays counted as a target so the
	// "all done" comparison below lines up.
	summary.CountTarget += summary.CountScraped + summary.CountAnalyzed + summary.CountScrapeFailed
	// Scraped likewise includes everything that moved on to analysis.
	summary.CountScraped += summary.CountAnalyzed

	return summary
}

// AllDone is true when no filing for the date is left mid-pipeline:
// everything selected has been scraped and analyzed.
func (s DateSummary) AllDone() bool {
	return s.CountTarget == s.CountScraped && s.CountScraped == s.CountAnalyzed
}
