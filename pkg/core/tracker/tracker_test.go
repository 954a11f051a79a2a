package tracker_test

import (
	"testing"
	"time"

	"edinet_analyzer/pkg/core/tracker"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to tracker.ProcessingState }{
		{tracker.StateListed, tracker.StateTarget},
		{tracker.StateListed, tracker.StateNotTarget},
		{tracker.StateTarget, tracker.StateScraped},
		{tracker.StateTarget, tracker.StateScrapeFailed},
		{tracker.StateScraped, tracker.StateAnalyzed},
		{tracker.StateScrapeFailed, tracker.StateTarget}, // retry
		{tracker.StateScraped, tracker.StateScraped},     // idempotent
	}
	for _, c := range allowed {
		if !tracker.CanTransition(c.from, c.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", c.from, c.to)
		}
	}

	denied := []struct{ from, to tracker.ProcessingState }{
		{tracker.StateListed, tracker.StateScraped},      // skips target gate
		{tracker.StateScraped, tracker.StateTarget},      // backwards
		{tracker.StateAnalyzed, tracker.StateTarget},     // terminal
		{tracker.StateNotTarget, tracker.StateTarget},    // terminal
		{tracker.StateScrapeFailed, tracker.StateScraped},
	}
	for _, c := range denied {
		if tracker.CanTransition(c.from, c.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", c.from, c.to)
		}
	}
}

func TestTransition_InvalidKeepsState(t *testing.T) {
	got, err := tracker.Transition(tracker.StateAnalyzed, tracker.StateTarget)
	if err == nil {
		t.Fatal("expected error")
	}
	if got != tracker.StateAnalyzed {
		t.Errorf("state after invalid transition = %s, want analyzed", got)
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []tracker.ProcessingState{tracker.StateNotTarget, tracker.StateAnalyzed} {
		if !tracker.Terminal(s) {
			t.Errorf("Terminal(%s) = false, want true", s)
		}
	}
	for _, s := range []tracker.ProcessingState{tracker.StateListed, tracker.StateTarget, tracker.StateScraped, tracker.StateScrapeFailed} {
		if tracker.Terminal(s) {
			t.Errorf("Terminal(%s) = true, want false", s)
		}
	}
}

func TestAggregate(t *testing.T) {
	day := time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC)
	statuses := []tracker.FilingStatus{
		{DocumentID: "D001", State: tracker.StateNotTarget},
		{DocumentID: "D002", State: tracker.StateAnalyzed},
		{DocumentID: "D003", State: tracker.StateScraped},
		{DocumentID: "D004", State: tracker.StateTarget},
		{DocumentID: "D005", State: tracker.StateScrapeFailed},
		{DocumentID: "D006", State: tracker.StateTarget},
	}

	s := tracker.Aggregate(day, statuses)

	if s.CountAll != 6 {
		t.Errorf("CountAll = %d, want 6", s.CountAll)
	}
	// Targets are cumulative: 2 pending + 1 scraped + 1 analyzed + 1 failed.
	if s.CountTarget != 5 {
		t.Errorf("CountTarget = %d, want 5", s.CountTarget)
	}
	// Scraped includes analyzed.
	if s.CountScraped != 2 {
		t.Errorf("CountScraped = %d, want 2", s.CountScraped)
	}
	if s.CountAnalyzed != 1 {
		t.Errorf("CountAnalyzed = %d, want 1", s.CountAnalyzed)
	}
	if s.CountNotTarget != 1 {
		t.Errorf("CountNotTarget = %d, want 1", s.CountNotTarget)
	}
	if s.CountScrapeFailed != 1 {
		t.Errorf("CountScrapeFailed = %d, want 1", s.CountScrapeFailed)
	}
	if s.FirstPendingTarget != "D004" {
		t.Errorf("FirstPendingTarget = %q, want D004", s.FirstPendingTarget)
	}
	if s.FirstScrapeFailed != "D005" {
		t.Errorf("FirstScrapeFailed = %q, want D005", s.FirstScrapeFailed)
	}
	if s.AllDone() {
		t.Error("AllDone() = true with pending work")
	}
}

func TestAggregate_AllDone(t *testing.T) {
	day := time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC)
	statuses := []tracker.FilingStatus{
		{DocumentID: "D001", State: tracker.StateNotTarget},
		{DocumentID: "D002", State: tracker.StateAnalyzed},
		{DocumentID: "D003", State: tracker.StateAnalyzed},
	}
	s := tracker.Aggregate(day, statuses)
	if !s.AllDone() {
		t.Errorf("AllDone() = false, summary = %+v", s)
	}

	// An empty date trivially has nothing pending.
	if !tracker.Aggregate(day, nil).AllDone() {
		t.Error("AllDone() on empty date = false")
	}
}

func TestAggregate_Recount(t *testing.T) {
	// Aggregation is a pure function of the persisted states, so
	// recomputing after a state change needs no counter bookkeeping.
	day := time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC)
	before := []tracker.FilingStatus{{DocumentID: "D001", State: tracker.StateScraped}}
	after := []tracker.FilingStatus{{DocumentID: "D001", State: tracker.StateAnalyzed}}

	if tracker.Aggregate(day, before).AllDone() {
		t.Error("scraped-only date reported done")
	}
	if !tracker.Aggregate(day, after).AllDone() {
		t.Error("analyzed date reported pending")
	}
}
