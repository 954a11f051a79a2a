// Package tracker follows each filing through the acquisition,
// extraction and analysis pipeline.
package tracker

import "fmt"

// ProcessingState is the single current state of a filing. States only
// move forward, with the one exception of a scrape-failure retry.
type ProcessingState string

const (
	StateListed       ProcessingState = "listed"
	StateNotTarget    ProcessingState = "not_target"
	StateTarget       ProcessingState = "target"
	StateScraped      ProcessingState = "scraped"
	StateScrapeFailed ProcessingState = "scrape_failed"
	StateAnalyzed     ProcessingState = "analyzed"
)

var transitions = map[ProcessingState][]ProcessingState{
	StateListed:       {StateNotTarget, StateTarget},
	StateTarget:       {StateScraped, StateScrapeFailed},
	StateScraped:      {StateAnalyzed},
	StateScrapeFailed: {StateTarget}, // retry
	StateNotTarget:    {},            // terminal
	StateAnalyzed:     {},            // terminal
}

// CanTransition reports whether moving from one state to the next is
// allowed. Staying in place is always allowed (idempotent updates).
func CanTransition(from, to ProcessingState) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and returns the next state.
func Transition(from, to ProcessingState) (ProcessingState, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("invalid state transition %s -> %s", from, to)
	}
	return to, nil
}

// Terminal reports whether no further transition is possible.
func Terminal(s ProcessingState) bool {
	return len(transitions[s]) == 0
}
