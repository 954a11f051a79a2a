// Package edinet talks to the EDINET disclosure repository: the
// document list API, the document download endpoint and the zip
// packages it serves.
package edinet

import "time"

// Document type codes from the EDINET specification that this pipeline
// cares about. 120 is the annual securities report.
const (
	TypeAnnualReport     = "120"
	TypeQuarterlyReport  = "140"
	TypeSemiAnnualReport = "160"
)

// Filing is one disclosure document from the list endpoint. Immutable
// once created; its processing state lives with the tracker.
type Filing struct {
	DocumentID  string
	EdinetCode  string
	Description string
	DocTypeCode string
	SubmitDate  time.Time
}

// listResponse mirrors the document.json payload.
type listResponse struct {
	Results []listResult `json:"results"`
}

type listResult struct {
	DocID          string `json:"docID"`
	EdinetCode     string `json:"edinetCode"`
	DocDescription string `json:"docDescription"`
	DocTypeCode    string `json:"docTypeCode"`
	SubmitDateTime string `json:"submitDateTime"`
}
