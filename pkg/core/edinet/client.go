package edinet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"edinet_analyzer/pkg/logger"
)

// ErrTransport wraps any failure talking to the EDINET API. The
// pipeline maps it to a retryable scrape failure without inspecting
// the cause.
var ErrTransport = errors.New("edinet transport failure")

const (
	defaultBaseURL = "https://disclosure.edinet-fsa.go.jp/api/v2"
	// type=2 on the list endpoint asks for full metadata,
	// type=1 on the document endpoint asks for the XBRL zip.
	listWithMetadata = "2"
	documentAsZip    = "1"
)

// Client is the EDINET API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client. baseURL may be empty for the production
// endpoint; apiKey is the subscription key EDINET v2 requires.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ListDocuments fetches the filings submitted on one date.
func (c *Client) ListDocuments(ctx context.Context, date time.Time) ([]Filing, error) {
	endpoint := fmt.Sprintf("%s/documents.json?%s", c.baseURL, url.Values{
		"date":             {date.Format("2006-01-02")},
		"type":             {listWithMetadata},
		"Subscription-Key": {c.apiKey},
	}.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding document list: %v", ErrTransport, err)
	}

	filings := make([]Filing, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		filings = append(filings, Filing{
			DocumentID:  r.DocID,
			EdinetCode:  r.EdinetCode,
			Description: r.DocDescription,
			DocTypeCode: r.DocTypeCode,
			SubmitDate:  date,
		})
	}
	logger.Log.Infof("[EDINET] listed %d filings for %s", len(filings), date.Format("2006-01-02"))
	return filings, nil
}

// FetchDocument downloads the zip package for one filing.
func (c *Client) FetchDocument(ctx context.Context, documentID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/documents/%s?%s", c.baseURL, documentID, url.Values{
		"type":             {documentAsZip},
		"Subscription-Key": {c.apiKey},
	}.Encode())
	return c.get(ctx, endpoint)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrTransport, resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}
	return body, nil
}
