package edinet

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"edinet_analyzer/pkg/logger"
)

// Fetcher is the parsed-document supplier the pipeline consumes: it
// hides download, unpack and HTML parsing behind one call.
type Fetcher struct {
	client *Client
}

func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// List exposes the client's document list to the pipeline.
func (f *Fetcher) List(ctx context.Context, date time.Time) ([]Filing, error) {
	return f.client.ListDocuments(ctx, date)
}

// Fetch downloads a filing package and returns the parsed main
// document. Any transport or unpack problem surfaces as ErrTransport.
func (f *Fetcher) Fetch(ctx context.Context, documentID string) (*goquery.Document, error) {
	payload, err := f.client.FetchDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc, err := ParseArchive(payload)
	if err != nil {
		return nil, err
	}
	logger.Log.Debugf("[EDINET] parsed document package %s", documentID)
	return doc, nil
}

// ParseArchive unpacks an EDINET zip package and parses the main
// report body. The package carries the report split across "honbun"
// files under PublicDoc; they are concatenated in archive order so the
// statement tables keep their document positions.
func ParseArchive(payload []byte) (*goquery.Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip package: %v", ErrTransport, err)
	}

	var html bytes.Buffer
	for _, file := range reader.File {
		if !isReportBody(file.Name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", ErrTransport, file.Name, err)
		}
		if _, err := html.ReadFrom(rc); err != nil {
			rc.Close()
			return nil, fmt.Errorf("%w: reading %s: %v", ErrTransport, file.Name, err)
		}
		rc.Close()
	}

	if html.Len() == 0 {
		return nil, fmt.Errorf("%w: package contains no report body", ErrTransport)
	}

	doc, err := goquery.NewDocumentFromReader(&html)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing report body: %v", ErrTransport, err)
	}
	return doc, nil
}

func isReportBody(name string) bool {
	if !strings.Contains(name, "PublicDoc") {
		return false
	}
	base := name[strings.LastIndex(name, "/")+1:]
	return (strings.Contains(base, "honbun") || strings.Contains(base, "header")) &&
		(strings.HasSuffix(base, ".htm") || strings.HasSuffix(base, ".html"))
}
