package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	rpdf "rsc.io/pdf"
)

// TenderDocument is the text and extracted signals of one tender PDF.
type TenderDocument struct {
	URL         string
	Text        string
	BidDeadline *time.Time
	Value       *float64
}

func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// FetchTenderPDF downloads a tender PDF and extracts its text, bid
// deadline and contract value. Government tender portals publish the
// dates and amounts in the PDF body rather than the listing page.
func FetchTenderPDF(ctx context.Context, client *http.Client, pdfURL string) (*TenderDocument, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building pdf request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching pdf %s: %w", pdfURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching pdf %s: status %d", pdfURL, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("reading pdf body: %w", err)
	}

	text, err := extractPDFText(content)
	if err != nil {
		return nil, fmt.Errorf("pdf text extraction failed: %w", err)
	}

	doc := &TenderDocument{URL: pdfURL, Text: text}

	entities := ExtractEntities(text)
	if deadline, ok := NextFutureDate(entities, time.Now()); ok {
		doc.BidDeadline = &deadline
	}
	if value, ok := BestProjectValue(entities); ok {
		doc.Value = &value
	}

	return doc, nil
}
