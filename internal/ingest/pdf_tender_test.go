package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractPDFTextRejectsNonPDF(t *testing.T) {
	text, err := extractPDFText([]byte("just a text file, no header"))
	if err == nil {
		t.Error("expected an error for a non-PDF body")
	}
	if text != "" {
		t.Errorf("text = %q, want empty on failure", text)
	}
}

func TestExtractPDFTextMalformedBody(t *testing.T) {
	// A valid header with a broken body. The parser may error or panic
	// internally; either way the caller sees an error, never a panic.
	body := "%PDF-1.4\n" + strings.Repeat("garbage ", 40) + "\nstartxref\n10\n%%EOF\n"

	text, err := extractPDFText([]byte(body))
	if err == nil {
		t.Error("expected an error for a malformed PDF body")
	}
	if text != "" {
		t.Errorf("text = %q, want empty on failure", text)
	}
}

func TestFetchTenderPDFErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.pdf":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write([]byte("this is not a pdf"))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	if _, err := FetchTenderPDF(ctx, srv.Client(), srv.URL+"/missing.pdf"); err == nil {
		t.Error("expected an error for a 404 response")
	}
	if _, err := FetchTenderPDF(ctx, srv.Client(), srv.URL+"/bogus.pdf"); err == nil {
		t.Error("expected an error for a non-PDF response body")
	}
}

func TestIsPDFLink(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://tenders.example.gov/notice/4711.pdf", true},
		{"https://tenders.example.gov/Notice.PDF?download=1", true},
		{"https://tenders.example.gov/notice/4711", false},
		{"https://tenders.example.gov/notice.pdf.html", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isPDFLink(tc.url); got != tc.want {
			t.Errorf("isPDFLink(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
