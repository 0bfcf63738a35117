package ingest

import (
	"testing"
	"time"
)

func TestExtractValues(t *testing.T) {
	cases := []struct {
		name string
		text string
		want float64
	}{
		{"plain dollars", "Contract awarded for $2,500,000 to the city", 2_500_000},
		{"million suffix", "A $75 million mixed-use development", 75_000_000},
		{"short m suffix", "budgeted at $4.5M for phase one", 4_500_000},
		{"billion suffix", "the $1.2 billion rail extension", 1_200_000_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entities := ExtractEntities(tc.text)
			value, ok := BestProjectValue(entities)
			if !ok {
				t.Fatalf("no value extracted from %q", tc.text)
			}
			if value != tc.want {
				t.Errorf("got %v, want %v", value, tc.want)
			}
		})
	}
}

func TestExtractValuesNone(t *testing.T) {
	entities := ExtractEntities("A new warehouse with no stated budget")
	if _, ok := BestProjectValue(entities); ok {
		t.Error("expected no value")
	}
}

func TestExtractDates(t *testing.T) {
	text := "Bids due 03/15/2027. Groundbreaking expected January 5, 2027. Published 2026-08-01."
	entities := ExtractEntities(text)

	if len(entities.Dates) != 3 {
		t.Fatalf("got %d dates, want 3: %v", len(entities.Dates), entities.Dates)
	}

	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	deadline, ok := NextFutureDate(entities, now)
	if !ok {
		t.Fatal("expected a future date")
	}
	want := time.Date(2027, time.January, 5, 0, 0, 0, 0, time.UTC)
	if !deadline.Equal(want) {
		t.Errorf("got %v, want %v", deadline, want)
	}
}

func TestExtractCompaniesAndLocations(t *testing.T) {
	text := "Turner Construction and Skyline Builders LLC won work in Austin, TX near Dallas, TX."
	entities := ExtractEntities(text)

	if len(entities.Companies) < 2 {
		t.Errorf("got companies %v, want at least 2", entities.Companies)
	}
	if len(entities.Locations) != 2 {
		t.Errorf("got locations %v, want 2", entities.Locations)
	}
}

func TestHTMLToText(t *testing.T) {
	html := `<div><script>alert(1)</script><p>New  hospital   wing</p><p>in Houston</p></div>`
	got := HTMLToText(html)

	if got != "New hospital wing in Houston" {
		t.Errorf("got %q", got)
	}
}
