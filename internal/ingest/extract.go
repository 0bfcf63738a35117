package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ExtractedEntities holds the structured signals pulled from free text.
type ExtractedEntities struct {
	Companies []string
	Locations []string
	Values    []MoneyMention
	Dates     []time.Time
}

// MoneyMention is one monetary amount found in text.
type MoneyMention struct {
	Text  string
	Value float64
}

var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-zA-Z&]*(?:\s[A-Z][a-zA-Z&]*)*\s(?:Inc\.?|LLC|Corp\.?|Corporation|Company|Co\.)\B`),
	regexp.MustCompile(`\b[A-Z][a-zA-Z&]*(?:\s[A-Z][a-zA-Z&]*)*\sConstruction\b`),
	regexp.MustCompile(`\b[A-Z][a-zA-Z&]*(?:\s[A-Z][a-zA-Z&]*)*\sContractors?\b`),
}

var (
	cityStateRe = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)*,\s*[A-Z]{2}\b`)
	moneyRe     = regexp.MustCompile(`(?i)\$\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*(million|billion|[MB])?\b`)

	slashDateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	longDateRe  = regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`)
	isoDateRe   = regexp.MustCompile(`\b20\d{2}-\d{2}-\d{2}\b`)
)

// ExtractEntities pulls companies, locations, monetary values and dates
// from project text using pattern matching.
func ExtractEntities(text string) ExtractedEntities {
	return ExtractedEntities{
		Companies: extractCompanies(text),
		Locations: extractLocations(text),
		Values:    extractValues(text),
		Dates:     extractDates(text),
	}
}

func extractCompanies(text string) []string {
	var companies []string
	for _, pattern := range companyPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			companies = appendUnique(companies, match)
		}
	}
	return companies
}

func extractLocations(text string) []string {
	var locations []string
	for _, match := range cityStateRe.FindAllString(text, -1) {
		locations = appendUnique(locations, match)
	}
	return locations
}

func extractValues(text string) []MoneyMention {
	var values []MoneyMention
	for _, match := range moneyRe.FindAllStringSubmatch(text, -1) {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil || amount <= 0 {
			continue
		}
		unit := strings.ToLower(match[2])
		switch {
		case strings.HasPrefix(unit, "b"):
			amount *= 1_000_000_000
		case strings.HasPrefix(unit, "m"):
			amount *= 1_000_000
		}
		values = append(values, MoneyMention{Text: strings.TrimSpace(match[0]), Value: amount})
	}
	return values
}

func extractDates(text string) []time.Time {
	var dates []time.Time
	seen := make(map[string]bool)

	add := func(t time.Time) {
		key := t.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			dates = append(dates, t)
		}
	}

	for _, raw := range isoDateRe.FindAllString(text, -1) {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			add(t)
		}
	}
	for _, raw := range slashDateRe.FindAllString(text, -1) {
		for _, layout := range []string{"1/2/2006", "1/2/06"} {
			if t, err := time.Parse(layout, raw); err == nil {
				add(t)
				break
			}
		}
	}
	for _, raw := range longDateRe.FindAllString(text, -1) {
		normalized := strings.ReplaceAll(raw, ",", "")
		if t, err := time.Parse("January 2 2006", normalized); err == nil {
			add(t)
		}
	}

	return dates
}

// BestProjectValue picks the largest monetary mention as the project's
// estimated value. Announcement text routinely mentions smaller amounts
// (fees, per-unit costs) alongside the headline figure.
func BestProjectValue(entities ExtractedEntities) (float64, bool) {
	best := 0.0
	for _, v := range entities.Values {
		if v.Value > best {
			best = v.Value
		}
	}
	return best, best > 0
}

// NextFutureDate returns the earliest extracted date after now, the usual
// bid-deadline candidate.
func NextFutureDate(entities ExtractedEntities, now time.Time) (time.Time, bool) {
	var best time.Time
	for _, d := range entities.Dates {
		if !d.After(now) {
			continue
		}
		if best.IsZero() || d.Before(best) {
			best = d
		}
	}
	return best, !best.IsZero()
}
