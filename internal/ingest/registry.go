package ingest

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for all scrape sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // Default: 3
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // Requests per second, default: 1.0
}

// SourceConfig defines a single data source: a permit register, tender
// portal or construction news site scraped into project records.
type SourceConfig struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"` // maps to models.ProjectSource: "permit", "tender", "news", "web_scrape"
	Region      string   `yaml:"region"`
	Country     string   `yaml:"country"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	Seeds       []string `yaml:"seed_urls,omitempty"`
	Description string   `yaml:"description,omitempty"`

	Fetch     FetchConfig    `yaml:"fetch,omitempty"`
	Selectors SelectorConfig `yaml:"selectors,omitempty"`
	MaxPages  int            `yaml:"max_pages,omitempty"`
}

// SelectorConfig drives generic HTML listing extraction.
type SelectorConfig struct {
	Container string `yaml:"container,omitempty"` // CSS selector for the list item wrapper
	Link      string `yaml:"link,omitempty"`
	LinkAttr  string `yaml:"link_attr,omitempty"` // Attribute to extract link from (default: href)
	Title     string `yaml:"title,omitempty"`
	Content   string `yaml:"content,omitempty"`
	Next      string `yaml:"next,omitempty"` // CSS selector for the next page link
}

// LoadRegistry reads the embedded source registry, or the file named by
// SOURCES_CONFIG when set.
func LoadRegistry() (*Registry, error) {
	var data []byte
	var err error

	if path := os.Getenv("SOURCES_CONFIG"); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = sourcesYAML.ReadFile("config/sources.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources config: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}
	return &registry, nil
}

// Get returns the source with the given id.
func (r *Registry) Get(id string) (*SourceConfig, bool) {
	for i := range r.Sources {
		if r.Sources[i].ID == id {
			return &r.Sources[i], true
		}
	}
	return nil, false
}
