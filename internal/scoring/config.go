package scoring

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weights of the five sub-scores. They must sum to 1.0.
type Weights struct {
	Products       float64 `yaml:"products"`
	BusinessInfo   float64 `yaml:"business_info"`
	Quality        float64 `yaml:"quality"`
	MarketPresence float64 `yaml:"market_presence"`
	Accessibility  float64 `yaml:"accessibility"`
}

func (w Weights) sum() float64 {
	return w.Products + w.BusinessInfo + w.Quality + w.MarketPresence + w.Accessibility
}

// Terms are the lowercase substrings that earn bonus points.
type Terms struct {
	// Manufacturing terms in the product name raise the Products sub-score.
	Manufacturing []string `yaml:"manufacturing"`
	// CompanyForms in the company name raise the Business Info sub-score.
	CompanyForms []string `yaml:"company_forms"`
	// Quality terms in the product name raise the Quality sub-score.
	Quality []string `yaml:"quality"`
}

// Config parameterises the engine. Fields map 1:1 to config/scoring.yaml.
type Config struct {
	Weights Weights `yaml:"weights"`
	Terms   Terms   `yaml:"terms"`
}

// DefaultConfig returns the broad term lists and the standard weights.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Products:       0.15,
			BusinessInfo:   0.20,
			Quality:        0.25,
			MarketPresence: 0.25,
			Accessibility:  0.15,
		},
		Terms: Terms{
			Manufacturing: []string{"casting", "machined", "forged", "precision", "custom"},
			CompanyForms:  []string{"ltd", "limited", "pvt", "private", "industries", "inc", "corporation"},
			Quality:       []string{"premium", "high quality", "certified", "iso", "standard"},
		},
	}
}

// LoadConfig reads a YAML scoring config. Sections absent from the file keep
// their defaults. An empty path returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scoring config %q: %w", path, err)
	}

	var raw struct {
		Weights *Weights `yaml:"weights"`
		Terms   struct {
			Manufacturing []string `yaml:"manufacturing"`
			CompanyForms  []string `yaml:"company_forms"`
			Quality       []string `yaml:"quality"`
		} `yaml:"terms"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse scoring config %q: %w", path, err)
	}
	if raw.Weights != nil {
		cfg.Weights = *raw.Weights
	}
	if raw.Terms.Manufacturing != nil {
		cfg.Terms.Manufacturing = raw.Terms.Manufacturing
	}
	if raw.Terms.CompanyForms != nil {
		cfg.Terms.CompanyForms = raw.Terms.CompanyForms
	}
	if raw.Terms.Quality != nil {
		cfg.Terms.Quality = raw.Terms.Quality
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("scoring config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that weights are non-negative and sum to 1, and that no
// term is blank.
func (c Config) Validate() error {
	for name, w := range map[string]float64{
		"products":        c.Weights.Products,
		"business_info":   c.Weights.BusinessInfo,
		"quality":         c.Weights.Quality,
		"market_presence": c.Weights.MarketPresence,
		"accessibility":   c.Weights.Accessibility,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s is negative (%g)", name, w)
		}
	}
	if s := c.Weights.sum(); math.Abs(s-1) > 1e-9 {
		return fmt.Errorf("weights sum to %g, want 1", s)
	}
	for list, terms := range map[string][]string{
		"manufacturing": c.Terms.Manufacturing,
		"company_forms": c.Terms.CompanyForms,
		"quality":       c.Terms.Quality,
	} {
		for i, t := range terms {
			if strings.TrimSpace(t) == "" {
				return fmt.Errorf("terms.%s[%d] is blank", list, i)
			}
		}
	}
	return nil
}
