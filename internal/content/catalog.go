package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"momentum/internal/domain/training"
)

//go:embed catalog.yaml
var embedded []byte

// Deck names
const (
	DeckOnboarding = "onboarding"
	DeckTraining   = "training"
)

// Module is one operational training topic with its static bullet content.
type Module struct {
	Topic string   `yaml:"topic"`
	Title string   `yaml:"title"`
	Items []string `yaml:"items"`
}

// Reminder is a trainer-panel reminder line.
type Reminder struct {
	Text               string `yaml:"text"`
	RequiresExperience bool   `yaml:"requiresExperience"`
}

// SlideSource is a slide before rendering. Body is markdown, optionally a template.
type SlideSource struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Deck is a named presentation.
type Deck struct {
	Title  string        `yaml:"title"`
	Slides []SlideSource `yaml:"slides"`
}

// Catalog is the static content of the application.
type Catalog struct {
	Template  training.Record `yaml:"template"`
	Modules   []Module        `yaml:"modules"`
	Reminders []Reminder      `yaml:"reminders"`
	Decks     map[string]Deck `yaml:"decks"`
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Load reads a catalog from path, or the embedded one when path is empty.
// PRE: path is empty or names a readable YAML file
// POST: returned catalog passed Validate
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the structural rules new records rely on.
// INVARIANT: the template progress carries exactly the fixed checklist keys
func (c *Catalog) Validate() error {
	if len(c.Template.PaymentTiers) > training.MaxPaymentTiers {
		return fmt.Errorf("content catalog: template has %d payment tiers, max %d", len(c.Template.PaymentTiers), training.MaxPaymentTiers)
	}
	if err := c.Template.Progress.CheckKeys(); err != nil {
		return fmt.Errorf("content catalog: template: %w", err)
	}
	for _, m := range c.Modules {
		if _, err := training.ParseTopic(m.Topic); err != nil {
			return fmt.Errorf("content catalog: module %q: %w", m.Title, err)
		}
	}
	for _, name := range []string{DeckOnboarding, DeckTraining} {
		if len(c.Decks[name].Slides) == 0 {
			return errors.New("content catalog: deck " + name + " has no slides")
		}
	}
	return nil
}

// Deck returns a named deck.
func (c *Catalog) Deck(name string) (Deck, bool) {
	d, ok := c.Decks[name]
	return d, ok
}
