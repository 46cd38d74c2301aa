// Package catalog holds the exercises offered when building a plan, with
// their value bounds and the guidance shown in the session player.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/msomdec/healthyu/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Entry is one exercise of the catalog.
type Entry struct {
	Name        string          `yaml:"name"`
	Category    domain.Category `yaml:"-"`
	Unit        domain.Unit     `yaml:"unit"`
	Default     int             `yaml:"default"`
	Min         int             `yaml:"min"`
	Max         int             `yaml:"max"`
	Description string          `yaml:"description"`
	Steps       []string        `yaml:"steps"`
}

// Allows reports whether value is within the entry's bounds.
func (e Entry) Allows(value int) bool {
	return value >= e.Min && value <= e.Max
}

type file struct {
	Physical   []Entry `yaml:"physical"`
	Yoga       []Entry `yaml:"yoga"`
	Meditation []Entry `yaml:"meditation"`
}

// Catalog is an immutable, validated set of exercises.
type Catalog struct {
	entries map[domain.Category][]Entry
	index   map[string]Entry
}

// Load parses the catalog compiled into the binary.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes a catalog document. Unknown fields, duplicate names within a
// category, invalid units and inverted bounds are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		entries: make(map[domain.Category][]Entry, len(domain.Categories)),
		index:   make(map[string]Entry),
	}
	for cat, list := range map[domain.Category][]Entry{
		domain.CategoryPhysical:   f.Physical,
		domain.CategoryYoga:       f.Yoga,
		domain.CategoryMeditation: f.Meditation,
	} {
		for i, e := range list {
			e.Category = cat
			e.Name = strings.TrimSpace(e.Name)
			if err := validate(e); err != nil {
				return nil, fmt.Errorf("%s entry %d: %w", cat, i, err)
			}
			k := key(cat, e.Name)
			if _, dup := c.index[k]; dup {
				return nil, fmt.Errorf("%s entry %d: duplicate name %q", cat, i, e.Name)
			}
			c.index[k] = e
			c.entries[cat] = append(c.entries[cat], e)
		}
	}
	return c, nil
}

func validate(e Entry) error {
	switch {
	case e.Name == "":
		return errors.New("name is required")
	case !e.Unit.Valid():
		return fmt.Errorf("invalid unit %q", e.Unit)
	case e.Category == domain.CategoryMeditation && e.Unit != domain.UnitMinutes:
		return errors.New("meditation is measured in minutes")
	case e.Min < 1 || e.Max < e.Min:
		return fmt.Errorf("invalid bounds %d-%d", e.Min, e.Max)
	case !e.Allows(e.Default):
		return fmt.Errorf("default %d outside bounds %d-%d", e.Default, e.Min, e.Max)
	}
	return nil
}

func key(c domain.Category, name string) string {
	return string(c) + "/" + strings.ToLower(name)
}

// Entries returns the exercises of a category in catalog order.
func (c *Catalog) Entries(cat domain.Category) []Entry {
	return append([]Entry(nil), c.entries[cat]...)
}

// Lookup finds an exercise by category and case-insensitive name.
func (c *Catalog) Lookup(cat domain.Category, name string) (Entry, bool) {
	e, ok := c.index[key(cat, strings.TrimSpace(name))]
	return e, ok
}

// Exercise turns a plan item into the read-only item a session walks
// through. Guidance comes from the catalog when it has any; otherwise the
// generic text of the item's category is used.
func (c *Catalog) Exercise(it domain.PlanItem) domain.ExerciseItem {
	out := domain.ExerciseItem{
		Name:  it.Name,
		Unit:  it.Unit,
		Value: it.Value,
	}
	if e, ok := c.Lookup(it.Category, it.Name); ok {
		out.Description = e.Description
		out.Steps = append([]string(nil), e.Steps...)
	}
	if out.Description == "" {
		out.Description = genericDescription(it.Category, it.Name)
	}
	if len(out.Steps) == 0 {
		out.Steps = genericSteps(it.Category)
	}
	return out
}

func genericDescription(cat domain.Category, name string) string {
	switch cat {
	case domain.CategoryYoga:
		return fmt.Sprintf("Relax your body and breathe steadily during %s.", name)
	case domain.CategoryMeditation:
		return fmt.Sprintf("%s helps calm your mind. Sit comfortably and focus on your breath.", name)
	}
	return fmt.Sprintf("Perform %s safely and with proper form.", name)
}

func genericSteps(cat domain.Category) []string {
	if cat == domain.CategoryMeditation {
		return []string{
			"Sit comfortably with a straight back",
			"Close your eyes and relax your shoulders",
			"Breathe slowly in and out through the nose",
			"Bring attention back when the mind wanders",
			"Finish gently and open your eyes slowly",
		}
	}
	return []string{
		"Maintain correct posture",
		"Start slow and steady",
		"Focus on breathing",
		"Keep movements controlled",
		"Finish and rest briefly",
	}
}
