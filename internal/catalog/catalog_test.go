package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/healthyu/internal/domain"
)

func TestLoad_Embedded(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, cat := range domain.Categories {
		if len(c.Entries(cat)) == 0 {
			t.Fatalf("expected %s entries", cat)
		}
	}
	for _, e := range c.Entries(domain.CategoryMeditation) {
		if e.Unit != domain.UnitMinutes {
			t.Fatalf("meditation entry %q has unit %q", e.Name, e.Unit)
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e, ok := c.Lookup(domain.CategoryPhysical, "  push-UPS ")
	if !ok {
		t.Fatal("expected to find push-ups")
	}
	if e.Category != domain.CategoryPhysical || e.Name != "Push-ups" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if _, ok := c.Lookup(domain.CategoryYoga, "Push-ups"); ok {
		t.Fatal("lookup must be scoped to the category")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty"},
		{"unknown field", "physical:\n  - name: A\n    unit: freq\n    default: 1\n    min: 1\n    max: 2\n    colour: red\n", "field colour not found"},
		{"bad unit", "yoga:\n  - name: A\n    unit: reps\n    default: 1\n    min: 1\n    max: 2\n", "invalid unit"},
		{"meditation freq", "meditation:\n  - name: A\n    unit: freq\n    default: 1\n    min: 1\n    max: 2\n", "minutes"},
		{"inverted bounds", "physical:\n  - name: A\n    unit: freq\n    default: 1\n    min: 5\n    max: 2\n", "invalid bounds"},
		{"default out of range", "physical:\n  - name: A\n    unit: freq\n    default: 9\n    min: 1\n    max: 2\n", "default 9"},
		{"duplicate", "physical:\n  - {name: A, unit: freq, default: 1, min: 1, max: 2}\n  - {name: a, unit: freq, default: 1, min: 1, max: 2}\n", "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestExercise(t *testing.T) {
	c, err := Parse([]byte(`
physical:
  - name: Push-ups
    unit: freq
    default: 10
    min: 1
    max: 100
    description: Chest and arms.
    steps: [Down, Up]
  - name: Squats
    unit: freq
    default: 10
    min: 1
    max: 100
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		name string
		item domain.PlanItem
		want domain.ExerciseItem
	}{
		{
			name: "catalog guidance",
			item: domain.PlanItem{Name: "Push-ups", Category: domain.CategoryPhysical, Value: 12, Unit: domain.UnitFrequency},
			want: domain.ExerciseItem{Name: "Push-ups", Description: "Chest and arms.", Unit: domain.UnitFrequency, Value: 12, Steps: []string{"Down", "Up"}},
		},
		{
			name: "generic physical",
			item: domain.PlanItem{Name: "Squats", Category: domain.CategoryPhysical, Value: 5, Unit: domain.UnitFrequency},
			want: domain.ExerciseItem{
				Name: "Squats", Description: "Perform Squats safely and with proper form.", Unit: domain.UnitFrequency, Value: 5,
				Steps: genericSteps(domain.CategoryPhysical),
			},
		},
		{
			name: "generic yoga",
			item: domain.PlanItem{Name: "Lotus", Category: domain.CategoryYoga, Value: 2, Unit: domain.UnitMinutes},
			want: domain.ExerciseItem{
				Name: "Lotus", Description: "Relax your body and breathe steadily during Lotus.", Unit: domain.UnitMinutes, Value: 2,
				Steps: genericSteps(domain.CategoryYoga),
			},
		},
		{
			name: "generic meditation",
			item: domain.PlanItem{Name: "Calm", Category: domain.CategoryMeditation, Value: 5, Unit: domain.UnitMinutes},
			want: domain.ExerciseItem{
				Name: "Calm", Description: "Calm helps calm your mind. Sit comfortably and focus on your breath.", Unit: domain.UnitMinutes, Value: 5,
				Steps: genericSteps(domain.CategoryMeditation),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, c.Exercise(tt.item)); diff != "" {
				t.Fatalf("Exercise mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
