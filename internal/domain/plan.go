package domain

import (
	"context"
	"time"
)

// Category is one of the three exercise phases of a session.
type Category string

const (
	CategoryPhysical   Category = "physical"
	CategoryYoga       Category = "yoga"
	CategoryMeditation Category = "meditation"
)

// Categories lists every category in session precedence order.
var Categories = []Category{CategoryPhysical, CategoryYoga, CategoryMeditation}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPhysical, CategoryYoga, CategoryMeditation:
		return true
	}
	return false
}

// Label returns the human-readable phase name.
func (c Category) Label() string {
	switch c {
	case CategoryPhysical:
		return "Physical"
	case CategoryYoga:
		return "Yoga"
	case CategoryMeditation:
		return "Meditation"
	}
	return string(c)
}

// Unit describes how an item's Value is measured.
type Unit string

const (
	UnitMinutes   Unit = "min"
	UnitFrequency Unit = "freq"
)

func (u Unit) Valid() bool {
	return u == UnitMinutes || u == UnitFrequency
}

// ExerciseItem is a single step of a guided session. It is built from a
// plan item at session start and never changes afterwards. For meditation
// items Value is the planned number of minutes.
type ExerciseItem struct {
	Name        string
	Description string
	Unit        Unit
	Value       int
	Steps       []string
}

// Plan is a user's exercise plan. A user has at most one plan.
type Plan struct {
	ID        int64
	UserID    int64
	Items     []PlanItem
	CreatedAt time.Time
}

// PlanItem is one exercise of a plan.
type PlanItem struct {
	ID        int64
	PlanID    int64
	Name      string
	Category  Category
	Value     int
	Unit      Unit
	SortOrder int
}

// ItemsIn returns the plan's items of the given category in sort order.
func (p *Plan) ItemsIn(c Category) []PlanItem {
	var items []PlanItem
	for _, it := range p.Items {
		if it.Category == c {
			items = append(items, it)
		}
	}
	return items
}

type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByUser(ctx context.Context, userID int64) (*Plan, error)
	DeleteByUser(ctx context.Context, userID int64) error
}
