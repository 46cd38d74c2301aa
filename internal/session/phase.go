package session

import "github.com/msomdec/healthyu/internal/domain"

// Input is the read-only plan data a session walks through.
type Input struct {
	Physical   []domain.ExerciseItem
	Yoga       []domain.ExerciseItem
	Meditation []domain.ExerciseItem
}

// Items returns the item list of the given category.
func (in Input) Items(c domain.Category) []domain.ExerciseItem {
	switch c {
	case domain.CategoryPhysical:
		return in.Physical
	case domain.CategoryYoga:
		return in.Yoga
	case domain.CategoryMeditation:
		return in.Meditation
	}
	return nil
}

// PhaseOrder returns the categories that have at least one item, in the
// fixed precedence Physical, Yoga, Meditation.
func PhaseOrder(in Input) []domain.Category {
	order := make([]domain.Category, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		if len(in.Items(c)) > 0 {
			order = append(order, c)
		}
	}
	return order
}

// categoryWeight is the share of total progress each active phase carries.
func categoryWeight(active int) float64 {
	if active == 0 {
		return 0
	}
	return 100 / float64(active)
}
