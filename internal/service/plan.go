package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/healthyu/internal/catalog"
	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/session"
)

const maxPlanItems = 50

// PlanService manages the single exercise plan each user may hold.
type PlanService struct {
	plans   domain.PlanRepository
	catalog *catalog.Catalog
}

func NewPlanService(plans domain.PlanRepository, cat *catalog.Catalog) *PlanService {
	return &PlanService{plans: plans, catalog: cat}
}

// Catalog returns the exercises offered when building a plan.
func (s *PlanService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Create validates and stores a new plan. Items keep the order they were
// given in. A user who already has a plan gets domain.ErrPlanExists.
func (s *PlanService) Create(ctx context.Context, userID int64, items []domain.PlanItem) (*domain.Plan, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: select at least one exercise", domain.ErrInvalidInput)
	}
	if len(items) > maxPlanItems {
		return nil, fmt.Errorf("%w: a plan holds at most %d exercises", domain.ErrInvalidInput, maxPlanItems)
	}

	plan := &domain.Plan{UserID: userID, Items: make([]domain.PlanItem, 0, len(items))}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if err := s.validateItem(it); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", domain.ErrInvalidInput, i+1, err)
		}
		key := string(it.Category) + "/" + strings.ToLower(it.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s is listed twice under %s", domain.ErrInvalidInput, it.Name, it.Category.Label())
		}
		seen[key] = true

		it.ID, it.PlanID = 0, 0
		it.SortOrder = i
		plan.Items = append(plan.Items, it)
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		if errors.Is(err, domain.ErrPlanExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return plan, nil
}

func (s *PlanService) validateItem(it domain.PlanItem) error {
	switch {
	case it.Name == "":
		return errors.New("name is required")
	case len(it.Name) > 100:
		return errors.New("name is too long")
	case !it.Category.Valid():
		return fmt.Errorf("unknown category %q", it.Category)
	case !it.Unit.Valid():
		return fmt.Errorf("unknown unit %q", it.Unit)
	case it.Category == domain.CategoryMeditation && it.Unit != domain.UnitMinutes:
		return errors.New("meditation is planned in minutes")
	case it.Value < 1:
		return fmt.Errorf("%s needs a value of at least 1", it.Name)
	}

	if e, ok := s.catalog.Lookup(it.Category, it.Name); ok {
		if it.Unit != e.Unit {
			return fmt.Errorf("%s is measured in %s", e.Name, e.Unit)
		}
		if !e.Allows(it.Value) {
			return fmt.Errorf("%s must be between %d and %d", e.Name, e.Min, e.Max)
		}
	}
	return nil
}

// GetByUser returns the user's plan or domain.ErrNotFound.
func (s *PlanService) GetByUser(ctx context.Context, userID int64) (*domain.Plan, error) {
	return s.plans.GetByUser(ctx, userID)
}

// Delete removes the user's plan. Deleting a missing plan is not an error.
func (s *PlanService) Delete(ctx context.Context, userID int64) error {
	if err := s.plans.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// SessionInput builds the read-only session lists from a plan, with
// guidance filled in from the catalog.
func (s *PlanService) SessionInput(plan *domain.Plan) session.Input {
	convert := func(c domain.Category) []domain.ExerciseItem {
		var out []domain.ExerciseItem
		for _, it := range plan.ItemsIn(c) {
			out = append(out, s.catalog.Exercise(it))
		}
		return out
	}
	return session.Input{
		Physical:   convert(domain.CategoryPhysical),
		Yoga:       convert(domain.CategoryYoga),
		Meditation: convert(domain.CategoryMeditation),
	}
}
