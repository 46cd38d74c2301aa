package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/healthyu/internal/catalog"
	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
)

func newPlanService(t *testing.T) (*service.PlanService, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return service.NewPlanService(db.Plans(), cat), newTestUser(t, db, "plan@example.com")
}

func TestPlanService_Create(t *testing.T) {
	svc, user := newPlanService(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, user.ID, []domain.PlanItem{
		meditation("Mindful Breathing", 5),
		physical("  Push-ups ", 12),
		{Name: "Tree Pose", Category: domain.CategoryYoga, Unit: domain.UnitMinutes, Value: 2},
		physical("Shadow Boxing", 30),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plan.ID == 0 || len(plan.Items) != 4 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.Items[1].Name != "Push-ups" || plan.Items[1].SortOrder != 1 {
		t.Fatalf("expected trimmed name in given order, got %+v", plan.Items[1])
	}

	got, err := svc.GetByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(got.Items) != 4 {
		t.Fatalf("expected 4 stored items, got %d", len(got.Items))
	}

	if _, err := svc.Create(ctx, user.ID, []domain.PlanItem{physical("Squats", 10)}); !errors.Is(err, domain.ErrPlanExists) {
		t.Fatalf("expected ErrPlanExists, got %v", err)
	}

	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := svc.GetByUser(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, []domain.PlanItem{physical("Squats", 10)}); err != nil {
		t.Fatalf("Create after delete: %v", err)
	}
}

func TestPlanService_CreateRejects(t *testing.T) {
	many := make([]domain.PlanItem, 51)
	for i := range many {
		many[i] = physical("Custom "+strings.Repeat("x", i+1), 5)
	}

	tests := []struct {
		name  string
		items []domain.PlanItem
		want  string
	}{
		{"empty plan", nil, "at least one"},
		{"too many", many, "at most 50"},
		{"blank name", []domain.PlanItem{physical("   ", 5)}, "name is required"},
		{"long name", []domain.PlanItem{physical(strings.Repeat("a", 101), 5)}, "too long"},
		{"bad category", []domain.PlanItem{{Name: "A", Category: "cardio", Unit: domain.UnitFrequency, Value: 1}}, "unknown category"},
		{"bad unit", []domain.PlanItem{{Name: "A", Category: domain.CategoryYoga, Unit: "sec", Value: 1}}, "unknown unit"},
		{"meditation reps", []domain.PlanItem{{Name: "Calm", Category: domain.CategoryMeditation, Unit: domain.UnitFrequency, Value: 3}}, "minutes"},
		{"zero value", []domain.PlanItem{physical("Custom", 0)}, "at least 1"},
		{"catalog unit", []domain.PlanItem{{Name: "Push-ups", Category: domain.CategoryPhysical, Unit: domain.UnitMinutes, Value: 5}}, "measured in freq"},
		{"catalog bounds", []domain.PlanItem{physical("Push-ups", 500)}, "between 1 and 100"},
		{"duplicate", []domain.PlanItem{physical("Squats", 5), physical("squats", 8)}, "listed twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, user := newPlanService(t)
			_, err := svc.Create(context.Background(), user.ID, tt.items)
			if !errors.Is(err, domain.ErrInvalidInput) || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected invalid input containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestPlanService_SessionInput(t *testing.T) {
	svc, user := newPlanService(t)
	plan, err := svc.Create(context.Background(), user.ID, []domain.PlanItem{
		meditation("Calm", 3),
		physical("Shadow Boxing", 20),
		physical("Push-ups", 10),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := svc.SessionInput(plan)
	if len(in.Physical) != 2 || len(in.Yoga) != 0 || len(in.Meditation) != 1 {
		t.Fatalf("unexpected split: %d/%d/%d", len(in.Physical), len(in.Yoga), len(in.Meditation))
	}
	if in.Physical[0].Name != "Shadow Boxing" || in.Physical[1].Name != "Push-ups" {
		t.Fatalf("plan order not kept: %q, %q", in.Physical[0].Name, in.Physical[1].Name)
	}
	if !strings.HasPrefix(in.Physical[1].Description, "Build chest") {
		t.Fatalf("expected catalog guidance, got %q", in.Physical[1].Description)
	}
	if in.Physical[0].Description != "Perform Shadow Boxing safely and with proper form." {
		t.Fatalf("expected generic guidance, got %q", in.Physical[0].Description)
	}
	if in.Meditation[0].Value != 3 || len(in.Meditation[0].Steps) == 0 {
		t.Fatalf("unexpected meditation item: %+v", in.Meditation[0])
	}
}
