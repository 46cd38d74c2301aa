package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/msomdec/healthyu/internal/domain"
)

func samplePlan(userID int64) *domain.Plan {
	return &domain.Plan{
		UserID: userID,
		Items: []domain.PlanItem{
			{Name: "Mindful Breathing", Category: domain.CategoryMeditation, Value: 5, Unit: domain.UnitMinutes, SortOrder: 2},
			{Name: "Push-ups", Category: domain.CategoryPhysical, Value: 10, Unit: domain.UnitFrequency, SortOrder: 0},
			{Name: "Tree Pose", Category: domain.CategoryYoga, Value: 2, Unit: domain.UnitMinutes, SortOrder: 1},
		},
	}
}

func TestPlanRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := db.Plans()
	ctx := context.Background()
	user := createUser(t, db, "plan@example.com")

	plan := samplePlan(user.ID)
	if err := repo.Create(ctx, plan); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plan.ID == 0 || plan.Items[0].ID == 0 || plan.Items[0].PlanID != plan.ID {
		t.Fatalf("expected ids to be set, got %+v", plan)
	}

	got, err := repo.GetByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	want := []string{"Push-ups", "Tree Pose", "Mindful Breathing"}
	var names []string
	for _, it := range got.Items {
		names = append(names, it.Name)
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("items not in sort order (-want +got):\n%s", diff)
	}

	ignoreIDs := cmpopts.IgnoreFields(domain.PlanItem{}, "ID", "PlanID")
	if diff := cmp.Diff(samplePlan(user.ID).ItemsIn(domain.CategoryYoga), got.ItemsIn(domain.CategoryYoga), ignoreIDs); diff != "" {
		t.Fatalf("yoga items mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanRepository_OnePlanPerUser(t *testing.T) {
	db := newTestDB(t)
	repo := db.Plans()
	ctx := context.Background()
	user := createUser(t, db, "once@example.com")

	if err := repo.Create(ctx, samplePlan(user.ID)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, samplePlan(user.ID)); !errors.Is(err, domain.ErrPlanExists) {
		t.Fatalf("expected ErrPlanExists, got %v", err)
	}

	var items int
	if err := db.SqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM plan_items").Scan(&items); err != nil {
		t.Fatal(err)
	}
	if items != 3 {
		t.Fatalf("rejected plan must not leave items behind, got %d", items)
	}
}

func TestPlanRepository_DeleteByUser(t *testing.T) {
	db := newTestDB(t)
	repo := db.Plans()
	ctx := context.Background()
	user := createUser(t, db, "delete@example.com")

	if err := repo.DeleteByUser(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a plan, got %v", err)
	}
	if err := repo.Create(ctx, samplePlan(user.ID)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.DeleteByUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	if _, err := repo.GetByUser(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	var items int
	if err := db.SqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM plan_items").Scan(&items); err != nil {
		t.Fatal(err)
	}
	if items != 0 {
		t.Fatalf("expected items to cascade, %d left", items)
	}

	// A new plan can be created after deleting the old one.
	if err := repo.Create(ctx, samplePlan(user.ID)); err != nil {
		t.Fatalf("Create after delete: %v", err)
	}
}
