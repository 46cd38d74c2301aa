package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

// PlanRepository implements domain.PlanRepository using SQLite.
type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *DB) *PlanRepository {
	return &PlanRepository{db: db.SqlDB}
}

// Create stores the plan and its items atomically. A second plan for the
// same user fails with domain.ErrPlanExists.
func (r *PlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO plans (user_id, created_at) VALUES (?, ?)`, plan.UserID, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrPlanExists
		}
		return fmt.Errorf("insert plan: %w", err)
	}
	planID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get plan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO plan_items (plan_id, name, category, value, unit, sort_order) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare plan item insert: %w", err)
	}
	defer stmt.Close()

	for i := range plan.Items {
		it := &plan.Items[i]
		res, err := stmt.ExecContext(ctx, planID, it.Name, it.Category, it.Value, it.Unit, it.SortOrder)
		if err != nil {
			return fmt.Errorf("insert plan item %d: %w", i, err)
		}
		if it.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("get plan item id: %w", err)
		}
		it.PlanID = planID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit plan: %w", err)
	}
	plan.ID = planID
	plan.CreatedAt = now
	return nil
}

func (r *PlanRepository) GetByUser(ctx context.Context, userID int64) (*domain.Plan, error) {
	plan := &domain.Plan{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM plans WHERE user_id = ?`, userID,
	).Scan(&plan.ID, &plan.UserID, &plan.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query plan: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, name, category, value, unit, sort_order
		 FROM plan_items WHERE plan_id = ? ORDER BY sort_order, id`, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("query plan items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.PlanItem
		if err := rows.Scan(&it.ID, &it.PlanID, &it.Name, &it.Category, &it.Value, &it.Unit, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("scan plan item: %w", err)
		}
		plan.Items = append(plan.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan items: %w", err)
	}
	return plan, nil
}

// DeleteByUser removes the user's plan; items go with it by cascade.
func (r *PlanRepository) DeleteByUser(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
