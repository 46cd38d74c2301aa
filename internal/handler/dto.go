package handler

import (
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// PlanItemDTO is one exercise of a plan, as posted by the plan builder.
type PlanItemDTO struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Value    int    `json:"value"`
	Unit     string `json:"unit"`
}

// PlanDTO is the JSON representation of a plan.
type PlanDTO struct {
	ID        int64         `json:"id"`
	Items     []PlanItemDTO `json:"items"`
	CreatedAt string        `json:"createdAt"`
}

func toPlanDTO(p *domain.Plan) PlanDTO {
	items := make([]PlanItemDTO, len(p.Items))
	for i, it := range p.Items {
		items[i] = PlanItemDTO{
			ID:       it.ID,
			Name:     it.Name,
			Category: string(it.Category),
			Value:    it.Value,
			Unit:     string(it.Unit),
		}
	}
	return PlanDTO{ID: p.ID, Items: items, CreatedAt: p.CreatedAt.Format(time.RFC3339)}
}

func fromPlanItemDTOs(dtos []PlanItemDTO) []domain.PlanItem {
	items := make([]domain.PlanItem, len(dtos))
	for i, d := range dtos {
		items[i] = domain.PlanItem{
			Name:     d.Name,
			Category: domain.Category(d.Category),
			Value:    d.Value,
			Unit:     domain.Unit(d.Unit),
		}
	}
	return items
}

type createPlanRequest struct {
	Items []PlanItemDTO `json:"items"`
}

type submitRequest struct {
	Report *domain.SessionReport `json:"report"`
}
