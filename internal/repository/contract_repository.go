package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sge-escolar/escola-api/internal/models"
)

// ContractRepository handles contract and payment-plan persistence.
type ContractRepository struct {
	db *sqlx.DB
}

// NewContractRepository creates a new contract repository.
func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// FindByID returns one contract.
func (r *ContractRepository) FindByID(ctx context.Context, id string) (*models.Contract, error) {
	const query = `SELECT id, enrollment_id, payment_plan_id, responsible, discount_pct, signed_at
        FROM contracts WHERE id = $1`
	var contract models.Contract
	if err := r.db.GetContext(ctx, &contract, query, id); err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindPlanByID returns one payment plan.
func (r *ContractRepository) FindPlanByID(ctx context.Context, id string) (*models.PaymentPlan, error) {
	const query = `SELECT id, name, monthly_value, due_day, created_at
        FROM payment_plans WHERE id = $1`
	var plan models.PaymentPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}
