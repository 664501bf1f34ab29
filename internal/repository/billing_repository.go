package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sge-escolar/escola-api/internal/models"
)

// Sentinel errors surfaced by the transactional receipt flow. The service
// layer maps them onto the HTTP error taxonomy.
var (
	ErrInstallmentNotReceivable = errors.New("installment is not receivable")
	ErrOverpayment              = errors.New("receipt exceeds installment balance")
)

// BillingRepository persists installments and receipts.
type BillingRepository struct {
	db *sqlx.DB
}

// NewBillingRepository constructs the repository.
func NewBillingRepository(db *sqlx.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// FindInstallment returns one installment.
func (r *BillingRepository) FindInstallment(ctx context.Context, id string) (*models.Installment, error) {
	const query = `SELECT id, contract_id, competence, due_date, value, situation, created_at, updated_at
        FROM installments WHERE id = $1`
	var installment models.Installment
	if err := r.db.GetContext(ctx, &installment, query, id); err != nil {
		return nil, err
	}
	return &installment, nil
}

// ExistingCompetences returns the competence months already generated for
// a contract.
func (r *BillingRepository) ExistingCompetences(ctx context.Context, contractID string) (map[string]bool, error) {
	const query = `SELECT competence FROM installments WHERE contract_id = $1`
	var competences []string
	if err := r.db.SelectContext(ctx, &competences, query, contractID); err != nil {
		return nil, fmt.Errorf("list competences: %w", err)
	}
	existing := make(map[string]bool, len(competences))
	for _, c := range competences {
		existing[c] = true
	}
	return existing, nil
}

// InsertInstallments writes a batch of generated installments in one
// transaction.
func (r *BillingRepository) InsertInstallments(ctx context.Context, installments []models.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO installments (id, contract_id, competence, due_date, value, situation, created_at, updated_at)
        VALUES (:id, :contract_id, :competence, :due_date, :value, :situation, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range installments {
		if installments[i].ID == "" {
			installments[i].ID = uuid.NewString()
		}
		installments[i].CreatedAt = now
		installments[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, installments[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert installment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit installments: %w", err)
	}
	return nil
}

// ApplyReceipt records a receipt against an installment inside a single
// transaction. The installment row is locked with SELECT ... FOR UPDATE so
// concurrent receipts against the same installment serialize; the stored
// situation is recomputed from (value, sum of receipts) under the lock.
func (r *BillingRepository) ApplyReceipt(ctx context.Context, receipt *models.Receipt) (*models.Installment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	const lockQuery = `SELECT id, contract_id, competence, due_date, value, situation, created_at, updated_at
        FROM installments WHERE id = $1 FOR UPDATE`
	var installment models.Installment
	if err := tx.GetContext(ctx, &installment, lockQuery, receipt.InstallmentID); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, err
	}

	if !installment.Situation.Receivable() {
		tx.Rollback() //nolint:errcheck
		return &installment, ErrInstallmentNotReceivable
	}

	var received float64
	const sumQuery = `SELECT COALESCE(SUM(amount), 0) FROM receipts WHERE installment_id = $1`
	if err := tx.GetContext(ctx, &received, sumQuery, receipt.InstallmentID); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("sum receipts: %w", err)
	}

	if received+receipt.Amount > installment.Value {
		tx.Rollback() //nolint:errcheck
		return &installment, ErrOverpayment
	}

	now := time.Now().UTC()
	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}
	receipt.CreatedAt = now
	const insertQuery = `INSERT INTO receipts (id, installment_id, amount, method, received_at, recorded_by, created_at)
        VALUES (:id, :installment_id, :amount, :method, :received_at, :recorded_by, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, receipt); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("insert receipt: %w", err)
	}

	next := models.SituationForReceipts(installment.Value, received+receipt.Amount)
	if next != installment.Situation {
		if !installment.Situation.CanTransitionTo(next) {
			tx.Rollback() //nolint:errcheck
			return &installment, ErrInstallmentNotReceivable
		}
		const updateQuery = `UPDATE installments SET situation = $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, updateQuery, installment.ID, next, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("update installment situation: %w", err)
		}
		installment.Situation = next
		installment.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit receipt: %w", err)
	}
	return &installment, nil
}

// UpdateSituation applies an administrative transition (cancel, exempt)
// guarded by the state machine.
func (r *BillingRepository) UpdateSituation(ctx context.Context, id string, next models.InstallmentSituation) (*models.Installment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	const lockQuery = `SELECT id, contract_id, competence, due_date, value, situation, created_at, updated_at
        FROM installments WHERE id = $1 FOR UPDATE`
	var installment models.Installment
	if err := tx.GetContext(ctx, &installment, lockQuery, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, err
	}
	if !installment.Situation.CanTransitionTo(next) {
		tx.Rollback() //nolint:errcheck
		return &installment, ErrInstallmentNotReceivable
	}
	now := time.Now().UTC()
	const updateQuery = `UPDATE installments SET situation = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, id, next, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("update installment situation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit situation update: %w", err)
	}
	installment.Situation = next
	installment.UpdatedAt = now
	return &installment, nil
}

// ListOverdue returns installments past due and still receivable,
// enriched with student and responsible party for grouping.
func (r *BillingRepository) ListOverdue(ctx context.Context, today time.Time) ([]models.OverdueInstallment, error) {
	const query = `SELECT i.id AS installment_id, e.id AS enrollment_id, st.full_name AS student_name,
        c.responsible, i.competence, i.due_date, i.value,
        COALESCE((SELECT SUM(rc.amount) FROM receipts rc WHERE rc.installment_id = i.id), 0) AS received
        FROM installments i
        JOIN contracts c ON c.id = i.contract_id
        JOIN enrollments e ON e.id = c.enrollment_id
        JOIN students st ON st.id = e.student_id
        WHERE i.due_date < $1 AND i.situation IN ($2, $3)
        ORDER BY i.due_date`
	var overdue []models.OverdueInstallment
	if err := r.db.SelectContext(ctx, &overdue, query, today, models.InstallmentPending, models.InstallmentPartial); err != nil {
		return nil, fmt.Errorf("list overdue installments: %w", err)
	}
	return overdue, nil
}

// ExpectedInMonth sums the final values of installments due inside the range.
func (r *BillingRepository) ExpectedInMonth(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `SELECT COALESCE(SUM(value), 0) FROM installments
        WHERE due_date >= $1 AND due_date < $2 AND situation NOT IN ($3, $4)`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, from, to, models.InstallmentCancelled, models.InstallmentExempt); err != nil {
		return 0, fmt.Errorf("sum expected: %w", err)
	}
	return total, nil
}

// ReceivedInMonth sums the receipts dated inside the range.
func (r *BillingRepository) ReceivedInMonth(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM receipts
        WHERE received_at >= $1 AND received_at < $2`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, from, to); err != nil {
		return 0, fmt.Errorf("sum received: %w", err)
	}
	return total, nil
}

// FindReceiptDetail returns a receipt with installment and student context
// for document rendering.
func (r *BillingRepository) FindReceiptDetail(ctx context.Context, receiptID string) (*models.ReceiptDetail, error) {
	const query = `SELECT rc.id, rc.installment_id, rc.amount, rc.method, rc.received_at, rc.recorded_by, rc.created_at,
        i.competence, st.full_name AS student_name, c.responsible, u.full_name AS recorder_name
        FROM receipts rc
        JOIN installments i ON i.id = rc.installment_id
        JOIN contracts c ON c.id = i.contract_id
        JOIN enrollments e ON e.id = c.enrollment_id
        JOIN students st ON st.id = e.student_id
        JOIN users u ON u.id = rc.recorded_by
        WHERE rc.id = $1`
	var detail models.ReceiptDetail
	if err := r.db.GetContext(ctx, &detail, query, receiptID); err != nil {
		return nil, err
	}
	return &detail, nil
}
