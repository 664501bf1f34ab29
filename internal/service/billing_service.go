package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sge-escolar/escola-api/internal/models"
	"github.com/sge-escolar/escola-api/internal/repository"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
)

const financeSummaryCachePrefix = "finance:resumo:"

type billingRepository interface {
	FindInstallment(ctx context.Context, id string) (*models.Installment, error)
	ExistingCompetences(ctx context.Context, contractID string) (map[string]bool, error)
	InsertInstallments(ctx context.Context, installments []models.Installment) error
	ApplyReceipt(ctx context.Context, receipt *models.Receipt) (*models.Installment, error)
	UpdateSituation(ctx context.Context, id string, next models.InstallmentSituation) (*models.Installment, error)
	ListOverdue(ctx context.Context, today time.Time) ([]models.OverdueInstallment, error)
	ExpectedInMonth(ctx context.Context, from, to time.Time) (float64, error)
	ReceivedInMonth(ctx context.Context, from, to time.Time) (float64, error)
	FindReceiptDetail(ctx context.Context, receiptID string) (*models.ReceiptDetail, error)
}

type contractReader interface {
	FindByID(ctx context.Context, id string) (*models.Contract, error)
	FindPlanByID(ctx context.Context, id string) (*models.PaymentPlan, error)
}

// RegisterReceiptRequest carries a payment registration.
type RegisterReceiptRequest struct {
	InstallmentID string  `json:"mensalidade_id" validate:"required"`
	Amount        float64 `json:"valor" validate:"required,gt=0"`
	Method        string  `json:"forma_pagamento" validate:"required"`
	ReceivedAt    string  `json:"data_recebimento" validate:"required,datetime=2006-01-02"`
}

// GenerateInstallmentsRequest scopes installment generation for a contract.
type GenerateInstallmentsRequest struct {
	Months         int    `json:"meses" validate:"omitempty,min=1,max=24"`
	FirstCompetence string `json:"competencia_inicial" validate:"omitempty,datetime=2006-01"`
}

// BillingService implements tuition generation, receipt registration and
// delinquency derivation.
type BillingService struct {
	repo          billingRepository
	contracts     contractReader
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	defaultMonths int
	now           func() time.Time
}

// NewBillingService constructs the billing service.
func NewBillingService(repo billingRepository, contracts contractReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, defaultMonths int) *BillingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMonths <= 0 {
		defaultMonths = 12
	}
	return &BillingService{
		repo:          repo,
		contracts:     contracts,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		defaultMonths: defaultMonths,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RegisterReceipt records a payment against an installment. The whole
// read-modify-write runs inside one repository transaction with the
// installment row locked, so concurrent receipts serialize and the
// partial/paid derivation never runs on a stale cumulative total.
func (s *BillingService) RegisterReceipt(ctx context.Context, actor *models.JWTClaims, req RegisterReceiptRequest) (*models.Receipt, *models.Installment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid receipt payload")
	}
	receivedAt, err := time.Parse("2006-01-02", req.ReceivedAt)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "data_recebimento must be YYYY-MM-DD")
	}

	recordedBy := ""
	if actor != nil {
		recordedBy = actor.UserID
	}
	receipt := &models.Receipt{
		InstallmentID: req.InstallmentID,
		Amount:        req.Amount,
		Method:        req.Method,
		ReceivedAt:    receivedAt,
		RecordedBy:    recordedBy,
	}

	installment, err := s.repo.ApplyReceipt(ctx, receipt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		case errors.Is(err, repository.ErrInstallmentNotReceivable):
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidState,
				fmt.Sprintf("installment is %s and cannot receive payments", installment.Situation))
		case errors.Is(err, repository.ErrOverpayment):
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "receipt exceeds the installment balance")
		default:
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register receipt")
		}
	}

	s.metrics.CountReceipt()
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, financeSummaryCachePrefix+"*")
	}

	s.logger.Info("receipt registered",
		zap.String("installment_id", installment.ID),
		zap.Float64("amount", req.Amount),
		zap.String("situation", string(installment.Situation)),
	)
	return receipt, installment, nil
}

// GenerateInstallments derives one installment per competence month from
// the contract's payment plan. Months already generated are skipped, so
// re-running generation is idempotent.
func (s *BillingService) GenerateInstallments(ctx context.Context, contractID string, req GenerateInstallmentsRequest) ([]models.Installment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	contract, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contract not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contract")
	}
	plan, err := s.contracts.FindPlanByID(ctx, contract.PaymentPlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment plan")
	}

	months := req.Months
	if months == 0 {
		months = s.defaultMonths
	}
	first := time.Date(contract.SignedAt.Year(), contract.SignedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
	if req.FirstCompetence != "" {
		first, err = time.Parse("2006-01", req.FirstCompetence)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "competencia_inicial must be YYYY-MM")
		}
	}

	existing, err := s.repo.ExistingCompetences(ctx, contractID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect generated installments")
	}

	value := models.RoundHalfUp(plan.MonthlyValue*(1-contract.DiscountPct/100), 2)
	installments := make([]models.Installment, 0, months)
	for i := 0; i < months; i++ {
		competence := first.AddDate(0, i, 0)
		key := competence.Format("2006-01")
		if existing[key] {
			continue
		}
		installments = append(installments, models.Installment{
			ContractID: contractID,
			Competence: key,
			DueDate:    dueDateFor(competence, plan.DueDay),
			Value:      value,
			Situation:  models.InstallmentPending,
		})
	}
	if len(installments) == 0 {
		return nil, nil
	}
	if err := s.repo.InsertInstallments(ctx, installments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate installments")
	}

	s.logger.Info("installments generated",
		zap.String("contract_id", contractID),
		zap.Int("count", len(installments)),
	)
	return installments, nil
}

// CancelInstallment transitions a pending installment to cancelled.
func (s *BillingService) CancelInstallment(ctx context.Context, id string) (*models.Installment, error) {
	return s.transition(ctx, id, models.InstallmentCancelled)
}

// ExemptInstallment transitions a pending/partial installment to exempt.
func (s *BillingService) ExemptInstallment(ctx context.Context, id string) (*models.Installment, error) {
	return s.transition(ctx, id, models.InstallmentExempt)
}

func (s *BillingService) transition(ctx context.Context, id string, next models.InstallmentSituation) (*models.Installment, error) {
	installment, err := s.repo.UpdateSituation(ctx, id, next)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		case errors.Is(err, repository.ErrInstallmentNotReceivable):
			return nil, appErrors.Clone(appErrors.ErrInvalidState,
				fmt.Sprintf("cannot move installment from %s to %s", installment.Situation, next))
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update installment")
		}
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, financeSummaryCachePrefix+"*")
	}
	return installment, nil
}

// Delinquents scans overdue, still-receivable installments and groups
// them per student. Months overdue counts distinct overdue competence
// months; total owed sums (value - received). The listing orders worst
// offenders first: total owed descending, months overdue breaking ties.
func (s *BillingService) Delinquents(ctx context.Context) ([]models.DelinquentRow, error) {
	overdue, err := s.repo.ListOverdue(ctx, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overdue installments")
	}

	type bucket struct {
		row    models.DelinquentRow
		months map[string]bool
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0)
	for _, inst := range overdue {
		b, ok := buckets[inst.EnrollmentID]
		if !ok {
			b = &bucket{
				row: models.DelinquentRow{
					EnrollmentID:  inst.EnrollmentID,
					StudentName:   inst.StudentName,
					Responsible:   inst.Responsible,
					OldestDueDate: inst.DueDate,
				},
				months: make(map[string]bool),
			}
			buckets[inst.EnrollmentID] = b
			order = append(order, inst.EnrollmentID)
		}
		b.months[inst.Competence] = true
		b.row.TotalOwed = models.RoundHalfUp(b.row.TotalOwed+(inst.Value-inst.Received), 2)
		if inst.DueDate.Before(b.row.OldestDueDate) {
			b.row.OldestDueDate = inst.DueDate
		}
	}

	rows := make([]models.DelinquentRow, 0, len(buckets))
	for _, id := range order {
		b := buckets[id]
		b.row.MonthsOverdue = len(b.months)
		rows = append(rows, b.row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalOwed != rows[j].TotalOwed {
			return rows[i].TotalOwed > rows[j].TotalOwed
		}
		return rows[i].MonthsOverdue > rows[j].MonthsOverdue
	})
	return rows, nil
}

// MonthlySummary aggregates the financial position for a reference month:
// expected total due in the month, receipts dated in the month, and the
// current delinquency totals. Pure query; cached per month when enabled.
func (s *BillingService) MonthlySummary(ctx context.Context, month string) (*models.FinanceSummary, error) {
	if month == "" {
		month = s.now().Format("2006-01")
	}
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mes must be YYYY-MM")
	}
	to := from.AddDate(0, 1, 0)

	cacheKey := financeSummaryCachePrefix + month
	var cached models.FinanceSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	expected, err := s.repo.ExpectedInMonth(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum expected values")
	}
	received, err := s.repo.ReceivedInMonth(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum received values")
	}
	delinquents, err := s.Delinquents(ctx)
	if err != nil {
		return nil, err
	}
	delinquentTotal := 0.0
	for _, row := range delinquents {
		delinquentTotal += row.TotalOwed
	}

	summary := &models.FinanceSummary{
		ReferenceMonth:  month,
		ExpectedTotal:   models.RoundHalfUp(expected, 2),
		ReceivedTotal:   models.RoundHalfUp(received, 2),
		DelinquentTotal: models.RoundHalfUp(delinquentTotal, 2),
		DelinquentCount: len(delinquents),
	}
	_ = s.cache.Set(ctx, cacheKey, summary, 0)
	return summary, nil
}

// ReceiptDocument loads the enriched receipt used for document rendering.
func (s *BillingService) ReceiptDocument(ctx context.Context, receiptID string) (*models.ReceiptDetail, error) {
	detail, err := s.repo.FindReceiptDetail(ctx, receiptID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receipt")
	}
	return detail, nil
}

// dueDateFor places the due day inside the competence month, clamping to
// the month's last day for short months.
func dueDateFor(competence time.Time, dueDay int) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	lastDay := competence.AddDate(0, 1, -1).Day()
	if dueDay > lastDay {
		dueDay = lastDay
	}
	return time.Date(competence.Year(), competence.Month(), dueDay, 0, 0, 0, 0, time.UTC)
}
