package models

import "time"

// PaymentPlan is a reusable billing template attached to contracts.
type PaymentPlan struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	MonthlyValue float64   `db:"monthly_value" json:"monthly_value"`
	DueDay       int       `db:"due_day" json:"due_day"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Contract binds an enrollment to a payment plan and a responsible party.
type Contract struct {
	ID            string    `db:"id" json:"id"`
	EnrollmentID  string    `db:"enrollment_id" json:"enrollment_id"`
	PaymentPlanID string    `db:"payment_plan_id" json:"payment_plan_id"`
	Responsible   string    `db:"responsible" json:"responsible"`
	DiscountPct   float64   `db:"discount_pct" json:"discount_pct"`
	SignedAt      time.Time `db:"signed_at" json:"signed_at"`
}

// InstallmentSituation is the lifecycle status of a monthly charge.
type InstallmentSituation string

const (
	InstallmentPending   InstallmentSituation = "PENDENTE"
	InstallmentPartial   InstallmentSituation = "PARCIAL"
	InstallmentPaid      InstallmentSituation = "PAGA"
	InstallmentCancelled InstallmentSituation = "CANCELADA"
	InstallmentExempt    InstallmentSituation = "ISENTA"
)

// Valid returns true when the situation is a supported value.
func (s InstallmentSituation) Valid() bool {
	switch s {
	case InstallmentPending, InstallmentPartial, InstallmentPaid, InstallmentCancelled, InstallmentExempt:
		return true
	default:
		return false
	}
}

// CanTransitionTo guards the situation state machine:
// pending -> partial -> paid, pending -> cancelled,
// pending/partial -> exempt. Nothing leaves paid or cancelled.
func (s InstallmentSituation) CanTransitionTo(next InstallmentSituation) bool {
	switch s {
	case InstallmentPending:
		return next == InstallmentPartial || next == InstallmentPaid ||
			next == InstallmentCancelled || next == InstallmentExempt
	case InstallmentPartial:
		return next == InstallmentPaid || next == InstallmentExempt
	default:
		return false
	}
}

// Receivable reports whether the installment may still accept receipts.
func (s InstallmentSituation) Receivable() bool {
	return s == InstallmentPending || s == InstallmentPartial
}

// SituationForReceipts derives the situation as a pure function of the
// final value and the cumulative received amount. The stored situation is
// never mutated independently of this derivation.
func SituationForReceipts(finalValue, received float64) InstallmentSituation {
	switch {
	case received >= finalValue:
		return InstallmentPaid
	case received > 0:
		return InstallmentPartial
	default:
		return InstallmentPending
	}
}

// Installment is one month's tuition charge derived from a contract.
type Installment struct {
	ID         string               `db:"id" json:"id"`
	ContractID string               `db:"contract_id" json:"contract_id"`
	Competence string               `db:"competence" json:"competence"`
	DueDate    time.Time            `db:"due_date" json:"due_date"`
	Value      float64              `db:"value" json:"value"`
	Situation  InstallmentSituation `db:"situation" json:"situation"`
	CreatedAt  time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `db:"updated_at" json:"updated_at"`
}

// Receipt is an immutable record of money received against an installment.
type Receipt struct {
	ID            string    `db:"id" json:"id"`
	InstallmentID string    `db:"installment_id" json:"installment_id"`
	Amount        float64   `db:"amount" json:"amount"`
	Method        string    `db:"method" json:"method"`
	ReceivedAt    time.Time `db:"received_at" json:"received_at"`
	RecordedBy    string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ReceiptDetail enriches a receipt with installment and student context.
type ReceiptDetail struct {
	Receipt
	Competence  string  `db:"competence"`
	StudentName string  `db:"student_name"`
	Responsible string  `db:"responsible"`
	RecorderName string `db:"recorder_name"`
}

// OverdueInstallment is one overdue row feeding the delinquency grouping.
type OverdueInstallment struct {
	InstallmentID string    `db:"installment_id"`
	EnrollmentID  string    `db:"enrollment_id"`
	StudentName   string    `db:"student_name"`
	Responsible   string    `db:"responsible"`
	Competence    string    `db:"competence"`
	DueDate       time.Time `db:"due_date"`
	Value         float64   `db:"value"`
	Received      float64   `db:"received"`
}

// DelinquentRow is the aggregated per-student delinquency listing entry.
type DelinquentRow struct {
	EnrollmentID  string    `json:"matricula_id"`
	StudentName   string    `json:"aluno"`
	Responsible   string    `json:"responsavel"`
	MonthsOverdue int       `json:"meses"`
	TotalOwed     float64   `json:"valor_total"`
	OldestDueDate time.Time `json:"vencimento_mais_antigo"`
}

// FinanceSummary aggregates the monthly financial position.
type FinanceSummary struct {
	ReferenceMonth  string  `json:"mes_referencia"`
	ExpectedTotal   float64 `json:"total_previsto"`
	ReceivedTotal   float64 `json:"total_recebido"`
	DelinquentTotal float64 `json:"total_inadimplencia"`
	DelinquentCount int     `json:"qtd_inadimplentes"`
}
