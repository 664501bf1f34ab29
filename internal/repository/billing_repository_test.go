package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sge-escolar/escola-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func installmentRows(situation models.InstallmentSituation, value float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "contract_id", "competence", "due_date", "value", "situation", "created_at", "updated_at"}).
		AddRow("i1", "c1", "2026-03", now, value, string(situation), now, now)
}

func TestApplyReceiptFullPayment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM installments WHERE id = .* FOR UPDATE").
		WillReturnRows(installmentRows(models.InstallmentPending, 1200))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM receipts`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec("INSERT INTO receipts").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE installments SET situation").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	receipt := &models.Receipt{InstallmentID: "i1", Amount: 1200, Method: "pix", ReceivedAt: time.Now()}
	installment, err := repo.ApplyReceipt(context.Background(), receipt)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPaid, installment.Situation)
	assert.NotEmpty(t, receipt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReceiptPartialPayment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM installments WHERE id = .* FOR UPDATE").
		WillReturnRows(installmentRows(models.InstallmentPending, 1200))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM receipts`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec("INSERT INTO receipts").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE installments SET situation").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	receipt := &models.Receipt{InstallmentID: "i1", Amount: 500, Method: "dinheiro", ReceivedAt: time.Now()}
	installment, err := repo.ApplyReceipt(context.Background(), receipt)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPartial, installment.Situation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReceiptRejectsPaidInstallment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM installments WHERE id = .* FOR UPDATE").
		WillReturnRows(installmentRows(models.InstallmentPaid, 1200))
	mock.ExpectRollback()

	receipt := &models.Receipt{InstallmentID: "i1", Amount: 100, Method: "pix", ReceivedAt: time.Now()}
	installment, err := repo.ApplyReceipt(context.Background(), receipt)
	assert.ErrorIs(t, err, ErrInstallmentNotReceivable)
	require.NotNil(t, installment)
	assert.Equal(t, models.InstallmentPaid, installment.Situation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReceiptRejectsOverpayment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM installments WHERE id = .* FOR UPDATE").
		WillReturnRows(installmentRows(models.InstallmentPartial, 1200))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM receipts`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(600))
	mock.ExpectRollback()

	receipt := &models.Receipt{InstallmentID: "i1", Amount: 700, Method: "pix", ReceivedAt: time.Now()}
	_, err := repo.ApplyReceipt(context.Background(), receipt)
	assert.ErrorIs(t, err, ErrOverpayment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSituationGuardsStateMachine(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM installments WHERE id = .* FOR UPDATE").
		WillReturnRows(installmentRows(models.InstallmentPaid, 1200))
	mock.ExpectRollback()

	_, err := repo.UpdateSituation(context.Background(), "i1", models.InstallmentCancelled)
	assert.ErrorIs(t, err, ErrInstallmentNotReceivable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertInstallmentsAssignsIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO installments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO installments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	installments := []models.Installment{
		{ContractID: "c1", Competence: "2026-03", DueDate: time.Now(), Value: 1140, Situation: models.InstallmentPending},
		{ContractID: "c1", Competence: "2026-04", DueDate: time.Now(), Value: 1140, Situation: models.InstallmentPending},
	}
	err := repo.InsertInstallments(context.Background(), installments)
	require.NoError(t, err)
	assert.NotEmpty(t, installments[0].ID)
	assert.NotEmpty(t, installments[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOverdue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	due := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"installment_id", "enrollment_id", "student_name", "responsible", "competence", "due_date", "value", "received"}).
		AddRow("i1", "e1", "Ana Souza", "Paulo Souza", "2026-02", due, 1200.0, 300.0)
	mock.ExpectQuery("SELECT i.id AS installment_id").WillReturnRows(rows)

	overdue, err := repo.ListOverdue(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "e1", overdue[0].EnrollmentID)
	assert.Equal(t, 300.0, overdue[0].Received)
	assert.NoError(t, mock.ExpectationsWereMet())
}
