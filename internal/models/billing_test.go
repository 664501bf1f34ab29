package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSituationForReceipts(t *testing.T) {
	assert.Equal(t, InstallmentPending, SituationForReceipts(1200, 0))
	assert.Equal(t, InstallmentPartial, SituationForReceipts(1200, 600))
	assert.Equal(t, InstallmentPaid, SituationForReceipts(1200, 1200))
	assert.Equal(t, InstallmentPaid, SituationForReceipts(1200, 1500))
}

func TestInstallmentTransitions(t *testing.T) {
	assert.True(t, InstallmentPending.CanTransitionTo(InstallmentPartial))
	assert.True(t, InstallmentPending.CanTransitionTo(InstallmentPaid))
	assert.True(t, InstallmentPending.CanTransitionTo(InstallmentCancelled))
	assert.True(t, InstallmentPending.CanTransitionTo(InstallmentExempt))
	assert.True(t, InstallmentPartial.CanTransitionTo(InstallmentPaid))
	assert.True(t, InstallmentPartial.CanTransitionTo(InstallmentExempt))

	assert.False(t, InstallmentPartial.CanTransitionTo(InstallmentCancelled))
	assert.False(t, InstallmentPaid.CanTransitionTo(InstallmentPending))
	assert.False(t, InstallmentPaid.CanTransitionTo(InstallmentCancelled))
	assert.False(t, InstallmentCancelled.CanTransitionTo(InstallmentPaid))
	assert.False(t, InstallmentExempt.CanTransitionTo(InstallmentPaid))
}

func TestReceivable(t *testing.T) {
	assert.True(t, InstallmentPending.Receivable())
	assert.True(t, InstallmentPartial.Receivable())
	assert.False(t, InstallmentPaid.Receivable())
	assert.False(t, InstallmentCancelled.Receivable())
	assert.False(t, InstallmentExempt.Receivable())
}
