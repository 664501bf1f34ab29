package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskForPercentage(t *testing.T) {
	assert.Equal(t, AttendanceRiskRegular, RiskForPercentage(100))
	assert.Equal(t, AttendanceRiskRegular, RiskForPercentage(75))
	assert.Equal(t, AttendanceRiskAttention, RiskForPercentage(74))
	assert.Equal(t, AttendanceRiskAttention, RiskForPercentage(60))
	assert.Equal(t, AttendanceRiskCritical, RiskForPercentage(59))
	assert.Equal(t, AttendanceRiskCritical, RiskForPercentage(0))
}
