package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSituationForAverage(t *testing.T) {
	tests := []struct {
		avg  float64
		want GradeSituation
	}{
		{10, GradeSituationPassed},
		{7.67, GradeSituationPassed},
		{7, GradeSituationPassed},
		{6.99, GradeSituationRemedial},
		{5, GradeSituationRemedial},
		{4.99, GradeSituationFailed},
		{0, GradeSituationFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SituationForAverage(tt.avg), "avg %.2f", tt.avg)
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 7.67, RoundHalfUp(23.0/3.0, 2))
	assert.Equal(t, 8.13, RoundHalfUp(8.125, 2))
	assert.Equal(t, 75.0, RoundHalfUp(74.5, 0))
	assert.Equal(t, 74.0, RoundHalfUp(74.4, 0))
	assert.Equal(t, 5.0, RoundHalfUp(5.0, 2))
}
