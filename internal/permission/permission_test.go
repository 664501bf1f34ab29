package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sge-escolar/escola-api/internal/models"
)

func TestProfessorHasNoFinanceActions(t *testing.T) {
	finance := []Action{ViewFinanceSummary, ViewDelinquents, RegisterReceipt, GenerateCharges}
	for _, action := range finance {
		assert.False(t, Allowed(models.RoleProfessor, action), "professor should not hold %s", action)
	}
	assert.True(t, Allowed(models.RoleProfessor, LaunchGrades))
	assert.True(t, Allowed(models.RoleProfessor, LaunchAttendance))
	assert.True(t, Allowed(models.RoleProfessor, ViewBoletim))
}

func TestSecretariaCannotLaunch(t *testing.T) {
	assert.False(t, Allowed(models.RoleSecretaria, LaunchGrades))
	assert.False(t, Allowed(models.RoleSecretaria, LaunchAttendance))
	assert.True(t, Allowed(models.RoleSecretaria, ViewFinanceSummary))
	assert.True(t, Allowed(models.RoleSecretaria, RegisterReceipt))
	assert.True(t, Allowed(models.RoleSecretaria, ViewBoletim))
}

func TestFinanceiroIsFinanceOnly(t *testing.T) {
	assert.True(t, Allowed(models.RoleFinanceiro, ViewFinanceSummary))
	assert.True(t, Allowed(models.RoleFinanceiro, GenerateCharges))
	assert.False(t, Allowed(models.RoleFinanceiro, LaunchGrades))
	assert.False(t, Allowed(models.RoleFinanceiro, ViewBoletim))
}

func TestAdminHasEverything(t *testing.T) {
	for _, action := range []Action{
		LaunchGrades, LaunchAttendance, ViewAttendance,
		ViewFinanceSummary, ViewDelinquents, RegisterReceipt, GenerateCharges,
		ViewBoletim,
	} {
		assert.True(t, Allowed(models.RoleAdmin, action), "admin should hold %s", action)
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	assert.False(t, Allowed(models.UserRole("VISITANTE"), ViewBoletim))
	assert.Empty(t, Actions(models.UserRole("VISITANTE")))
}
