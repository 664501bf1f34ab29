package permission

import "github.com/sge-escolar/escola-api/internal/models"

// Action tags every protected entry point. Authorization is a pure lookup
// on the role -> action table below, independent of any user representation.
type Action string

const (
	LaunchGrades       Action = "notas.lancar"
	LaunchAttendance   Action = "frequencia.lancar"
	ViewAttendance     Action = "frequencia.relatorio"
	ViewFinanceSummary Action = "financeiro.resumo"
	ViewDelinquents    Action = "financeiro.inadimplentes"
	RegisterReceipt    Action = "financeiro.recebimento"
	GenerateCharges    Action = "financeiro.gerar"
	ViewBoletim        Action = "boletim.visualizar"
)

var table = map[models.UserRole]map[Action]struct{}{
	models.RoleAdmin: actionSet(
		LaunchGrades, LaunchAttendance, ViewAttendance,
		ViewFinanceSummary, ViewDelinquents, RegisterReceipt, GenerateCharges,
		ViewBoletim,
	),
	models.RoleSecretaria: actionSet(
		ViewAttendance, ViewFinanceSummary, ViewDelinquents,
		RegisterReceipt, GenerateCharges, ViewBoletim,
	),
	models.RoleCoordenacao: actionSet(
		LaunchGrades, LaunchAttendance, ViewAttendance, ViewBoletim,
	),
	models.RoleProfessor: actionSet(
		LaunchGrades, LaunchAttendance, ViewAttendance, ViewBoletim,
	),
	models.RoleFinanceiro: actionSet(
		ViewFinanceSummary, ViewDelinquents, RegisterReceipt, GenerateCharges,
	),
}

// Allowed reports whether the role may perform the action.
func Allowed(role models.UserRole, action Action) bool {
	actions, ok := table[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

// Actions lists the actions granted to a role. Useful for introspection
// endpoints and tests.
func Actions(role models.UserRole) []Action {
	actions := table[role]
	result := make([]Action, 0, len(actions))
	for action := range actions {
		result = append(result, action)
	}
	return result
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, action := range actions {
		set[action] = struct{}{}
	}
	return set
}
