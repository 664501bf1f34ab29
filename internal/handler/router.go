package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sge-escolar/escola-api/internal/middleware"
	"github.com/sge-escolar/escola-api/internal/permission"
	"github.com/sge-escolar/escola-api/internal/service"
)

// RouterDeps bundles everything route registration needs.
type RouterDeps struct {
	Auth       *AuthHandler
	Grades     *GradeHandler
	Attendance *AttendanceHandler
	Billing    *BillingHandler
	Reports    *ReportHandler

	AuthService *service.AuthService
}

// RegisterRoutes mounts the API surface under the given prefix. Every
// protected route names the capability it performs; the permission table
// decides which profiles may pass.
func RegisterRoutes(r *gin.Engine, prefix string, deps RouterDeps) {
	api := r.Group(prefix)

	api.POST("/auth/login", deps.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.AuthService))

	authed.GET("/auth/me", deps.Auth.Me)

	authed.POST("/notas/lancar", middleware.Authorize(permission.LaunchGrades), deps.Grades.Launch)
	authed.GET("/notas", middleware.Authorize(permission.ViewBoletim), deps.Grades.List)
	authed.GET("/notas/media", middleware.Authorize(permission.ViewBoletim), deps.Grades.FinalAverage)

	authed.POST("/frequencia/lancar", middleware.Authorize(permission.LaunchAttendance), deps.Attendance.Launch)
	authed.GET("/frequencia/relatorio", middleware.Authorize(permission.ViewAttendance), deps.Attendance.Report)
	authed.GET("/frequencia/relatorio/export", middleware.Authorize(permission.ViewAttendance), deps.Attendance.ReportCSV)

	authed.GET("/financeiro/resumo", middleware.Authorize(permission.ViewFinanceSummary), deps.Billing.Summary)
	authed.GET("/financeiro/inadimplentes", middleware.Authorize(permission.ViewDelinquents), deps.Billing.Delinquents)
	authed.GET("/financeiro/inadimplentes/export", middleware.Authorize(permission.ViewDelinquents), deps.Billing.DelinquentsCSV)
	authed.POST("/financeiro/recebimento", middleware.Authorize(permission.RegisterReceipt), deps.Billing.RegisterReceipt)
	authed.GET("/financeiro/recibos/:id/pdf", middleware.Authorize(permission.RegisterReceipt), deps.Billing.ReceiptPDF)
	authed.POST("/financeiro/contratos/:id/mensalidades", middleware.Authorize(permission.GenerateCharges), deps.Billing.GenerateInstallments)
	authed.POST("/financeiro/mensalidades/:id/cancelar", middleware.Authorize(permission.GenerateCharges), deps.Billing.Cancel)
	authed.POST("/financeiro/mensalidades/:id/isentar", middleware.Authorize(permission.GenerateCharges), deps.Billing.Exempt)

	authed.GET("/boletim/:matricula_id", middleware.Authorize(permission.ViewBoletim), deps.Reports.Boletim)
	authed.GET("/boletim/:matricula_id/pdf", middleware.Authorize(permission.ViewBoletim), deps.Reports.BoletimPDF)
}
