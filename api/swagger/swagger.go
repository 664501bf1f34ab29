package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Escola API",
        "description": "School management core: grades, attendance, billing and report cards",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Grades", "description": "Grade launches and averages"},
        {"name": "Attendance", "description": "Attendance launches and frequency reports"},
        {"name": "Finance", "description": "Installments, receipts and delinquency"},
        {"name": "Reports", "description": "Report cards"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/notas/lancar": {
            "post": {
                "tags": ["Grades"],
                "summary": "Launch grades for a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LaunchGradesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Profile not allowed"},
                    "422": {"description": "Grade value out of range"}
                }
            }
        },
        "/notas": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grade entries",
                "parameters": [
                    {"name": "matricula_id", "in": "query", "type": "string"},
                    {"name": "disciplina_id", "in": "query", "type": "string"},
                    {"name": "periodo_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notas/media": {
            "get": {
                "tags": ["Grades"],
                "summary": "Final average for an enrollment and subject",
                "parameters": [
                    {"name": "matricula_id", "in": "query", "required": true, "type": "string"},
                    {"name": "disciplina_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No grades recorded"}
                }
            }
        },
        "/frequencia/lancar": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Launch attendance for a lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LaunchAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Profile not allowed"},
                    "422": {"description": "Invalid launch payload"}
                }
            }
        },
        "/frequencia/relatorio": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Class frequency report",
                "parameters": [
                    {"name": "turma_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/frequencia/relatorio/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Class frequency report as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "turma_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/financeiro/resumo": {
            "get": {
                "tags": ["Finance"],
                "summary": "Monthly financial summary",
                "parameters": [
                    {"name": "mes", "in": "query", "type": "string", "description": "YYYY-MM"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/financeiro/inadimplentes": {
            "get": {
                "tags": ["Finance"],
                "summary": "Delinquency listing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/financeiro/inadimplentes/export": {
            "get": {
                "tags": ["Finance"],
                "summary": "Delinquency listing as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/financeiro/recebimento": {
            "post": {
                "tags": ["Finance"],
                "summary": "Register a payment receipt",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterReceiptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Installment not receivable"},
                    "422": {"description": "Overpayment or invalid payload"}
                }
            }
        },
        "/financeiro/contratos/{id}/mensalidades": {
            "post": {
                "tags": ["Finance"],
                "summary": "Generate monthly installments for a contract",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateInstallmentsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/financeiro/mensalidades/{id}/cancelar": {
            "post": {
                "tags": ["Finance"],
                "summary": "Cancel a pending installment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Transition not allowed"}
                }
            }
        },
        "/financeiro/mensalidades/{id}/isentar": {
            "post": {
                "tags": ["Finance"],
                "summary": "Exempt an installment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Transition not allowed"}
                }
            }
        },
        "/financeiro/recibos/{id}/pdf": {
            "get": {
                "tags": ["Finance"],
                "summary": "Payment receipt document",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"},
                    "404": {"description": "Receipt not found"}
                }
            }
        },
        "/boletim/{matricula_id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Student report card",
                "parameters": [
                    {"name": "matricula_id", "in": "path", "required": true, "type": "string"},
                    {"name": "periodos", "in": "query", "type": "string", "description": "Comma-separated grading period IDs"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Enrollment not found"}
                }
            }
        },
        "/boletim/{matricula_id}/pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Student report card as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "matricula_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LaunchGradesRequest": {
            "type": "object",
            "required": ["disciplina_id", "periodo_id", "notas"],
            "properties": {
                "disciplina_id": {"type": "string"},
                "periodo_id": {"type": "string"},
                "notas": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "matricula_id": {"type": "string"},
                            "valor": {"type": "number"}
                        }
                    }
                }
            }
        },
        "LaunchAttendanceRequest": {
            "type": "object",
            "required": ["turma_id", "disciplina_id", "data_aula", "numero_aulas", "frequencias"],
            "properties": {
                "turma_id": {"type": "string"},
                "disciplina_id": {"type": "string"},
                "data_aula": {"type": "string", "format": "date"},
                "numero_aulas": {"type": "integer"},
                "frequencias": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "aluno_id": {"type": "string"},
                            "presente": {"type": "boolean"}
                        }
                    }
                }
            }
        },
        "RegisterReceiptRequest": {
            "type": "object",
            "required": ["mensalidade_id", "valor", "forma_pagamento", "data_recebimento"],
            "properties": {
                "mensalidade_id": {"type": "string"},
                "valor": {"type": "number"},
                "forma_pagamento": {"type": "string"},
                "data_recebimento": {"type": "string", "format": "date"}
            }
        },
        "GenerateInstallmentsRequest": {
            "type": "object",
            "properties": {
                "meses": {"type": "integer"},
                "competencia_inicial": {"type": "string", "description": "YYYY-MM"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
