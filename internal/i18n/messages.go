package i18n

import "github.com/vendapay/internal/constants"

var messages = map[string]map[string]string{
	constants.LocalePtBR: {
		"error.bad_request":               "Requisição inválida",
		"error.unauthorized":              "Não autenticado",
		"error.token_invalid":             "Token inválido ou expirado",
		"error.forbidden":                 "Permissão negada",
		"error.not_found":                 "Registro não encontrado",
		"error.internal":                  "Erro interno do servidor",
		"error.too_many_requests":         "Muitas tentativas, tente novamente mais tarde",
		"error.login_too_many":            "Muitas tentativas de login, tente novamente em %d segundos",
		"error.token_revoked":             "Sessão encerrada, faça login novamente",
		"error.invalid_credentials":       "Usuário ou senha inválidos",
		"error.account_disabled":          "Conta desativada",
		"error.password_invalid":          "Senha atual incorreta",
		"error.password_unchanged":        "A nova senha deve ser diferente da atual",
		"error.password_min_length":       "A senha deve ter pelo menos %d caracteres",
		"error.password_require_upper":    "A senha deve conter letra maiúscula",
		"error.password_require_lower":    "A senha deve conter letra minúscula",
		"error.password_require_number":   "A senha deve conter número",
		"error.password_require_special":  "A senha deve conter caractere especial",
		"error.password_weak":             "A senha não atende à política de segurança",
		"error.username_exists":           "Nome de usuário já cadastrado",
		"error.username_required":         "Nome de usuário obrigatório",
		"error.document_exists":           "CPF/CNPJ já cadastrado",
		"error.document_invalid":          "CPF/CNPJ deve ter no máximo 14 caracteres",
		"error.role_invalid":              "Perfil inválido",
		"error.account_in_use":            "A conta possui vendas ou relatórios vinculados",
		"error.account_delete_self":       "Não é possível excluir a própria conta",
		"error.seller_not_found":          "Vendedor não encontrado",
		"error.sale_duplicate":            "Já existe um registro de venda para este vendedor nesta data",
		"error.sale_amount_invalid":       "O valor da venda não pode ser negativo",
		"error.sale_date_invalid":         "Data da venda inválida",
		"error.commission_rate_invalid":   "A taxa de comissão deve estar entre 0 e 100",
		"error.commission_rate_forbidden": "Vendedores não podem alterar a taxa de comissão",
		"error.report_duplicate":          "Já existe um relatório para este vendedor neste período",
		"error.report_period_invalid":     "Período do relatório inválido",
		"error.report_status_invalid":     "Status do relatório inválido",
		"error.report_status_transition":  "Mudança de status não permitida",
		"error.report_approver_required":  "Aprovador obrigatório",
		"error.report_export_failed":      "Falha ao exportar relatórios",
		"error.queue_enqueue_failed":      "Falha ao agendar a geração de relatórios",
		"success.logout":                  "Sessão encerrada",
		"success.password_changed":        "Senha alterada com sucesso",
	},
	constants.LocaleEnUS: {
		"error.bad_request":               "Invalid request",
		"error.unauthorized":              "Not authenticated",
		"error.token_invalid":             "Invalid or expired token",
		"error.forbidden":                 "Permission denied",
		"error.not_found":                 "Record not found",
		"error.internal":                  "Internal server error",
		"error.too_many_requests":         "Too many attempts, try again later",
		"error.login_too_many":            "Too many login attempts, try again in %d seconds",
		"error.token_revoked":             "Session revoked, please sign in again",
		"error.invalid_credentials":       "Invalid username or password",
		"error.account_disabled":          "Account is disabled",
		"error.password_invalid":          "Current password is incorrect",
		"error.password_unchanged":        "New password must differ from the current one",
		"error.password_min_length":       "Password must have at least %d characters",
		"error.password_require_upper":    "Password must contain an uppercase letter",
		"error.password_require_lower":    "Password must contain a lowercase letter",
		"error.password_require_number":   "Password must contain a number",
		"error.password_require_special":  "Password must contain a special character",
		"error.password_weak":             "Password does not meet the security policy",
		"error.username_exists":           "Username already exists",
		"error.username_required":         "Username is required",
		"error.document_exists":           "Document already registered",
		"error.document_invalid":          "Document must have at most 14 characters",
		"error.role_invalid":              "Invalid role",
		"error.account_in_use":            "Account still owns sales or reports",
		"error.account_delete_self":       "You cannot delete your own account",
		"error.seller_not_found":          "Seller not found",
		"error.sale_duplicate":            "A sale entry already exists for this seller and date",
		"error.sale_amount_invalid":       "Sale amount must not be negative",
		"error.sale_date_invalid":         "Invalid sale date",
		"error.commission_rate_invalid":   "Commission rate must be between 0 and 100",
		"error.commission_rate_forbidden": "Sellers cannot change the commission rate",
		"error.report_duplicate":          "A report already exists for this seller and period",
		"error.report_period_invalid":     "Invalid report period",
		"error.report_status_invalid":     "Invalid report status",
		"error.report_status_transition":  "Status change not allowed",
		"error.report_approver_required":  "Approver is required",
		"error.report_export_failed":      "Failed to export reports",
		"error.queue_enqueue_failed":      "Failed to schedule report generation",
		"success.logout":                  "Logged out",
		"success.password_changed":        "Password changed",
	},
}
