package shared

import (
	"errors"

	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// CommonErrorRules 各业务接口共享的错误映射
var CommonErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrSellerNotFound, Code: response.CodeBadRequest, Key: "error.seller_not_found"},
	{Target: service.ErrDuplicateEntry, Code: response.CodeConflict, Key: "error.sale_duplicate"},
	{Target: service.ErrDuplicateReport, Code: response.CodeConflict, Key: "error.report_duplicate"},
	{Target: service.ErrInvalidAmount, Code: response.CodeBadRequest, Key: "error.sale_amount_invalid"},
	{Target: service.ErrInvalidRate, Code: response.CodeBadRequest, Key: "error.commission_rate_invalid"},
	{Target: service.ErrRateEditForbidden, Code: response.CodeForbidden, Key: "error.commission_rate_forbidden"},
	{Target: service.ErrInvalidDate, Code: response.CodeBadRequest, Key: "error.sale_date_invalid"},
	{Target: service.ErrInvalidPeriod, Code: response.CodeBadRequest, Key: "error.report_period_invalid"},
	{Target: service.ErrInvalidStatus, Code: response.CodeBadRequest, Key: "error.report_status_invalid"},
	{Target: service.ErrInvalidStatusTransition, Code: response.CodeBadRequest, Key: "error.report_status_transition"},
	{Target: service.ErrApproverRequired, Code: response.CodeBadRequest, Key: "error.report_approver_required"},
	{Target: service.ErrExportFailed, Code: response.CodeInternal, Key: "error.report_export_failed"},
	{Target: service.ErrUsernameExists, Code: response.CodeConflict, Key: "error.username_exists"},
	{Target: service.ErrDocumentExists, Code: response.CodeConflict, Key: "error.document_exists"},
	{Target: service.ErrInvalidDocument, Code: response.CodeBadRequest, Key: "error.document_invalid"},
	{Target: service.ErrInvalidUsername, Code: response.CodeBadRequest, Key: "error.username_required"},
	{Target: service.ErrInvalidRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: service.ErrAccountInUse, Code: response.CodeConflict, Key: "error.account_in_use"},
	{Target: service.ErrCannotDeleteSelf, Code: response.CodeBadRequest, Key: "error.account_delete_self"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_invalid"},
	{Target: service.ErrPasswordUnchanged, Code: response.CodeBadRequest, Key: "error.password_unchanged"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrAccountDisabled, Code: response.CodeUnauthorized, Key: "error.account_disabled"},
}

// RespondWithMappedError 按规则映射业务错误，未命中时返回兜底错误并记录原始错误。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	if RespondPasswordPolicyError(c, err) {
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// RespondServiceError 使用通用规则映射业务错误
func RespondServiceError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, CommonErrorRules, response.CodeInternal, "error.internal")
}
