package service

import (
	"errors"
	"strings"
)

// 业务错误定义，handler 层通过 errors.Is 映射为响应码与文案
var (
	ErrNotFound                = errors.New("record not found")
	ErrSellerNotFound          = errors.New("seller not found")
	ErrDuplicateEntry          = errors.New("daily sale already registered for this seller and date")
	ErrDuplicateReport         = errors.New("commission report already exists for this seller and period")
	ErrInvalidAmount           = errors.New("sale amount must not be negative")
	ErrInvalidRate             = errors.New("commission rate must be between 0 and 100")
	ErrInvalidPeriod           = errors.New("invalid report period")
	ErrInvalidDate             = errors.New("invalid sale date")
	ErrInvalidStatus           = errors.New("invalid report status")
	ErrInvalidStatusTransition = errors.New("report status transition not allowed")
	ErrApproverRequired        = errors.New("approver is required")
	ErrForbidden               = errors.New("operation not allowed for current account")
	ErrRateEditForbidden       = errors.New("sellers cannot set the commission rate")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrInvalidPassword         = errors.New("current password is incorrect")
	ErrPasswordUnchanged       = errors.New("new password must differ from current password")
	ErrWeakPassword            = errors.New("password does not satisfy policy")
	ErrAccountDisabled         = errors.New("account is disabled")
	ErrAccountInUse            = errors.New("account still owns sales or reports")
	ErrUsernameExists          = errors.New("username already exists")
	ErrDocumentExists          = errors.New("document already registered")
	ErrInvalidDocument         = errors.New("document must have at most 14 characters")
	ErrInvalidUsername         = errors.New("username is required")
	ErrInvalidRole             = errors.New("invalid role")
	ErrCannotDeleteSelf        = errors.New("cannot delete own account")
	ErrExportFailed            = errors.New("export failed")
)

// isUniqueViolation 判断是否唯一约束冲突（兼容 sqlite 与 postgres 文案）
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
