package public

import (
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/service"

	handlershared "github.com/vendapay/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

var loginErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrAccountDisabled, Code: response.CodeUnauthorized, Key: "error.account_disabled"},
}

func respondLoginError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.internal")
}
