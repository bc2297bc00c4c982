package public

import (
	"errors"

	"github.com/rafflehouse-next/internal/http/response"
	"github.com/rafflehouse-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPrizeTypeInvalid, code: response.CodeBadRequest, msg: "prize type invalid"},
	{target: service.ErrOrderQuantityInvalid, code: response.CodeBadRequest, msg: "ticket quantity invalid"},
	{target: service.ErrTicketLimitExceeded, code: response.CodeBadRequest, msg: "ticket quantity exceeds the per-order limit"},
	{target: service.ErrPrizeNotFound, code: response.CodeNotFound, msg: "prize not found"},
	{target: service.ErrPrizeUnavailable, code: response.CodeBadRequest, msg: "prize is not available"},
	{target: service.ErrFixedOddsLimitExceeded, code: response.CodeBadRequest, msg: "instant win spend limit exceeded"},
	{target: service.ErrNotEnoughTickets, code: response.CodeBadRequest, msg: "not enough tickets remaining"},
	{target: service.ErrCreditInsufficient, code: response.CodeBadRequest, msg: "not enough credits"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, msg: "basket total below coupon minimum"},
	{target: service.ErrSettingsInvalid, code: response.CodeInternal, msg: "pricing settings unavailable"},
}

var paymentVerifyErrorRules = []mappedHandlerError{
	{target: service.ErrOrderGroupNotFound, code: response.CodeNotFound, msg: "order group not found"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "user not found"},
	{target: service.ErrPaymentNotApproved, code: response.CodeBadRequest, msg: "payment was not approved"},
	{target: service.ErrSettingsInvalid, code: response.CodeInternal, msg: "pricing settings unavailable"},
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
}

func respondPaymentVerifyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentVerifyErrorRules, response.CodeInternal, "payment verify failed")
}
