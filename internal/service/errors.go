package service

import "errors"

// 业务错误定义
var (
	ErrPrizeTypeInvalid       = errors.New("prize type invalid")
	ErrOrderQuantityInvalid   = errors.New("order quantity invalid")
	ErrTicketLimitExceeded    = errors.New("ticket limit per order exceeded")
	ErrPrizeNotFound          = errors.New("prize not found")
	ErrPrizeUnavailable       = errors.New("prize unavailable")
	ErrFixedOddsLimitExceeded = errors.New("fixed odds spending limit exceeded")
	ErrNotEnoughTickets       = errors.New("not enough tickets left")
	ErrOrderGroupNotFound     = errors.New("order group not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrCouponNotFound         = errors.New("coupon not found")
	ErrCouponInactive         = errors.New("coupon inactive")
	ErrCouponMinAmount        = errors.New("coupon minimum basket amount not reached")
	ErrCreditInsufficient     = errors.New("credit balance insufficient")
	ErrUserNotFound           = errors.New("user not found")
	ErrAuthFailed             = errors.New("invalid email or password")
	ErrPaymentNotApproved     = errors.New("payment not approved")
	ErrSettingsInvalid        = errors.New("settings invalid")
)

// 邮件相关错误定义
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
