package public

import (
	"strings"

	"github.com/rafflehouse-next/internal/http/response"
	"github.com/rafflehouse-next/internal/payment/threeds"
	"github.com/rafflehouse-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 发起支付请求
type CheckoutRequest struct {
	GroupID string `json:"group_id" binding:"required"`
}

// Checkout 将订单组转入支付流程
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.OrderService.BeginPayment(uid, strings.TrimSpace(req.GroupID)); err != nil {
		respondPaymentVerifyError(c, err)
		return
	}

	response.Success(c, gin.H{"group_id": req.GroupID})
}

// VerifyPaymentRequest 支付核验请求
type VerifyPaymentRequest struct {
	GroupID   string `json:"group_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
}

// VerifyPayment 核验 3-D Secure 支付结果并结算订单组
func (h *Handler) VerifyPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	approval, err := threeds.Approve(c.Request.Context(), h.ThreeDSConfig, strings.TrimSpace(req.PaymentID))
	if err != nil {
		respondError(c, response.CodeBadRequest, "payment gateway verification failed", err)
		return
	}
	if !approval.Approved {
		respondPaymentVerifyError(c, service.ErrPaymentNotApproved)
		return
	}

	result, err := h.SettlementService.Verify(service.VerifyInput{
		UserID:        uid,
		GroupID:       strings.TrimSpace(req.GroupID),
		CheckoutID:    strings.TrimSpace(req.PaymentID),
		TransactionID: approval.TransactionID,
	})
	if err != nil {
		respondPaymentVerifyError(c, err)
		return
	}

	response.Success(c, result)
}
