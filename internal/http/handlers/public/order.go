package public

import (
	"strings"

	handlershared "github.com/rafflehouse-next/internal/http/handlers/shared"
	"github.com/rafflehouse-next/internal/http/response"
	"github.com/rafflehouse-next/internal/repository"
	"github.com/rafflehouse-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	PrizeType    string `json:"prize_type" binding:"required"`
	PrizeID      uint   `json:"prize_id" binding:"required"`
	NumOfTickets int    `json:"num_of_tickets" binding:"required"`
	GroupID      string `json:"group_id"`
	CouponCode   string `json:"coupon_code"`
	UseCredits   bool   `json:"use_credits"`
	AfterLogin   bool   `json:"after_login"`
	FromLanding  bool   `json:"from_landing"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:       uid,
		PrizeType:    strings.TrimSpace(req.PrizeType),
		PrizeID:      req.PrizeID,
		NumOfTickets: req.NumOfTickets,
		GroupID:      strings.TrimSpace(req.GroupID),
		CouponCode:   strings.TrimSpace(req.CouponCode),
		UseCredits:   req.UseCredits,
		AfterLogin:   req.AfterLogin,
		FromLanding:  req.FromLanding,
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	if order == nil {
		// 登录后补单场景下奖品已下架,静默跳过
		response.Success(c, nil)
		return
	}

	response.Success(c, order)
}

// CreateBonusOrderRequest 附赠订单请求
type CreateBonusOrderRequest struct {
	PrizeType    string `json:"prize_type" binding:"required"`
	PrizeID      uint   `json:"prize_id" binding:"required"`
	NumOfTickets int    `json:"num_of_tickets" binding:"required"`
	GroupID      string `json:"group_id"`
}

// CreateBonusOrder 创建附赠订单
func (h *Handler) CreateBonusOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateBonusOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CreateBonusOrder(uid, strings.TrimSpace(req.PrizeType), req.PrizeID, req.NumOfTickets, strings.TrimSpace(req.GroupID))
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 获取当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var query struct {
		Page          int    `form:"page"`
		PageSize      int    `form:"page_size"`
		PaymentStatus string `form:"payment_status"`
		PrizeType     string `form:"prize_type"`
		GroupID       string `form:"group_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	page, pageSize := handlershared.NormalizePagination(query.Page, query.PageSize)

	orders, total, err := h.OrderService.ListUserOrders(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        uid,
		PaymentStatus: strings.TrimSpace(query.PaymentStatus),
		PrizeType:     strings.TrimSpace(query.PrizeType),
		GroupID:       strings.TrimSpace(query.GroupID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}
