package public

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rafflehouse-next/internal/cache"
	handlershared "github.com/rafflehouse-next/internal/http/handlers/shared"
	"github.com/rafflehouse-next/internal/http/response"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/repository"

	"github.com/gin-gonic/gin"
)

const prizeDetailCacheTTL = time.Minute

// GetPrizes 获取上架奖品列表
func (h *Handler) GetPrizes(c *gin.Context) {
	var query struct {
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
		Type     string `form:"type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	page, pageSize := handlershared.NormalizePagination(query.Page, query.PageSize)

	prizes, total, err := h.PrizeRepo.ListActive(repository.PrizeListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     strings.TrimSpace(query.Type),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "prize list failed", err)
		return
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, prizes, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetPrizeByID 获取奖品详情
func (h *Handler) GetPrizeByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "prize id invalid", err)
		return
	}

	cacheKey := fmt.Sprintf("prize:%d", id)
	var cached models.Prize
	if hit, cacheErr := cache.GetJSON(c.Request.Context(), cacheKey, &cached); cacheErr == nil && hit {
		response.Success(c, cached)
		return
	}

	prize, err := h.PrizeRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "prize fetch failed", err)
		return
	}
	if prize == nil {
		respondError(c, response.CodeNotFound, "prize not found", nil)
		return
	}
	_ = cache.SetJSON(c.Request.Context(), cacheKey, prize, prizeDetailCacheTTL)

	response.Success(c, prize)
}
