package api

import (
	"errors"
	"net/http"
	"strconv"

	resdto "flashsale-api/internal/handler/dto/response"
	"flashsale-api/internal/handler/middleware"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type SeckillHandler struct {
	seckillCommands commands.SeckillCommands
}

func NewSeckillHandler(seckillCommands commands.SeckillCommands) *SeckillHandler {
	return &SeckillHandler{
		seckillCommands: seckillCommands,
	}
}

// @Summary Submit seckill order
// @Description Attempt to claim one unit of a flash-sale promotion
// @Tags seckill
// @Produce json
// @Security BearerAuth
// @Param promotionId path string true "Promotion ID"
// @Success 200 {object} resdto.SeckillOrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /seckill/{promotionId} [post]
func (h *SeckillHandler) SubmitOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	promotionID, err := strconv.ParseUint(c.Param("promotionId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid promotion ID format",
		})
		return
	}

	orderID, err := h.seckillCommands.SubmitOrder(c.Request.Context(), userID, promotionID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSeckillNotStarted):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Sale has not started",
			})
		case errors.Is(err, errs.ErrSeckillEnded):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Sale has ended",
			})
		case errors.Is(err, errs.ErrSoldOut):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Promotion is sold out",
			})
		case errors.Is(err, errs.ErrDuplicateOrder):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order already placed for this promotion",
			})
		case errors.Is(err, errs.ErrSystemBusy):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Service temporarily unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderID(orderID))
}
