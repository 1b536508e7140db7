package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "flashsale-api/internal/handler/dto/request"
	resdto "flashsale-api/internal/handler/dto/response"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/internal/usecase/commands"
	"flashsale-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PromotionHandler struct {
	promotionCommands commands.PromotionCommands
	promotionQueries  queries.PromotionQueries
}

func NewPromotionHandler(promotionCommands commands.PromotionCommands, promotionQueries queries.PromotionQueries) *PromotionHandler {
	return &PromotionHandler{
		promotionCommands: promotionCommands,
		promotionQueries:  promotionQueries,
	}
}

// @Summary Create promotion
// @Description Create a promotion and publish it for sale
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreatePromotionRequest true "Promotion request"
// @Success 201 {object} resdto.PromotionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /promotions [post]
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req reqdto.CreatePromotionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.promotionCommands.CreatePromotion(c.Request.Context(), req.Title, req.Stock, req.BeginTime, req.EndTime)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidSaleWindow):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid promotion parameters",
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

	c.JSON(http.StatusCreated, resdto.FromPromotionView(view))
}

// @Summary Get promotion
// @Description Get promotion by ID through the pass-through cache
// @Tags promotions
// @Produce json
// @Param id path string true "Promotion ID"
// @Success 200 {object} resdto.PromotionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /promotions/{id} [get]
func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid promotion ID format",
		})
		return
	}

	view, err := h.promotionQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.renderQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromPromotionView(view))
}

// @Summary Get hot promotion
// @Description Get a pre-warmed promotion; stale values are served while a rebuild runs
// @Tags promotions
// @Produce json
// @Param id path string true "Promotion ID"
// @Success 200 {object} resdto.PromotionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /promotions/{id}/hot [get]
func (h *PromotionHandler) GetHotPromotion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid promotion ID format",
		})
		return
	}

	view, err := h.promotionQueries.GetHotByID(c.Request.Context(), id)
	if err != nil {
		h.renderQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromPromotionView(view))
}

func (h *PromotionHandler) renderQueryError(c *gin.Context, err error) {
	if errors.Is(err, errs.ErrPromotionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Promotion not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}
