//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"flashsale-api/internal/handler/api"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/internal/usecase/queries"
	"flashsale-api/tests/common/httptest"
	commandsmock "flashsale-api/tests/mock/commands"
	queriesmock "flashsale-api/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PromotionHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPromotionCommands
	mockQueries  *queriesmock.MockPromotionQueries
	handler      *api.PromotionHandler
}

func (s *PromotionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPromotionCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockPromotionQueries(s.mockCtrl)
	s.handler = api.NewPromotionHandler(s.mockCommands, s.mockQueries)

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("user_id", uint64(1))
		c.Next()
	}

	s.router.POST("/promotions", authMiddleware, s.handler.CreatePromotion)
	s.router.GET("/promotions/:id", s.handler.GetPromotion)
	s.router.GET("/promotions/:id/hot", s.handler.GetHotPromotion)
}

func (s *PromotionHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPromotionHandlerSuite(t *testing.T) {
	suite.Run(t, new(PromotionHandlerTestSuite))
}

func sampleView() *queries.PromotionView {
	begin := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return &queries.PromotionView{
		ID:        9001,
		Title:     "autumn drop",
		Stock:     100,
		BeginTime: begin,
		EndTime:   begin.Add(time.Hour),
		CreatedAt: begin.Add(-24 * time.Hour),
	}
}

func (s *PromotionHandlerTestSuite) TestCreatePromotion() {
	view := sampleView()
	reqBody := map[string]any{
		"title":      view.Title,
		"stock":      view.Stock,
		"begin_time": view.BeginTime,
		"end_time":   view.EndTime,
	}

	s.Run("success: returns 201 Created with string id", func() {
		s.mockCommands.EXPECT().CreatePromotion(gomock.Any(), view.Title, view.Stock, gomock.Any(), gomock.Any()).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/promotions", reqBody, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal("9001", body["id"])
	})

	s.Run("error: 400 Bad Request on missing fields", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/promotions", map[string]any{"title": "x"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 400 Bad Request on invalid sale window", func() {
		s.mockCommands.EXPECT().CreatePromotion(gomock.Any(), view.Title, view.Stock, gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrInvalidSaleWindow).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/promotions", reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid promotion")
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/promotions", reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

func (s *PromotionHandlerTestSuite) TestGetPromotion() {
	view := sampleView()

	s.Run("success: returns 200 OK", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), uint64(9001)).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/promotions/9001", nil, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.Title, body["title"])
	})

	s.Run("error: 404 Not Found for unknown promotion", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), uint64(9001)).Return(nil, errs.ErrPromotionNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/promotions/9001", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "not found")
	})

	s.Run("error: 400 Bad Request on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/promotions/abc", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid promotion ID")
	})
}

func (s *PromotionHandlerTestSuite) TestGetHotPromotion() {
	view := sampleView()

	s.Run("success: returns 200 OK from the hot path", func() {
		s.mockQueries.EXPECT().GetHotByID(gomock.Any(), uint64(9001)).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/promotions/9001/hot", nil, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("9001", body["id"])
	})

	s.Run("error: 404 Not Found when never warmed", func() {
		s.mockQueries.EXPECT().GetHotByID(gomock.Any(), uint64(9001)).Return(nil, errs.ErrPromotionNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/promotions/9001/hot", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "not found")
	})
}
