//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"flashsale-api/internal/handler/api"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/tests/common/httptest"
	commandsmock "flashsale-api/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SeckillHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockSeckillCommands
	handler      *api.SeckillHandler
}

func (s *SeckillHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockSeckillCommands(s.mockCtrl)
	s.handler = api.NewSeckillHandler(s.mockCommands)

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("user_id", uint64(42))
		c.Next()
	}

	s.router.POST("/seckill/:promotionId", authMiddleware, s.handler.SubmitOrder)
}

func (s *SeckillHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSeckillHandlerSuite(t *testing.T) {
	suite.Run(t, new(SeckillHandlerTestSuite))
}

func (s *SeckillHandlerTestSuite) TestSubmitOrder() {
	url := "/seckill/7001"

	s.Run("success: returns 200 OK with the accepted order id", func() {
		s.mockCommands.EXPECT().SubmitOrder(gomock.Any(), uint64(42), uint64(7001)).
			Return(uint64(123456789), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("123456789", body["order_id"])
	})

	s.Run("error: 400 Bad Request on malformed promotion id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/seckill/not-a-number", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid promotion ID")
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "sale not started",
				commandsError:  errs.ErrSeckillNotStarted,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "not started",
			},
			{
				name:           "sale ended",
				commandsError:  errs.ErrSeckillEnded,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "ended",
			},
			{
				name:           "sold out",
				commandsError:  errs.ErrSoldOut,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "sold out",
			},
			{
				name:           "duplicate order",
				commandsError:  errs.ErrDuplicateOrder,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "already placed",
			},
			{
				name:           "system busy",
				commandsError:  errs.ErrSystemBusy,
				expectedStatus: http.StatusServiceUnavailable,
				expectedMsg:    "temporarily unavailable",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("redis connection reset"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().SubmitOrder(gomock.Any(), uint64(42), uint64(7001)).
					Return(uint64(0), tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}
