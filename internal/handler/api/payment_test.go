//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"smartpark/internal/handler/api"
	resdto "smartpark/internal/handler/dto/response"
	"smartpark/internal/usecase/commands"
	"smartpark/tests/common/httptest"
	commandsmock "smartpark/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPaymentCommands
	handler      *api.PaymentHandler
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	s.router = newTestRouter()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPaymentCommands(s.mockCtrl)
	s.handler = api.NewPaymentHandler(s.mockCommands)

	s.router.GET("/payments/checkout/result", s.handler.CheckoutResult)
	s.router.POST("/payments/webhook", s.handler.Webhook)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) TestCheckoutResult() {
	bookingID := uuid.New()

	s.Run("success", func() {
		s.mockCommands.EXPECT().ReconcileSession(gomock.Any(), "cs_test_1").
			Return(&commands.ReconcileResult{SessionID: "cs_test_1", BookingID: bookingID, Outcome: commands.ReconcileConfirmed}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/payments/checkout/result?session_id=cs_test_1", nil, "")

		var body resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(resdto.ReconcileResponse{SessionID: "cs_test_1", BookingID: bookingID, Outcome: "confirmed"}, body)
	})

	s.Run("error: 400 without session id", func() {
		s.mockCommands.EXPECT().ReconcileSession(gomock.Any(), "").Return(nil, commands.ErrMissingSessionID).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/payments/checkout/result", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "session_id is required")
	})

	s.Run("error: 502 when the processor fails", func() {
		s.mockCommands.EXPECT().ReconcileSession(gomock.Any(), "cs_x").Return(nil, commands.ErrPaymentProvider).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/payments/checkout/result?session_id=cs_x", nil, "")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadGateway, "external_dependency")
	})
}

func (s *PaymentHandlerTestSuite) TestWebhook() {
	payload := []byte(`{"type":"checkout.session.completed"}`)

	s.Run("success: raw body and signature reach the use case", func() {
		s.mockCommands.EXPECT().HandleWebhook(gomock.Any(), payload, "t=1,v1=abc").
			Return(&commands.ReconcileResult{SessionID: "cs_test_1", Outcome: commands.ReconcileReplayed}, nil).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/payments/webhook", payload,
			map[string]string{"Stripe-Signature": "t=1,v1=abc"})

		var body struct {
			Received bool                      `json:"received"`
			Result   *resdto.ReconcileResponse `json:"result"`
		}
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.Received)
		s.Require().NotNil(body.Result)
		s.Equal("replayed", body.Result.Outcome)
	})

	s.Run("success: ignored event", func() {
		s.mockCommands.EXPECT().HandleWebhook(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/payments/webhook", payload, nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"received":true}`, rec.Body.String())
	})

	s.Run("error: 400 on bad signature", func() {
		s.mockCommands.EXPECT().HandleWebhook(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, commands.ErrInvalidWebhook).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/payments/webhook", payload,
			map[string]string{"Stripe-Signature": "forged"})
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "invalid_input")
	})
}
