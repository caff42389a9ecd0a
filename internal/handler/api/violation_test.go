//go:build unit

package api_test

import (
	"net/http"
	"strings"
	"testing"

	"smartpark/internal/domain/user"
	"smartpark/internal/handler/api"
	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/usecase/commands"
	"smartpark/tests/common/httptest"
	"smartpark/tests/common/testutil"
	commandsmock "smartpark/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ViolationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockViolationCommands
	actor        user.Actor
}

func (s *ViolationHandlerTestSuite) SetupTest() {
	s.router = newTestRouter()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockViolationCommands(s.mockCtrl)
	s.actor = user.Actor{ID: uuid.New(), Role: user.RoleCustomer, Email: "driver@example.com"}

	h := api.NewViolationHandler(s.mockCommands)
	s.router.POST("/violations", mockAuth(&s.actor), h.Report)
}

func (s *ViolationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestViolationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ViolationHandlerTestSuite))
}

func (s *ViolationHandlerTestSuite) TestReport() {
	url := "/violations"
	reqBody := reqdto.ReportViolationRequest{VehiclePlate: "MH12DE1433", LocationID: uuid.New()}

	cases := []struct {
		name       string
		mutate     func(m map[string]any)
		expectCode int
	}{
		{name: "description length OK (1000 chars)", mutate: testutil.Field("description", strings.Repeat("a", 1000)), expectCode: http.StatusAccepted},
		{name: "description length invalid (1001 chars)", mutate: testutil.Field("description", strings.Repeat("a", 1001)), expectCode: http.StatusBadRequest},
		{name: "invalid plate", mutate: testutil.Field("vehicle_plate", "?"), expectCode: http.StatusBadRequest},
		{name: "missing field: vehicle_plate", mutate: testutil.Field("vehicle_plate", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: location_id", mutate: testutil.Field("location_id", nil), expectCode: http.StatusBadRequest},
		{name: "observed_at OK", mutate: testutil.Field("observed_at", "2030-01-01T08:15:00Z"), expectCode: http.StatusAccepted},
	}

	s.Run("success: returns 202", func() {
		s.mockCommands.EXPECT().ReportViolation(gomock.Any(), reqBody, s.actor).Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		s.Equal(http.StatusAccepted, rec.Code)
	})

	for _, tc := range cases {
		s.Run(tc.name, func() {
			if tc.expectCode == http.StatusAccepted {
				s.mockCommands.EXPECT().ReportViolation(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
			}
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, testutil.DtoMap(s.T(), reqBody, tc.mutate), "token")
			if tc.expectCode == http.StatusAccepted {
				s.Equal(tc.expectCode, rec.Code)
			} else {
				httptest.AssertErrorCode(s.T(), rec, tc.expectCode, "invalid_input")
			}
		})
	}

	s.Run("error: 502 without a violation inbox", func() {
		s.mockCommands.EXPECT().ReportViolation(gomock.Any(), gomock.Any(), gomock.Any()).Return(commands.ErrViolationNoInbox).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadGateway, "external_dependency")
	})

	s.Run("error: 404 for unknown location", func() {
		s.mockCommands.EXPECT().ReportViolation(gomock.Any(), gomock.Any(), gomock.Any()).Return(commands.ErrLocationNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "not_found")
	})
}
