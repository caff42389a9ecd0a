//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/user"
	"smartpark/internal/handler/api"
	resdto "smartpark/internal/handler/dto/response"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/queries"
	"smartpark/tests/common/builder"
	"smartpark/tests/common/httptest"
	"smartpark/tests/common/testutil"
	commandsmock "smartpark/tests/mock/commands"
	queriesmock "smartpark/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	actor        user.Actor
}

func (s *BookingHandlerTestSuite) SetupTest() {
	s.router = newTestRouter()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries, time.UTC)
	s.actor = user.Actor{ID: uuid.New(), Role: user.RoleCustomer, Email: "driver@example.com"}

	auth := mockAuth(&s.actor)
	s.router.POST("/bookings", auth, s.handler.Create)
	s.router.GET("/bookings", auth, s.handler.ListMine)
	s.router.GET("/bookings/:id", auth, s.handler.Get)
	s.router.PUT("/bookings/:id", auth, s.handler.Edit)
	s.router.POST("/bookings/:id/cancel", auth, s.handler.Cancel)
	s.router.DELETE("/bookings/:id", auth, s.handler.Delete)
	s.router.GET("/admin/bookings", auth, s.handler.ListForOperator)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

type testCaseBooking struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreate() {
	url := "/bookings"
	b := builder.NewBookingBuilder()
	reqBody := b.BuildCreateRequestDTO()
	result := &commands.CreateBookingResult{
		BookingID:   b.ID,
		Status:      booking.StatusPending,
		TotalAmount: 9000,
		Currency:    "inr",
		SessionID:   "cs_test_1",
		CheckoutURL: "https://checkout.test/pay/cs_test_1",
	}

	validation := []testCaseBooking{
		{name: "plate with spaces OK", mutate: testutil.Field("vehicle_plate", "KA 01 AB 1234"), expectCode: http.StatusCreated},
		{name: "invalid plate", mutate: testutil.Field("vehicle_plate", "#!"), expectCode: http.StatusBadRequest},
		{name: "phone with separators OK", mutate: testutil.Field("phone", "(080) 1234-5678"), expectCode: http.StatusCreated},
		{name: "phone too short", mutate: testutil.Field("phone", "12345"), expectCode: http.StatusBadRequest},
		{name: "missing field: location_id", mutate: testutil.Field("location_id", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: start_time", mutate: testutil.Field("start_time", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: end_time", mutate: testutil.Field("end_time", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: vehicle_plate", mutate: testutil.Field("vehicle_plate", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: phone", mutate: testutil.Field("phone", nil), expectCode: http.StatusBadRequest},
		{name: "malformed start_time", mutate: testutil.Field("start_time", "tomorrow"), expectCode: http.StatusBadRequest},
	}

	s.Run("success: returns 201 with the checkout url", func() {
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), reqBody, s.actor, (*uuid.UUID)(nil)).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")

		var body resdto.BookingCreatedResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(b.ID, body.BookingID)
		s.Equal("pending", body.Status)
		s.Equal(int64(9000), body.TotalAmount)
		s.Equal(result.CheckoutURL, body.CheckoutURL)
		s.Empty(rec.Header().Get("Idempotent-Replayed"))
	})

	s.Run("success: replay returns 200 with header", func() {
		key := uuid.New()
		replayed := *result
		replayed.IsReplayed = true
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), reqBody, s.actor, &key).
			Return(&replayed, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "token",
			map[string]string{"Idempotency-Key": key.String()})

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Idempotent-Replayed": "true"})
	})

	s.Run("error: 400 on malformed idempotency key", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "token",
			map[string]string{"Idempotency-Key": "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "idempotency key")
	})

	s.Run("error: 400 on validation errors", func() {
		for _, tc := range validation {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				if tc.expectCode == http.StatusCreated {
					s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
						Return(result, nil).Times(1)
				}
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "token")
				if tc.expectCode == http.StatusCreated {
					httptest.AssertSuccessResponse(s.T(), rec, tc.expectCode, nil)
				} else {
					httptest.AssertErrorCode(s.T(), rec, tc.expectCode, "invalid_input")
				}
			})
		}
	})

	s.Run("error: use case errors map onto status codes", func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{commands.ErrCapacityExceeded, http.StatusConflict, "conflict"},
			{commands.ErrDuplicateBooking, http.StatusConflict, "conflict"},
			{commands.ErrIdempotencyInProgress, http.StatusConflict, "conflict"},
			{commands.ErrLocationNotFound, http.StatusNotFound, "not_found"},
			{commands.ErrInvalidTimeSlot, http.StatusBadRequest, "invalid_input"},
			{commands.ErrPaymentProvider, http.StatusBadGateway, "external_dependency"},
		}
		for _, tc := range cases {
			s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, tc.err).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
			httptest.AssertErrorCode(s.T(), rec, tc.status, tc.code)
		}
	})

	s.Run("error: 401 without token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

// ================================================================================
// TestListMine / TestGet
// ================================================================================

func (s *BookingHandlerTestSuite) TestListMine() {
	view := builder.NewBookingBuilder().AsBooked("cs_test_1").BuildView()

	s.Run("success: first page with next cursor", func() {
		next := &queries.Cursor{After: "abc"}
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.actor.ID, (*queries.Cursor)(nil), 0).
			Return([]*queries.BookingView{view}, next, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings", nil, "token")

		var body resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.Bookings, 1)
		s.Equal(view.ID, body.Bookings[0].ID)
		s.Equal("booked", body.Bookings[0].Status)
		s.Require().NotNil(body.NextCursor)
		s.Equal("abc", *body.NextCursor)
	})

	s.Run("success: cursor and limit are passed through", func() {
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.actor.ID, &queries.Cursor{After: "abc"}, 5).
			Return(nil, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?cursor=abc&limit=5", nil, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 on limit above 100", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?limit=101", nil, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "invalid_input")
	})

	s.Run("error: 400 on bad cursor", func() {
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, queries.ErrInvalidCursor).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?cursor=zzz", nil, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "invalid_input")
	})
}

func (s *BookingHandlerTestSuite) TestGet() {
	view := builder.NewBookingBuilder().BuildView()

	s.Run("success", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.actor, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+view.ID.String(), nil, "token")

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		if diff := cmp.Diff(resdto.FromBookingView(view), &body); diff != "" {
			s.Fail("response mismatch (-want +got)", diff)
		}
	})

	s.Run("error: 400 on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/42", nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
	})

	s.Run("error: 403 for someone else's booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, queries.ErrBookingAccess).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+uuid.NewString(), nil, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusForbidden, "forbidden")
	})

	s.Run("error: 404", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, queries.ErrBookingNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+uuid.NewString(), nil, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "not_found")
	})
}

// ================================================================================
// TestEdit
// ================================================================================

func (s *BookingHandlerTestSuite) TestEdit() {
	id := uuid.New()
	reqBody := builder.NewBookingBuilder().BuildEditRequestDTO()
	url := "/bookings/" + id.String()

	s.Run("success: applied edit has code 0", func() {
		s.mockCommands.EXPECT().EditBooking(gomock.Any(), id, reqBody, s.actor).
			Return(&commands.EditBookingResult{BookingID: id, Outcome: commands.EditApplied, NewTotal: 6000, Currency: "inr"}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "token")

		var body resdto.BookingEditedResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(0, body.Code)
		s.Equal("applied", body.Outcome)
		s.Equal(int64(6000), body.NewTotal)
		s.Empty(body.CheckoutURL)
	})

	s.Run("success: paid edit has code 100 and a url", func() {
		s.mockCommands.EXPECT().EditBooking(gomock.Any(), id, gomock.Any(), s.actor).
			Return(&commands.EditBookingResult{
				BookingID:   id,
				Outcome:     commands.EditPaymentRequired,
				NewTotal:    15000,
				AmountDue:   9000,
				Currency:    "inr",
				SessionID:   "cs_test_2",
				CheckoutURL: "https://checkout.test/pay/cs_test_2",
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "token")

		var body resdto.BookingEditedResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(100, body.Code)
		s.Equal(int64(9000), body.AmountDue)
		s.Equal("https://checkout.test/pay/cs_test_2", body.CheckoutURL)
	})

	s.Run("error: 400 on missing end_time", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("end_time", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, requestMap, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "invalid_input")
	})

	s.Run("error: use case errors", func() {
		cases := []struct {
			err    error
			status int
		}{
			{commands.ErrBookingAccess, http.StatusForbidden},
			{commands.ErrBookingCancelled, http.StatusConflict},
			{commands.ErrCapacityExceeded, http.StatusConflict},
			{commands.ErrBookingNotFound, http.StatusNotFound},
		}
		for _, tc := range cases {
			s.mockCommands.EXPECT().EditBooking(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, tc.err).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, "token")
			s.Equal(tc.status, rec.Code, rec.Body.String())
		}
	})
}

// ================================================================================
// TestCancel / TestDelete / TestListForOperator
// ================================================================================

func (s *BookingHandlerTestSuite) TestCancel() {
	id := uuid.New()

	s.mockCommands.EXPECT().CancelBooking(gomock.Any(), id, s.actor).
		Return(&commands.CancelBookingResult{BookingID: id, AlreadyCancelled: true}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel", nil, "token")

	var body resdto.BookingCancelledResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal(id, body.BookingID)
	s.True(body.AlreadyCancelled)
}

func (s *BookingHandlerTestSuite) TestDelete() {
	id := uuid.New()

	s.Run("success", func() {
		s.mockCommands.EXPECT().DeleteBooking(gomock.Any(), id, s.actor).
			Return(&commands.DeleteBookingResult{BookingID: id, ReleasedCapacity: true}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/bookings/"+id.String(), nil, "token")

		var body resdto.BookingDeletedResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.ReleasedCapacity)
	})

	s.Run("error: 403 for customers", func() {
		s.mockCommands.EXPECT().DeleteBooking(gomock.Any(), id, s.actor).Return(nil, commands.ErrBookingAccess).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/bookings/"+id.String(), nil, "token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusForbidden, "forbidden")
	})
}

func (s *BookingHandlerTestSuite) TestListForOperator() {
	locationID := uuid.New()

	s.Run("success: filter is built from the query", func() {
		want := queries.BookingFilter{
			Date:       time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC),
			LocationID: &locationID,
			Status:     "pending",
		}
		s.mockQueries.EXPECT().ListForOperator(gomock.Any(), want).
			Return([]*queries.BookingView{builder.NewBookingBuilder().BuildView()}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/admin/bookings?date=2030-01-02&status=pending&location_id="+locationID.String(), nil, "token")

		var body []resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 1)
	})

	cases := []struct {
		name  string
		query string
	}{
		{name: "missing date", query: ""},
		{name: "malformed date", query: "?date=02-01-2030"},
		{name: "unknown status", query: "?date=2030-01-02&status=expired"},
		{name: "malformed location id", query: "?date=2030-01-02&location_id=abc"},
	}
	for _, tc := range cases {
		s.Run("error: "+tc.name, func() {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/bookings"+tc.query, nil, "token")
			httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "invalid_input")
		})
	}
}
