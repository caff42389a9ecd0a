//go:build e2e

package booking_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"smartpark/internal/domain/user"
	reqdto "smartpark/internal/handler/dto/request"
	resdto "smartpark/internal/handler/dto/response"
	"smartpark/tests/common/authtest"
	"smartpark/tests/common/dbtest"
	"smartpark/tests/common/httptest"
	"smartpark/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	bookingsURL       = "/api/bookings"
	bookingURL        = "/api/bookings/%s"
	cancelURL         = "/api/bookings/%s/cancel"
	checkoutResultURL = "/api/payments/checkout/result?session_id=%s"
	locationURL       = "/api/locations/%s"
)

type BookingSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func (s *BookingSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) customerToken(t *testing.T) (uuid.UUID, string) {
	id := uuid.New()
	return id, s.jwt.GenerateToken(t, id, user.RoleCustomer, "driver@example.com")
}

// slot starts two days out on a whole hour so it is always in the future.
func slot(startHour, minutes int) (time.Time, time.Time) {
	day := time.Now().UTC().Add(48 * time.Hour).Truncate(24 * time.Hour)
	start := day.Add(time.Duration(startHour) * time.Hour)
	return start, start.Add(time.Duration(minutes) * time.Minute)
}

func createBody(locationID uuid.UUID, start, end time.Time) reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		LocationID:   locationID,
		StartTime:    start,
		EndTime:      end,
		VehiclePlate: "KA01AB1234",
		Phone:        "+919876543210",
	}
}

func (s *BookingSuite) create(t *testing.T, token string, body reqdto.CreateBookingRequest) resdto.BookingCreatedResponse {
	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, bookingsURL, body, token,
		map[string]string{"Idempotency-Key": uuid.NewString()})
	var created resdto.BookingCreatedResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
	return created
}

func (s *BookingSuite) TestCheckoutFlow() {
	s.Run("Normal case: paid checkout confirms the booking", func() {
		t := s.T()
		locationID := dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)
		_, token := s.customerToken(t)
		start, end := slot(10, 90)

		created := s.create(t, token, createBody(locationID, start, end))
		assert.Equal(t, "pending", created.Status)
		assert.Equal(t, int64(9000), created.TotalAmount)
		require.NotEmpty(t, created.SessionID)
		assert.NotEmpty(t, created.CheckoutURL)

		s.Gateway.Pay(created.SessionID)
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(checkoutResultURL, created.SessionID), nil, token)
		var reconciled resdto.ReconcileResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &reconciled)
		assert.Equal(t, "confirmed", reconciled.Outcome)
		assert.Equal(t, created.BookingID, reconciled.BookingID)

		// the redirect can be replayed
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(checkoutResultURL, created.SessionID), nil, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &reconciled)
		assert.Equal(t, "replayed", reconciled.Outcome)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(bookingURL, created.BookingID), nil, token)
		var got resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		assert.Equal(t, "booked", got.Status)
		assert.Equal(t, "KA01AB1234", got.VehiclePlate)

		assert.Equal(t, 1, dbtest.CountJobs(t, s.DB, "booking.confirmed"))
		assert.Equal(t, 1, dbtest.CountJobs(t, s.DB, "booking_confirmed"))
	})

	s.Run("Abnormal case: unpaid session leaves the booking pending", func() {
		t := s.T()
		locationID := dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)
		_, token := s.customerToken(t)
		start, end := slot(10, 60)

		created := s.create(t, token, createBody(locationID, start, end))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(checkoutResultURL, created.SessionID), nil, token)
		var reconciled resdto.ReconcileResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &reconciled)
		assert.Equal(t, "failed", reconciled.Outcome)
		assert.Equal(t, "pending", dbtest.BookingStatus(t, s.DB, created.BookingID))
	})
}

func (s *BookingSuite) TestCapacity() {
	s.Run("Abnormal case: a full location rejects overlapping bookings", func() {
		t := s.T()
		locationID := dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)
		_, first := s.customerToken(t)
		_, second := s.customerToken(t)
		start, end := slot(10, 60)

		s.create(t, first, createBody(locationID, start, end))

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, bookingsURL,
			createBody(locationID, start.Add(30*time.Minute), end.Add(30*time.Minute)), second,
			map[string]string{"Idempotency-Key": uuid.NewString()})
		httptest.AssertErrorCode(t, w, http.StatusConflict, "conflict")

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf(locationURL, locationID)+"?from="+start.Format(time.RFC3339)+"&to="+end.Format(time.RFC3339), nil, "")
		var loc resdto.LocationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &loc)
		assert.Equal(t, "full", loc.Status)
	})

	s.Run("Normal case: back to back bookings share a spot", func() {
		t := s.T()
		locationID := dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)
		_, token := s.customerToken(t)
		start, end := slot(10, 60)

		s.create(t, token, createBody(locationID, start, end))
		s.create(t, token, createBody(locationID, end, end.Add(time.Hour)))
	})
}

func (s *BookingSuite) TestCancel() {
	s.Run("Normal case: cancelling frees the spot", func() {
		t := s.T()
		locationID := dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)
		_, token := s.customerToken(t)
		start, end := slot(10, 60)

		created := s.create(t, token, createBody(locationID, start, end))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(cancelURL, created.BookingID), nil, token)
		var cancelled resdto.BookingCancelledResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &cancelled)
		assert.False(t, cancelled.AlreadyCancelled)
		assert.Equal(t, "cancelled", dbtest.BookingStatus(t, s.DB, created.BookingID))

		s.create(t, token, createBody(locationID, start, end))
	})

	s.Run("Abnormal case: another customer cannot cancel", func() {
		t := s.T()
		locationID := dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)
		_, owner := s.customerToken(t)
		_, other := s.customerToken(t)
		start, end := slot(10, 60)

		created := s.create(t, owner, createBody(locationID, start, end))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(cancelURL, created.BookingID), nil, other)
		httptest.AssertErrorCode(t, w, http.StatusForbidden, "forbidden")
	})
}

func (s *BookingSuite) TestAuth() {
	s.Run("Abnormal case: expired token", func() {
		t := s.T()
		token := s.jwt.CreateExpiredToken(t, uuid.New(), user.RoleCustomer)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL, nil, token)
		httptest.AssertErrorCode(t, w, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *BookingSuite) TestNearbySearch() {
	s.Run("Normal case: nearby location carries its distance", func() {
		t := s.T()
		locationID := dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/locations/search?lat=12.9720&lng=77.5950&radius=1000", nil, "")
		var found []resdto.LocationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &found)
		require.Len(t, found, 1)
		assert.Equal(t, locationID, found[0].ID)
		require.NotNil(t, found[0].DistanceMeters)
		assert.Less(t, *found[0].DistanceMeters, 100.0)
	})

	s.Run("Boundary case: search from the antipode of a location", func() {
		t := s.T()
		dbtest.CreateTestLocation(t, s.DB, "12 MG Road, Bengaluru", 6000, 1)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/locations/search?lat=-12.9716&lng=-102.4054&radius=1000", nil, "")
		var found []resdto.LocationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &found)
		assert.Empty(t, found)
	})
}
