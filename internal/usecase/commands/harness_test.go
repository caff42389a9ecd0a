//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/user"
	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/outbox"
	"smartpark/internal/usecase/shared"
	"smartpark/tests/common/builder"
	"smartpark/tests/common/fakes"
	"smartpark/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type recordingCache struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (c *recordingCache) InvalidateLocations(_ context.Context, ids ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, ids...)
}

func (c *recordingCache) Invalidated() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uuid.UUID(nil), c.ids...)
}

// commandSuite wires every command use case to the in-memory store.
type commandSuite struct {
	suite.Suite

	store    *memstore.Store
	clock    *clock.MockClock
	gateway  *fakes.Gateway
	cache    *recordingCache
	settings commands.Settings

	bookings    commands.BookingCommands
	payments    commands.PaymentCommands
	maintenance commands.MaintenanceCommands
	locations   commands.LocationCommands
	violations  commands.ViolationCommands

	verifier *stubVerifier
}

// hookGateway runs beforeCreate while the first transaction is already committed.
type hookGateway struct {
	*fakes.Gateway
	beforeCreate func()
}

func (g *hookGateway) CreateCheckoutSession(ctx context.Context, req commands.CheckoutRequest) (*commands.CheckoutSession, error) {
	if g.beforeCreate != nil {
		g.beforeCreate()
	}
	return g.Gateway.CreateCheckoutSession(ctx, req)
}

type stubVerifier struct {
	sessionID string
	err       error
}

func (v *stubVerifier) CompletedSessionID([]byte, string) (string, error) {
	return v.sessionID, v.err
}

func (s *commandSuite) SetupTest() {
	s.store = memstore.New()
	s.clock = clock.NewMockClock(builder.BookingNow)
	s.gateway = fakes.NewGateway()
	s.cache = &recordingCache{}
	s.verifier = &stubVerifier{}
	s.settings = commands.Settings{
		PendingTTL:     30 * time.Minute,
		IdempotencyTTL: 24 * time.Hour,
		Calendar:       time.UTC,
		SuccessURL:     "http://localhost:3000/book/checkout/result?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      "http://localhost:3000/mybookings",
		ViolationEmail: "violations@example.com",
		ExpireBatch:    10,
	}

	services := &booking.Services{
		Clock:           s.clock,
		PriceCalculator: booking.NewDefaultPriceCalculator(),
		Calendar:        time.UTC,
	}
	s.bookings = commands.NewBookingUseCase(s.store, s.gateway, s.cache, services, s.settings)
	s.payments = commands.NewPaymentUseCase(s.store, s.gateway, s.verifier, s.cache, s.clock, s.settings)
	s.maintenance = commands.NewMaintenanceUseCase(s.store, s.cache, s.clock, s.settings)
	s.locations = commands.NewLocationUseCase(s.store, s.cache, s.clock, "inr")
	s.violations = commands.NewViolationUseCase(s.store, s.clock, s.settings)
}

// seedLocation stores an available location with the given capacity at 60.00 per hour.
func (s *commandSuite) seedLocation(spots int) uuid.UUID {
	loc := builder.NewLocationBuilder().WithCapacity(spots).BuildReconstructed()
	s.store.PutLocation(loc)
	return loc.ID()
}

func newCustomer() user.Actor {
	return user.Actor{ID: uuid.New(), Role: user.RoleCustomer, Email: "driver@example.com"}
}

func newOperator() user.Actor {
	return user.Actor{ID: uuid.New(), Role: user.RoleOperator, Email: "ops@example.com"}
}

// tomorrow returns an instant on the day after BookingNow.
func tomorrow(hour, minute int) time.Time {
	d := builder.BookingNow.Add(24 * time.Hour)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func createRequest(locationID uuid.UUID, start, end time.Time) reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		LocationID:   locationID,
		StartTime:    start,
		EndTime:      end,
		VehiclePlate: "ka01ab1234",
		Phone:        "+91 98765 43210",
	}
}

func (s *commandSuite) mustCreate(actor user.Actor, locationID uuid.UUID, start, end time.Time) *commands.CreateBookingResult {
	res, err := s.bookings.CreateBooking(context.Background(), createRequest(locationID, start, end), actor, nil)
	s.Require().NoError(err)
	return res
}

// mustConfirm pays and reconciles the checkout session of a new booking.
func (s *commandSuite) mustConfirm(res *commands.CreateBookingResult) {
	s.gateway.Pay(res.SessionID)
	out, err := s.payments.ReconcileSession(context.Background(), res.SessionID)
	s.Require().NoError(err)
	s.Require().Equal(commands.ReconcileConfirmed, out.Outcome)
}

// assertErrIs follows cockroachdb marks, which errors.Is does not see.
func (s *commandSuite) assertErrIs(err, target error) {
	s.T().Helper()
	s.Truef(errs.Is(err, target), "expected %v, got %v", target, err)
}

func (s *commandSuite) booking(id uuid.UUID) *booking.Booking {
	b, ok := s.store.Booking(id)
	s.Require().True(ok, "booking %s not stored", id)
	return b
}

func (s *commandSuite) emails() []outbox.EmailMessage {
	var out []outbox.EmailMessage
	for _, j := range s.store.Jobs() {
		if j.Kind != shared.JobKindEmail {
			continue
		}
		var msg outbox.EmailMessage
		s.Require().NoError(json.Unmarshal(j.Payload, &msg))
		out = append(out, msg)
	}
	return out
}

func (s *commandSuite) events() []outbox.BookingEvent {
	var out []outbox.BookingEvent
	for _, j := range s.store.Jobs() {
		if j.Kind != shared.JobKindEvent {
			continue
		}
		var evt outbox.BookingEvent
		s.Require().NoError(json.Unmarshal(j.Payload, &evt))
		out = append(out, evt)
	}
	return out
}
