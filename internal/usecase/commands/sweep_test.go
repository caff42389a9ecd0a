//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/outbox"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MaintenanceCommandsTestSuite struct {
	commandSuite
}

func TestMaintenanceCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceCommandsTestSuite))
}

func (s *MaintenanceCommandsTestSuite) TestExpirePending() {
	north := s.seedLocation(3)
	south := s.seedLocation(3)

	stale := s.mustCreate(newCustomer(), north, tomorrow(10, 0), tomorrow(11, 0))
	paid := s.mustCreate(newCustomer(), south, tomorrow(10, 0), tomorrow(11, 0))
	s.mustConfirm(paid)
	s.clock.Add(s.settings.PendingTTL + time.Minute)
	fresh := s.mustCreate(newCustomer(), south, tomorrow(12, 0), tomorrow(13, 0))
	jobsBefore := len(s.store.Jobs())

	n, err := s.maintenance.ExpirePending(context.Background())
	s.Require().NoError(err)
	s.Equal(1, n)

	s.Equal(booking.StatusCancelled, s.booking(stale.BookingID).Status())
	s.Equal(booking.StatusBooked, s.booking(paid.BookingID).Status())
	s.Equal(booking.StatusPending, s.booking(fresh.BookingID).Status())

	session, _ := s.store.Session(stale.SessionID)
	s.Equal(shared.SessionExpired, session.Status)
	fs, _ := s.store.Session(fresh.SessionID)
	s.Equal(shared.SessionOpen, fs.Status)

	s.Equal([]string{string(outbox.EventBookingExpired)}, s.store.Topics()[jobsBefore:])
	s.Contains(s.cache.Invalidated(), north)

	n, err = s.maintenance.ExpirePending(context.Background())
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *MaintenanceCommandsTestSuite) TestExpirePendingBatches() {
	locationID := s.seedLocation(5)
	for i := 0; i < 3; i++ {
		s.mustCreate(newCustomer(), locationID, tomorrow(10, 0), tomorrow(11, 0))
	}
	s.clock.Add(time.Hour)

	s.settings.ExpireBatch = 2
	s.maintenance = commands.NewMaintenanceUseCase(s.store, s.cache, s.clock, s.settings)

	n, err := s.maintenance.ExpirePending(context.Background())
	s.Require().NoError(err)
	s.Equal(2, n)
	n, err = s.maintenance.ExpirePending(context.Background())
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *MaintenanceCommandsTestSuite) TestPurgeIdempotencyKeys() {
	locationID := s.seedLocation(2)
	actor := newCustomer()
	oldKey, newKey := uuid.New(), uuid.New()

	_, err := s.bookings.CreateBooking(context.Background(),
		createRequest(locationID, tomorrow(10, 0), tomorrow(11, 0)), actor, &oldKey)
	s.Require().NoError(err)
	s.clock.Add(12 * time.Hour)
	_, err = s.bookings.CreateBooking(context.Background(),
		createRequest(locationID, tomorrow(14, 0), tomorrow(15, 0)), actor, &newKey)
	s.Require().NoError(err)

	s.clock.Add(12 * time.Hour)
	n, err := s.maintenance.PurgeIdempotencyKeys(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, ok := s.store.IdempotencyRecord(oldKey, actor.ID)
	s.False(ok)
	_, ok = s.store.IdempotencyRecord(newKey, actor.ID)
	s.True(ok)
}
