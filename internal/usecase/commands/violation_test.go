//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/outbox"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ViolationCommandsTestSuite struct {
	commandSuite
}

func TestViolationCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(ViolationCommandsTestSuite))
}

func (s *ViolationCommandsTestSuite) TestReportViolation() {
	locationID := s.seedLocation(1)
	observed := time.Date(2030, 1, 1, 8, 15, 0, 0, time.UTC)
	note := "  parked across two spots "
	actor := newCustomer()

	err := s.violations.ReportViolation(context.Background(), reqdto.ReportViolationRequest{
		VehiclePlate: "mh12 de 1433",
		LocationID:   locationID,
		ObservedAt:   &observed,
		Description:  &note,
	}, actor)
	s.Require().NoError(err)

	emails := s.emails()
	s.Require().Len(emails, 1)
	msg := emails[0]
	s.Equal("violations@example.com", msg.To)
	s.Equal(outbox.TemplateViolationReported, msg.Template)
	s.Equal("MH12 DE 1433", msg.Data["plate"])
	s.Equal("12 MG Road, Bengaluru", msg.Data["address"])
	s.Equal("Jan 01, 2030", msg.Data["date"])
	s.Equal("08:15 AM", msg.Data["time"])
	s.Equal("parked across two spots", msg.Data["description"])
	s.Equal(actor.Email, msg.Data["reported_by"])
}

func (s *ViolationCommandsTestSuite) TestReportViolationDefaultsToNow() {
	locationID := s.seedLocation(1)

	err := s.violations.ReportViolation(context.Background(), reqdto.ReportViolationRequest{
		VehiclePlate: "ka01ab1234",
		LocationID:   locationID,
	}, newCustomer())
	s.Require().NoError(err)

	emails := s.emails()
	s.Require().Len(emails, 1)
	s.Equal("09:00 AM", emails[0].Data["time"])
	s.NotContains(emails[0].Data, "description")
}

func (s *ViolationCommandsTestSuite) TestReportViolationRejected() {
	locationID := s.seedLocation(1)

	err := s.violations.ReportViolation(context.Background(), reqdto.ReportViolationRequest{
		VehiclePlate: "ka01ab1234",
		LocationID:   uuid.New(),
	}, newCustomer())
	s.assertErrIs(err, commands.ErrLocationNotFound)

	err = s.violations.ReportViolation(context.Background(), reqdto.ReportViolationRequest{
		VehiclePlate: "#",
		LocationID:   locationID,
	}, newCustomer())
	s.assertErrIs(err, commands.ErrDomainValidation)

	settings := s.settings
	settings.ViolationEmail = ""
	noInbox := commands.NewViolationUseCase(s.store, s.clock, settings)
	err = noInbox.ReportViolation(context.Background(), reqdto.ReportViolationRequest{
		VehiclePlate: "ka01ab1234",
		LocationID:   locationID,
	}, newCustomer())
	s.assertErrIs(err, commands.ErrViolationNoInbox)

	s.Empty(s.store.Jobs())
}
