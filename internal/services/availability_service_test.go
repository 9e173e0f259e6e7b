// internal/services/availability_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/models"
)

type AvailabilityServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	availability *AvailabilityService
	loans        *LoanService
	admin        *models.User
	staff        *models.User
	vehicle      *models.Vehicle
}

func (s *AvailabilityServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.availability = NewAvailabilityService(s.db)
	s.loans = NewLoanService(s.db, s.availability)
	s.admin = seedUser(s.T(), s.db, "admin", models.UserRoleAdmin)
	s.staff = seedUser(s.T(), s.db, "budi", models.UserRoleStaff)
	s.vehicle = seedVehicle(s.T(), s.db, "B 1234 ABC")
}

func (s *AvailabilityServiceTestSuite) approveLoan(start, end string) *models.LoanRequest {
	loan, err := s.loans.Create(&CreateLoanRequest{
		VehicleID:           s.vehicle.ID,
		RequesterID:         &s.staff.ID,
		StartDate:           start,
		PlannedEndDate:      end,
		Purpose:             "Dinas luar",
		Destination:         "Semarang",
		DutyUseAffirmed:     true,
		CleanlinessAffirmed: true,
		LiabilityAffirmed:   true,
	})
	s.Require().NoError(err)
	loan, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)
	return loan
}

func (s *AvailabilityServiceTestSuite) TestAvailableWhenNoLoans() {
	result, err := s.availability.CheckAvailability(s.vehicle.ID,
		mustDate(s.T(), "2026-09-07"), mustDate(s.T(), "2026-09-09"))
	s.Require().NoError(err)
	s.True(result.Available)
	s.Nil(result.ConflictingLoan)
}

func (s *AvailabilityServiceTestSuite) TestUnavailableOnOverlap() {
	loan := s.approveLoan("2026-09-07", "2026-09-09")

	result, err := s.availability.CheckAvailability(s.vehicle.ID,
		mustDate(s.T(), "2026-09-09"), mustDate(s.T(), "2026-09-12"))
	s.Require().NoError(err)
	s.False(result.Available)
	s.Require().NotNil(result.ConflictingLoan)
	s.Equal(loan.ID, result.ConflictingLoan.ID)
}

func (s *AvailabilityServiceTestSuite) TestPendingLoanDoesNotBind() {
	_, err := s.loans.Create(&CreateLoanRequest{
		VehicleID:           s.vehicle.ID,
		RequesterID:         &s.staff.ID,
		StartDate:           "2026-09-07",
		PlannedEndDate:      "2026-09-09",
		Purpose:             "Dinas luar",
		Destination:         "Semarang",
		DutyUseAffirmed:     true,
		CleanlinessAffirmed: true,
		LiabilityAffirmed:   true,
	})
	s.Require().NoError(err)

	result, err := s.availability.CheckAvailability(s.vehicle.ID,
		mustDate(s.T(), "2026-09-07"), mustDate(s.T(), "2026-09-09"))
	s.Require().NoError(err)
	s.True(result.Available)
}

func (s *AvailabilityServiceTestSuite) TestEarliestConflictReported() {
	second := s.approveLoan("2026-09-10", "2026-09-11")
	first := s.approveLoan("2026-09-07", "2026-09-08")

	result, err := s.availability.CheckAvailability(s.vehicle.ID,
		mustDate(s.T(), "2026-09-01"), mustDate(s.T(), "2026-09-30"))
	s.Require().NoError(err)
	s.False(result.Available)
	s.Require().NotNil(result.ConflictingLoan)
	s.Equal(first.ID, result.ConflictingLoan.ID)
	s.NotEqual(second.ID, result.ConflictingLoan.ID)
}

func (s *AvailabilityServiceTestSuite) TestMaintenanceBlocksAllDates() {
	s.Require().NoError(s.db.Model(s.vehicle).
		Update("status", models.VehicleStatusUnderMaintenance).Error)

	result, err := s.availability.CheckAvailability(s.vehicle.ID,
		mustDate(s.T(), "2026-09-07"), mustDate(s.T(), "2026-09-09"))
	s.Require().NoError(err)
	s.False(result.Available)
	s.Nil(result.ConflictingLoan)
}

func (s *AvailabilityServiceTestSuite) TestRejectsReversedRange() {
	_, err := s.availability.CheckAvailability(s.vehicle.ID,
		mustDate(s.T(), "2026-09-09"), mustDate(s.T(), "2026-09-07"))
	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
}

func (s *AvailabilityServiceTestSuite) TestUnknownVehicle() {
	_, err := s.availability.CheckAvailability(uuid.New(),
		mustDate(s.T(), "2026-09-07"), mustDate(s.T(), "2026-09-09"))
	var notFoundErr *NotFoundError
	s.Require().ErrorAs(err, &notFoundErr)
}

func (s *AvailabilityServiceTestSuite) TestListAvailableVehicles() {
	free := seedVehicle(s.T(), s.db, "B 5678 DEF")
	parked := seedVehicle(s.T(), s.db, "B 9012 GHI")
	s.Require().NoError(s.db.Model(parked).
		Update("status", models.VehicleStatusUnderMaintenance).Error)

	s.approveLoan("2026-09-07", "2026-09-09")

	vehicles, err := s.availability.ListAvailableVehicles(
		mustDate(s.T(), "2026-09-08"), mustDate(s.T(), "2026-09-10"))
	s.Require().NoError(err)
	s.Require().Len(vehicles, 1)
	s.Equal(free.ID, vehicles[0].ID)

	// Outside the booked range everything but the parked vehicle is free.
	vehicles, err = s.availability.ListAvailableVehicles(
		mustDate(s.T(), "2026-09-20"), mustDate(s.T(), "2026-09-21"))
	s.Require().NoError(err)
	s.Len(vehicles, 2)
}

func TestAvailabilityServiceSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityServiceTestSuite))
}
