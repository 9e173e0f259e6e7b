// internal/services/return_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/models"
)

type ReturnServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	loans   *LoanService
	returns *ReturnService
	admin   *models.User
	staff   *models.User
	vehicle *models.Vehicle
}

func (s *ReturnServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.loans = NewLoanService(s.db, NewAvailabilityService(s.db))
	s.returns = NewReturnService(s.db, s.loans)
	s.admin = seedUser(s.T(), s.db, "admin", models.UserRoleAdmin)
	s.staff = seedUser(s.T(), s.db, "budi", models.UserRoleStaff)
	s.vehicle = seedVehicle(s.T(), s.db, "B 1234 ABC")
}

func (s *ReturnServiceTestSuite) approvedLoan(start, end string) *models.LoanRequest {
	loan, err := s.loans.Create(&CreateLoanRequest{
		VehicleID:           s.vehicle.ID,
		RequesterID:         &s.staff.ID,
		CreatorID:           &s.staff.ID,
		StartDate:           start,
		PlannedEndDate:      end,
		Purpose:             "Kunjungan lapangan",
		Destination:         "Bandung",
		DutyUseAffirmed:     true,
		CleanlinessAffirmed: true,
		LiabilityAffirmed:   true,
	})
	s.Require().NoError(err)

	loan, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)
	return loan
}

func (s *ReturnServiceTestSuite) TestRecordReturn() {
	loan := s.approvedLoan("2026-09-07", "2026-09-09")

	fuel := 25.0
	summary, err := s.returns.Record(&RecordReturnRequest{
		LoanID:           loan.ID,
		ReturnDate:       "2026-09-09",
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessNeedsCleaning),
		FinalFuel:        &fuel,
	})
	s.Require().NoError(err)
	s.Equal(2, summary.DurationDays)

	var reloaded models.LoanRequest
	s.Require().NoError(s.db.First(&reloaded, loan.ID).Error)
	s.Equal(models.LoanStatusCompleted, reloaded.Status)

	// The vehicle is released carrying the inspector's reported condition.
	var vehicle models.Vehicle
	s.Require().NoError(s.db.First(&vehicle, s.vehicle.ID).Error)
	s.Equal(models.VehicleStatusAvailable, vehicle.Status)
	s.Equal(models.CleanlinessNeedsCleaning, vehicle.Cleanliness)
	s.Equal(25.0, vehicle.FuelLevel)
}

func (s *ReturnServiceTestSuite) TestUnfitReturnStillReleasesVehicle() {
	loan := s.approvedLoan("2026-09-07", "2026-09-09")

	fuel := 10.0
	_, err := s.returns.Record(&RecordReturnRequest{
		LoanID:           loan.ID,
		ReturnDate:       "2026-09-09",
		FinalRoadworthy:  string(models.RoadworthinessUnfit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	})
	s.Require().NoError(err)

	// An unfit report alone does not park the vehicle in maintenance.
	var vehicle models.Vehicle
	s.Require().NoError(s.db.First(&vehicle, s.vehicle.ID).Error)
	s.Equal(models.VehicleStatusAvailable, vehicle.Status)
	s.Equal(models.RoadworthinessUnfit, vehicle.Roadworthy)
}

func (s *ReturnServiceTestSuite) TestReturnDateDefaultsToToday() {
	loan := s.approvedLoan("2026-09-07", "2026-09-09")

	fuel := 30.0
	summary, err := s.returns.Record(&RecordReturnRequest{
		LoanID:           loan.ID,
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	})
	s.Require().NoError(err)
	s.Equal(models.Today().String(), summary.Record.ReturnDate.String())
}

func (s *ReturnServiceTestSuite) TestSameDayReturnCountsOneDay() {
	loan := s.approvedLoan("2026-09-07", "2026-09-09")

	fuel := 30.0
	summary, err := s.returns.Record(&RecordReturnRequest{
		LoanID:           loan.ID,
		ReturnDate:       "2026-09-07",
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	})
	s.Require().NoError(err)
	s.Equal(1, summary.DurationDays)
}

func (s *ReturnServiceTestSuite) TestReturnExactlyOnce() {
	loan := s.approvedLoan("2026-09-07", "2026-09-09")

	fuel := 30.0
	req := &RecordReturnRequest{
		LoanID:           loan.ID,
		ReturnDate:       "2026-09-09",
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	}

	_, err := s.returns.Record(req)
	s.Require().NoError(err)

	_, err = s.returns.Record(req)
	var dupErr *DuplicateError
	s.Require().ErrorAs(err, &dupErr)

	var count int64
	s.Require().NoError(s.db.Model(&models.ReturnRecord{}).
		Where("loan_request_id = ?", loan.ID).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *ReturnServiceTestSuite) TestCannotReturnPendingLoan() {
	loan, err := s.loans.Create(&CreateLoanRequest{
		VehicleID:           s.vehicle.ID,
		RequesterID:         &s.staff.ID,
		StartDate:           "2026-09-07",
		PlannedEndDate:      "2026-09-09",
		Purpose:             "Kunjungan lapangan",
		Destination:         "Bandung",
		DutyUseAffirmed:     true,
		CleanlinessAffirmed: true,
		LiabilityAffirmed:   true,
	})
	s.Require().NoError(err)

	fuel := 30.0
	_, err = s.returns.Record(&RecordReturnRequest{
		LoanID:           loan.ID,
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	})
	var stateErr *InvalidStateError
	s.Require().ErrorAs(err, &stateErr)
	s.Equal(models.LoanStatusRequested, stateErr.Current)
}

func (s *ReturnServiceTestSuite) TestReturnUnknownLoan() {
	fuel := 30.0
	_, err := s.returns.Record(&RecordReturnRequest{
		LoanID:           uuid.New(),
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	})
	var notFoundErr *NotFoundError
	s.Require().ErrorAs(err, &notFoundErr)
}

func (s *ReturnServiceTestSuite) TestReturnedDatesFreeUpVehicle() {
	loan := s.approvedLoan("2026-09-07", "2026-09-09")

	fuel := 30.0
	_, err := s.returns.Record(&RecordReturnRequest{
		LoanID:           loan.ID,
		ReturnDate:       "2026-09-08",
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	})
	s.Require().NoError(err)

	// Completed loans no longer bind the calendar.
	_, err = s.loans.Create(&CreateLoanRequest{
		VehicleID:           s.vehicle.ID,
		RequesterID:         &s.staff.ID,
		StartDate:           "2026-09-08",
		PlannedEndDate:      "2026-09-10",
		Purpose:             "Antar dokumen",
		Destination:         "Bogor",
		DutyUseAffirmed:     true,
		CleanlinessAffirmed: true,
		LiabilityAffirmed:   true,
	})
	s.Require().NoError(err)
}

func TestReturnServiceSuite(t *testing.T) {
	suite.Run(t, new(ReturnServiceTestSuite))
}
