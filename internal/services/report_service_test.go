// internal/services/report_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/models"
)

type ReportServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	loans   *LoanService
	returns *ReturnService
	reports *ReportService
	admin   *models.User
	staff   *models.User
	vehicle *models.Vehicle
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.loans = NewLoanService(s.db, NewAvailabilityService(s.db))
	s.returns = NewReturnService(s.db, s.loans)
	s.reports = NewReportService(s.db)
	s.admin = seedUser(s.T(), s.db, "admin", models.UserRoleAdmin)
	s.staff = seedUser(s.T(), s.db, "budi", models.UserRoleStaff)
	s.vehicle = seedVehicle(s.T(), s.db, "B 1234 ABC")
}

func (s *ReportServiceTestSuite) createLoan(start, end, destination string) *models.LoanRequest {
	loan, err := s.loans.Create(&CreateLoanRequest{
		VehicleID:           s.vehicle.ID,
		RequesterID:         &s.staff.ID,
		StartDate:           start,
		PlannedEndDate:      end,
		Purpose:             "Dinas luar",
		Destination:         destination,
		DutyUseAffirmed:     true,
		CleanlinessAffirmed: true,
		LiabilityAffirmed:   true,
	})
	s.Require().NoError(err)
	return loan
}

func (s *ReportServiceTestSuite) TestUsageReport() {
	// Completed loan, returned one day after it started.
	first := s.createLoan("2026-09-07", "2026-09-09", "Bandung")
	_, err := s.loans.Decide(first.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)
	fuel := 20.0
	_, err = s.returns.Record(&RecordReturnRequest{
		LoanID:           first.ID,
		ReturnDate:       "2026-09-08",
		FinalRoadworthy:  string(models.RoadworthinessFit),
		FinalCleanliness: string(models.CleanlinessClean),
		FinalFuel:        &fuel,
	})
	s.Require().NoError(err)

	// Rejected loan: counted, but contributes no days.
	second := s.createLoan("2026-09-10", "2026-09-12", "Bandung")
	_, err = s.loans.Decide(second.ID, s.admin.ID, &DecideLoanRequest{Approved: false})
	s.Require().NoError(err)

	// Pending loan to another destination.
	s.createLoan("2026-09-15", "2026-09-16", "Bogor")

	report, err := s.reports.UsageReport(
		mustDate(s.T(), "2026-09-01"), mustDate(s.T(), "2026-09-30"))
	s.Require().NoError(err)

	s.Equal(int64(3), report.TotalRequests)
	s.Equal(int64(1), report.Pending)
	s.Equal(int64(1), report.Rejected)
	s.Equal(int64(1), report.Completed)
	s.Equal(1, report.TotalLoanDays)
	s.Equal(1.0, report.AverageLoanDays)

	s.Require().Len(report.ByVehicle, 1)
	s.Equal("B 1234 ABC", report.ByVehicle[0].PlateNumber)
	s.Equal(int64(1), report.ByVehicle[0].LoanCount)
	s.Equal(1, report.ByVehicle[0].TotalDays)

	s.Require().Len(report.ByDestination, 1)
	s.Equal("Bandung", report.ByDestination[0].Destination)
}

func (s *ReportServiceTestSuite) TestUsageReportWindowFilters() {
	s.createLoan("2026-09-07", "2026-09-09", "Bandung")

	report, err := s.reports.UsageReport(
		mustDate(s.T(), "2026-10-01"), mustDate(s.T(), "2026-10-31"))
	s.Require().NoError(err)
	s.Equal(int64(0), report.TotalRequests)
}

func (s *ReportServiceTestSuite) TestDashboard() {
	loan := s.createLoan("2026-09-07", "2026-09-09", "Bandung")
	_, err := s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)
	s.createLoan("2026-09-15", "2026-09-16", "Bogor")

	stats, err := s.reports.Dashboard()
	s.Require().NoError(err)

	s.Equal(int64(1), stats.TotalVehicles)
	s.Equal(int64(0), stats.AvailableVehicles)
	s.Equal(int64(1), stats.OnLoanVehicles)
	s.Equal(int64(1), stats.PendingRequests)
	s.Equal(int64(1), stats.ActiveLoans)
	s.Equal(int64(2), stats.RegisteredUsers)
}

func TestReportServiceSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}
