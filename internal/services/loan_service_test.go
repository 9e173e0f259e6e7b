// internal/services/loan_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/models"
)

type LoanServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	loans   *LoanService
	admin   *models.User
	staff   *models.User
	vehicle *models.Vehicle
}

func (s *LoanServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.loans = NewLoanService(s.db, NewAvailabilityService(s.db))
	s.admin = seedUser(s.T(), s.db, "admin", models.UserRoleAdmin)
	s.staff = seedUser(s.T(), s.db, "budi", models.UserRoleStaff)
	s.vehicle = seedVehicle(s.T(), s.db, "B 1234 ABC")
}

func (s *LoanServiceTestSuite) newRequest(start, end string) *CreateLoanRequest {
	return &CreateLoanRequest{
		VehicleID:           s.vehicle.ID,
		RequesterID:         &s.staff.ID,
		CreatorID:           &s.staff.ID,
		StartDate:           start,
		PlannedEndDate:      end,
		Purpose:             "Rapat koordinasi",
		Destination:         "Kantor Gubernur",
		DutyUseAffirmed:     true,
		CleanlinessAffirmed: true,
		LiabilityAffirmed:   true,
	}
}

func (s *LoanServiceTestSuite) TestCreateLoan() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	s.Equal(models.LoanStatusRequested, loan.Status)
	s.Equal(models.RequesterKindRegistered, loan.RequesterKind)
	s.Require().NotNil(loan.RequesterUserID)
	s.Equal(s.staff.ID, *loan.RequesterUserID)

	// Creation snapshots the vehicle's live condition.
	s.Equal(models.RoadworthinessFit, loan.InitialRoadworthy)
	s.Equal(models.CleanlinessClean, loan.InitialCleanliness)
	s.Equal(40.0, loan.InitialFuel)

	// A pending request does not touch the vehicle.
	var vehicle models.Vehicle
	s.Require().NoError(s.db.First(&vehicle, s.vehicle.ID).Error)
	s.Equal(models.VehicleStatusAvailable, vehicle.Status)
}

func (s *LoanServiceTestSuite) TestCreateForBorrower() {
	borrower := seedBorrower(s.T(), s.db, "Pak Tamu")

	req := s.newRequest("2026-09-07", "2026-09-09")
	req.RequesterID = nil
	req.BorrowerID = &borrower.ID

	loan, err := s.loans.Create(req)
	s.Require().NoError(err)
	s.Equal(models.RequesterKindAdhoc, loan.RequesterKind)
	s.Require().NotNil(loan.RequesterBorrowerID)
	s.Equal(borrower.ID, *loan.RequesterBorrowerID)
	s.Nil(loan.RequesterUserID)
}

func (s *LoanServiceTestSuite) TestCreateRequiresAffirmations() {
	req := s.newRequest("2026-09-07", "2026-09-09")
	req.LiabilityAffirmed = false

	_, err := s.loans.Create(req)
	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
}

func (s *LoanServiceTestSuite) TestCreateRejectsReversedDates() {
	_, err := s.loans.Create(s.newRequest("2026-09-09", "2026-09-07"))
	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
}

func (s *LoanServiceTestSuite) TestCreateRequiresExactlyOneRequester() {
	borrower := seedBorrower(s.T(), s.db, "Pak Tamu")

	req := s.newRequest("2026-09-07", "2026-09-09")
	req.BorrowerID = &borrower.ID
	_, err := s.loans.Create(req)
	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)

	req = s.newRequest("2026-09-07", "2026-09-09")
	req.RequesterID = nil
	_, err = s.loans.Create(req)
	s.Require().ErrorAs(err, &validationErr)
}

func (s *LoanServiceTestSuite) TestCreateUnknownVehicle() {
	req := s.newRequest("2026-09-07", "2026-09-09")
	req.VehicleID = uuid.New()

	_, err := s.loans.Create(req)
	var notFoundErr *NotFoundError
	s.Require().ErrorAs(err, &notFoundErr)
	s.Equal("vehicle", notFoundErr.Resource)
}

func (s *LoanServiceTestSuite) TestCreateVehicleInMaintenance() {
	s.Require().NoError(s.db.Model(s.vehicle).
		Update("status", models.VehicleStatusUnderMaintenance).Error)

	_, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	var conflictErr *ConflictError
	s.Require().ErrorAs(err, &conflictErr)
}

func (s *LoanServiceTestSuite) TestPendingRequestsDoNotBlock() {
	_, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	// Same dates, still pending: both requests coexist until a decision.
	_, err = s.loans.Create(s.newRequest("2026-09-08", "2026-09-10"))
	s.Require().NoError(err)
}

func (s *LoanServiceTestSuite) TestApprovedLoanBlocksOverlap() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	_, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)

	_, err = s.loans.Create(s.newRequest("2026-09-08", "2026-09-10"))
	var conflictErr *ConflictError
	s.Require().ErrorAs(err, &conflictErr)
	s.Require().NotNil(conflictErr.ConflictingLoan)
	s.Equal(loan.ID, conflictErr.ConflictingLoan.ID)
}

func (s *LoanServiceTestSuite) TestOverlapBoundariesAreInclusive() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)
	_, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)

	// Starting on the approved loan's last day still conflicts.
	_, err = s.loans.Create(s.newRequest("2026-09-09", "2026-09-11"))
	var conflictErr *ConflictError
	s.Require().ErrorAs(err, &conflictErr)

	// The day after is free.
	_, err = s.loans.Create(s.newRequest("2026-09-10", "2026-09-11"))
	s.Require().NoError(err)
}

func (s *LoanServiceTestSuite) TestApprove() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	note := "Silakan gunakan"
	decided, err := s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true, Note: &note})
	s.Require().NoError(err)

	s.Equal(models.LoanStatusApproved, decided.Status)
	s.Require().NotNil(decided.ApproverID)
	s.Equal(s.admin.ID, *decided.ApproverID)
	s.NotNil(decided.DecidedAt)
	s.Require().NotNil(decided.DecisionNote)
	s.Equal(note, *decided.DecisionNote)

	var vehicle models.Vehicle
	s.Require().NoError(s.db.First(&vehicle, s.vehicle.ID).Error)
	s.Equal(models.VehicleStatusOnLoan, vehicle.Status)
}

func (s *LoanServiceTestSuite) TestReject() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	decided, err := s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: false})
	s.Require().NoError(err)

	s.Equal(models.LoanStatusRejected, decided.Status)
	s.NotNil(decided.DecidedAt)

	// Rejection leaves the vehicle alone.
	var vehicle models.Vehicle
	s.Require().NoError(s.db.First(&vehicle, s.vehicle.ID).Error)
	s.Equal(models.VehicleStatusAvailable, vehicle.Status)
}

func (s *LoanServiceTestSuite) TestRejectedLoanFreesDates() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)
	_, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: false})
	s.Require().NoError(err)

	_, err = s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)
}

func (s *LoanServiceTestSuite) TestDecideTwice() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	_, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)

	_, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: false})
	var stateErr *InvalidStateError
	s.Require().ErrorAs(err, &stateErr)
	s.Equal(models.LoanStatusApproved, stateErr.Current)
}

func (s *LoanServiceTestSuite) TestApproveRechecksConflicts() {
	first, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)
	second, err := s.loans.Create(s.newRequest("2026-09-08", "2026-09-10"))
	s.Require().NoError(err)

	_, err = s.loans.Decide(first.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)

	// The sibling was approved first; approving the second would double-book.
	_, err = s.loans.Decide(second.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	var conflictErr *ConflictError
	s.Require().ErrorAs(err, &conflictErr)

	// The loser is still pending and can be rejected cleanly.
	var reloaded models.LoanRequest
	s.Require().NoError(s.db.First(&reloaded, second.ID).Error)
	s.Equal(models.LoanStatusRequested, reloaded.Status)
}

func (s *LoanServiceTestSuite) TestDecideRequiresApprover() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	_, err = s.loans.Decide(loan.ID, uuid.Nil, &DecideLoanRequest{Approved: true})
	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
}

func (s *LoanServiceTestSuite) TestHistoryScoping() {
	other := seedUser(s.T(), s.db, "sari", models.UserRoleStaff)

	_, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)

	req := s.newRequest("2026-09-20", "2026-09-21")
	req.RequesterID = &other.ID
	req.CreatorID = &other.ID
	_, err = s.loans.Create(req)
	s.Require().NoError(err)

	mine, err := s.loans.History(s.staff.ID, models.UserRoleStaff)
	s.Require().NoError(err)
	s.Len(mine, 1)

	all, err := s.loans.History(s.admin.ID, models.UserRoleAdmin)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *LoanServiceTestSuite) TestSearchByStatus() {
	loan, err := s.loans.Create(s.newRequest("2026-09-07", "2026-09-09"))
	s.Require().NoError(err)
	_, err = s.loans.Create(s.newRequest("2026-10-01", "2026-10-02"))
	s.Require().NoError(err)
	_, err = s.loans.Decide(loan.ID, s.admin.ID, &DecideLoanRequest{Approved: true})
	s.Require().NoError(err)

	status := models.LoanStatusApproved
	params := LoanSearchParams{Status: &status}
	params.Page, params.Limit = 1, 20

	loans, total, err := s.loans.Search(params)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(loans, 1)
	s.Equal(loan.ID, loans[0].ID)
}

func TestLoanServiceSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}
