// internal/services/report_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/models"
)

// ReportService produces the usage reports and the dashboard counters.
type ReportService struct {
	db *gorm.DB
}

// UsageReport summarizes loan activity for a period. Durations are the
// whole-day difference between start and end, with a one-day floor so a
// same-day trip still counts as one day.
type UsageReport struct {
	PeriodStart models.Date `json:"period_start"`
	PeriodEnd   models.Date `json:"period_end"`

	TotalRequests int64 `json:"total_requests"`
	Pending       int64 `json:"pending"`
	Approved      int64 `json:"approved"`
	Rejected      int64 `json:"rejected"`
	Completed     int64 `json:"completed"`

	TotalLoanDays   int     `json:"total_loan_days"`
	AverageLoanDays float64 `json:"average_loan_days"`

	ByVehicle     []VehicleUsage     `json:"by_vehicle"`
	ByDestination []DestinationUsage `json:"by_destination"`
}

type VehicleUsage struct {
	VehicleID   string `json:"vehicle_id"`
	PlateNumber string `json:"plate_number"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	LoanCount   int64  `json:"loan_count"`
	TotalDays   int    `json:"total_days"`
}

type DestinationUsage struct {
	Destination string `json:"destination"`
	LoanCount   int64  `json:"loan_count"`
}

// DashboardStats is the landing-page counter set.
type DashboardStats struct {
	TotalVehicles     int64 `json:"total_vehicles"`
	AvailableVehicles int64 `json:"available_vehicles"`
	OnLoanVehicles    int64 `json:"on_loan_vehicles"`
	InMaintenance     int64 `json:"in_maintenance"`

	PendingRequests int64 `json:"pending_requests"`
	ActiveLoans     int64 `json:"active_loans"`
	CompletedLoans  int64 `json:"completed_loans"`

	RegisteredUsers int64 `json:"registered_users"`
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// UsageReport builds the report for loans whose start date falls inside
// [start, end]. Duration is the planned span for approved loans and the
// actual span for completed ones.
func (s *ReportService) UsageReport(start, end models.Date) (*UsageReport, error) {
	if end.Before(start) {
		return nil, NewValidationError("end date must not be before start date")
	}

	var loans []models.LoanRequest
	err := s.db.Preload("Vehicle").Preload("Return").
		Where("start_date >= ? AND start_date <= ?", start.Time, end.Time).
		Order("start_date asc").
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loans for report: %w", err)
	}

	report := &UsageReport{
		PeriodStart:   start,
		PeriodEnd:     end,
		ByVehicle:     []VehicleUsage{},
		ByDestination: []DestinationUsage{},
	}

	vehicleIndex := map[string]int{}
	destinationIndex := map[string]int{}
	measured := 0

	for i := range loans {
		loan := &loans[i]
		report.TotalRequests++

		switch loan.Status {
		case models.LoanStatusRequested:
			report.Pending++
		case models.LoanStatusApproved:
			report.Approved++
		case models.LoanStatusRejected:
			report.Rejected++
		case models.LoanStatusCompleted:
			report.Completed++
		}

		if loan.Status == models.LoanStatusRejected || loan.Status == models.LoanStatusRequested {
			continue
		}

		days := loan.DurationDays(loan.PlannedEndDate)
		if loan.Return != nil {
			days = loan.DurationDays(loan.Return.ReturnDate)
		}
		report.TotalLoanDays += days
		measured++

		key := loan.VehicleID.String()
		idx, ok := vehicleIndex[key]
		if !ok {
			idx = len(report.ByVehicle)
			vehicleIndex[key] = idx
			usage := VehicleUsage{VehicleID: key}
			if loan.Vehicle != nil {
				usage.PlateNumber = loan.Vehicle.PlateNumber
				usage.Make = loan.Vehicle.Make
				usage.Model = loan.Vehicle.Model
			}
			report.ByVehicle = append(report.ByVehicle, usage)
		}
		report.ByVehicle[idx].LoanCount++
		report.ByVehicle[idx].TotalDays += days

		didx, ok := destinationIndex[loan.Destination]
		if !ok {
			didx = len(report.ByDestination)
			destinationIndex[loan.Destination] = didx
			report.ByDestination = append(report.ByDestination, DestinationUsage{Destination: loan.Destination})
		}
		report.ByDestination[didx].LoanCount++
	}

	if measured > 0 {
		report.AverageLoanDays = float64(report.TotalLoanDays) / float64(measured)
	}

	return report, nil
}

func (s *ReportService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}

	type countQuery struct {
		dest  *int64
		model interface{}
		cond  []interface{}
	}

	queries := []countQuery{
		{&stats.TotalVehicles, &models.Vehicle{}, nil},
		{&stats.AvailableVehicles, &models.Vehicle{}, []interface{}{"status = ?", models.VehicleStatusAvailable}},
		{&stats.OnLoanVehicles, &models.Vehicle{}, []interface{}{"status = ?", models.VehicleStatusOnLoan}},
		{&stats.InMaintenance, &models.Vehicle{}, []interface{}{"status = ?", models.VehicleStatusUnderMaintenance}},
		{&stats.PendingRequests, &models.LoanRequest{}, []interface{}{"status = ?", models.LoanStatusRequested}},
		{&stats.ActiveLoans, &models.LoanRequest{}, []interface{}{"status = ?", models.LoanStatusApproved}},
		{&stats.CompletedLoans, &models.LoanRequest{}, []interface{}{"status = ?", models.LoanStatusCompleted}},
		{&stats.RegisteredUsers, &models.User{}, nil},
	}

	for _, q := range queries {
		query := s.db.Model(q.model)
		if len(q.cond) > 0 {
			query = query.Where(q.cond[0], q.cond[1:]...)
		}
		if err := query.Count(q.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
		}
	}

	return stats, nil
}
