// internal/services/availability_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/models"
)

// AvailabilityService is the conflict checker: it decides whether a
// vehicle is free for a requested date range. Only approved loans bind a
// vehicle; pending requests do not block, and completed loans have already
// released it.
type AvailabilityService struct {
	db *gorm.DB
}

type AvailabilityResult struct {
	Available       bool                `json:"available"`
	Reason          string              `json:"reason,omitempty"`
	ConflictingLoan *models.LoanRequest `json:"conflicting_loan,omitempty"`
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// bindingStatuses is the single binding set used everywhere a reservation
// is checked. Keeping it in one place avoids the creation-time check and
// the listing endpoint drifting apart.
var bindingStatuses = []models.LoanStatus{models.LoanStatusApproved}

// CheckAvailability reports whether the vehicle can be loaned for
// [start, end], both dates inclusive. A vehicle under maintenance is
// unavailable regardless of dates. When binding reservations overlap, the
// one with the earliest start date is reported. Pure read, no side effects.
func (s *AvailabilityService) CheckAvailability(vehicleID uuid.UUID, start, end models.Date) (*AvailabilityResult, error) {
	if end.Before(start) {
		return nil, NewValidationError("end date must not be before start date")
	}

	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "vehicle"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if vehicle.Status == models.VehicleStatusUnderMaintenance {
		return &AvailabilityResult{
			Available: false,
			Reason:    "vehicle is under maintenance",
		}, nil
	}

	conflict, err := s.firstConflict(s.db, vehicleID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return &AvailabilityResult{
			Available:       false,
			Reason:          "overlapping approved loan",
			ConflictingLoan: conflict,
		}, nil
	}

	return &AvailabilityResult{Available: true}, nil
}

// firstConflict returns the earliest-starting binding reservation that
// overlaps [start, end], or nil. Runs on the caller's transaction handle
// so Create can reuse it inside its critical section.
func (s *AvailabilityService) firstConflict(tx *gorm.DB, vehicleID uuid.UUID, start, end models.Date) (*models.LoanRequest, error) {
	var conflict models.LoanRequest
	err := tx.
		Where("vehicle_id = ?", vehicleID).
		Where("status IN ?", bindingStatuses).
		Where("start_date <= ? AND planned_end_date >= ?", end.Time, start.Time).
		Order("start_date asc").
		First(&conflict).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query conflicting loans: %w", err)
	}
	return &conflict, nil
}

// ListAvailableVehicles returns the vehicles free for [start, end]:
// everything not under maintenance minus vehicles with a binding
// reservation overlapping the range.
func (s *AvailabilityService) ListAvailableVehicles(start, end models.Date) ([]models.Vehicle, error) {
	if end.Before(start) {
		return nil, NewValidationError("end date must not be before start date")
	}

	var vehicles []models.Vehicle
	err := s.db.
		Where("status <> ?", models.VehicleStatusUnderMaintenance).
		Where("id NOT IN (?)", s.db.Model(&models.LoanRequest{}).
			Select("vehicle_id").
			Where("status IN ?", bindingStatuses).
			Where("start_date <= ? AND planned_end_date >= ?", end.Time, start.Time)).
		Order("created_at desc").
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available vehicles: %w", err)
	}

	return vehicles, nil
}
