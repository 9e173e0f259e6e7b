// internal/services/return_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/database"
	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

// ReturnService closes loans: it records the end-of-loan inspection
// exactly once, marks the loan Selesai and releases the vehicle with its
// reported condition.
type ReturnService struct {
	db    *gorm.DB
	loans *LoanService
}

type RecordReturnRequest struct {
	LoanID           uuid.UUID `json:"loan_id" validate:"required"`
	ReturnDate       string    `json:"return_date" validate:"omitempty,calendar_date"`
	FinalRoadworthy  string    `json:"final_roadworthy" validate:"required,roadworthiness"`
	FinalCleanliness string    `json:"final_cleanliness" validate:"required,cleanliness"`
	FinalFuel        *float64  `json:"final_fuel" validate:"required,gte=0"`
	InspectorNote    *string   `json:"inspector_note"`
}

// ReturnSummary is the reporting shape for a closed loan.
type ReturnSummary struct {
	Record       *models.ReturnRecord `json:"record"`
	DurationDays int                  `json:"duration_days"`
}

func NewReturnService(db *gorm.DB, loans *LoanService) *ReturnService {
	return &ReturnService{db: db, loans: loans}
}

// Record creates the return record for an approved loan. The return date
// defaults to today when the inspector does not supply one. On success the
// loan becomes Selesai and the vehicle returns to Tersedia carrying the
// final reported condition — an unfit report alone does not move the
// vehicle into maintenance.
func (s *ReturnService) Record(req *RecordReturnRequest) (*ReturnSummary, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.GetValidationErrors(err)}
	}

	finalRoadworthy, err := models.ParseRoadworthiness(req.FinalRoadworthy)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	finalCleanliness, err := models.ParseCleanliness(req.FinalCleanliness)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}

	returnDate := models.Today()
	if req.ReturnDate != "" {
		returnDate, err = models.ParseDate(req.ReturnDate)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
	}

	var probe models.LoanRequest
	if err := s.db.Select("id", "vehicle_id").First(&probe, req.LoanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "loan"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	unlock := s.loans.locks.lock(probe.VehicleID)
	defer unlock()

	record := &models.ReturnRecord{
		LoanRequestID:    req.LoanID,
		ReturnDate:       returnDate,
		FinalRoadworthy:  finalRoadworthy,
		FinalCleanliness: finalCleanliness,
		FinalFuel:        *req.FinalFuel,
		InspectorNote:    req.InspectorNote,
	}

	var loan models.LoanRequest
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&loan, req.LoanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "loan"}
			}
			return fmt.Errorf("database error: %w", err)
		}

		// An already-recorded return wins over the state check: a loan
		// that is Selesai because it has a record is a duplicate, not a
		// bad transition.
		var existingCount int64
		if err := tx.Model(&models.ReturnRecord{}).
			Where("loan_request_id = ?", req.LoanID).
			Count(&existingCount).Error; err != nil {
			return fmt.Errorf("failed to check existing return: %w", err)
		}
		if existingCount > 0 {
			return &DuplicateError{Message: "loan has already been returned"}
		}

		if loan.Status != models.LoanStatusApproved {
			return &InvalidStateError{Current: loan.Status, Attempted: models.LoanStatusCompleted}
		}

		if err := tx.Create(record).Error; err != nil {
			// The unique index on loan_request_id backs up the check
			// above against writers outside this process.
			if isUniqueViolation(err) {
				return &DuplicateError{Message: "loan has already been returned"}
			}
			return fmt.Errorf("failed to create return record: %w", err)
		}

		if err := loan.ApplyTransition(models.LoanStatusCompleted, record.CreatedAt); err != nil {
			return &InvalidStateError{Current: loan.Status, Attempted: models.LoanStatusCompleted}
		}
		if err := tx.Save(&loan).Error; err != nil {
			return fmt.Errorf("failed to update loan status: %w", err)
		}

		// The vehicle's live condition becomes whatever the inspector
		// reported.
		updates := map[string]interface{}{
			"status":      models.VehicleStatusAvailable,
			"roadworthy":  finalRoadworthy,
			"cleanliness": finalCleanliness,
			"fuel_level":  *req.FinalFuel,
		}
		if err := tx.Model(&models.Vehicle{}).
			Where("id = ?", loan.VehicleID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to release vehicle: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("LoanRequest").Preload("LoanRequest.Vehicle").
		First(record, record.ID)

	return &ReturnSummary{
		Record:       record,
		DurationDays: loan.DurationDays(returnDate),
	}, nil
}

func (s *ReturnService) Get(id uuid.UUID) (*models.ReturnRecord, error) {
	var record models.ReturnRecord
	err := s.db.Preload("LoanRequest").Preload("LoanRequest.Vehicle").
		Preload("LoanRequest.RequesterUser").Preload("LoanRequest.RequesterBorrower").
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "return"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &record, nil
}

func (s *ReturnService) List(params utils.PaginationParams) ([]models.ReturnRecord, int64, error) {
	query := s.db.Model(&models.ReturnRecord{}).
		Preload("LoanRequest").Preload("LoanRequest.Vehicle").
		Preload("LoanRequest.RequesterUser").Preload("LoanRequest.RequesterBorrower")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count return records: %w", err)
	}

	allowedSortFields := []string{"created_at", "return_date"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var records []models.ReturnRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch return records: %w", err)
	}

	return records, total, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
