// internal/services/vehicle_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

// VehicleService is the vehicle registry: fleet records, their operational
// status and live condition.
type VehicleService struct {
	db *gorm.DB
}

type CreateVehicleRequest struct {
	PlateNumber string  `json:"plate_number" validate:"required,plate_number"`
	Make        string  `json:"make" validate:"required"`
	Model       string  `json:"model" validate:"required"`
	Year        int     `json:"year" validate:"required,min=1980"`
	Roadworthy  string  `json:"roadworthy" validate:"omitempty,roadworthiness"`
	Cleanliness string  `json:"cleanliness" validate:"omitempty,cleanliness"`
	FuelLevel   float64 `json:"fuel_level" validate:"gte=0"`
	Status      string  `json:"status"`
}

type UpdateVehicleRequest struct {
	Make        *string  `json:"make"`
	Model       *string  `json:"model"`
	Year        *int     `json:"year" validate:"omitempty,min=1980"`
	Roadworthy  *string  `json:"roadworthy" validate:"omitempty,roadworthiness"`
	Cleanliness *string  `json:"cleanliness" validate:"omitempty,cleanliness"`
	FuelLevel   *float64 `json:"fuel_level" validate:"omitempty,gte=0"`
	Status      *string  `json:"status"`
}

func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{db: db}
}

func (s *VehicleService) Create(req *CreateVehicleRequest) (*models.Vehicle, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.GetValidationErrors(err)}
	}

	vehicle := &models.Vehicle{
		PlateNumber: strings.ToUpper(strings.TrimSpace(req.PlateNumber)),
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Status:      models.VehicleStatusAvailable,
		Roadworthy:  models.RoadworthinessFit,
		Cleanliness: models.CleanlinessClean,
		FuelLevel:   req.FuelLevel,
	}

	if req.Roadworthy != "" {
		r, err := models.ParseRoadworthiness(req.Roadworthy)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		vehicle.Roadworthy = r
	}
	if req.Cleanliness != "" {
		c, err := models.ParseCleanliness(req.Cleanliness)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		vehicle.Cleanliness = c
	}
	if req.Status != "" {
		st, err := models.ParseVehicleStatus(req.Status)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		vehicle.Status = st
	}

	var existing models.Vehicle
	if err := s.db.Where("plate_number = ?", vehicle.PlateNumber).First(&existing).Error; err == nil {
		return nil, &DuplicateError{Message: "plate number is already registered"}
	}

	if err := s.db.Create(vehicle).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &DuplicateError{Message: "plate number is already registered"}
		}
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	return vehicle, nil
}

func (s *VehicleService) Get(id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "vehicle"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &vehicle, nil
}

func (s *VehicleService) List(params utils.PaginationParams, status *models.VehicleStatus) ([]models.Vehicle, int64, error) {
	query := s.db.Model(&models.Vehicle{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if params.Search != "" {
		search := "%" + strings.ToUpper(params.Search) + "%"
		query = query.Where("UPPER(plate_number) LIKE ? OR UPPER(make) LIKE ? OR UPPER(model) LIKE ?",
			search, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	allowedSortFields := []string{"created_at", "plate_number", "year", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var vehicles []models.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	return vehicles, total, nil
}

func (s *VehicleService) Update(id uuid.UUID, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.GetValidationErrors(err)}
	}

	vehicle, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Roadworthy != nil {
		r, err := models.ParseRoadworthiness(*req.Roadworthy)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		vehicle.Roadworthy = r
	}
	if req.Cleanliness != nil {
		c, err := models.ParseCleanliness(*req.Cleanliness)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		vehicle.Cleanliness = c
	}
	if req.FuelLevel != nil {
		vehicle.FuelLevel = *req.FuelLevel
	}
	if req.Status != nil {
		st, err := models.ParseVehicleStatus(*req.Status)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		// Dipinjam is owned by the loan lifecycle; the registry only
		// toggles between available and maintenance.
		if st == models.VehicleStatusOnLoan && vehicle.Status != models.VehicleStatusOnLoan {
			return nil, NewValidationError("vehicle status Dipinjam is set by loan approval, not directly")
		}
		vehicle.Status = st
	}

	if err := s.db.Save(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return vehicle, nil
}

// Delete removes a vehicle from the registry. A vehicle on loan is never
// deleted.
func (s *VehicleService) Delete(id uuid.UUID) error {
	vehicle, err := s.Get(id)
	if err != nil {
		return err
	}

	if vehicle.Status == models.VehicleStatusOnLoan {
		return &ConflictError{Message: "vehicle is on loan and cannot be deleted"}
	}

	if err := s.db.Delete(vehicle).Error; err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	return nil
}
