// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/database"
	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type CreateBorrowerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	NIP      string `json:"nip"`
	Position string `json:"position"`
	Agency   string `json:"agency"`
	Contact  string `json:"contact"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	NIP      *string `json:"nip"`
	Position *string `json:"position"`
	Agency   *string `json:"agency"`
	Role     *string `json:"role"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) List(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?",
			search, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "username", "full_name", "role"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *UserService) Update(id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.NIP != nil {
		user.NIP = *req.NIP
	}
	if req.Position != nil {
		user.Position = *req.Position
	}
	if req.Agency != nil {
		user.Agency = *req.Agency
	}
	if req.Role != nil {
		role, err := models.ParseUserRole(*req.Role)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		user.Role = role
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// CreateBorrower registers an ad-hoc borrower profile, for guests and
// drivers without a staff account.
func (s *UserService) CreateBorrower(req *CreateBorrowerRequest) (*models.Borrower, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.GetValidationErrors(err)}
	}

	borrower := &models.Borrower{
		FullName: req.FullName,
		NIP:      req.NIP,
		Position: req.Position,
		Agency:   req.Agency,
		Contact:  req.Contact,
	}

	if err := s.db.Create(borrower).Error; err != nil {
		return nil, fmt.Errorf("failed to create borrower: %w", err)
	}
	return borrower, nil
}

func (s *UserService) GetBorrower(id uuid.UUID) (*models.Borrower, error) {
	var borrower models.Borrower
	if err := s.db.First(&borrower, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "borrower"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &borrower, nil
}

func (s *UserService) ListBorrowers(params utils.PaginationParams) ([]models.Borrower, int64, error) {
	query := s.db.Model(&models.Borrower{})

	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(agency) LIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count borrowers: %w", err)
	}

	allowedSortFields := []string{"created_at", "full_name", "agency"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var borrowers []models.Borrower
	if err := query.Find(&borrowers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch borrowers: %w", err)
	}

	return borrowers, total, nil
}

// SyncBorrowers provisions a borrower profile for every registered user
// that does not have one yet, so staff can also appear in borrower-based
// flows. Existing profiles are refreshed from the user record. Returns the
// number of profiles created.
func (s *UserService) SyncBorrowers() (int, error) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	created := 0
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		for i := range users {
			user := &users[i]

			var borrower models.Borrower
			err := tx.Where("user_id = ?", user.ID).First(&borrower).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				borrower = models.Borrower{
					FullName: user.FullName,
					NIP:      user.NIP,
					Position: user.Position,
					Agency:   user.Agency,
					Contact:  user.Email,
					UserID:   &user.ID,
				}
				if err := tx.Create(&borrower).Error; err != nil {
					return fmt.Errorf("failed to provision borrower for %s: %w", user.Username, err)
				}
				created++
				continue
			}
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}

			borrower.FullName = user.FullName
			borrower.NIP = user.NIP
			borrower.Position = user.Position
			borrower.Agency = user.Agency
			borrower.Contact = user.Email
			if err := tx.Save(&borrower).Error; err != nil {
				return fmt.Errorf("failed to refresh borrower for %s: %w", user.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}
