// internal/services/user_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/config"
	"github.com/sipeka/sipeka-backend/internal/models"
)

type UserServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	users *UserService
	auth  *AuthService
}

func (s *UserServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.users = NewUserService(s.db)
	s.auth = NewAuthService(s.db, &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	})
}

func (s *UserServiceTestSuite) TestRegisterAndLogin() {
	resp, err := s.auth.Register(&RegisterRequest{
		Username: "budi",
		Email:    "budi@sipeka.go.id",
		Password: "rahasia123",
		FullName: "Budi Santoso",
		Agency:   "Bagian Umum",
	})
	s.Require().NoError(err)
	s.Equal(models.UserRoleStaff, resp.User.Role)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)

	login, err := s.auth.Login(&LoginRequest{Username: "budi", Password: "rahasia123"})
	s.Require().NoError(err)
	s.NotNil(login.User.LastLoginAt)

	// Login also works with the email.
	_, err = s.auth.Login(&LoginRequest{Username: "budi@sipeka.go.id", Password: "rahasia123"})
	s.Require().NoError(err)

	_, err = s.auth.Login(&LoginRequest{Username: "budi", Password: "salah"})
	s.Require().ErrorIs(err, ErrInvalidCredentials)
}

func (s *UserServiceTestSuite) TestRegisterDuplicate() {
	seedUser(s.T(), s.db, "budi", models.UserRoleStaff)

	_, err := s.auth.Register(&RegisterRequest{
		Username: "budi",
		Email:    "other@sipeka.go.id",
		Password: "rahasia123",
		FullName: "Budi Lain",
	})
	var dupErr *DuplicateError
	s.Require().ErrorAs(err, &dupErr)
}

func (s *UserServiceTestSuite) TestPromoteToAdmin() {
	user := seedUser(s.T(), s.db, "budi", models.UserRoleStaff)

	role := "admin"
	updated, err := s.users.Update(user.ID, &UpdateUserRequest{Role: &role})
	s.Require().NoError(err)
	s.Equal(models.UserRoleAdmin, updated.Role)

	bad := "superadmin"
	_, err = s.users.Update(user.ID, &UpdateUserRequest{Role: &bad})
	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
}

func (s *UserServiceTestSuite) TestSyncBorrowers() {
	seedUser(s.T(), s.db, "budi", models.UserRoleStaff)
	seedUser(s.T(), s.db, "sari", models.UserRoleStaff)
	seedBorrower(s.T(), s.db, "Pak Tamu") // ad-hoc profile, untouched by sync

	created, err := s.users.SyncBorrowers()
	s.Require().NoError(err)
	s.Equal(2, created)

	var total int64
	s.Require().NoError(s.db.Model(&models.Borrower{}).Count(&total).Error)
	s.Equal(int64(3), total)

	// A second sync refreshes instead of duplicating.
	created, err = s.users.SyncBorrowers()
	s.Require().NoError(err)
	s.Equal(0, created)

	s.Require().NoError(s.db.Model(&models.Borrower{}).Count(&total).Error)
	s.Equal(int64(3), total)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
