// internal/services/services_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sipeka/sipeka-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared in-memory database, so the pool's connections
	// all see the same tables.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Borrower{},
		&models.Vehicle{},
		&models.LoanRequest{},
		&models.ReturnRecord{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@sipeka.go.id",
		FullName: "Test " + username,
		Agency:   "Bagian Umum",
		Role:     role,
	}
	require.NoError(t, user.SetPassword("rahasia123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBorrower(t *testing.T, db *gorm.DB, name string) *models.Borrower {
	t.Helper()

	borrower := &models.Borrower{
		FullName: name,
		Agency:   "Dinas Perhubungan",
		Contact:  "081234567890",
	}
	require.NoError(t, db.Create(borrower).Error)
	return borrower
}

func seedVehicle(t *testing.T, db *gorm.DB, plate string) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		PlateNumber: plate,
		Make:        "Toyota",
		Model:       "Innova",
		Year:        2022,
		Status:      models.VehicleStatusAvailable,
		Roadworthy:  models.RoadworthinessFit,
		Cleanliness: models.CleanlinessClean,
		FuelLevel:   40,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()

	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}
