// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sipeka/sipeka-backend/internal/config"
	"github.com/sipeka/sipeka-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Borrower{},
		&models.Vehicle{},
		&models.LoanRequest{},
		&models.ReturnRecord{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		// Vehicle indexes
		"CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles(status)",
		"CREATE INDEX IF NOT EXISTS idx_vehicles_created_at ON vehicles(created_at DESC)",

		// Loan indexes; the composite one backs the overlap query
		"CREATE INDEX IF NOT EXISTS idx_loan_requests_vehicle_status_dates ON loan_requests(vehicle_id, status, start_date, planned_end_date)",
		"CREATE INDEX IF NOT EXISTS idx_loan_requests_requester_user ON loan_requests(requester_user_id)",
		"CREATE INDEX IF NOT EXISTS idx_loan_requests_creator ON loan_requests(creator_id)",
		"CREATE INDEX IF NOT EXISTS idx_loan_requests_status ON loan_requests(status)",
		"CREATE INDEX IF NOT EXISTS idx_loan_requests_created_at ON loan_requests(created_at DESC)",

		// Return indexes
		"CREATE INDEX IF NOT EXISTS idx_return_records_return_date ON return_records(return_date)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@sipeka.go.id",
			FullName: "Administrator Sistem",
			Position: "Administrator",
			Agency:   "Bagian Umum",
			Role:     models.UserRoleAdmin,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	// Seed a starter fleet so a fresh install is usable immediately
	var vehicleCount int64
	db.Model(&models.Vehicle{}).Count(&vehicleCount)

	if vehicleCount == 0 {
		fleet := []models.Vehicle{
			{
				PlateNumber: "B 1234 ABC",
				Make:        "Toyota",
				Model:       "Innova",
				Year:        2022,
				Status:      models.VehicleStatusAvailable,
				Roadworthy:  models.RoadworthinessFit,
				Cleanliness: models.CleanlinessClean,
				FuelLevel:   45,
			},
			{
				PlateNumber: "B 5678 DEF",
				Make:        "Toyota",
				Model:       "Avanza",
				Year:        2021,
				Status:      models.VehicleStatusAvailable,
				Roadworthy:  models.RoadworthinessFit,
				Cleanliness: models.CleanlinessClean,
				FuelLevel:   38,
			},
			{
				PlateNumber: "B 9012 GHI",
				Make:        "Mitsubishi",
				Model:       "Pajero Sport",
				Year:        2023,
				Status:      models.VehicleStatusAvailable,
				Roadworthy:  models.RoadworthinessFit,
				Cleanliness: models.CleanlinessClean,
				FuelLevel:   60,
			},
		}

		for _, vehicle := range fleet {
			v := vehicle
			if err := db.Create(&v).Error; err != nil {
				log.Printf("Warning: Failed to seed vehicle %s: %v", v.PlateNumber, err)
			}
		}

		log.Println("Starter fleet seeded successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
