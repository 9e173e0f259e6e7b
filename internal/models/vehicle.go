// internal/models/vehicle.go
package models

type Vehicle struct {
	BaseModel
	PlateNumber string         `json:"plate_number" gorm:"uniqueIndex;size:20;not null"`
	Make        string         `json:"make" gorm:"size:50;not null"`
	Model       string         `json:"model" gorm:"size:50;not null"`
	Year        int            `json:"year" gorm:"not null"`
	Status      VehicleStatus  `json:"status" gorm:"type:varchar(20);default:'Tersedia'"`
	Roadworthy  Roadworthiness `json:"roadworthy" gorm:"type:varchar(20);default:'Layak'"`
	Cleanliness Cleanliness    `json:"cleanliness" gorm:"type:varchar(30);default:'Bersih'"`
	FuelLevel   float64        `json:"fuel_level" gorm:"not null;default:0"` // liters

	Loans []LoanRequest `json:"loans,omitempty" gorm:"foreignKey:VehicleID"`
}
