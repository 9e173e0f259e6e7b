// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. IDs are generated app-side in
// BeforeCreate so the models migrate onto any SQL backend.
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Date is a calendar date stored without a time component. Its wire format
// is YYYY-MM-DD, matching the dispatch forms and the existing database rows.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = Date{time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case string:
		parsed, err := ParseDate(v[:min(len(v), len(dateLayout))])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", value)
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// DaysUntil returns the number of calendar days from d to other, rounded
// up. A same-day return counts as one day, matching how dispatch reports
// loan durations.
func (d Date) DaysUntil(other Date) int {
	days := int(other.Time.Sub(d.Time).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Enums. The string values are wire literals shared with the frontend and
// the existing database rows; they must not be renamed.

type LoanStatus string

const (
	LoanStatusRequested LoanStatus = "Diproses"
	LoanStatusApproved  LoanStatus = "Disetujui"
	LoanStatusRejected  LoanStatus = "Ditolak"
	LoanStatusCompleted LoanStatus = "Selesai"
)

func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case LoanStatusRequested, LoanStatusApproved, LoanStatusRejected, LoanStatusCompleted:
		return LoanStatus(s), nil
	}
	return "", fmt.Errorf("invalid loan status %q", s)
}

type VehicleStatus string

const (
	VehicleStatusAvailable        VehicleStatus = "Tersedia"
	VehicleStatusOnLoan           VehicleStatus = "Dipinjam"
	VehicleStatusUnderMaintenance VehicleStatus = "Dalam Perawatan"
)

func ParseVehicleStatus(s string) (VehicleStatus, error) {
	switch VehicleStatus(s) {
	case VehicleStatusAvailable, VehicleStatusOnLoan, VehicleStatusUnderMaintenance:
		return VehicleStatus(s), nil
	}
	return "", fmt.Errorf("invalid vehicle status %q", s)
}

type Roadworthiness string

const (
	RoadworthinessFit   Roadworthiness = "Layak"
	RoadworthinessUnfit Roadworthiness = "Tidak Layak"
)

func ParseRoadworthiness(s string) (Roadworthiness, error) {
	switch Roadworthiness(s) {
	case RoadworthinessFit, RoadworthinessUnfit:
		return Roadworthiness(s), nil
	}
	return "", fmt.Errorf("invalid roadworthiness %q", s)
}

type Cleanliness string

const (
	CleanlinessClean         Cleanliness = "Bersih"
	CleanlinessNeedsCleaning Cleanliness = "Perlu Dibersihkan"
)

func ParseCleanliness(s string) (Cleanliness, error) {
	switch Cleanliness(s) {
	case CleanlinessClean, CleanlinessNeedsCleaning:
		return Cleanliness(s), nil
	}
	return "", fmt.Errorf("invalid cleanliness %q", s)
}

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleStaff UserRole = "user"
)

func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case UserRoleAdmin, UserRoleStaff:
		return UserRole(s), nil
	}
	return "", fmt.Errorf("invalid user role %q", s)
}

// RequesterKind distinguishes loans requested by registered users from
// loans recorded for ad-hoc borrower profiles. Resolved once at creation
// time; exactly one of the two requester references is set on a loan.
type RequesterKind string

const (
	RequesterKindRegistered RequesterKind = "registered"
	RequesterKindAdhoc      RequesterKind = "adhoc"
)
