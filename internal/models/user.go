// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	FullName     string     `json:"full_name" gorm:"size:255;not null"`
	NIP          string     `json:"nip" gorm:"size:30"`
	Position     string     `json:"position" gorm:"size:100"`
	Agency       string     `json:"agency" gorm:"size:150"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'user'"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Loans        []LoanRequest `json:"loans,omitempty" gorm:"foreignKey:RequesterUserID"`
	CreatedLoans []LoanRequest `json:"created_loans,omitempty" gorm:"foreignKey:CreatorID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Summary is the joined shape embedded in loan responses.
type UserSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	NIP      string `json:"nip"`
	Position string `json:"position"`
	Agency   string `json:"agency"`
	Email    string `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID.String(),
		FullName: u.FullName,
		NIP:      u.NIP,
		Position: u.Position,
		Agency:   u.Agency,
		Email:    u.Email,
	}
}
