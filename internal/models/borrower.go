// internal/models/borrower.go
package models

import "github.com/google/uuid"

// Borrower is an ad-hoc requester profile for people without an account,
// e.g. visiting officials. Loans reference either a User or a Borrower,
// never both.
type Borrower struct {
	BaseModel
	FullName string     `json:"full_name" gorm:"size:255;not null"`
	NIP      string     `json:"nip" gorm:"size:30"`
	Position string     `json:"position" gorm:"size:100"`
	Agency   string     `json:"agency" gorm:"size:150"`
	Contact  string     `json:"contact" gorm:"size:100"`
	UserID   *uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex"` // set when provisioned from a registered user

	Loans []LoanRequest `json:"loans,omitempty" gorm:"foreignKey:RequesterBorrowerID"`
}

func (b *Borrower) Summary() UserSummary {
	return UserSummary{
		ID:       b.ID.String(),
		FullName: b.FullName,
		NIP:      b.NIP,
		Position: b.Position,
		Agency:   b.Agency,
	}
}
