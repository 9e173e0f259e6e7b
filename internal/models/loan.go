// internal/models/loan.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type LoanRequest struct {
	BaseModel
	VehicleID uuid.UUID `json:"vehicle_id" gorm:"type:uuid;not null;index"`

	// Polymorphic requester: exactly one of RequesterUserID or
	// RequesterBorrowerID is set, discriminated by RequesterKind.
	RequesterKind       RequesterKind `json:"requester_kind" gorm:"type:varchar(20);not null"`
	RequesterUserID     *uuid.UUID    `json:"requester_user_id" gorm:"type:uuid;index"`
	RequesterBorrowerID *uuid.UUID    `json:"requester_borrower_id" gorm:"type:uuid;index"`
	CreatorID           *uuid.UUID    `json:"creator_id" gorm:"type:uuid"` // set when submitted on someone's behalf

	StartDate      Date   `json:"start_date" gorm:"type:date;not null;index"`
	PlannedEndDate Date   `json:"planned_end_date" gorm:"type:date;not null"`
	Purpose        string `json:"purpose" gorm:"type:text;not null"`
	Destination    string `json:"destination" gorm:"size:255;not null"`

	// Affirmations ticked by the requester; all three are required.
	DutyUseAffirmed     bool `json:"duty_use_affirmed" gorm:"not null"`
	CleanlinessAffirmed bool `json:"cleanliness_affirmed" gorm:"not null"`
	LiabilityAffirmed   bool `json:"liability_affirmed" gorm:"not null"`

	// Vehicle condition snapshot taken at creation time.
	InitialRoadworthy  Roadworthiness `json:"initial_roadworthy" gorm:"type:varchar(20);not null"`
	InitialCleanliness Cleanliness    `json:"initial_cleanliness" gorm:"type:varchar(30);not null"`
	InitialFuel        float64        `json:"initial_fuel" gorm:"not null"`

	Status LoanStatus `json:"status" gorm:"type:varchar(20);default:'Diproses';index"`

	// Approval metadata, set by the decision.
	ApproverID   *uuid.UUID `json:"approver_id" gorm:"type:uuid"`
	DecisionNote *string    `json:"decision_note" gorm:"type:text"`
	DecidedAt    *time.Time `json:"decided_at"`

	// Opaque attachment reference from the storage collaborator.
	AttachmentName *string `json:"attachment_name" gorm:"size:255"`
	AttachmentURL  *string `json:"attachment_url" gorm:"size:512"`

	// Relationships
	Vehicle           *Vehicle      `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	RequesterUser     *User         `json:"requester_user,omitempty" gorm:"foreignKey:RequesterUserID"`
	RequesterBorrower *Borrower     `json:"requester_borrower,omitempty" gorm:"foreignKey:RequesterBorrowerID"`
	Creator           *User         `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Approver          *User         `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
	Return            *ReturnRecord `json:"return,omitempty" gorm:"foreignKey:LoanRequestID"`
}

// ReturnRecord closes a loan. At most one exists per loan; it is never
// mutated after creation.
type ReturnRecord struct {
	BaseModel
	LoanRequestID    uuid.UUID      `json:"loan_request_id" gorm:"type:uuid;uniqueIndex;not null"`
	ReturnDate       Date           `json:"return_date" gorm:"type:date;not null"`
	FinalRoadworthy  Roadworthiness `json:"final_roadworthy" gorm:"type:varchar(20);not null"`
	FinalCleanliness Cleanliness    `json:"final_cleanliness" gorm:"type:varchar(30);not null"`
	FinalFuel        float64        `json:"final_fuel" gorm:"not null"`
	InspectorNote    *string        `json:"inspector_note" gorm:"type:text"`

	LoanRequest *LoanRequest `json:"loan_request,omitempty" gorm:"foreignKey:LoanRequestID"`
}

// loanTransitions is the closed set of legal status edges. Requested may
// move to Approved or Rejected; Approved may move to Completed; Rejected
// and Completed are terminal.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusRequested: {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved:  {LoanStatusCompleted},
	LoanStatusRejected:  {},
	LoanStatusCompleted: {},
}

// CanTransition reports whether from -> to is a legal loan status edge.
func CanTransition(from, to LoanStatus) bool {
	for _, s := range loanTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves the loan to the target status and maintains the
// decision timestamp. Callers hold the loan's vehicle lock.
func (l *LoanRequest) ApplyTransition(to LoanStatus, now time.Time) error {
	if !CanTransition(l.Status, to) {
		return fmt.Errorf("invalid loan status transition: %s -> %s", l.Status, to)
	}

	l.Status = to

	switch to {
	case LoanStatusApproved, LoanStatusRejected:
		if l.DecidedAt == nil {
			t := now
			l.DecidedAt = &t
		}
	}
	return nil
}

// RequesterSummary resolves the polymorphic requester reference into the
// joined shape returned by the API.
func (l *LoanRequest) RequesterSummary() *UserSummary {
	switch l.RequesterKind {
	case RequesterKindAdhoc:
		if l.RequesterBorrower != nil {
			s := l.RequesterBorrower.Summary()
			return &s
		}
	case RequesterKindRegistered:
		if l.RequesterUser != nil {
			s := l.RequesterUser.Summary()
			return &s
		}
	}
	return nil
}

// Overlaps reports whether the loan's date range intersects [start, end],
// inclusive on both ends: a loan ending on day D conflicts with a request
// starting on day D.
func (l *LoanRequest) Overlaps(start, end Date) bool {
	return !l.StartDate.After(end) && !start.After(l.PlannedEndDate)
}

// DurationDays is the loan's length in ceil days against an actual return
// date, used for reporting.
func (l *LoanRequest) DurationDays(returnDate Date) int {
	return l.StartDate.DaysUntil(returnDate)
}
